package entities

import "time"

// KPIDaily — материализованный агрегат за (дата, команда, политика, пользователь).
// Перестраивается job'ом целиком для 90-дневного горизонта.
type KPIDaily struct {
	ID               uint64    `json:"id"`
	Date             time.Time `json:"date"`
	TeamID           *uint64   `json:"team_id"`
	PolicyID         *uint64   `json:"policy_id"`
	AssignedUserID   *uint64   `json:"assigned_user_id"`
	CreatedCount     int       `json:"created_count"`
	DoneCount        int       `json:"done_count"`
	EscalationCount  int       `json:"escalation_count"`
	AvgResponseHours float64   `json:"avg_response_hours"`
}

// CompletionRate = done/created*100 при created > 0, иначе 0.
func (k KPIDaily) CompletionRate() float64 {
	if k.CreatedCount <= 0 {
		return 0
	}
	return float64(k.DoneCount) / float64(k.CreatedCount) * 100
}

// KPISummary — единственная строка со скользящим окном для email-отчётов.
const KPISummaryKey = "summary"

type KPISummary struct {
	Key              string    `json:"key"`
	PeriodDays       int       `json:"period_days"`
	PeriodStart      time.Time `json:"period_start"`
	PeriodEnd        time.Time `json:"period_end"`
	CreatedCount     int       `json:"created_count"`
	DoneCount        int       `json:"done_count"`
	EscalationCount  int       `json:"escalation_count"`
	AvgResponseHours float64   `json:"avg_response_hours"`
	UpdatedAt        time.Time `json:"updated_at"`
}
