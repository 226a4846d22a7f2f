package entities

import "time"

// Policy — декларативное правило: переход тикета в trigger-stage порождает
// отложенную активность (follow-up), опционально с эскалацией.
type Policy struct {
	ID                         uint64    `json:"id"`
	Name                       string    `json:"name"`
	Active                     bool      `json:"active"`
	TeamID                     *uint64   `json:"team_id"`
	TagIDs                     []uint64  `json:"tag_ids"`
	ExtraFilter                string    `json:"extra_filter"` // сериализованный AST, см. internal/filter
	TriggerStageID             uint64    `json:"trigger_stage_id"`
	WaitDays                   int       `json:"wait_days"`
	TargetStageID              *uint64   `json:"target_stage_id"`
	ActivityType               string    `json:"activity_type"`
	AssigneeID                 *uint64   `json:"assignee_id"`
	DueDays                    int       `json:"due_days"`
	EscalationEnabled          bool      `json:"escalation_enabled"`
	EscalationAfterOverdueDays int       `json:"escalation_after_overdue_days"`
	EscalationAssigneeID       *uint64   `json:"escalation_assignee_id"`
	EscalationActivityType     string    `json:"escalation_activity_type"`
	NoteTemplate               string    `json:"note_template"`
	EscalationNoteTemplate     string    `json:"escalation_note_template"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`
}
