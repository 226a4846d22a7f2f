package dto

// KPIDashboardDTO — агрегированное представление для дашборда.
type KPIDashboardDTO struct {
	Summary  KPISummaryCardDTO `json:"summary"`
	Trend    KPITrendDTO       `json:"trend"`
	Rankings KPIRankingsDTO    `json:"rankings"`
}

// KPISummaryCardDTO — карточки верхнего ряда с классами подсветки и дельтами
// к предыдущему периоду той же длины.
type KPISummaryCardDTO struct {
	PeriodDays       int     `json:"period_days"`
	CreatedCount     int     `json:"created_count"`
	DoneCount        int     `json:"done_count"`
	EscalationCount  int     `json:"escalation_count"`
	CompletionRate   float64 `json:"completion_rate"`
	AvgResponseHours float64 `json:"avg_response_hours"`
	EscalationRate   float64 `json:"escalation_rate"`
	Score            float64 `json:"score"`
	Grade            string  `json:"grade"`
	CompletionClass  string  `json:"completion_class"`
	ResponseClass    string  `json:"response_class"`
	EscalationClass  string  `json:"escalation_class"`
	CompletionDelta  string  `json:"completion_delta"`
	ResponseDelta    string  `json:"response_delta"`
	EscalationDelta  string  `json:"escalation_delta"`
}

// KPITrendDTO — серия точек с интервалом day либо week.
type KPITrendDTO struct {
	Interval string             `json:"interval"`
	Points   []KPITrendPointDTO `json:"points"`
}

// Точка тренда несёт и абсолютные значения, и проценты от максимума
// серии, чтобы линии рисовались на одной оси.
type KPITrendPointDTO struct {
	Date             string  `json:"date"`
	CreatedCount     int     `json:"created_count"`
	DoneCount        int     `json:"done_count"`
	EscalationCount  int     `json:"escalation_count"`
	AvgResponseHours float64 `json:"avg_response_hours"`
	CompletionPct    float64 `json:"completion_pct"`
	ResponsePct      float64 `json:"response_pct"`
	EscalationPct    float64 `json:"escalation_pct"`
}

type KPIRankingsDTO struct {
	TopTeams        []KPIRankingRowDTO `json:"top_teams"`
	TopUsers        []KPIRankingRowDTO `json:"top_users"`
	WorstEscalation []KPIRankingRowDTO `json:"worst_escalation"`
}

type KPIRankingRowDTO struct {
	ID               uint64  `json:"id"`
	Name             string  `json:"name"`
	CreatedCount     int     `json:"created_count"`
	DoneCount        int     `json:"done_count"`
	EscalationCount  int     `json:"escalation_count"`
	CompletionRate   float64 `json:"completion_rate"`
	AvgResponseHours float64 `json:"avg_response_hours"`
	Score            float64 `json:"score"`
	Grade            string  `json:"grade"`
}

// KPIQueryDTO — параметры среза дашборда и отчёта.
type KPIQueryDTO struct {
	PeriodDays int     `query:"period_days" validate:"omitempty,gte=1,lte=90"`
	TeamID     *uint64 `query:"team_id"`
	PolicyID   *uint64 `query:"policy_id"`
	UserID     *uint64 `query:"user_id"`
}
