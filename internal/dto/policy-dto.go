package dto

// CreatePolicyDTO: Что клиент присылает для создания политики.
// ExtraFilter — сериализованный AST фильтра, валидируется сервисом.
type CreatePolicyDTO struct {
	Name                       string   `json:"name" validate:"required,min=1"`
	Active                     bool     `json:"active"`
	TeamID                     *uint64  `json:"team_id,omitempty"`
	TagIDs                     []uint64 `json:"tag_ids"`
	ExtraFilter                string   `json:"extra_filter"`
	TriggerStageID             uint64   `json:"trigger_stage_id" validate:"required"`
	WaitDays                   int      `json:"wait_days" validate:"gte=0"`
	TargetStageID              *uint64  `json:"target_stage_id,omitempty"`
	ActivityType               string   `json:"activity_type"`
	AssigneeID                 *uint64  `json:"assignee_id,omitempty"`
	DueDays                    int      `json:"due_days" validate:"gte=0"`
	EscalationEnabled          bool     `json:"escalation_enabled"`
	EscalationAfterOverdueDays int      `json:"escalation_after_overdue_days" validate:"gte=0"`
	EscalationAssigneeID       *uint64  `json:"escalation_assignee_id,omitempty"`
	EscalationActivityType     string   `json:"escalation_activity_type"`
	NoteTemplate               string   `json:"note_template"`
	EscalationNoteTemplate     string   `json:"escalation_note_template"`
}

// UpdatePolicyDTO: Что клиент может прислать для обновления.
type UpdatePolicyDTO struct {
	Name                       *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Active                     *bool    `json:"active,omitempty"`
	TeamID                     *uint64  `json:"team_id,omitempty"`
	TagIDs                     []uint64 `json:"tag_ids,omitempty"`
	ExtraFilter                *string  `json:"extra_filter,omitempty"`
	TriggerStageID             *uint64  `json:"trigger_stage_id,omitempty"`
	WaitDays                   *int     `json:"wait_days,omitempty" validate:"omitempty,gte=0"`
	TargetStageID              *uint64  `json:"target_stage_id,omitempty"`
	ActivityType               *string  `json:"activity_type,omitempty"`
	AssigneeID                 *uint64  `json:"assignee_id,omitempty"`
	DueDays                    *int     `json:"due_days,omitempty" validate:"omitempty,gte=0"`
	EscalationEnabled          *bool    `json:"escalation_enabled,omitempty"`
	EscalationAfterOverdueDays *int     `json:"escalation_after_overdue_days,omitempty" validate:"omitempty,gte=0"`
	EscalationAssigneeID       *uint64  `json:"escalation_assignee_id,omitempty"`
	EscalationActivityType     *string  `json:"escalation_activity_type,omitempty"`
	NoteTemplate               *string  `json:"note_template,omitempty"`
	EscalationNoteTemplate     *string  `json:"escalation_note_template,omitempty"`
}
