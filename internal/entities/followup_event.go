package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Состояния follow-up события. done и escalated — терминальные.
const (
	FollowUpStatePending   = "pending"
	FollowUpStateDone      = "done"
	FollowUpStateEscalated = "escalated"
)

// FollowUpEvent — один экземпляр срабатывания политики на тикете.
// На пару (ticket, policy) существует не больше одного pending события.
type FollowUpEvent struct {
	ID                  uint64       `json:"id"`
	TicketID            uint64       `json:"ticket_id"`
	PolicyID            uint64       `json:"policy_id"`
	TeamID              *uint64      `json:"team_id"`
	AssignedUserID      *uint64      `json:"assigned_user_id"`
	State               string       `json:"state"`
	ActivityType        string       `json:"activity_type"`
	DueDate             time.Time    `json:"due_date"`
	CreatedDate         time.Time    `json:"created_date"`
	DoneAt              null.Time    `json:"done_at"`
	EscalationCreatedAt null.Time    `json:"escalation_created_at"`
	ResponseTimeHours   null.Float64 `json:"response_time_hours"`
}
