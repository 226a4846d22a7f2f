package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Плейсхолдер номера заказа: заполняется позже оператором вручную.
const TicketPONumberPlaceholder = "N/A"

type Ticket struct {
	ID             uint64      `json:"id"`
	Number         string      `json:"number"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	ContactID      *uint64     `json:"contact_id"`
	TeamID         *uint64     `json:"team_id"`
	StageID        uint64      `json:"stage_id"`
	ChannelTagID   *uint64     `json:"channel_tag_id"`
	ExternalUserID null.String `json:"external_user_id"`
	PONumber       string      `json:"po_number"`
	Priority       int         `json:"priority"`
	StageEnteredAt time.Time   `json:"stage_entered_at"`
	LastUpdateAt   time.Time   `json:"last_update_at"`
	ClosedDate     null.Time   `json:"closed_date"`
	CreatedAt      time.Time   `json:"created_at"`
}

// TicketMessage — внутренняя заметка в переписке тикета.
// Субтайп зафиксирован справочно: конвейер пишет только internal note.
const MailSubtypeInternalNote = "internal_note"

type TicketMessage struct {
	ID        uint64    `json:"id"`
	TicketID  uint64    `json:"ticket_id"`
	Subtype   string    `json:"subtype"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
