package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// PayloadSnippetLimit — документированная граница сниппета полезной нагрузки.
// Полные payload'ы при необходимости архивируются вне БД.
const PayloadSnippetLimit = 1000

// EventLog — журнал всех принятых вебхуком событий, включая необработанные.
// Строки никогда не изменяются после записи.
type EventLog struct {
	ID               uint64      `json:"id"`
	ReceivedAt       time.Time   `json:"received_at"`
	ChannelID        *uint64     `json:"channel_id"`
	ExternalUserID   null.String `json:"external_user_id"`
	MessageText      null.String `json:"message_text"`
	MatchedContactID *uint64     `json:"matched_contact_id"`
	CreatedContactID *uint64     `json:"created_contact_id"`
	CreatedTicketID  *uint64     `json:"created_ticket_id"`
	Processed        bool        `json:"processed"`
	PayloadSnippet   string      `json:"payload_snippet"`
}
