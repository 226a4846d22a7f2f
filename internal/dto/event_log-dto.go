package dto

// EventLogDTO: Что сервер отдаёт в списке журнала вебхука.
type EventLogDTO struct {
	ID               uint64  `json:"id"`
	ReceivedAt       string  `json:"received_at"`
	ChannelID        *uint64 `json:"channel_id,omitempty"`
	ExternalUserID   string  `json:"external_user_id,omitempty"`
	MessageText      string  `json:"message_text,omitempty"`
	MatchedContactID *uint64 `json:"matched_contact_id,omitempty"`
	CreatedContactID *uint64 `json:"created_contact_id,omitempty"`
	CreatedTicketID  *uint64 `json:"created_ticket_id,omitempty"`
	Processed        bool    `json:"processed"`
	PayloadSnippet   string  `json:"payload_snippet"`
}
