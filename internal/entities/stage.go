package entities

// Stage — позиция тикета в воркфлоу команды.
type Stage struct {
	ID             uint64  `json:"id"`
	Name           string  `json:"name"`
	Sequence       int     `json:"sequence"`
	TeamID         *uint64 `json:"team_id"`
	Closed         bool    `json:"closed"`
	Unattended     bool    `json:"unattended"`
	SLAHours       float64 `json:"sla_hours"`
	NotifyCustomer bool    `json:"notify_customer"`
	MailTemplateID *uint64 `json:"mail_template_id"`
}
