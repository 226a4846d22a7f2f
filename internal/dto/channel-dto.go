package dto

// CreateChannelDTO: Что клиент присылает для создания канала.
type CreateChannelDTO struct {
	Name           string  `json:"name" validate:"required,min=1"`
	Active         bool    `json:"active"`
	Secret         string  `json:"secret"`
	AccessToken    string  `json:"access_token"`
	DefaultTeamID  *uint64 `json:"default_team_id,omitempty"`
	DefaultStageID *uint64 `json:"default_stage_id,omitempty"`
	CreateTicket   bool    `json:"create_ticket"`
	MatchMode      string  `json:"match_mode" validate:"required,oneof=by_phone_or_email manual_only"`
}

// UpdateChannelDTO: Что клиент может прислать для обновления.
type UpdateChannelDTO struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Active         *bool   `json:"active,omitempty"`
	Secret         *string `json:"secret,omitempty"`
	AccessToken    *string `json:"access_token,omitempty"`
	DefaultTeamID  *uint64 `json:"default_team_id,omitempty"`
	DefaultStageID *uint64 `json:"default_stage_id,omitempty"`
	CreateTicket   *bool   `json:"create_ticket,omitempty"`
	MatchMode      *string `json:"match_mode,omitempty" validate:"omitempty,oneof=by_phone_or_email manual_only"`
}

// ChannelDTO: Что сервер отправляет клиенту. Секреты наружу не выдаём.
type ChannelDTO struct {
	ID             uint64  `json:"id"`
	Name           string  `json:"name"`
	Active         bool    `json:"active"`
	HasSecret      bool    `json:"has_secret"`
	DefaultTeamID  *uint64 `json:"default_team_id,omitempty"`
	DefaultStageID *uint64 `json:"default_stage_id,omitempty"`
	CreateTicket   bool    `json:"create_ticket"`
	MatchMode      string  `json:"match_mode"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at,omitempty"`
}
