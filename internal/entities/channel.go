package entities

import "time"

// MatchMode определяет, как резолвер ищет контакт по тексту сообщения.
const (
	MatchModeByPhoneOrEmail = "by_phone_or_email"
	MatchModeManualOnly     = "manual_only"
)

// Channel — конфигурация одного подключения LINE-канала к вебхуку.
// Канал годен для проверки подписи только при непустом secret.
type Channel struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	Active         bool      `json:"active"`
	Secret         string    `json:"-"`
	AccessToken    string    `json:"-"`
	DefaultTeamID  *uint64   `json:"default_team_id"`
	DefaultStageID *uint64   `json:"default_stage_id"`
	CreateTicket   bool      `json:"create_ticket"`
	MatchMode      string    `json:"match_mode"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
