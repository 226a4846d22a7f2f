package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Внешняя система идентификации, пока поддерживается только LINE.
const IdentitySystemLine = "line"

// Имя, которое получает контакт, если LINE не вернул displayName.
const FallbackContactName = "LINE Customer"

type Contact struct {
	ID          uint64      `json:"id"`
	Name        string      `json:"name"`
	Email       null.String `json:"email"`
	Phone       null.String `json:"phone"`
	Mobile      null.String `json:"mobile"`
	DisplayName null.String `json:"display_name"`
	LastSeenAt  null.Time   `json:"last_seen_at"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ContactIdentity — одна внешняя идентичность контакта с провенансом.
// Контакт может держать несколько идентичностей, но не больше одной
// на систему; конфликт по system+external_id не перезаписывается.
type ContactIdentity struct {
	ID         uint64    `json:"id"`
	ContactID  uint64    `json:"contact_id"`
	System     string    `json:"system"`
	ExternalID string    `json:"external_id"`
	FirstSeen  time.Time `json:"first_seen"`
	LastSeen   time.Time `json:"last_seen"`
}

// ContactNote — заметка на контакте (используется для фиксации конфликтов
// идентификации, ничего больше конвейер сюда не пишет).
type ContactNote struct {
	ID        uint64    `json:"id"`
	ContactID uint64    `json:"contact_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
