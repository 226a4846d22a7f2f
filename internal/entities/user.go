package entities

import "time"

// User — оператор/администратор панели. Конвейер вебхука пользователей
// не создаёт, это учётки для дашборда и настройки.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
