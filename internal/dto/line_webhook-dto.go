package dto

// LineWebhookDTO — полезная нагрузка вебхука LINE Messaging API.
// Разбираем только то, что нужно конвейеру.
type LineWebhookDTO struct {
	Destination string         `json:"destination"`
	Events      []LineEventDTO `json:"events"`
}

type LineEventDTO struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"` // миллисекунды Unix-эпохи
	Source    LineSourceDTO   `json:"source"`
	Message   *LineMessageDTO `json:"message,omitempty"`
}

type LineSourceDTO struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type LineMessageDTO struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}
