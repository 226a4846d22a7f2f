package entities

type Team struct {
	ID           uint64  `json:"id"`
	Name         string  `json:"name"`
	AliasReplyTo *string `json:"alias_reply_to"`
}
