package entities

// Статические справочные коды тегов каналов.
const (
	ChannelTagEmail = "email"
	ChannelTagLine  = "line"
	ChannelTagOther = "other"
)

type ChannelTag struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}
