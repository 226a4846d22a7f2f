package dto

// UpdateSettingDTO: Пустое значение очищает настройку до дефолта.
type UpdateSettingDTO struct {
	Value string `json:"value"`
}
