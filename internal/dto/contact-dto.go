package dto

// UpdateContactDTO: Ручная правка карточки контакта оператором.
// Телефоны проверяются правилом thai_phone (0xxxxxxxxx либо +66xxxxxxxxx).
type UpdateContactDTO struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone  *string `json:"phone,omitempty" validate:"omitempty,thai_phone"`
	Mobile *string `json:"mobile,omitempty" validate:"omitempty,thai_phone"`
}
