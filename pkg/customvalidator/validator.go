// Файл: pkg/customvalidator/validator.go

package customvalidator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations регистрирует кастомные правила валидации
// в переданном экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("thai_phone", isThaiPhoneNumber); err != nil {
		return err
	}
	if err := v.RegisterValidation("email", isGoodEmailFormat); err != nil {
		return err
	}
	return nil
}

func isGoodEmailFormat(fl validator.FieldLevel) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(fl.Field().String())
}

// isThaiPhoneNumber принимает номера в национальном (0xxxxxxxxx)
// и международном (+66xxxxxxxxx / 66xxxxxxxxx) формате.
func isThaiPhoneNumber(fl validator.FieldLevel) bool {
	re := regexp.MustCompile(`^(\+?66|0)\d{8,9}$`)
	return re.MatchString(fl.Field().String())
}
