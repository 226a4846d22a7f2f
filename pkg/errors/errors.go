package errors

import "fmt"

var (
	// Токены и авторизация
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrEmptyAuthHeader      = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader    = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials   = fmt.Errorf("неверные учётные данные")
	ErrUnauthorized         = fmt.Errorf("неавторизован")

	// Вебхук
	ErrSignatureInvalid = fmt.Errorf("подпись запроса не прошла проверку")
	ErrWebhookDisabled  = fmt.Errorf("вебхук отключён")

	// Общие
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrBadRequest = fmt.Errorf("неверный запрос")
)

// HttpError — ошибка с HTTP-кодом для ответа клиенту.
// Message уходит наружу, Err и Context — только в логи.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}

type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}
