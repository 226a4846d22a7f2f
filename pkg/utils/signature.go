package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// VerifySignature сверяет заголовок X-Line-Signature с HMAC-SHA256 от тела запроса.
// Сравнение выполняется за константное время. Пустой секрет или пустой
// заголовок — всегда отказ.
func VerifySignature(secret string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(header))
}
