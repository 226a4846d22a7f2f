package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"events":[]}`)
	secret := "channel-secret"

	t.Run("валидная подпись", func(t *testing.T) {
		assert.True(t, VerifySignature(secret, body, signBody(secret, body)))
	})

	t.Run("чужой секрет", func(t *testing.T) {
		assert.False(t, VerifySignature("other-secret", body, signBody(secret, body)))
	})

	t.Run("изменённое тело", func(t *testing.T) {
		assert.False(t, VerifySignature(secret, []byte(`{"events":[{}]}`), signBody(secret, body)))
	})

	t.Run("пустой секрет никогда не проходит", func(t *testing.T) {
		assert.False(t, VerifySignature("", body, signBody("", body)))
	})

	t.Run("пустой заголовок", func(t *testing.T) {
		assert.False(t, VerifySignature(secret, body, ""))
	})

	t.Run("мусор вместо base64", func(t *testing.T) {
		assert.False(t, VerifySignature(secret, body, "не base64"))
	})
}
