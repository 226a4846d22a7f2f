package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", ExtractEmail("пишите на user@example.com срочно"))
	assert.Equal(t, "a.b+tag@mail.co.th", ExtractEmail("контакт: a.b+tag@mail.co.th"))
	assert.Equal(t, "", ExtractEmail("здесь нет адреса"))
}

func TestExtractPhoneVariants(t *testing.T) {
	t.Run("тайский международный формат даёт локальный вариант", func(t *testing.T) {
		variants := ExtractPhoneVariants("мой номер +66-81-234-5678")
		assert.Equal(t, []string{"66812345678", "0812345678"}, variants)
	})

	t.Run("локальный формат даёт международный вариант", func(t *testing.T) {
		variants := ExtractPhoneVariants("тел. 081 234 5678")
		assert.Equal(t, []string{"0812345678", "66812345678"}, variants)
	})

	t.Run("прочие номера остаются как есть", func(t *testing.T) {
		variants := ExtractPhoneVariants("звоните 749912345678")
		assert.Equal(t, []string{"749912345678"}, variants)
	})

	t.Run("без номера пусто", func(t *testing.T) {
		assert.Nil(t, ExtractPhoneVariants("просто текст"))
	})
}
