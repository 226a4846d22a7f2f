package utils

import (
	"regexp"
	"strings"
)

var (
	emailRegexp    = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRegexp    = regexp.MustCompile(`\+?\d[\d\-\s]{6,}\d`)
	nonDigitRegexp = regexp.MustCompile(`\D`)
)

// ExtractEmail возвращает первый email из произвольного текста или пустую строку.
func ExtractEmail(text string) string {
	return emailRegexp.FindString(text)
}

// ExtractPhoneVariants находит первый телефонный номер в тексте и возвращает
// набор его вариантов для поиска по контактам: «сырые» цифры плюс конверсии
// тайского кода страны (66xxxxxxxx ↔ 0xxxxxxxx). Пустой срез, если номера нет.
func ExtractPhoneVariants(text string) []string {
	raw := phoneRegexp.FindString(text)
	if raw == "" {
		return nil
	}

	digits := nonDigitRegexp.ReplaceAllString(raw, "")
	if digits == "" {
		return nil
	}

	variants := []string{digits}
	if strings.HasPrefix(digits, "66") && len(digits) > 2 {
		variants = append(variants, "0"+digits[2:])
	}
	if strings.HasPrefix(digits, "0") && len(digits) > 1 {
		variants = append(variants, "66"+digits[1:])
	}
	return variants
}
