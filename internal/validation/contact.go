package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

const (
	minContactDigits = 6
	maxContactDigits = 15
)

// NormalizeContact оставляет в контакте только цифры
// Если строка разбирается как валидный телефон для region, используется E.164 без "+"
// (например "0981 123-456" для PY дает "595981123456"). Пустая строка допустима
func NormalizeContact(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	if region != "" {
		if num, err := phonenumbers.Parse(raw, region); err == nil && phonenumbers.IsValidNumber(num) {
			return strings.TrimPrefix(phonenumbers.Format(num, phonenumbers.E164), "+"), nil
		}
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		if unicode.IsSpace(r) || strings.ContainsRune("+-().", r) {
			return -1
		}
		return 'x'
	}, raw)

	if strings.ContainsRune(digits, 'x') {
		return "", fmt.Errorf("contact: must contain only digits")
	}

	if len(digits) < minContactDigits || len(digits) > maxContactDigits {
		return "", fmt.Errorf("contact: must contain %d to %d digits", minContactDigits, maxContactDigits)
	}

	return digits, nil
}
