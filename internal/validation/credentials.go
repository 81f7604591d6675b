package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 8
	// MaxPasswordLen bcrypt учитывает только первые 72 байта
	MaxPasswordLen = 72
	// MaxEmailLen максимальная длина email
	MaxEmailLen = 254
	// MaxNameLen максимальная длина отображаемого имени
	MaxNameLen = 100
)

// ErrMissingFields обязательные поля запроса не заполнены
var ErrMissingFields = errors.New("missing required fields")

// NormalizeEmail приводит email к каноничному виду: без пробелов, в нижнем регистре
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateRegistration проверяет данные регистрации
// email ожидается уже нормализованным
func ValidateRegistration(email, password string, name *string) error {
	if email == "" || password == "" {
		return ErrMissingFields
	}

	if err := validation.Validate(email, validation.Length(3, MaxEmailLen), is.Email); err != nil {
		return fmt.Errorf("email: %w", err)
	}

	if err := ValidatePassword(password); err != nil {
		return err
	}

	return ValidateName(name)
}

// ValidatePassword проверяет политику паролей
// Минимум 8 символов, максимум 72 байта, хотя бы одна буква и одна цифра
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len([]rune(password)) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must not exceed %d bytes", MaxPasswordLen)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain at least one letter and one digit")
	}

	return nil
}

// ValidateName проверяет отображаемое имя (nil допустим)
func ValidateName(name *string) error {
	if name == nil {
		return nil
	}
	if err := validation.Validate(strings.TrimSpace(*name), validation.RuneLength(0, MaxNameLen)); err != nil {
		return fmt.Errorf("name: %w", err)
	}
	return nil
}

// NormalizeName обрезает пробелы; пустое имя превращается в nil
func NormalizeName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
