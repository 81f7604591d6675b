package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost стоимость bcrypt по умолчанию
const DefaultBcryptCost = 10

// ErrPasswordMismatch пароль не соответствует хешу
var ErrPasswordMismatch = errors.New("password does not match")

// dummyPassword хешируется при создании hasher для выравнивания времени ответа
const dummyPassword = "classifieds-dummy-password-1"

// PasswordHasher хеширует и проверяет пароли через bcrypt
type PasswordHasher struct {
	dummyHash []byte
	cost      int
}

// NewPasswordHasher создает hasher с заданной стоимостью
// Значения вне [bcrypt.MinCost, bcrypt.MaxCost] заменяются на DefaultBcryptCost
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	// стоимость фиктивного хеша совпадает с реальными хешами
	return &PasswordHasher{cost: cost, dummyHash: mustHash(dummyPassword, cost)}
}

// Hash возвращает bcrypt хеш пароля
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// Compare проверяет пароль против хеша
// Возвращает ErrPasswordMismatch если пароль неверный
func (h *PasswordHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return fmt.Errorf("failed to compare password: %w", err)
}

// CompareDummy тратит то же время, что и Compare, ничего не проверяя
// Вызывается при логине с неизвестным email
func (h *PasswordHasher) CompareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(password))
}

func mustHash(password string, cost int) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		panic(err)
	}
	return hash
}
