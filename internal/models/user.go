package models

import "time"

// User представляет пользователя в системе
type User struct {
	CreatedAt    time.Time `json:"createdAt"` // время создания
	UpdatedAt    time.Time `json:"-"`         // время последнего обновления
	Name         *string   `json:"name"`      // отображаемое имя (опционально)
	ID           string    `json:"id"`        // UUID пользователя
	Email        string    `json:"email"`     // уникальный email (lower-case)
	PasswordHash string    `json:"-"`         // bcrypt хеш пароля, наружу не отдается
}

// PasswordResetToken представляет одноразовый токен сброса пароля
type PasswordResetToken struct {
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	CreatedAt time.Time `json:"created_at"` // время создания
	ID        string    `json:"id"`         // UUID записи
	Token     string    `json:"-"`          // случайный base64url токен
	UserID    string    `json:"user_id"`    // ID владельца
	Used      bool      `json:"used"`       // токен уже использован
}

// Expired сообщает, истек ли токен к моменту now
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
