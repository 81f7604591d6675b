package api

import "time"

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Name     *string `json:"name,omitempty"` // отображаемое имя (опционально)
	Email    string  `json:"email"`          // email пользователя
	Password string  `json:"password"`       // пароль в открытом виде (только по TLS)
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse представляет ответ с токеном доступа
type TokenResponse struct {
	Token     string `json:"token"`     // JWT bearer token
	ExpiresIn int64  `json:"expiresIn"` // время жизни токена в секундах
}

// RequestResetRequest запрос на отправку токена сброса пароля
type RequestResetRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest запрос на смену пароля по токену
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// UserResponse публичные поля пользователя (без хеша пароля)
type UserResponse struct {
	CreatedAt time.Time `json:"createdAt"`
	Name      *string   `json:"name"`
	ID        string    `json:"id"`
	Email     string    `json:"email"`
}

// UpdateProfileRequest запрос на изменение профиля
type UpdateProfileRequest struct {
	Name *string `json:"name"`
}

// OKResponse ответ для операций без полезной нагрузки
type OKResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // стабильный код ошибки (EMAIL_TAKEN, BAD_TOKEN, ...)
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
