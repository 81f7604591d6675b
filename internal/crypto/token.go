package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// resetTokenSize размер токена сброса пароля в байтах
const resetTokenSize = 32

// GenerateToken создает случайный base64url токен из 32 байт
func GenerateToken() (string, error) {
	// Генерируем случайные 32 байта
	tokenBytes := make([]byte, resetTokenSize)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(tokenBytes), nil
}
