package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Studio24-sys/classifieds-api/internal/server/handlers"
	"github.com/Studio24-sys/classifieds-api/pkg/api"
)

// TokenVerifier проверяет bearer токен и возвращает ID пользователя
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthMiddleware создает middleware для проверки JWT токена
// Любая ошибка (нет заголовка, неверный формат, плохой или просроченный токен)
// дает один и тот же ответ 401 {"error":"UNAUTHENTICATED"}
func AuthMiddleware(logger *slog.Logger, verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				logger.DebugContext(ctx, "missing or malformed Authorization header")
				handlers.WriteError(w, api.CodeUnauthenticated, http.StatusUnauthorized)
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
				handlers.WriteError(w, api.CodeUnauthenticated, http.StatusUnauthorized)
				return
			}

			logger.DebugContext(ctx, "user authenticated", slog.String("user_id", userID))

			// Передаем запрос дальше с обновленным контекстом
			next.ServeHTTP(w, r.WithContext(handlers.WithUserID(ctx, userID)))
		})
	}
}

// bearerToken извлекает токен из "Bearer <token>"
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
