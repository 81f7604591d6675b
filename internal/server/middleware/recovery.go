package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Studio24-sys/classifieds-api/internal/server/handlers"
	"github.com/Studio24-sys/classifieds-api/pkg/api"
)

// RecoveryMiddleware создает middleware для восстановления после паники
// Перехватывает panic, логирует стек вызовов и возвращает 500 {"error":"INTERNAL_ERROR"}
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				// ErrAbortHandler сервер обрабатывает сам
				if err == http.ErrAbortHandler {
					panic(err)
				}

				logger.ErrorContext(r.Context(), "Panic recovered",
					slog.Any("error", err),
					slog.String("request_id", RequestIDFromContext(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)

				// Возвращаем generic ошибку клиенту (не раскрываем детали)
				handlers.WriteError(w, api.CodeInternalError, http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
