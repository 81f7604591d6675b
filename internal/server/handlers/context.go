package handlers

import "context"

// contextKey тип для ключей контекста
type contextKey string

// userIDKey ключ для хранения user_id в контексте
const userIDKey contextKey = "user_id"

// WithUserID кладет ID аутентифицированного пользователя в контекст
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext извлекает user_id из контекста запроса
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
