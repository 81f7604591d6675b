// Package mailer delivers password reset tokens to users.
package mailer

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// PasswordReset описывает письмо со ссылкой сброса пароля
type PasswordReset struct {
	ExpiresAt time.Time
	To        string
	Token     string
}

// Mailer sends password reset messages
type Mailer interface {
	SendPasswordReset(ctx context.Context, msg PasswordReset) error
}

// ResetLink builds the frontend link that carries the reset token
func ResetLink(appURL, token string) string {
	base := strings.TrimRight(appURL, "/")
	return base + "/reset-password?token=" + url.QueryEscape(token)
}

// LogMailer пишет письма в лог вместо отправки. Для разработки
type LogMailer struct {
	logger *slog.Logger
	appURL string
}

// NewLogMailer создает LogMailer
func NewLogMailer(logger *slog.Logger, appURL string) *LogMailer {
	return &LogMailer{logger: logger, appURL: appURL}
}

// SendPasswordReset логирует получателя; ссылка с токеном видна только на уровне debug
func (m *LogMailer) SendPasswordReset(ctx context.Context, msg PasswordReset) error {
	m.logger.InfoContext(ctx, "password reset email",
		slog.String("to", msg.To),
		slog.Time("expires_at", msg.ExpiresAt))
	m.logger.DebugContext(ctx, "password reset link",
		slog.String("to", msg.To),
		slog.String("link", ResetLink(m.appURL, msg.Token)))
	return nil
}
