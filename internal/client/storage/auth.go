package storage

import (
	"context"
	"time"
)

// AuthStorage defines interface for storing the client session locally
type AuthStorage interface {
	// SaveAuth replaces the stored session
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth returns the stored session.
	// Returns ErrAuthNotFound if nobody is logged in
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes the stored session (logout)
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated reports whether a non-expired session exists at now
	IsAuthenticated(ctx context.Context, now time.Time) (bool, error)
}

// AuthData represents the logged-in session kept by the CLI
type AuthData struct {
	Email     string `json:"email"`
	UserID    string `json:"user_id"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"` // unix seconds
}

// Expired reports whether the token is past its expiry at now
func (a *AuthData) Expired(now time.Time) bool {
	return !now.Before(time.Unix(a.ExpiresAt, 0))
}
