package storage

import (
	"context"
	"time"

	"github.com/Studio24-sys/classifieds-api/internal/models"
)

// ResetTokenStorage defines interface for password reset token persistence
type ResetTokenStorage interface {
	// CreateResetToken stores a new single-use reset token
	CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error

	// ConsumeResetToken atomically validates the token, replaces the owner's
	// password hash and marks the token used.
	// Returns ErrResetTokenNotFound, ErrResetTokenUsed or ErrResetTokenExpired;
	// on any error nothing is changed
	ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) error

	// DeleteExpiredResetTokens removes tokens expired before now
	// Returns number of deleted tokens
	DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int, error)
}

// Pinger reports store availability
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is the full set of persistence operations used by the server
type Store interface {
	UserStorage
	PostStorage
	ResetTokenStorage
	Pinger
	Close() error
}
