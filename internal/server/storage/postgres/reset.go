package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Studio24-sys/classifieds-api/internal/models"
	"github.com/Studio24-sys/classifieds-api/internal/server/storage"
)

// CreateResetToken stores a new password reset token
func (s *Storage) CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO password_reset_tokens (id, token, user_id, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		token.ID,
		token.Token,
		token.UserID,
		token.ExpiresAt,
		token.Used,
		token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	return nil
}

// ConsumeResetToken checks the token and swaps the password in one transaction.
// The token row is locked so concurrent requests with the same token serialise
func (s *Storage) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	reset := &models.PasswordResetToken{}
	err = tx.QueryRowContext(ctx, `
		SELECT id, user_id, expires_at, used
		FROM password_reset_tokens
		WHERE token = $1
		FOR UPDATE
	`, token).Scan(&reset.ID, &reset.UserID, &reset.ExpiresAt, &reset.Used)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrResetTokenNotFound
		}
		return fmt.Errorf("failed to get reset token: %w", err)
	}

	if reset.Used {
		return storage.ErrResetTokenUsed
	}
	if reset.Expired(now) {
		return storage.ErrResetTokenExpired
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		passwordHash, now, reset.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err = rowsAffected(result, storage.ErrUserNotFound); err != nil {
		return err
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used = TRUE WHERE id = $1`,
		reset.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}
	if err = rowsAffected(result, storage.ErrResetTokenUsed); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteExpiredResetTokens removes all tokens that expired before now
func (s *Storage) DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}
