package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrPostNotFound indicates that post was not found
	ErrPostNotFound = errors.New("post not found")

	// ErrResetTokenNotFound indicates that password reset token is unknown
	ErrResetTokenNotFound = errors.New("reset token not found")

	// ErrResetTokenUsed indicates that password reset token was already consumed
	ErrResetTokenUsed = errors.New("reset token already used")

	// ErrResetTokenExpired indicates that password reset token is past its expiry
	ErrResetTokenExpired = errors.New("reset token expired")
)
