package cli

import (
	"context"
	"errors"
	"time"

	"github.com/Studio24-sys/classifieds-api/internal/client/auth"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	authData, err := c.session.Session(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			c.io.Println("Status: Not authenticated")
			c.io.Println()
			c.io.Println("Run 'classifieds login' to authenticate.")
			return nil
		}
		return err
	}

	expiresAt := time.Unix(authData.ExpiresAt, 0)

	if authData.Expired(c.now()) {
		c.io.Println("Status: Session expired")
		c.io.Printf("Email: %s\n", authData.Email)
		c.io.Println("⚠️  Token has expired. Please login again.")
		return nil
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("Email: %s\n", authData.Email)
	c.io.Printf("User ID: %s\n", authData.UserID)
	c.io.Printf("Token expires: %s\n", expiresAt.Format(time.RFC3339))
	c.io.Printf("Time remaining: %s\n", expiresAt.Sub(c.now()).Round(time.Second))

	return nil
}
