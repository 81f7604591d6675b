package cli

import (
	"context"
)

func (c *Cli) runRequestReset(ctx context.Context, args []string) error {
	fs := c.newFlagSet("request-reset")
	email := fs.String("email", "", "Account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	addr, err := c.readRequired(*email, "Email: ")
	if err != nil {
		return err
	}

	if err := c.api.RequestReset(ctx, addr); err != nil {
		return err
	}

	// Сервер отвечает одинаково для существующих и несуществующих адресов
	c.io.Println("If the account exists, a reset link has been sent to", addr)
	return nil
}

func (c *Cli) runResetPassword(ctx context.Context, args []string) error {
	fs := c.newFlagSet("reset-password")
	tokenFlag := fs.String("token", "", "Reset token from the email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, err := c.readRequired(*tokenFlag, "Reset token: ")
	if err != nil {
		return err
	}

	password, err := c.readNewPassword("New password: ")
	if err != nil {
		return err
	}

	if err := c.api.ResetPassword(ctx, token, password); err != nil {
		return err
	}

	c.io.Println("✓ Password changed. Please run 'classifieds login'.")
	return nil
}
