package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	email, err := c.readRequired("", "Email: ")
	if err != nil {
		return err
	}

	password, err := c.readNewPassword("Password (min 8 chars, letters and digits): ")
	if err != nil {
		return err
	}

	var name *string
	input, err := c.io.ReadInput("Display name (optional): ")
	if err != nil {
		return fmt.Errorf("failed to read name: %w", err)
	}
	if input != "" {
		name = &input
	}

	c.io.Println()
	c.io.Println("Registering user...")

	user, err := c.session.Register(ctx, email, password, name)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("User ID: %s\n", user.ID)
	c.io.Printf("Email:   %s\n", user.Email)
	c.io.Println()
	c.io.Println("Please run 'classifieds login' to start using the service.")

	return nil
}
