package cli

import (
	"context"
	"time"

	"github.com/Studio24-sys/classifieds-api/pkg/api"
)

func (c *Cli) runMe(ctx context.Context, args []string) error {
	fs := c.newFlagSet("me")
	name := fs.String("name", "", "New display name (empty clears it)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var user *api.UserResponse
	if setFlags(fs)["name"] {
		var newName *string
		if *name != "" {
			newName = name
		}
		user, err = c.api.UpdateMe(ctx, token, newName)
	} else {
		user, err = c.api.Me(ctx, token)
	}
	if err != nil {
		return err
	}

	c.io.Println("=== Profile ===")
	c.io.Printf("ID:      %s\n", user.ID)
	c.io.Printf("Email:   %s\n", user.Email)
	if user.Name != nil {
		c.io.Printf("Name:    %s\n", *user.Name)
	}
	c.io.Printf("Created: %s\n", user.CreatedAt.Local().Format(time.DateTime))

	return nil
}
