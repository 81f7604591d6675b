package cli

import (
	"context"
	"fmt"
)

// ErrUnknownCommand неизвестная команда
type ErrUnknownCommand struct {
	Command string
}

func (e ErrUnknownCommand) Error() string {
	return fmt.Sprintf("unknown command: %s", e.Command)
}

// Run выполняет команду command с аргументами args (без имени команды)
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "me":
		return c.runMe(ctx, args)
	case "posts":
		return c.runPosts(ctx, args)
	case "post":
		return c.runPost(ctx, args)
	case "my-posts":
		return c.runMyPosts(ctx, args)
	case "create-post":
		return c.runCreatePost(ctx, args)
	case "update-post":
		return c.runUpdatePost(ctx, args)
	case "delete-post":
		return c.runDeletePost(ctx, args)
	case "request-reset":
		return c.runRequestReset(ctx, args)
	case "reset-password":
		return c.runResetPassword(ctx, args)
	default:
		return ErrUnknownCommand{Command: command}
	}
}
