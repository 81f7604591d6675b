// Package cli implements the commands of the classifieds command line client.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Studio24-sys/classifieds-api/internal/client/auth"
	"github.com/Studio24-sys/classifieds-api/internal/client/iocli"
	"github.com/Studio24-sys/classifieds-api/internal/client/storage"
	"github.com/Studio24-sys/classifieds-api/internal/models"
	"github.com/Studio24-sys/classifieds-api/pkg/api"
)

// API методы сервера, которые вызывают команды
type API interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Me(ctx context.Context, token string) (*api.UserResponse, error)
	UpdateMe(ctx context.Context, token string, name *string) (*api.UserResponse, error)
	ListPosts(ctx context.Context, page, limit int) (*api.PostListResponse, error)
	MyPosts(ctx context.Context, token string, page, limit int) (*api.PostListResponse, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	CreatePost(ctx context.Context, token string, req api.PostRequest) (*models.Post, error)
	UpdatePost(ctx context.Context, token, id string, req api.PostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, token, id string) error
}

// Session локальная сессия пользователя
type Session interface {
	Register(ctx context.Context, email, password string, name *string) (*api.UserResponse, error)
	Login(ctx context.Context, email, password string) (*storage.AuthData, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*storage.AuthData, error)
	Token(ctx context.Context) (string, error)
}

// Cli выполняет команды клиента
type Cli struct {
	io      iocli.IO
	api     API
	session Session
	now     func() time.Time
}

// New создает Cli
func New(stdio iocli.IO, apiClient API, session Session) *Cli {
	return &Cli{
		io:      stdio,
		api:     apiClient,
		session: session,
		now:     time.Now,
	}
}

// token возвращает действующий токен или понятную ошибку для пользователя
func (c *Cli) token(ctx context.Context) (string, error) {
	token, err := c.session.Token(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			return "", fmt.Errorf("not authenticated. Please run 'classifieds login' first")
		}
		return "", err
	}
	return token, nil
}

// readRequired читает непустую строку, если value пустое
func (c *Cli) readRequired(value, prompt string) (string, error) {
	if strings.TrimSpace(value) != "" {
		return value, nil
	}
	input, err := c.io.ReadInput(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("%s cannot be empty", strings.TrimSuffix(strings.TrimSpace(prompt), ":"))
	}
	return input, nil
}

// readNewPassword читает новый пароль с подтверждением
func (c *Cli) readNewPassword(prompt string) (string, error) {
	password, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if password != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}

func (c *Cli) printPost(p *models.Post) {
	c.io.Printf("%s\n", p.Title)
	c.io.Printf("   ID:       %s\n", p.ID)
	if p.Author != nil {
		c.io.Printf("   Author:   %s\n", p.Author.Email)
	}
	if p.Price != nil {
		c.io.Printf("   Price:    %d\n", *p.Price)
	}
	if p.Location != nil {
		c.io.Printf("   Location: %s\n", *p.Location)
	}
	if p.Contact != nil {
		c.io.Printf("   Contact:  %s\n", *p.Contact)
	}
	c.io.Printf("   Created:  %s\n", p.CreatedAt.Local().Format(time.DateTime))
}

func (c *Cli) printPostList(list *api.PostListResponse) {
	if len(list.Items) == 0 {
		c.io.Println("No posts found.")
		return
	}

	c.io.Printf("Page %d of %d (%d post(s) total)\n", list.Page, list.TotalPages, list.Total)
	c.io.Println()
	for i, p := range list.Items {
		c.io.Printf("%d. ", (list.Page-1)*list.Limit+i+1)
		c.printPost(p)
		c.io.Println()
	}
}

// optionalString кодирует значение флага: пустая строка означает null (сброс поля)
func optionalString(v string) json.RawMessage {
	v = strings.TrimSpace(v)
	if v == "" {
		return json.RawMessage("null")
	}
	data, _ := json.Marshal(v)
	return data
}

// optionalPrice передает число как число, остальное как строку (сервер проверит сам)
func optionalPrice(v string) json.RawMessage {
	v = strings.TrimSpace(v)
	if v == "" {
		return json.RawMessage("null")
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return json.RawMessage(v)
	}
	data, _ := json.Marshal(v)
	return data
}

// PrintUsage печатает справку
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, `Classifieds Client

Usage:
  classifieds [OPTIONS] COMMAND [ARGS]

Options:
  -version              Show version information
  -server URL           Server URL (default: http://localhost:8080)
  -db PATH              Path to local session database (default: classifieds-client.db)

Commands:
  register              Register new user
  login                 Login to server
  logout                Delete local session
  status                Show authentication status
  me [-name NAME]       Show profile, or change display name ("" clears it)
  posts [-page N] [-limit N]
                        List public posts, newest first
  post <id>             Show one post
  my-posts [-page N] [-limit N]
                        List your posts
  create-post -title T -content C [-location L] [-price P] [-contact C]
                        Publish a post
  update-post <id> [-title T] [-content C] [-location L] [-price P] [-contact C]
                        Change a post (empty value clears optional fields)
  delete-post <id>      Delete a post
  request-reset [-email E]
                        Send a password reset link
  reset-password [-token T]
                        Set a new password using the token from the email

Examples:
  classifieds register
  classifieds login
  classifieds posts -page 2
  classifieds create-post -title "Bicicleta" -content "Casi nueva" -price 150000
  classifieds -server https://example.com my-posts
`)
}
