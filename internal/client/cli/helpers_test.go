package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Studio24-sys/classifieds-api/internal/client/auth"
	"github.com/Studio24-sys/classifieds-api/internal/client/storage"
	"github.com/Studio24-sys/classifieds-api/internal/models"
	"github.com/Studio24-sys/classifieds-api/pkg/api"
)

// fakeIO записывает вывод и отдает заранее заданные ответы на запросы
type fakeIO struct {
	out       bytes.Buffer
	inputs    []string
	passwords []string
}

func (f *fakeIO) Println(a ...any)               { fmt.Fprintln(&f.out, a...) }
func (f *fakeIO) Printf(format string, a ...any) { fmt.Fprintf(&f.out, format, a...) }
func (f *fakeIO) Write(p []byte) (int, error)    { return f.out.Write(p) }

func (f *fakeIO) ReadInput(prompt string) (string, error) {
	f.out.WriteString(prompt)
	if len(f.inputs) == 0 {
		return "", errors.New("EOF")
	}
	v := f.inputs[0]
	f.inputs = f.inputs[1:]
	return v, nil
}

func (f *fakeIO) ReadPassword(prompt string) (string, error) {
	f.out.WriteString(prompt)
	if len(f.passwords) == 0 {
		return "", errors.New("EOF")
	}
	v := f.passwords[0]
	f.passwords = f.passwords[1:]
	return v, nil
}

// fakeSession implements Session
type fakeSession struct {
	data      *storage.AuthData
	err       error
	regEmail  string
	regName   *string
	loginPass string
	loggedOut bool
}

func (f *fakeSession) Register(_ context.Context, email, password string, name *string) (*api.UserResponse, error) {
	f.regEmail, f.regName = email, name
	if f.err != nil {
		return nil, f.err
	}
	return &api.UserResponse{ID: "user-1", Email: email, Name: name}, nil
}

func (f *fakeSession) Login(_ context.Context, email, password string) (*storage.AuthData, error) {
	f.loginPass = password
	if f.err != nil {
		return nil, f.err
	}
	f.data = &storage.AuthData{Email: email, UserID: "user-1", Token: "tok", ExpiresAt: time.Now().Add(time.Hour).Unix()}
	return f.data, nil
}

func (f *fakeSession) Logout(context.Context) error {
	f.loggedOut = true
	f.data = nil
	return f.err
}

func (f *fakeSession) Session(context.Context) (*storage.AuthData, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.data == nil {
		return nil, auth.ErrNotAuthenticated
	}
	return f.data, nil
}

func (f *fakeSession) Token(ctx context.Context) (string, error) {
	data, err := f.Session(ctx)
	if err != nil {
		return "", err
	}
	if data.Expired(time.Now()) {
		return "", auth.ErrNotAuthenticated
	}
	return data.Token, nil
}

// fakeAPI implements API and records the last request
type fakeAPI struct {
	err        error
	posts      []*models.Post
	lastToken  string
	lastID     string
	lastReq    api.PostRequest
	lastName   *string
	lastPage   int
	lastLimit  int
	resetEmail string
	resetToken string
	resetPass  string
	updatedMe  bool
	deleted    bool
}

func (f *fakeAPI) RequestReset(_ context.Context, email string) error {
	f.resetEmail = email
	return f.err
}

func (f *fakeAPI) ResetPassword(_ context.Context, token, newPassword string) error {
	f.resetToken, f.resetPass = token, newPassword
	return f.err
}

func (f *fakeAPI) Me(_ context.Context, token string) (*api.UserResponse, error) {
	f.lastToken = token
	if f.err != nil {
		return nil, f.err
	}
	return &api.UserResponse{ID: "user-1", Email: "me@example.com"}, nil
}

func (f *fakeAPI) UpdateMe(_ context.Context, token string, name *string) (*api.UserResponse, error) {
	f.lastToken, f.lastName, f.updatedMe = token, name, true
	if f.err != nil {
		return nil, f.err
	}
	return &api.UserResponse{ID: "user-1", Email: "me@example.com", Name: name}, nil
}

func (f *fakeAPI) list(page, limit int) (*api.PostListResponse, error) {
	f.lastPage, f.lastLimit = page, limit
	if f.err != nil {
		return nil, f.err
	}
	return &api.PostListResponse{Items: f.posts, Page: page, Limit: limit, Total: len(f.posts), TotalPages: 1}, nil
}

func (f *fakeAPI) ListPosts(_ context.Context, page, limit int) (*api.PostListResponse, error) {
	return f.list(page, limit)
}

func (f *fakeAPI) MyPosts(_ context.Context, token string, page, limit int) (*api.PostListResponse, error) {
	f.lastToken = token
	return f.list(page, limit)
}

func (f *fakeAPI) GetPost(_ context.Context, id string) (*models.Post, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &models.Post{ID: id, Title: "Mesa", Content: "De madera"}, nil
}

func (f *fakeAPI) CreatePost(_ context.Context, token string, req api.PostRequest) (*models.Post, error) {
	f.lastToken, f.lastReq = token, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Post{ID: "p1", Title: *req.Title, Content: *req.Content}, nil
}

func (f *fakeAPI) UpdatePost(_ context.Context, token, id string, req api.PostRequest) (*models.Post, error) {
	f.lastToken, f.lastID, f.lastReq = token, id, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Post{ID: id, Title: "updated"}, nil
}

func (f *fakeAPI) DeletePost(_ context.Context, token, id string) error {
	f.lastToken, f.lastID, f.deleted = token, id, true
	return f.err
}

func loggedIn() *fakeSession {
	return &fakeSession{data: &storage.AuthData{
		Email:     "me@example.com",
		UserID:    "user-1",
		Token:     "tok",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}}
}

func newTestCli(t *testing.T, io *fakeIO, a *fakeAPI, s *fakeSession) *Cli {
	t.Helper()
	return New(io, a, s)
}
