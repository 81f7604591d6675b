package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Studio24-sys/classifieds-api/internal/crypto"
	"github.com/Studio24-sys/classifieds-api/internal/models"
	"github.com/Studio24-sys/classifieds-api/internal/server/mailer"
	"github.com/Studio24-sys/classifieds-api/internal/server/storage"
	"github.com/Studio24-sys/classifieds-api/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory implementation of storage.Store for testing
type memStore struct {
	users   map[string]*models.User
	posts   map[string]*models.Post
	resets  map[string]*models.PasswordResetToken
	failErr error
	pingErr error
	mu      sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[string]*models.User),
		posts:  make(map[string]*models.Post),
		resets: make(map[string]*models.PasswordResetToken),
	}
}

func (m *memStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return storage.ErrUserAlreadyExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *memStore) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) UpdateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[user.ID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.Name = user.Name
	u.PasswordHash = user.PasswordHash
	u.UpdatedAt = user.UpdatedAt
	return nil
}

func (m *memStore) CreatePost(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	cp := *post
	cp.Author = nil
	m.posts[post.ID] = &cp
	return nil
}

func (m *memStore) withAuthor(p *models.Post) *models.Post {
	cp := *p
	if u, ok := m.users[p.AuthorID]; ok {
		cp.Author = &models.PostAuthor{ID: u.ID, Email: u.Email}
	}
	return &cp
}

func (m *memStore) GetPost(_ context.Context, postID string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	p, ok := m.posts[postID]
	if !ok {
		return nil, storage.ErrPostNotFound
	}
	return m.withAuthor(p), nil
}

func (m *memStore) ListPosts(_ context.Context, filter storage.PostFilter) ([]*models.Post, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, 0, m.failErr
	}

	var all []*models.Post
	for _, p := range m.posts {
		if filter.AuthorID == "" || p.AuthorID == filter.AuthorID {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	items := []*models.Post{}
	for i := filter.Offset; i < len(all) && i < filter.Offset+filter.Limit; i++ {
		items = append(items, m.withAuthor(all[i]))
	}
	return items, len(all), nil
}

func (m *memStore) UpdatePost(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[post.ID]; !ok {
		return storage.ErrPostNotFound
	}
	cp := *post
	cp.Author = nil
	m.posts[post.ID] = &cp
	return nil
}

func (m *memStore) DeletePost(_ context.Context, postID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[postID]; !ok {
		return storage.ErrPostNotFound
	}
	delete(m.posts, postID)
	return nil
}

func (m *memStore) CreateResetToken(_ context.Context, token *models.PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	cp := *token
	m.resets[token.Token] = &cp
	return nil
}

func (m *memStore) ConsumeResetToken(_ context.Context, token, passwordHash string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.resets[token]
	if !ok {
		return storage.ErrResetTokenNotFound
	}
	if t.Used {
		return storage.ErrResetTokenUsed
	}
	if t.Expired(now) {
		return storage.ErrResetTokenExpired
	}
	u, ok := m.users[t.UserID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	t.Used = true
	return nil
}

func (m *memStore) DeleteExpiredResetTokens(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, t := range m.resets {
		if t.ExpiresAt.Before(now) {
			delete(m.resets, k)
			n++
		}
	}
	return n, nil
}

func (m *memStore) Ping(context.Context) error {
	return m.pingErr
}

func (m *memStore) Close() error {
	return nil
}

// fakeMailer records sent messages
type fakeMailer struct {
	err  error
	sent []mailer.PasswordReset
	mu   sync.Mutex
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, msg mailer.PasswordReset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

// fakeIssuer issues predictable tokens
type fakeIssuer struct {
	err error
}

func (f fakeIssuer) Issue(userID string) (string, int64, error) {
	if f.err != nil {
		return "", 0, f.err
	}
	return "token-for-" + userID, 604800, nil
}

func testHasher() *crypto.PasswordHasher {
	return crypto.NewPasswordHasher(bcrypt.MinCost)
}

func seedUser(t *testing.T, s *memStore, email, password string) *models.User {
	t.Helper()
	hash, err := testHasher().Hash(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := &models.User{
		ID:           "user-" + email,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func seedPost(t *testing.T, s *memStore, id, authorID string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		ID:        id,
		Title:     "title " + id,
		Content:   "content " + id,
		AuthorID:  authorID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, s.CreatePost(context.Background(), post))
	return post
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var r io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authed(req *http.Request, userID string) *http.Request {
	return req.WithContext(WithUserID(req.Context(), userID))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}
