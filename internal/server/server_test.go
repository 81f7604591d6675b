package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Studio24-sys/classifieds-api/internal/crypto"
	"github.com/Studio24-sys/classifieds-api/internal/models"
	"github.com/Studio24-sys/classifieds-api/internal/server/jwt"
	"github.com/Studio24-sys/classifieds-api/internal/server/mailer"
	"github.com/Studio24-sys/classifieds-api/internal/server/storage/sqlite"
	"github.com/Studio24-sys/classifieds-api/internal/validation"
	"github.com/Studio24-sys/classifieds-api/pkg/api"
)

type captureMailer struct {
	sent []mailer.PasswordReset
	mu   sync.Mutex
}

func (m *captureMailer) SendPasswordReset(_ context.Context, msg mailer.PasswordReset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) last(t *testing.T) mailer.PasswordReset {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no reset mail sent")
	return m.sent[len(m.sent)-1]
}

type testEnv struct {
	server *httptest.Server
	mail   *captureMailer
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(t.Context(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mail := &captureMailer{}

	router := NewRouter(Deps{
		Logger:    logger,
		Store:     store,
		Tokens:    jwt.NewService("integration-test-secret", time.Hour),
		Hasher:    crypto.NewPasswordHasher(bcrypt.MinCost),
		Mailer:    mail,
		Validator: validation.NewPostValidator("PY"),
		Version:   "test",
		ResetTTL:  30 * time.Minute,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, mail: mail}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(t.Context(), method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (e *testEnv) register(t *testing.T, email, password string) api.UserResponse {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{Email: email, Password: password})
	require.Equal(t, http.StatusCreated, status, string(body))

	var user api.UserResponse
	require.NoError(t, json.Unmarshal(body, &user))
	return user
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, status, string(body))

	var tok api.TokenResponse
	require.NoError(t, json.Unmarshal(body, &tok))
	require.NotEmpty(t, tok.Token)
	return tok.Token
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp), string(body))
	return resp.Error
}

func TestRouter_PostLifecycle(t *testing.T) {
	env := setupTestServer(t)

	alice := env.register(t, "Alice@Example.com", "password1")
	assert.Equal(t, "alice@example.com", alice.Email)
	aliceToken := env.login(t, "alice@example.com", "password1")

	env.register(t, "bob@example.com", "password2")
	bobToken := env.login(t, "bob@example.com", "password2")

	// Создание без токена
	status, body := env.do(t, http.MethodPost, "/api/posts", "", map[string]any{"title": "x", "content": "y"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, api.CodeUnauthenticated, errorCode(t, body))

	status, body = env.do(t, http.MethodPost, "/api/posts", aliceToken, map[string]any{
		"title":    "  Bicicleta  ",
		"content":  "Casi nueva",
		"location": "Asunción",
		"price":    "150000.9",
		"contact":  "(0981) 123-456",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var created models.Post
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "Bicicleta", created.Title)
	assert.Equal(t, alice.ID, created.AuthorID)
	require.NotNil(t, created.Price)
	assert.Equal(t, int64(150000), *created.Price)

	// Публичный список содержит автора
	status, body = env.do(t, http.MethodGet, "/api/posts?page=1&limit=10", "", nil)
	require.Equal(t, http.StatusOK, status)
	var list api.PostListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, 1, list.TotalPages)
	require.Len(t, list.Items, 1)
	require.NotNil(t, list.Items[0].Author)
	assert.Equal(t, "alice@example.com", list.Items[0].Author.Email)

	status, _ = env.do(t, http.MethodGet, "/api/posts/"+created.ID, "", nil)
	assert.Equal(t, http.StatusOK, status)

	// Чужой пользователь не может менять и удалять
	status, body = env.do(t, http.MethodPut, "/api/posts/"+created.ID, bobToken, map[string]any{"title": "mine"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, api.CodeForbidden, errorCode(t, body))

	status, _ = env.do(t, http.MethodDelete, "/api/posts/"+created.ID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = env.do(t, http.MethodPut, "/api/posts/"+created.ID, aliceToken, map[string]any{"title": "Bicicleta roja", "price": nil})
	require.Equal(t, http.StatusOK, status, string(body))
	var updated models.Post
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "Bicicleta roja", updated.Title)
	assert.Nil(t, updated.Price)
	assert.Equal(t, "Casi nueva", updated.Content)

	status, body = env.do(t, http.MethodGet, "/api/users/me/posts", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 1, list.Total)

	status, body = env.do(t, http.MethodDelete, "/api/posts/"+created.ID, aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	status, body = env.do(t, http.MethodGet, "/api/posts/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, api.CodeNotFound, errorCode(t, body))
}

func TestRouter_Profile(t *testing.T) {
	env := setupTestServer(t)

	env.register(t, "carol@example.com", "password3")
	token := env.login(t, "carol@example.com", "password3")

	status, body := env.do(t, http.MethodPatch, "/api/users/me", token, map[string]any{"name": "  Carol  "})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = env.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	var me api.UserResponse
	require.NoError(t, json.Unmarshal(body, &me))
	require.NotNil(t, me.Name)
	assert.Equal(t, "Carol", *me.Name)
	assert.NotContains(t, string(body), "password")

	status, body = env.do(t, http.MethodGet, "/api/users/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, api.CodeUnauthenticated, errorCode(t, body))
}

func TestRouter_PasswordReset(t *testing.T) {
	env := setupTestServer(t)

	env.register(t, "dave@example.com", "oldpassword1")

	// Неизвестный email: тот же ответ, письмо не отправляется
	status, body := env.do(t, http.MethodPost, "/api/auth/request-reset", "", api.RequestResetRequest{Email: "nobody@example.com"})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Empty(t, env.mail.sent)

	status, _ = env.do(t, http.MethodPost, "/api/auth/request-reset", "", api.RequestResetRequest{Email: "dave@example.com"})
	require.Equal(t, http.StatusOK, status)
	msg := env.mail.last(t)
	assert.Equal(t, "dave@example.com", msg.To)

	status, body = env.do(t, http.MethodPost, "/api/auth/reset-password", "", api.ResetPasswordRequest{Token: msg.Token, NewPassword: "short"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, api.CodeValidationError, errorCode(t, body))

	status, body = env.do(t, http.MethodPost, "/api/auth/reset-password", "", api.ResetPasswordRequest{Token: msg.Token, NewPassword: "newpassword1"})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = env.do(t, http.MethodPost, "/api/auth/reset-password", "", api.ResetPasswordRequest{Token: msg.Token, NewPassword: "newpassword2"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, api.CodeTokenUsed, errorCode(t, body))

	status, body = env.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Email: "dave@example.com", Password: "oldpassword1"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, api.CodeInvalidCredentials, errorCode(t, body))

	env.login(t, "dave@example.com", "newpassword1")
}

func TestRouter_HealthAndNotFound(t *testing.T) {
	env := setupTestServer(t)

	status, body := env.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	var health api.HealthResponse
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "ok", health.Status)

	status, body = env.do(t, http.MethodGet, "/api/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, api.CodeNotFound, errorCode(t, body))
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	env := setupTestServer(t)

	tests := []struct {
		method string
		path   string
		allow  string
	}{
		{method: http.MethodPatch, path: "/api/posts/8f1c", allow: "GET, HEAD, PUT, DELETE"},
		{method: http.MethodDelete, path: "/api/posts", allow: "GET, HEAD, POST"},
		{method: http.MethodGet, path: "/api/auth/login", allow: "POST"},
		{method: http.MethodPost, path: "/api/users/me", allow: "GET, HEAD, PATCH"},
		{method: http.MethodPut, path: "/api/health", allow: "GET, HEAD"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequestWithContext(t.Context(), tt.method, env.server.URL+tt.path, nil)
			require.NoError(t, err)

			resp, err := env.server.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
			assert.Equal(t, tt.allow, resp.Header.Get("Allow"))
			assert.Equal(t, api.CodeMethodNotAllowed, errorCode(t, body))
		})
	}

	// неизвестный путь остается 404
	status, body := env.do(t, http.MethodPatch, "/api/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, api.CodeNotFound, errorCode(t, body))
}

func TestRouter_RequestIDHeader(t *testing.T) {
	env := setupTestServer(t)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, env.server.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")

	resp, err := env.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

type countingResets struct {
	err   error
	calls int
	mu    sync.Mutex
}

func (c *countingResets) CreateResetToken(context.Context, *models.PasswordResetToken) error {
	return nil
}

func (c *countingResets) ConsumeResetToken(context.Context, string, string, time.Time) error {
	return nil
}

func (c *countingResets) DeleteExpiredResetTokens(context.Context, time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return 1, c.err
}

func (c *countingResets) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestRunResetTokenCleanup(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("runs until cancelled", func(t *testing.T) {
		resets := &countingResets{}
		ctx, cancel := context.WithCancel(t.Context())

		done := make(chan struct{})
		go func() {
			defer close(done)
			RunResetTokenCleanup(ctx, logger, resets, 10*time.Millisecond)
		}()

		assert.Eventually(t, func() bool { return resets.count() >= 3 }, time.Second, 5*time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("cleanup loop did not stop")
		}
	})

	t.Run("errors do not stop the loop", func(t *testing.T) {
		resets := &countingResets{err: errors.New("db down")}
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		go RunResetTokenCleanup(ctx, logger, resets, 10*time.Millisecond)

		assert.Eventually(t, func() bool { return resets.count() >= 2 }, time.Second, 5*time.Millisecond)
	})

	t.Run("disabled with zero interval", func(t *testing.T) {
		resets := &countingResets{}
		RunResetTokenCleanup(t.Context(), logger, resets, 0)
		assert.Equal(t, 0, resets.count())
	})
}

func TestServer_ServeAndShutdown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(logger, handler, &countingResets{}, Options{CleanupInterval: time.Hour, ShutdownTimeout: time.Second})

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusNoContent
	}, time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
