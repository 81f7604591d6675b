package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Studio24-sys/classifieds-api/internal/models"
	"github.com/Studio24-sys/classifieds-api/pkg/api"
)

// Error ответ сервера с кодом ошибки
type Error struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Code)
}

// IsCode сообщает, является ли err ошибкой сервера с кодом code
func IsCode(err error, code string) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовок Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.UserResponse, error) {
	var resp api.UserResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/register", "", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// RequestReset запрашивает письмо со ссылкой сброса пароля
func (c *Client) RequestReset(ctx context.Context, email string) error {
	req := api.RequestResetRequest{Email: email}
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/request-reset", "", req, nil); err != nil {
		return fmt.Errorf("request reset failed: %w", err)
	}
	return nil
}

// ResetPassword меняет пароль по токену из письма
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	req := api.ResetPasswordRequest{Token: token, NewPassword: newPassword}
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/reset-password", "", req, nil); err != nil {
		return fmt.Errorf("reset password failed: %w", err)
	}
	return nil
}

// Me возвращает профиль владельца токена
func (c *Client) Me(ctx context.Context, token string) (*api.UserResponse, error) {
	var resp api.UserResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/users/me", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	return &resp, nil
}

// UpdateMe меняет отображаемое имя. nil очищает имя
func (c *Client) UpdateMe(ctx context.Context, token string, name *string) (*api.UserResponse, error) {
	var resp api.UserResponse
	req := api.UpdateProfileRequest{Name: name}
	if err := c.doRequest(ctx, http.MethodPatch, "/api/users/me", token, req, &resp); err != nil {
		return nil, fmt.Errorf("update profile failed: %w", err)
	}
	return &resp, nil
}

// ListPosts возвращает страницу публичной ленты
func (c *Client) ListPosts(ctx context.Context, page, limit int) (*api.PostListResponse, error) {
	var resp api.PostListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/posts"+pageQuery(page, limit), "", nil, &resp); err != nil {
		return nil, fmt.Errorf("list posts failed: %w", err)
	}
	return &resp, nil
}

// MyPosts возвращает страницу объявлений владельца токена
func (c *Client) MyPosts(ctx context.Context, token string, page, limit int) (*api.PostListResponse, error) {
	var resp api.PostListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/users/me/posts"+pageQuery(page, limit), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list my posts failed: %w", err)
	}
	return &resp, nil
}

// GetPost возвращает объявление по ID
func (c *Client) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var resp models.Post
	if err := c.doRequest(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(id), "", nil, &resp); err != nil {
		return nil, fmt.Errorf("get post failed: %w", err)
	}
	return &resp, nil
}

// CreatePost публикует объявление
func (c *Client) CreatePost(ctx context.Context, token string, req api.PostRequest) (*models.Post, error) {
	var resp models.Post
	if err := c.doRequest(ctx, http.MethodPost, "/api/posts", token, req, &resp); err != nil {
		return nil, fmt.Errorf("create post failed: %w", err)
	}
	return &resp, nil
}

// UpdatePost частично изменяет объявление
func (c *Client) UpdatePost(ctx context.Context, token, id string, req api.PostRequest) (*models.Post, error) {
	var resp models.Post
	if err := c.doRequest(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(id), token, req, &resp); err != nil {
		return nil, fmt.Errorf("update post failed: %w", err)
	}
	return &resp, nil
}

// DeletePost удаляет объявление
func (c *Client) DeletePost(ctx context.Context, token, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(id), token, nil, nil); err != nil {
		return fmt.Errorf("delete post failed: %w", err)
	}
	return nil
}

func pageQuery(page, limit int) string {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path, token string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return &Error{StatusCode: resp.StatusCode, Code: errResp.Error, Message: errResp.Message}
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
