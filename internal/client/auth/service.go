// Package auth manages the CLI session: register, login, logout and the saved token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Studio24-sys/classifieds-api/internal/client/storage"
	"github.com/Studio24-sys/classifieds-api/internal/validation"
	pkgapi "github.com/Studio24-sys/classifieds-api/pkg/api"
)

// ErrNotAuthenticated нет сохраненной сессии или срок токена истек
var ErrNotAuthenticated = errors.New("not authenticated")

// APIClient методы API, нужные сервису авторизации
type APIClient interface {
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.UserResponse, error)
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error)
	Me(ctx context.Context, token string) (*pkgapi.UserResponse, error)
}

// Service предоставляет функции авторизации
type Service struct {
	apiClient APIClient
	store     storage.AuthStorage
	now       func() time.Time
}

// NewService создает новый сервис авторизации
func NewService(apiClient APIClient, store storage.AuthStorage) *Service {
	return &Service{
		apiClient: apiClient,
		store:     store,
		now:       time.Now,
	}
}

// Register регистрирует нового пользователя. Сессия не сохраняется,
// для работы нужно выполнить Login
func (s *Service) Register(ctx context.Context, email, password string, name *string) (*pkgapi.UserResponse, error) {
	email = validation.NormalizeEmail(email)

	// Та же проверка, что и на сервере
	if err := validation.ValidateRegistration(email, password, name); err != nil {
		return nil, err
	}

	user, err := s.apiClient.Register(ctx, pkgapi.RegisterRequest{
		Email:    email,
		Password: password,
		Name:     validation.NormalizeName(name),
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return user, nil
}

// Login выполняет аутентификацию и сохраняет сессию локально
func (s *Service) Login(ctx context.Context, email, password string) (*storage.AuthData, error) {
	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, validation.ErrMissingFields
	}

	tok, err := s.apiClient.Login(ctx, pkgapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	// ID пользователя берем из профиля, токен для клиента непрозрачен
	me, err := s.apiClient.Me(ctx, tok.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	authData := &storage.AuthData{
		Email:     me.Email,
		UserID:    me.ID,
		Token:     tok.Token,
		ExpiresAt: s.now().Unix() + tok.ExpiresIn,
	}

	if err := s.store.SaveAuth(ctx, authData); err != nil {
		return nil, fmt.Errorf("failed to save auth data: %w", err)
	}

	return authData, nil
}

// Logout удаляет локальную сессию. Токены без состояния, серверу сообщать нечего
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.DeleteAuth(ctx); err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			slog.Debug("logout without saved session")
			return nil
		}
		return fmt.Errorf("failed to delete local auth data: %w", err)
	}
	return nil
}

// Session возвращает сохраненную сессию (возможно с истекшим токеном)
func (s *Service) Session(ctx context.Context) (*storage.AuthData, error) {
	authData, err := s.store.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to get auth data: %w", err)
	}
	return authData, nil
}

// Token возвращает действующий bearer токен или ErrNotAuthenticated
func (s *Service) Token(ctx context.Context) (string, error) {
	authData, err := s.Session(ctx)
	if err != nil {
		return "", err
	}
	if authData.Expired(s.now()) {
		return "", ErrNotAuthenticated
	}
	return authData.Token, nil
}

// IsAuthenticated проверяет наличие действующей сессии
func (s *Service) IsAuthenticated(ctx context.Context) (bool, error) {
	return s.store.IsAuthenticated(ctx, s.now())
}
