package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Studio24-sys/classifieds-api/internal/crypto"
	"github.com/Studio24-sys/classifieds-api/internal/models"
	"github.com/Studio24-sys/classifieds-api/internal/server/mailer"
	"github.com/Studio24-sys/classifieds-api/internal/server/storage"
	"github.com/Studio24-sys/classifieds-api/internal/validation"
	"github.com/Studio24-sys/classifieds-api/pkg/api"
)

// DefaultResetTokenTTL время жизни токена сброса пароля
const DefaultResetTokenTTL = 30 * time.Minute

// TokenIssuer выпускает bearer токены
type TokenIssuer interface {
	Issue(userID string) (string, int64, error)
}

// PasswordHasher хеширует и сверяет пароли
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
	CompareDummy(password string)
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger   *slog.Logger
	users    storage.UserStorage
	resets   storage.ResetTokenStorage
	hasher   PasswordHasher
	tokens   TokenIssuer
	mailer   mailer.Mailer
	now      func() time.Time
	resetTTL time.Duration
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(
	logger *slog.Logger,
	users storage.UserStorage,
	resets storage.ResetTokenStorage,
	hasher PasswordHasher,
	tokens TokenIssuer,
	m mailer.Mailer,
	resetTTL time.Duration,
) *AuthHandler {
	if resetTTL <= 0 {
		resetTTL = DefaultResetTokenTTL
	}
	return &AuthHandler{
		logger:   logger,
		users:    users,
		resets:   resets,
		hasher:   hasher,
		tokens:   tokens,
		mailer:   m,
		now:      func() time.Time { return time.Now().UTC() },
		resetTTL: resetTTL,
	}
}

// Register обрабатывает POST /api/auth/register
// Регистрация нового пользователя
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInvalidBody, "invalid request body", http.StatusBadRequest)
		return
	}

	email := validation.NormalizeEmail(req.Email)
	if err := validation.ValidateRegistration(email, req.Password, req.Name); err != nil {
		if errors.Is(err, validation.ErrMissingFields) {
			sendError(h.logger, w, api.CodeMissingFields, "email and password are required", http.StatusBadRequest)
			return
		}
		sendError(h.logger, w, api.CodeValidationError, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		sendInternalError(h.logger, w, r, "failed to hash password", err)
		return
	}

	now := h.now()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         validation.NormalizeName(req.Name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Уникальность email гарантирует индекс в БД
	if err := h.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "email already registered")
			sendError(h.logger, w, api.CodeEmailTaken, "email already registered", http.StatusConflict)
			return
		}
		sendInternalError(h.logger, w, r, "failed to create user", err)
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully", slog.String("user_id", user.ID))

	sendJSON(h.logger, w, userResponse(user), http.StatusCreated)
}

// Login обрабатывает POST /api/auth/login
// Аутентификация пользователя
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInvalidBody, "invalid request body", http.StatusBadRequest)
		return
	}

	email := validation.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		sendError(h.logger, w, api.CodeMissingFields, "email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Сравнение с фиктивным хешем выравнивает время ответа
			h.hasher.CompareDummy(req.Password)
			h.logger.WarnContext(ctx, "login failed")
			sendError(h.logger, w, api.CodeInvalidCredentials, "invalid credentials", http.StatusUnauthorized)
			return
		}
		sendInternalError(h.logger, w, r, "failed to get user", err)
		return
	}

	if err := h.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, crypto.ErrPasswordMismatch) {
			h.logger.ErrorContext(ctx, "failed to compare password", slog.Any("error", err))
		}
		h.logger.WarnContext(ctx, "login failed", slog.String("user_id", user.ID))
		sendError(h.logger, w, api.CodeInvalidCredentials, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, expiresIn, err := h.tokens.Issue(user.ID)
	if err != nil {
		sendInternalError(h.logger, w, r, "failed to issue token", err)
		return
	}

	h.logger.InfoContext(ctx, "user logged in successfully", slog.String("user_id", user.ID))

	sendJSON(h.logger, w, api.TokenResponse{Token: token, ExpiresIn: expiresIn}, http.StatusOK)
}

// RequestReset обрабатывает POST /api/auth/request-reset
// Всегда отвечает {"ok":true}, чтобы не раскрывать наличие аккаунта
func (h *AuthHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RequestResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode reset request", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInvalidBody, "invalid request body", http.StatusBadRequest)
		return
	}

	email := validation.NormalizeEmail(req.Email)
	if email == "" {
		sendError(h.logger, w, api.CodeMissingFields, "email is required", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		h.logger.InfoContext(ctx, "password reset requested for unknown email")
		sendJSON(h.logger, w, api.OKResponse{OK: true}, http.StatusOK)
		return
	case err != nil:
		sendInternalError(h.logger, w, r, "failed to get user", err)
		return
	}

	token, err := crypto.GenerateToken()
	if err != nil {
		sendInternalError(h.logger, w, r, "failed to generate reset token", err)
		return
	}

	now := h.now()
	reset := &models.PasswordResetToken{
		ID:        uuid.New().String(),
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: now.Add(h.resetTTL),
		CreatedAt: now,
	}

	if err := h.resets.CreateResetToken(ctx, reset); err != nil {
		sendInternalError(h.logger, w, r, "failed to save reset token", err)
		return
	}

	// Ошибка отправки не должна быть видна клиенту
	if err := h.mailer.SendPasswordReset(ctx, mailer.PasswordReset{
		To:        user.Email,
		Token:     token,
		ExpiresAt: reset.ExpiresAt,
	}); err != nil {
		h.logger.ErrorContext(ctx, "failed to send reset email",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "password reset token issued", slog.String("user_id", user.ID))

	sendJSON(h.logger, w, api.OKResponse{OK: true}, http.StatusOK)
}

// ResetPassword обрабатывает POST /api/auth/reset-password
// Смена пароля по одноразовому токену
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode reset password request", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInvalidBody, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Token == "" || req.NewPassword == "" {
		sendError(h.logger, w, api.CodeMissingFields, "token and newPassword are required", http.StatusBadRequest)
		return
	}

	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		sendError(h.logger, w, api.CodeValidationError, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := h.hasher.Hash(req.NewPassword)
	if err != nil {
		sendInternalError(h.logger, w, r, "failed to hash password", err)
		return
	}

	err = h.resets.ConsumeResetToken(ctx, req.Token, hash, h.now())
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrResetTokenNotFound), errors.Is(err, storage.ErrUserNotFound):
		sendError(h.logger, w, api.CodeBadToken, "invalid reset token", http.StatusBadRequest)
		return
	case errors.Is(err, storage.ErrResetTokenUsed):
		sendError(h.logger, w, api.CodeTokenUsed, "reset token already used", http.StatusBadRequest)
		return
	case errors.Is(err, storage.ErrResetTokenExpired):
		sendError(h.logger, w, api.CodeTokenExpired, "reset token expired", http.StatusBadRequest)
		return
	default:
		sendInternalError(h.logger, w, r, "failed to reset password", err)
		return
	}

	h.logger.InfoContext(ctx, "password reset completed")

	sendJSON(h.logger, w, api.OKResponse{OK: true}, http.StatusOK)
}

func userResponse(user *models.User) api.UserResponse {
	return api.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}
}
