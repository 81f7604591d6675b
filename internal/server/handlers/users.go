package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Studio24-sys/classifieds-api/internal/server/storage"
	"github.com/Studio24-sys/classifieds-api/internal/validation"
	"github.com/Studio24-sys/classifieds-api/pkg/api"
)

// UserHandler обрабатывает запросы профиля текущего пользователя
type UserHandler struct {
	logger *slog.Logger
	users  storage.UserStorage
	posts  storage.PostStorage
	now    func() time.Time
}

// NewUserHandler создает handler профиля
func NewUserHandler(logger *slog.Logger, users storage.UserStorage, posts storage.PostStorage) *UserHandler {
	return &UserHandler{
		logger: logger,
		users:  users,
		posts:  posts,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Me обрабатывает GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		sendError(h.logger, w, api.CodeUnauthenticated, "", http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// токен валиден, но аккаунта уже нет
			sendError(h.logger, w, api.CodeNotFound, "user not found", http.StatusNotFound)
			return
		}
		sendInternalError(h.logger, w, r, "failed to get user", err)
		return
	}

	sendJSON(h.logger, w, userResponse(user), http.StatusOK)
}

// UpdateMe обрабатывает PATCH /api/users/me
// Меняет отображаемое имя; пустое имя или null его удаляет
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		sendError(h.logger, w, api.CodeUnauthenticated, "", http.StatusUnauthorized)
		return
	}

	var req api.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode profile request", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInvalidBody, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateName(req.Name); err != nil {
		sendError(h.logger, w, api.CodeValidationError, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			sendError(h.logger, w, api.CodeNotFound, "user not found", http.StatusNotFound)
			return
		}
		sendInternalError(h.logger, w, r, "failed to get user", err)
		return
	}

	user.Name = validation.NormalizeName(req.Name)
	user.UpdatedAt = h.now()

	if err := h.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			sendError(h.logger, w, api.CodeNotFound, "user not found", http.StatusNotFound)
			return
		}
		sendInternalError(h.logger, w, r, "failed to update user", err)
		return
	}

	h.logger.InfoContext(ctx, "profile updated", slog.String("user_id", userID))

	sendJSON(h.logger, w, userResponse(user), http.StatusOK)
}

// MyPosts обрабатывает GET /api/users/me/posts
// Объявления текущего пользователя, с той же пагинацией что и общий список
func (h *UserHandler) MyPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		sendError(h.logger, w, api.CodeUnauthenticated, "", http.StatusUnauthorized)
		return
	}

	listPosts(h.logger, h.posts, w, r, userID)
}
