package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Studio24-sys/classifieds-api/internal/models"
	"github.com/Studio24-sys/classifieds-api/internal/server/storage"
	"github.com/Studio24-sys/classifieds-api/internal/validation"
	"github.com/Studio24-sys/classifieds-api/pkg/api"
)

// PostHandler обрабатывает запросы объявлений
type PostHandler struct {
	logger    *slog.Logger
	posts     storage.PostStorage
	users     storage.UserStorage
	validator *validation.PostValidator
	now       func() time.Time
}

// NewPostHandler создает handler объявлений
func NewPostHandler(
	logger *slog.Logger,
	posts storage.PostStorage,
	users storage.UserStorage,
	validator *validation.PostValidator,
) *PostHandler {
	return &PostHandler{
		logger:    logger,
		posts:     posts,
		users:     users,
		validator: validator,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List обрабатывает GET /api/posts
// Публичный список, новые первыми
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	listPosts(h.logger, h.posts, w, r, "")
}

func listPosts(logger *slog.Logger, posts storage.PostStorage, w http.ResponseWriter, r *http.Request, authorID string) {
	p := parsePagination(r)

	items, total, err := posts.ListPosts(r.Context(), storage.PostFilter{
		AuthorID: authorID,
		Offset:   p.Offset(),
		Limit:    p.Limit,
	})
	if err != nil {
		sendInternalError(logger, w, r, "failed to list posts", err)
		return
	}
	if items == nil {
		items = []*models.Post{}
	}

	sendJSON(logger, w, api.PostListResponse{
		Items:      items,
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages(total, p.Limit),
	}, http.StatusOK)
}

// Get обрабатывает GET /api/posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}

	sendJSON(h.logger, w, post, http.StatusOK)
}

// Create обрабатывает POST /api/posts
// Автор объявления всегда текущий пользователь
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		sendError(h.logger, w, api.CodeUnauthenticated, "", http.StatusUnauthorized)
		return
	}

	var req api.PostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode post request", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInvalidBody, "invalid request body", http.StatusBadRequest)
		return
	}

	post, err := h.validator.NewPost(req)
	if err != nil {
		h.sendValidationError(w, err)
		return
	}

	// Автор мог быть удален после выдачи токена
	author, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			sendError(h.logger, w, api.CodeUnauthenticated, "", http.StatusUnauthorized)
			return
		}
		sendInternalError(h.logger, w, r, "failed to get author", err)
		return
	}

	now := h.now()
	post.ID = uuid.New().String()
	post.AuthorID = author.ID
	post.CreatedAt = now
	post.UpdatedAt = now

	if err := h.posts.CreatePost(ctx, post); err != nil {
		sendInternalError(h.logger, w, r, "failed to create post", err)
		return
	}
	post.Author = &models.PostAuthor{ID: author.ID, Email: author.Email}

	h.logger.InfoContext(ctx, "post created",
		slog.String("post_id", post.ID),
		slog.String("user_id", userID))

	sendJSON(h.logger, w, post, http.StatusCreated)
}

// Update обрабатывает PUT /api/posts/{id}
// Частичное обновление, только владельцем
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	post, ok := h.loadOwnedPost(w, r)
	if !ok {
		return
	}

	var req api.PostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode post request", slog.Any("error", err))
		sendError(h.logger, w, api.CodeInvalidBody, "invalid request body", http.StatusBadRequest)
		return
	}

	patch, err := h.validator.Patch(req)
	if err != nil {
		h.sendValidationError(w, err)
		return
	}

	patch.Apply(post)
	post.UpdatedAt = h.now()

	if err := h.posts.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			sendError(h.logger, w, api.CodeNotFound, "post not found", http.StatusNotFound)
			return
		}
		sendInternalError(h.logger, w, r, "failed to update post", err)
		return
	}

	h.logger.InfoContext(ctx, "post updated", slog.String("post_id", post.ID))

	sendJSON(h.logger, w, post, http.StatusOK)
}

// Delete обрабатывает DELETE /api/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	post, ok := h.loadOwnedPost(w, r)
	if !ok {
		return
	}

	if err := h.posts.DeletePost(ctx, post.ID); err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			sendError(h.logger, w, api.CodeNotFound, "post not found", http.StatusNotFound)
			return
		}
		sendInternalError(h.logger, w, r, "failed to delete post", err)
		return
	}

	h.logger.InfoContext(ctx, "post deleted", slog.String("post_id", post.ID))

	sendJSON(h.logger, w, api.OKResponse{OK: true}, http.StatusOK)
}

// loadPost читает объявление по {id}; при ошибке ответ уже отправлен
func (h *PostHandler) loadPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	// Извлекаем id из path parameter (Go 1.22+)
	postID := r.PathValue("id")
	if postID == "" {
		sendError(h.logger, w, api.CodeNotFound, "post not found", http.StatusNotFound)
		return nil, false
	}

	post, err := h.posts.GetPost(r.Context(), postID)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			sendError(h.logger, w, api.CodeNotFound, "post not found", http.StatusNotFound)
			return nil, false
		}
		sendInternalError(h.logger, w, r, "failed to get post", err)
		return nil, false
	}

	return post, true
}

// loadOwnedPost как loadPost, но дополнительно проверяет владельца.
// 404 проверяется раньше 403
func (h *PostHandler) loadOwnedPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		sendError(h.logger, w, api.CodeUnauthenticated, "", http.StatusUnauthorized)
		return nil, false
	}

	post, ok := h.loadPost(w, r)
	if !ok {
		return nil, false
	}

	if post.AuthorID != userID {
		h.logger.WarnContext(r.Context(), "post ownership mismatch",
			slog.String("post_id", post.ID),
			slog.String("user_id", userID))
		sendError(h.logger, w, api.CodeForbidden, "not the owner of this post", http.StatusForbidden)
		return nil, false
	}

	return post, true
}

func (h *PostHandler) sendValidationError(w http.ResponseWriter, err error) {
	if errors.Is(err, validation.ErrMissingFields) {
		sendError(h.logger, w, api.CodeMissingFields, "title and content are required", http.StatusBadRequest)
		return
	}
	sendError(h.logger, w, api.CodeValidationError, err.Error(), http.StatusBadRequest)
}
