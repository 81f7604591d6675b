// Package server wires handlers, middleware and storage into the HTTP API.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Studio24-sys/classifieds-api/internal/server/handlers"
	"github.com/Studio24-sys/classifieds-api/internal/server/mailer"
	"github.com/Studio24-sys/classifieds-api/internal/server/middleware"
	"github.com/Studio24-sys/classifieds-api/internal/server/storage"
	"github.com/Studio24-sys/classifieds-api/internal/validation"
)

// Tokens выпускает и проверяет bearer токены
type Tokens interface {
	handlers.TokenIssuer
	middleware.TokenVerifier
}

// Deps зависимости HTTP API
type Deps struct {
	Logger    *slog.Logger
	Store     storage.Store
	Tokens    Tokens
	Hasher    handlers.PasswordHasher
	Mailer    mailer.Mailer
	Validator *validation.PostValidator
	Version   string
	ResetTTL  time.Duration
}

// NewRouter собирает все маршруты API
func NewRouter(d Deps) http.Handler {
	authHandler := handlers.NewAuthHandler(d.Logger, d.Store, d.Store, d.Hasher, d.Tokens, d.Mailer, d.ResetTTL)
	userHandler := handlers.NewUserHandler(d.Logger, d.Store, d.Store)
	postHandler := handlers.NewPostHandler(d.Logger, d.Store, d.Store, d.Validator)
	healthHandler := handlers.NewHealthHandler(d.Logger, d.Store, d.Version)

	requireAuth := middleware.AuthMiddleware(d.Logger, d.Tokens)
	protected := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", healthHandler.Health)

	// Публичные маршруты авторизации
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/request-reset", authHandler.RequestReset)
	mux.HandleFunc("POST /api/auth/reset-password", authHandler.ResetPassword)

	// Профиль
	mux.Handle("GET /api/users/me", protected(userHandler.Me))
	mux.Handle("PATCH /api/users/me", protected(userHandler.UpdateMe))
	mux.Handle("GET /api/users/me/posts", protected(userHandler.MyPosts))

	// Объявления: чтение публичное, изменение только с токеном
	mux.HandleFunc("GET /api/posts", postHandler.List)
	mux.HandleFunc("GET /api/posts/{id}", postHandler.Get)
	mux.Handle("POST /api/posts", protected(postHandler.Create))
	mux.Handle("PUT /api/posts/{id}", protected(postHandler.Update))
	mux.Handle("DELETE /api/posts/{id}", protected(postHandler.Delete))

	// Пути без метода менее специфичны, чем зарегистрированные выше,
	// поэтому ловят только чужие методы
	for path, allow := range map[string]string{
		"/api/health":              "GET, HEAD",
		"/api/auth/register":       "POST",
		"/api/auth/login":          "POST",
		"/api/auth/request-reset":  "POST",
		"/api/auth/reset-password": "POST",
		"/api/users/me":            "GET, HEAD, PATCH",
		"/api/users/me/posts":      "GET, HEAD",
		"/api/posts":               "GET, HEAD, POST",
		"/api/posts/{id}":          "GET, HEAD, PUT, DELETE",
	} {
		mux.Handle(path, handlers.MethodNotAllowed(allow))
	}

	mux.HandleFunc("/", handlers.NotFound)

	return middleware.Chain(mux,
		middleware.RequestIDMiddleware,
		middleware.LoggingWithSkip(d.Logger, []string{"/api/health"}),
		middleware.RecoveryMiddleware(d.Logger),
	)
}
