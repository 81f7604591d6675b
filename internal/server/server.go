package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Studio24-sys/classifieds-api/internal/server/storage"
)

// Server HTTP сервер API с фоновой очисткой токенов сброса
type Server struct {
	logger          *slog.Logger
	httpServer      *http.Server
	resets          storage.ResetTokenStorage
	cleanupInterval time.Duration
	shutdownTimeout time.Duration
}

// Options параметры Server
type Options struct {
	Addr            string
	CleanupInterval time.Duration
	ShutdownTimeout time.Duration
}

// New создает сервер
func New(logger *slog.Logger, handler http.Handler, resets storage.ResetTokenStorage, opts Options) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		logger: logger,
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
		resets:          resets,
		cleanupInterval: opts.CleanupInterval,
		shutdownTimeout: opts.ShutdownTimeout,
	}
}

// Run слушает Addr до отмены ctx, затем корректно останавливается
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve обслуживает ln до отмены ctx
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()

	cleanupDone := make(chan struct{})
	go func() {
		defer close(cleanupDone)
		RunResetTokenCleanup(cleanupCtx, s.logger, s.resets, s.cleanupInterval)
	}()

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("server started", slog.String("addr", ln.Addr().String()))
		serveErr <- s.httpServer.Serve(ln)
	}()

	var runErr error
	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			runErr = fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	stopCleanup()
	<-cleanupDone

	return runErr
}

// RunResetTokenCleanup периодически удаляет истекшие токены сброса пароля.
// Блокируется до отмены ctx. interval <= 0 отключает очистку
func RunResetTokenCleanup(ctx context.Context, logger *slog.Logger, resets storage.ResetTokenStorage, interval time.Duration) {
	if interval <= 0 {
		return
	}

	cleanup := func() {
		deleted, err := resets.DeleteExpiredResetTokens(ctx, time.Now().UTC())
		if err != nil {
			if ctx.Err() == nil {
				logger.ErrorContext(ctx, "failed to delete expired reset tokens", slog.Any("error", err))
			}
			return
		}
		if deleted > 0 {
			logger.InfoContext(ctx, "expired reset tokens deleted", slog.Int("count", deleted))
		}
	}

	cleanup()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanup()
		}
	}
}
