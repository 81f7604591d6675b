package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Studio24-sys/classifieds-api/internal/config"
	"github.com/Studio24-sys/classifieds-api/internal/crypto"
	"github.com/Studio24-sys/classifieds-api/internal/server"
	"github.com/Studio24-sys/classifieds-api/internal/server/jwt"
	"github.com/Studio24-sys/classifieds-api/internal/server/mailer"
	"github.com/Studio24-sys/classifieds-api/internal/server/storage"
	"github.com/Studio24-sys/classifieds-api/internal/server/storage/postgres"
	"github.com/Studio24-sys/classifieds-api/internal/server/storage/sqlite"
	"github.com/Studio24-sys/classifieds-api/internal/validation"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if cfg.ShowVersion {
		printVersion()
		os.Exit(0)
	}

	logger := newLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	router := server.NewRouter(server.Deps{
		Logger:    logger,
		Store:     store,
		Tokens:    jwt.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Hasher:    crypto.NewPasswordHasher(cfg.Auth.BcryptCost),
		Mailer:    newMailer(cfg.Mail, logger),
		Validator: validation.NewPostValidator(cfg.PhoneRegion),
		Version:   Version,
		ResetTTL:  cfg.Auth.ResetTokenTTL,
	})

	srv := server.New(logger, router, store, server.Options{
		Addr:            cfg.Server.Addr,
		CleanupInterval: cfg.Server.CleanupInterval,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	logger.Info("starting classifieds API",
		slog.String("version", Version),
		slog.String("addr", cfg.Server.Addr),
		slog.Bool("postgres", cfg.Database.IsPostgres()),
	)

	return srv.Run(ctx)
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (storage.Store, error) {
	if cfg.IsPostgres() {
		store, err := postgres.New(ctx, cfg.URL, postgres.Options{
			MigrationDSN:    cfg.DirectURL,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres storage: %w", err)
		}
		return store, nil
	}

	store, err := sqlite.New(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
	}
	return store, nil
}

func newMailer(cfg config.MailConfig, logger *slog.Logger) mailer.Mailer {
	if cfg.SMTPHost == "" {
		return mailer.NewLogMailer(logger, cfg.AppURL)
	}
	return mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		AppURL:   cfg.AppURL,
		Timeout:  cfg.SMTPTimeout,
	})
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func printVersion() {
	fmt.Printf("Classifieds API Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
