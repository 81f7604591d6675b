// Package config loads server configuration from .env, the environment and flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinJWTSecretLen минимальная длина секрета подписи токенов
const MinJWTSecretLen = 16

// Config содержит конфигурацию сервера
type Config struct {
	Log         LogConfig
	Mail        MailConfig
	Database    DatabaseConfig
	Server      ServerConfig
	Auth        AuthConfig
	PhoneRegion string
	ShowVersion bool
}

// ServerConfig конфигурация HTTP сервера
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
	CleanupInterval time.Duration
}

// DatabaseConfig конфигурация хранилища
type DatabaseConfig struct {
	// URL postgres:// или postgresql:// выбирает Postgres, иначе путь к файлу SQLite
	URL string
	// DirectURL прямое подключение для миграций (Postgres за пулером)
	DirectURL       string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// IsPostgres сообщает, указывает ли URL на Postgres
func (c DatabaseConfig) IsPostgres() bool {
	return strings.HasPrefix(c.URL, "postgres://") || strings.HasPrefix(c.URL, "postgresql://")
}

// AuthConfig конфигурация токенов и паролей
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
	BcryptCost    int
}

// LogConfig конфигурация логирования
type LogConfig struct {
	Level  slog.Level
	Format string
}

// MailConfig конфигурация отправки писем. Пустой SMTPHost означает запись в лог
type MailConfig struct {
	AppURL       string
	SMTPHost     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPPort     int
	SMTPTimeout  time.Duration
}

// Load читает .env (если есть), переменные окружения и флаги args.
// Флаги имеют приоритет над окружением
func Load(args []string) (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	var errs []error
	env := envReader{errs: &errs}

	cfg := &Config{
		Server: ServerConfig{
			Addr:            ":" + env.str("PORT", "8080"),
			ShutdownTimeout: env.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
			CleanupInterval: env.duration("RESET_CLEANUP_INTERVAL", time.Hour),
		},
		Database: DatabaseConfig{
			URL:             env.str("DATABASE_URL", "classifieds.db"),
			DirectURL:       env.str("DIRECT_URL", ""),
			MaxOpenConns:    env.integer("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    env.integer("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: env.duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:     env.str("JWT_SECRET", ""),
			TokenTTL:      env.duration("TOKEN_TTL", 7*24*time.Hour),
			ResetTokenTTL: env.duration("RESET_TOKEN_TTL", 30*time.Minute),
			BcryptCost:    env.integer("BCRYPT_COST", 10),
		},
		Log: LogConfig{
			Format: env.str("LOG_FORMAT", "json"),
		},
		Mail: MailConfig{
			AppURL:       env.str("APP_URL", "http://localhost:3000"),
			SMTPHost:     env.str("SMTP_HOST", ""),
			SMTPPort:     env.integer("SMTP_PORT", 587),
			SMTPUsername: env.str("SMTP_USERNAME", ""),
			SMTPPassword: env.str("SMTP_PASSWORD", ""),
			SMTPFrom:     env.str("SMTP_FROM", "no-reply@localhost"),
			SMTPTimeout:  env.duration("SMTP_TIMEOUT", 10*time.Second),
		},
		PhoneRegion: strings.ToUpper(env.str("PHONE_REGION", "PY")),
	}
	logLevel := env.str("LOG_LEVEL", "info")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "HTTP listen address")
	fs.StringVar(&cfg.Database.URL, "db", cfg.Database.URL, "SQLite file path or Postgres URL")
	fs.StringVar(&logLevel, "log-level", logLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "Log format: json or text")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := cfg.Log.Level.UnmarshalText([]byte(logLevel)); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if cfg.ShowVersion {
		return cfg, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.Auth.JWTSecret) < MinJWTSecretLen {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", MinJWTSecretLen))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Auth.ResetTokenTTL <= 0 {
		errs = append(errs, errors.New("RESET_TOKEN_TTL must be positive"))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Log.Format))
	}
	if len(c.PhoneRegion) != 2 {
		errs = append(errs, fmt.Errorf("PHONE_REGION must be a two-letter region code, got %q", c.PhoneRegion))
	}

	return errors.Join(errs...)
}

// envReader читает переменные окружения и копит ошибки разбора
type envReader struct {
	errs *[]error
}

func (e envReader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (e envReader) integer(key string, def int) int {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: invalid integer %q", key, raw))
		return def
	}
	return v
}

func (e envReader) duration(key string, def time.Duration) time.Duration {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	v, err := ParseDuration(raw)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

// ParseDuration как time.ParseDuration, но дополнительно понимает суффикс "d" (дни), например "7d"
func ParseDuration(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}
