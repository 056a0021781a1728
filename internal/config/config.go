package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Credential store backends selectable via CREDENTIALS_BACKEND.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`
	Port   string `env:"PORT" default:"8080"`

	// APIBaseURL is the upstream job service, e.g. "http://127.0.0.1:8000".
	APIBaseURL string `env:"API_BASE_URL"`

	CredentialsBackend string `env:"CREDENTIALS_BACKEND" default:"file"`
	CredentialsFile    string `env:"CREDENTIALS_FILE" default:".jobportal/credentials.json"`
	RedisURL           string `env:"REDIS_URL"`

	// TokenEncryptionKey enables encryption of tokens at rest (64 hex chars).
	// Empty means tokens are stored as plaintext opaque strings.
	TokenEncryptionKey string `env:"TOKEN_ENCRYPTION_KEY"`

	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" default:"10s"`

	// GateWait bounds how long the capability gate holds a protected request
	// while the session state is still resolving.
	GateWait time.Duration `env:"GATE_WAIT" default:"5s"`

	LoginRatePerSecond float64 `env:"LOGIN_RATE_PER_SECOND" default:"2"`
	LoginRateBurst     int     `env:"LOGIN_RATE_BURST" default:"5"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}

	switch cfg.CredentialsBackend {
	case BackendFile:
		if cfg.CredentialsFile == "" {
			return fmt.Errorf("CREDENTIALS_FILE is required for the file backend")
		}
	case BackendRedis:
		if cfg.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("CREDENTIALS_BACKEND must be one of file, redis, memory, got %q", cfg.CredentialsBackend)
	}

	if cfg.TokenEncryptionKey != "" {
		keyBytes, err := hex.DecodeString(cfg.TokenEncryptionKey)
		if err != nil {
			return fmt.Errorf("TOKEN_ENCRYPTION_KEY must be valid hex: %w", err)
		}
		if len(keyBytes) != 32 {
			return fmt.Errorf("TOKEN_ENCRYPTION_KEY must be exactly 64 hex characters (32 bytes), got %d bytes", len(keyBytes))
		}
	}

	return nil
}
