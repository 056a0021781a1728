package main

import (
	"context"
	"encoding/hex"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"github.com/vamshidandi/jobportal/internal/app"
	"github.com/vamshidandi/jobportal/internal/auth"
	"github.com/vamshidandi/jobportal/internal/config"
	"github.com/vamshidandi/jobportal/internal/credstore"
	"github.com/vamshidandi/jobportal/internal/crypto"
	"github.com/vamshidandi/jobportal/internal/domain"
	"github.com/vamshidandi/jobportal/internal/gateway"
	"github.com/vamshidandi/jobportal/internal/logging"
	"github.com/vamshidandi/jobportal/internal/reconcile"
	"github.com/vamshidandi/jobportal/internal/upstream"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupCipher(cfg *config.Config) crypto.Cipher {
	if cfg.TokenEncryptionKey == "" {
		return crypto.Noop{}
	}

	key, err := hex.DecodeString(cfg.TokenEncryptionKey)
	if err != nil {
		slog.Error("Invalid token encryption key", "error", err)
		os.Exit(1)
	}
	cipher, err := crypto.NewAESGCM(key)
	if err != nil {
		slog.Error("Failed to create token cipher", "error", err)
		os.Exit(1)
	}
	return cipher
}

func setupCredStore(cfg *config.Config, cipher crypto.Cipher) (domain.CredentialStore, *goredis.Client) {
	switch cfg.CredentialsBackend {
	case config.BackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := credstore.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		return credstore.NewRedisStore(client, cipher), client
	case config.BackendMemory:
		return credstore.NewMemoryStore(), nil
	default:
		return credstore.NewFileStore(cfg.CredentialsFile, cipher), nil
	}
}

func runGracefulShutdown(srv *gateway.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Gateway shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	cipher := setupCipher(cfg)
	creds, redisClient := setupCredStore(cfg, cipher)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	client := upstream.NewClient(cfg.APIBaseURL, cfg.UpstreamTimeout)
	machine := auth.NewMachine(client, creds, clock)
	reconciler := reconcile.NewReconciler(client)
	appSvc := app.NewService(machine, reconciler, client)

	// Settle the session before serving: a stored token is validated once at
	// startup, so protected routes never observe the Unknown state for long.
	resolveCtx, cancel := context.WithTimeout(context.Background(), cfg.UpstreamTimeout)
	snap, err := appSvc.Session(resolveCtx)
	cancel()
	if err != nil {
		slog.Warn("Initial session resolution incomplete", "error", err)
	} else {
		slog.Info("Session resolved", "state", snap.State.String())
	}

	checks := []gateway.HealthCheck{
		{Name: "upstream", Check: func(ctx context.Context) error {
			_, err := appSvc.Jobs(ctx)
			return err
		}},
	}
	if redisClient != nil {
		checks = append(checks, gateway.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}

	srv := gateway.NewServer(cfg, appSvc, clock, checks...)

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Gateway error", "error", err)
		os.Exit(1)
	}

	<-done
}
