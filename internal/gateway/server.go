package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/vamshidandi/jobportal/internal/app"
	"github.com/vamshidandi/jobportal/internal/config"
	apperrors "github.com/vamshidandi/jobportal/internal/errors"
)

// HealthCheck is a named readiness probe. The composition root registers one
// per external dependency (upstream service, redis credential store).
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Server struct {
	echo         *echo.Echo
	config       *config.Config
	app          *app.Service
	loginLimiter *loginRateLimiter
	checks       []HealthCheck
	clock        clockwork.Clock
	startTime    time.Time
}

func NewServer(cfg *config.Config, application *app.Service, clock clockwork.Clock, checks ...HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(correlationMiddleware())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          application,
		loginLimiter: newLoginRateLimiter(cfg.LoginRatePerSecond, cfg.LoginRateBurst),
		checks:       checks,
		clock:        clock,
		startTime:    clock.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting gateway", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
