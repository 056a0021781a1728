package gateway

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/vamshidandi/jobportal/internal/auth"
	"github.com/vamshidandi/jobportal/internal/correlation"
	"github.com/vamshidandi/jobportal/internal/domain"
	apperrors "github.com/vamshidandi/jobportal/internal/errors"
)

// correlationMiddleware accepts a caller-supplied correlation ID or mints a
// fresh one, threads it through the request context, and echoes it back on
// the response.
func correlationMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(correlation.Header)
			if id == "" {
				id = correlation.NewID()
			}

			ctx := correlation.WithID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set(correlation.Header, id)

			return next(c)
		}
	}
}

// requireAuth is the capability gate. A request during session resolution is
// held (bounded by GateWait) rather than bounced, so a page load racing the
// startup resolve does not flicker to the login redirect.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		snap := s.app.Snapshot()
		if !snap.State.Terminal() {
			snap = s.awaitTerminal(c.Request().Context(), snap)
		}

		if decision := auth.Guard(snap); decision.Kind == auth.DecisionAllow {
			return next(c)
		}
		return apperrors.Unauthorized("Authentication required")
	}
}

// awaitTerminal settles an Unknown state (triggering the resolve if nobody
// has yet) and then waits for a terminal snapshot, giving up after GateWait.
func (s *Server) awaitTerminal(ctx context.Context, snap domain.Snapshot) domain.Snapshot {
	if snap.State == domain.StateUnknown {
		if resolved, err := s.app.Session(ctx); err == nil {
			return resolved
		}
		// Resolution already in flight elsewhere, fall through and observe.
	}

	updates, cancel := s.app.Watch()
	defer cancel()

	if current := s.app.Snapshot(); current.State.Terminal() {
		return current
	}

	timeout := s.clock.NewTimer(s.config.GateWait)
	defer timeout.Stop()

	for {
		select {
		case snap := <-updates:
			if snap.State.Terminal() {
				return snap
			}
		case <-timeout.Chan():
			return s.app.Snapshot()
		case <-ctx.Done():
			return s.app.Snapshot()
		}
	}
}

// rateLimitLogin throttles credential submissions per client IP.
func (s *Server) rateLimitLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.loginLimiter.Allow(c.RealIP()) {
			return echo.NewHTTPError(429, "Too many login attempts, slow down")
		}
		return next(c)
	}
}
