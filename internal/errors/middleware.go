package errors

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPErrorsTotal tracks gateway errors by kind
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_errors_total",
			Help: "Total gateway errors by error kind",
		},
		[]string{"kind"},
	)
)

// Middleware returns an Echo middleware that converts structured errors
// returned by handlers into JSON responses, records them, and logs them at
// a kind-appropriate level.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			// Echo's own HTTPErrors (404 routing, method not allowed) pass
			// through unchanged so their status codes are preserved.
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				return err
			}

			structured := AsStructured(err)
			HTTPErrorsTotal.WithLabelValues(string(structured.Kind)).Inc()
			logError(c, structured)

			if err := c.JSON(structured.HTTPStatus(), structured.ToResponse()); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

func logError(c echo.Context, err *Error) {
	attrs := []any{
		"kind", err.Kind,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	ctx := c.Request().Context()
	switch err.Kind {
	case KindInvalidCredentials, KindValidation, KindNotFound:
		slog.InfoContext(ctx, "Request rejected", attrs...)
	case KindUnauthorized:
		// Expected session-expiry path: the collaborator redirects silently,
		// so a warn here is the only trace.
		slog.WarnContext(ctx, "Authorization rejected", attrs...)
	case KindConflict:
		slog.WarnContext(ctx, "Conflict", attrs...)
	case KindNetwork:
		attrs = append(attrs, "cause", err.Cause)
		slog.WarnContext(ctx, "Upstream unreachable", attrs...)
	default:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Internal error", attrs...)
	}
}
