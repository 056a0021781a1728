package gateway

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Auth routes
	s.echo.POST("/api/login", s.handleLogin, s.rateLimitLogin)
	s.echo.POST("/api/register", s.handleRegister)
	s.echo.POST("/api/logout", s.handleLogout)
	s.echo.GET("/api/session", s.handleSession)

	// Session snapshot stream (observes forced logouts)
	s.echo.GET("/ws/session", s.handleSessionWatch)

	// Job routes (listing is public upstream, the rest is gated)
	s.echo.GET("/api/jobs", s.handleJobs)
	s.echo.GET("/api/jobs/:id", s.handleJob, s.requireAuth)
	s.echo.GET("/api/applications", s.handleApplications, s.requireAuth)
	s.echo.POST("/api/apply", s.handleApply, s.requireAuth)
}
