package gateway

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vamshidandi/jobportal/internal/domain"
	apperrors "github.com/vamshidandi/jobportal/internal/errors"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string           `json:"message"`
	User    *domain.Identity `json:"user"`
}

type sessionResponse struct {
	State     string           `json:"state"`
	User      *domain.Identity `json:"user,omitempty"`
	ChangedAt time.Time        `json:"changed_at"`
}

func toSessionResponse(snap domain.Snapshot) sessionResponse {
	return sessionResponse{
		State:     snap.State.String(),
		User:      snap.Identity,
		ChangedAt: snap.ChangedAt,
	}
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("Invalid request body", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.Validation("Username and password are required", nil)
	}

	snap, err := s.app.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrAuthInFlight) {
			return apperrors.Conflict("Another sign-in is already in progress")
		}
		if errors.Is(err, domain.ErrAlreadyAuthenticated) {
			return apperrors.Conflict("Already signed in, log out first")
		}
		if errors.Is(err, domain.ErrSessionEnded) {
			return apperrors.Conflict("Session was ended while signing in")
		}
		return err
	}

	return c.JSON(200, loginResponse{Message: "Login successful", User: snap.Identity})
}

func (s *Server) handleRegister(c echo.Context) error {
	var reg domain.Registration
	if err := c.Bind(&reg); err != nil {
		return apperrors.Validation("Invalid request body", nil)
	}
	if reg.Username == "" || reg.Email == "" || reg.Password == "" {
		return apperrors.Validation("Username, email and password are required", nil)
	}

	message, err := s.app.Register(c.Request().Context(), reg)
	if err != nil {
		if errors.Is(err, domain.ErrAuthInFlight) {
			return apperrors.Conflict("Another sign-in is already in progress")
		}
		if errors.Is(err, domain.ErrAlreadyAuthenticated) {
			return apperrors.Conflict("Already signed in, log out first")
		}
		return err
	}

	return c.JSON(201, map[string]string{"message": message})
}

func (s *Server) handleLogout(c echo.Context) error {
	snap := s.app.Logout(c.Request().Context())
	return c.JSON(200, map[string]any{
		"message": "Logged out",
		"session": toSessionResponse(snap),
	})
}

func (s *Server) handleSession(c echo.Context) error {
	snap, err := s.app.Session(c.Request().Context())
	if err != nil {
		if errors.Is(err, domain.ErrAuthInFlight) {
			// A resolution or login is mid-flight; report the current state
			// instead of failing, the watcher stream delivers the outcome.
			return c.JSON(200, toSessionResponse(s.app.Snapshot()))
		}
		return err
	}
	return c.JSON(200, toSessionResponse(snap))
}
