package gateway

import (
	"fmt"
	"io"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/vamshidandi/jobportal/internal/domain"
	apperrors "github.com/vamshidandi/jobportal/internal/errors"
)

const maxResumeBytes = 5 << 20

func (s *Server) handleJobs(c echo.Context) error {
	jobs, err := s.app.Jobs(c.Request().Context())
	if err != nil {
		return err
	}
	// The upstream envelope is preserved so existing clients keep working.
	return c.JSON(200, map[string]any{"data": jobs})
}

func (s *Server) handleJob(c echo.Context) error {
	jobID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperrors.Validation("Invalid job id", nil)
	}

	view, err := s.app.JobView(c.Request().Context(), jobID)
	if err != nil {
		return err
	}
	return c.JSON(200, view)
}

func (s *Server) handleApplications(c echo.Context) error {
	records, err := s.app.Applications(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(200, records)
}

func (s *Server) handleApply(c echo.Context) error {
	jobID, err := strconv.ParseInt(c.FormValue("job"), 10, 64)
	if err != nil {
		return apperrors.Validation("Invalid job id", nil)
	}

	draft := domain.ApplicationDraft{
		JobID:       jobID,
		CoverLetter: c.FormValue("cover_letter"),
		Phone:       c.FormValue("phone"),
		LinkedIn:    c.FormValue("linkedin"),
	}

	if file, err := c.FormFile("resume"); err == nil {
		if file.Size > maxResumeBytes {
			return apperrors.Validation("Resume must be smaller than 5 MB", nil)
		}
		src, err := file.Open()
		if err != nil {
			return apperrors.Internal("failed to open resume upload", err)
		}
		defer src.Close()

		content, err := io.ReadAll(io.LimitReader(src, maxResumeBytes))
		if err != nil {
			return apperrors.Internal("failed to read resume upload", err)
		}
		draft.ResumeName = file.Filename
		draft.ResumeContent = content
	}

	message, err := s.app.Apply(c.Request().Context(), draft)
	if err != nil {
		return err
	}
	if message == "" {
		message = fmt.Sprintf("Applied to job %d", jobID)
	}
	return c.JSON(201, map[string]string{"message": message})
}
