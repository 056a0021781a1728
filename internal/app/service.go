package app

import (
	"context"

	"github.com/vamshidandi/jobportal/internal/domain"
	"github.com/vamshidandi/jobportal/internal/errors"
)

// SessionCore is the slice of the auth state machine the application layer
// drives. The concrete implementation lives in internal/auth.
type SessionCore interface {
	domain.RejectionSink

	Resolve(ctx context.Context) (domain.Snapshot, error)
	SubmitCredentials(ctx context.Context, username, password string) (domain.Snapshot, error)
	SubmitRegistration(ctx context.Context, reg domain.Registration) (string, error)
	EndSession(ctx context.Context) domain.Snapshot
	Snapshot() domain.Snapshot
	Token() (string, bool)
	Identity() *domain.Identity
	Subscribe() (<-chan domain.Snapshot, func())
}

// AppliedReconciler joins job postings with the user's application history.
// The concrete implementation lives in internal/reconcile.
type AppliedReconciler interface {
	JobView(ctx context.Context, accessToken string, userID, jobID int64) (*domain.JobView, error)
	HasApplied(ctx context.Context, accessToken string, userID, jobID int64) (bool, error)
	Submit(ctx context.Context, accessToken string, userID int64, draft domain.ApplicationDraft) (string, error)
}

// Service orchestrates the session core, the reconciler, and the job gateway.
// Every authenticated call funnels authorization rejections back into the
// session core, so a revoked token evicts the session no matter which call
// surfaced it first.
type Service struct {
	core       SessionCore
	reconciler AppliedReconciler
	jobs       domain.JobGateway
}

func NewService(core SessionCore, reconciler AppliedReconciler, jobs domain.JobGateway) *Service {
	return &Service{core: core, reconciler: reconciler, jobs: jobs}
}

// Login exchanges credentials for an authenticated session.
func (s *Service) Login(ctx context.Context, username, password string) (domain.Snapshot, error) {
	return s.core.SubmitCredentials(ctx, username, password)
}

// Register creates an account upstream. It never logs the user in: the
// server answers with a message and the caller proceeds to login.
func (s *Service) Register(ctx context.Context, reg domain.Registration) (string, error) {
	return s.core.SubmitRegistration(ctx, reg)
}

// Logout ends the session. Local state is cleared even when the upstream
// logout call fails.
func (s *Service) Logout(ctx context.Context) domain.Snapshot {
	return s.core.EndSession(ctx)
}

// Session resolves the current session, settling an Unknown state first.
func (s *Service) Session(ctx context.Context) (domain.Snapshot, error) {
	return s.core.Resolve(ctx)
}

// Snapshot returns the current session state without settling it.
func (s *Service) Snapshot() domain.Snapshot {
	return s.core.Snapshot()
}

// Watch subscribes to session snapshots. The returned cancel must be called
// when the watcher goes away.
func (s *Service) Watch() (<-chan domain.Snapshot, func()) {
	return s.core.Subscribe()
}

// Jobs lists postings. The listing is public upstream, so no session is
// required.
func (s *Service) Jobs(ctx context.Context) ([]domain.JobSummary, error) {
	return s.jobs.ListJobs(ctx)
}

// JobView fetches a posting reconciled with the caller's application
// history.
func (s *Service) JobView(ctx context.Context, jobID int64) (*domain.JobView, error) {
	token, userID, err := s.authorized()
	if err != nil {
		return nil, err
	}
	view, err := s.reconciler.JobView(ctx, token, userID, jobID)
	return view, s.checked(ctx, err)
}

// Applications lists the caller's application history.
func (s *Service) Applications(ctx context.Context) ([]domain.ApplicationRecord, error) {
	token, userID, err := s.authorized()
	if err != nil {
		return nil, err
	}
	records, err := s.jobs.ListApplications(ctx, token, userID)
	if err != nil {
		return nil, s.checked(ctx, err)
	}
	return records, nil
}

// Apply submits an application. A fail-open local pre-check short-circuits
// obvious duplicates; the server stays the authority and answers repeats
// with a conflict regardless.
func (s *Service) Apply(ctx context.Context, draft domain.ApplicationDraft) (string, error) {
	token, userID, err := s.authorized()
	if err != nil {
		return "", err
	}

	if applied, err := s.reconciler.HasApplied(ctx, token, userID, draft.JobID); err == nil && applied {
		return "", errors.Conflict("You have already applied to this job")
	}

	message, err := s.reconciler.Submit(ctx, token, userID, draft)
	if err != nil {
		return "", s.checked(ctx, err)
	}
	return message, nil
}

// HasApplied reports whether the caller already applied to the job.
func (s *Service) HasApplied(ctx context.Context, jobID int64) (bool, error) {
	token, userID, err := s.authorized()
	if err != nil {
		return false, err
	}
	applied, err := s.reconciler.HasApplied(ctx, token, userID, jobID)
	if err != nil {
		return false, s.checked(ctx, err)
	}
	return applied, nil
}

func (s *Service) authorized() (string, int64, error) {
	token, ok := s.core.Token()
	if !ok {
		return "", 0, errors.Unauthorized("Authentication required")
	}
	identity := s.core.Identity()
	if identity == nil {
		return "", 0, errors.Unauthorized("Authentication required")
	}
	return token, identity.UserID, nil
}

// checked reports authorization rejections to the session core before
// handing the error back. All authenticated call sites pass through here.
func (s *Service) checked(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.IsKind(err, errors.KindUnauthorized) {
		s.core.ReportRejection(ctx)
	}
	return err
}
