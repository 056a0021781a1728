package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vamshidandi/jobportal/internal/domain"
	"github.com/vamshidandi/jobportal/internal/errors"
)

type mockCore struct {
	resolveFn    func(ctx context.Context) (domain.Snapshot, error)
	submitFn     func(ctx context.Context, username, password string) (domain.Snapshot, error)
	registerFn   func(ctx context.Context, reg domain.Registration) (string, error)
	endSessionFn func(ctx context.Context) domain.Snapshot

	token    string
	identity *domain.Identity

	rejections int
}

func (m *mockCore) Resolve(ctx context.Context) (domain.Snapshot, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx)
	}
	return domain.Snapshot{}, fmt.Errorf("not implemented")
}

func (m *mockCore) SubmitCredentials(ctx context.Context, username, password string) (domain.Snapshot, error) {
	if m.submitFn != nil {
		return m.submitFn(ctx, username, password)
	}
	return domain.Snapshot{}, fmt.Errorf("not implemented")
}

func (m *mockCore) SubmitRegistration(ctx context.Context, reg domain.Registration) (string, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, reg)
	}
	return "", fmt.Errorf("not implemented")
}

func (m *mockCore) EndSession(ctx context.Context) domain.Snapshot {
	if m.endSessionFn != nil {
		return m.endSessionFn(ctx)
	}
	return domain.Snapshot{State: domain.StateUnauthenticated}
}

func (m *mockCore) Snapshot() domain.Snapshot {
	if m.token != "" {
		return domain.Snapshot{State: domain.StateAuthenticated, Identity: m.identity}
	}
	return domain.Snapshot{State: domain.StateUnauthenticated}
}

func (m *mockCore) Token() (string, bool) {
	return m.token, m.token != ""
}

func (m *mockCore) Identity() *domain.Identity {
	return m.identity
}

func (m *mockCore) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot)
	return ch, func() {}
}

func (m *mockCore) ReportRejection(context.Context) {
	m.rejections++
}

type mockReconciler struct {
	jobViewFn    func(ctx context.Context, accessToken string, userID, jobID int64) (*domain.JobView, error)
	hasAppliedFn func(ctx context.Context, accessToken string, userID, jobID int64) (bool, error)
	submitFn     func(ctx context.Context, accessToken string, userID int64, draft domain.ApplicationDraft) (string, error)
}

func (m *mockReconciler) JobView(ctx context.Context, accessToken string, userID, jobID int64) (*domain.JobView, error) {
	if m.jobViewFn != nil {
		return m.jobViewFn(ctx, accessToken, userID, jobID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockReconciler) HasApplied(ctx context.Context, accessToken string, userID, jobID int64) (bool, error) {
	if m.hasAppliedFn != nil {
		return m.hasAppliedFn(ctx, accessToken, userID, jobID)
	}
	return false, fmt.Errorf("not implemented")
}

func (m *mockReconciler) Submit(ctx context.Context, accessToken string, userID int64, draft domain.ApplicationDraft) (string, error) {
	if m.submitFn != nil {
		return m.submitFn(ctx, accessToken, userID, draft)
	}
	return "", fmt.Errorf("not implemented")
}

type mockJobs struct {
	listJobsFn         func(ctx context.Context) ([]domain.JobSummary, error)
	listApplicationsFn func(ctx context.Context, accessToken string, userID int64) ([]domain.ApplicationRecord, error)
}

func (m *mockJobs) ListJobs(ctx context.Context) ([]domain.JobSummary, error) {
	if m.listJobsFn != nil {
		return m.listJobsFn(ctx)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockJobs) GetJob(context.Context, string, int64) (*domain.JobSummary, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *mockJobs) ListApplications(ctx context.Context, accessToken string, userID int64) ([]domain.ApplicationRecord, error) {
	if m.listApplicationsFn != nil {
		return m.listApplicationsFn(ctx, accessToken, userID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockJobs) Apply(context.Context, string, int64, domain.ApplicationDraft) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func authenticatedCore() *mockCore {
	return &mockCore{
		token:    "acc",
		identity: &domain.Identity{UserID: 7, Username: "alice"},
	}
}

func TestJobs_NoSessionRequired(t *testing.T) {
	jobs := &mockJobs{
		listJobsFn: func(context.Context) ([]domain.JobSummary, error) {
			return []domain.JobSummary{{ID: 1, Title: "Backend Engineer"}}, nil
		},
	}
	service := NewService(&mockCore{}, &mockReconciler{}, jobs)

	listing, err := service.Jobs(context.Background())
	require.NoError(t, err)
	assert.Len(t, listing, 1)
}

func TestJobView_RequiresSession(t *testing.T) {
	service := NewService(&mockCore{}, &mockReconciler{}, &mockJobs{})

	_, err := service.JobView(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnauthorized))
}

func TestJobView_PassesTokenAndUser(t *testing.T) {
	reconciler := &mockReconciler{
		jobViewFn: func(_ context.Context, accessToken string, userID, jobID int64) (*domain.JobView, error) {
			assert.Equal(t, "acc", accessToken)
			assert.Equal(t, int64(7), userID)
			assert.Equal(t, int64(42), jobID)
			return &domain.JobView{Job: &domain.JobSummary{ID: jobID}, Verified: true}, nil
		},
	}
	service := NewService(authenticatedCore(), reconciler, &mockJobs{})

	view, err := service.JobView(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), view.Job.ID)
}

func TestJobView_RejectionReachesCore(t *testing.T) {
	core := authenticatedCore()
	reconciler := &mockReconciler{
		jobViewFn: func(context.Context, string, int64, int64) (*domain.JobView, error) {
			return nil, errors.Unauthorized("token not valid")
		},
	}
	service := NewService(core, reconciler, &mockJobs{})

	_, err := service.JobView(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, 1, core.rejections)
}

func TestApplications_RejectionReachesCore(t *testing.T) {
	core := authenticatedCore()
	jobs := &mockJobs{
		listApplicationsFn: func(context.Context, string, int64) ([]domain.ApplicationRecord, error) {
			return nil, errors.Unauthorized("token not valid")
		},
	}
	service := NewService(core, &mockReconciler{}, jobs)

	_, err := service.Applications(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, core.rejections)
}

func TestApplications_NetworkErrorDoesNotEvict(t *testing.T) {
	core := authenticatedCore()
	jobs := &mockJobs{
		listApplicationsFn: func(context.Context, string, int64) ([]domain.ApplicationRecord, error) {
			return nil, errors.Network("connection refused", nil)
		},
	}
	service := NewService(core, &mockReconciler{}, jobs)

	_, err := service.Applications(context.Background())
	require.Error(t, err)
	assert.Zero(t, core.rejections)
}

func TestApply_DuplicateShortCircuitsLocally(t *testing.T) {
	submitted := false
	reconciler := &mockReconciler{
		hasAppliedFn: func(context.Context, string, int64, int64) (bool, error) {
			return true, nil
		},
		submitFn: func(context.Context, string, int64, domain.ApplicationDraft) (string, error) {
			submitted = true
			return "", nil
		},
	}
	service := NewService(authenticatedCore(), reconciler, &mockJobs{})

	_, err := service.Apply(context.Background(), domain.ApplicationDraft{JobID: 42})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConflict))
	assert.False(t, submitted)
}

func TestApply_PrecheckFailureStillSubmits(t *testing.T) {
	reconciler := &mockReconciler{
		hasAppliedFn: func(context.Context, string, int64, int64) (bool, error) {
			return false, errors.Network("connection refused", nil)
		},
		submitFn: func(context.Context, string, int64, domain.ApplicationDraft) (string, error) {
			return "Application submitted successfully", nil
		},
	}
	service := NewService(authenticatedCore(), reconciler, &mockJobs{})

	message, err := service.Apply(context.Background(), domain.ApplicationDraft{JobID: 42})
	require.NoError(t, err)
	assert.Equal(t, "Application submitted successfully", message)
}

func TestApply_ServerConflictPassedThrough(t *testing.T) {
	reconciler := &mockReconciler{
		hasAppliedFn: func(context.Context, string, int64, int64) (bool, error) {
			return false, nil
		},
		submitFn: func(context.Context, string, int64, domain.ApplicationDraft) (string, error) {
			return "", errors.Conflict("You have already applied to this job")
		},
	}
	service := NewService(authenticatedCore(), reconciler, &mockJobs{})

	_, err := service.Apply(context.Background(), domain.ApplicationDraft{JobID: 42})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConflict))
}

func TestLogin_DelegatesToCore(t *testing.T) {
	core := &mockCore{
		submitFn: func(_ context.Context, username, password string) (domain.Snapshot, error) {
			assert.Equal(t, "alice", username)
			return domain.Snapshot{State: domain.StateAuthenticated, Identity: &domain.Identity{UserID: 7}}, nil
		},
	}
	service := NewService(core, &mockReconciler{}, &mockJobs{})

	snap, err := service.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.StateAuthenticated, snap.State)
}
