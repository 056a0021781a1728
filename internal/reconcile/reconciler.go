// Package reconcile computes the per-view "have I already applied?" answer
// by joining a job posting with the user's application history.
package reconcile

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/vamshidandi/jobportal/internal/domain"
	"github.com/vamshidandi/jobportal/internal/logging"
	"github.com/vamshidandi/jobportal/internal/metrics"
)

// Reconciler answers applied-status questions fresh on every call. It keeps
// no cache: concurrent identical lookups are collapsed onto one in-flight
// history fetch, but nothing outlives the call.
type Reconciler struct {
	jobs    domain.JobGateway
	history singleflight.Group
}

func NewReconciler(jobs domain.JobGateway) *Reconciler {
	return &Reconciler{jobs: jobs}
}

// JobView fetches the posting and the user's application history
// concurrently and joins them. The two fetches fail independently: a failed
// job fetch fails the whole view, while a failed history fetch degrades the
// answer to Applied=false with Verified=false instead of failing it.
func (r *Reconciler) JobView(ctx context.Context, accessToken string, userID, jobID int64) (*domain.JobView, error) {
	var (
		job     *domain.JobSummary
		jobErr  error
		applied bool
		histErr error
	)

	jobDone := make(chan struct{})
	histDone := make(chan struct{})

	go func() {
		defer close(jobDone)
		job, jobErr = r.jobs.GetJob(ctx, accessToken, jobID)
	}()
	go func() {
		defer close(histDone)
		applied, histErr = r.hasApplied(ctx, accessToken, userID, jobID)
	}()

	<-jobDone
	<-histDone

	if jobErr != nil {
		return nil, jobErr
	}

	view := &domain.JobView{Job: job, Applied: applied, Verified: true}
	if histErr != nil {
		// Fail open: show the job with the apply action available rather
		// than blocking the view on a broken history endpoint.
		logging.WithJob(jobID).Warn("application history unavailable, applied status unverified",
			"user_id", userID, "error", histErr)
		metrics.ReconciliationsTotal.WithLabelValues(metrics.OutcomeDegraded).Inc()
		view.Applied = false
		view.Verified = false
		return view, nil
	}

	if applied {
		metrics.ReconciliationsTotal.WithLabelValues(metrics.OutcomeApplied).Inc()
	} else {
		metrics.ReconciliationsTotal.WithLabelValues(metrics.OutcomeNotApplied).Inc()
	}
	return view, nil
}

// HasApplied reports whether the user's history contains an application for
// the given job. Unlike JobView it propagates the history error, so callers
// that need a hard answer can tell failure apart from "not applied".
func (r *Reconciler) HasApplied(ctx context.Context, accessToken string, userID, jobID int64) (bool, error) {
	return r.hasApplied(ctx, accessToken, userID, jobID)
}

func (r *Reconciler) hasApplied(ctx context.Context, accessToken string, userID, jobID int64) (bool, error) {
	key := fmt.Sprintf("%d:%d", userID, jobID)
	result, err, _ := r.history.Do(key, func() (any, error) {
		// The winner's fetch serves every collapsed caller, so it must not
		// die with the winner's request. Values (correlation ID) survive.
		records, err := r.jobs.ListApplications(context.WithoutCancel(ctx), accessToken, userID)
		if err != nil {
			return false, err
		}
		for _, record := range records {
			if record.Job.ID == jobID {
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// Submissions are deliberately not collapsed or retried: the server is the
// sole authority on duplicates and answers a repeat submission with a
// conflict, which we pass through untouched.
func (r *Reconciler) Submit(ctx context.Context, accessToken string, userID int64, draft domain.ApplicationDraft) (string, error) {
	return r.jobs.Apply(ctx, accessToken, userID, draft)
}
