package domain

import "context"

// LoginResult is what a successful credential exchange yields: the token
// pair, the identity embedded in the login response, and the server message.
type LoginResult struct {
	Tokens   TokenPair
	Identity Identity
	Message  string
}

// AuthGateway is the slice of the upstream service the auth state machine
// depends on.
type AuthGateway interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Register(ctx context.Context, reg Registration) (string, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context, accessToken string) (*Identity, error)
}

// JobGateway is the slice of the upstream service the job views and the
// reconciler depend on.
type JobGateway interface {
	ListJobs(ctx context.Context) ([]JobSummary, error)
	GetJob(ctx context.Context, accessToken string, jobID int64) (*JobSummary, error)
	ListApplications(ctx context.Context, accessToken string, userID int64) ([]ApplicationRecord, error)
	Apply(ctx context.Context, accessToken string, userID int64, draft ApplicationDraft) (string, error)
}

// RejectionSink is the single entry point for authorization rejections.
// Every call site that receives an authorization rejection reports it here
// instead of mutating session state directly.
type RejectionSink interface {
	ReportRejection(ctx context.Context)
}
