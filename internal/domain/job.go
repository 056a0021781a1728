package domain

import "time"

// JobSummary is a read-only posting sourced entirely from the upstream
// service. JSON tags follow the upstream wire format, including the
// capitalized "About" field the service sends.
type JobSummary struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	SalaryRange string    `json:"salary_range"`
	About       string    `json:"About"`
	Description string    `json:"description"`
	PostedAt    time.Time `json:"posted_at"`
}

// JobView is the per-view reconciliation of a job posting with the user's
// application history. It is ephemeral: recomputed on every view entry and
// never cached across navigation.
type JobView struct {
	Job *JobSummary `json:"job"`

	// Applied reports whether the user has already applied to this job.
	Applied bool `json:"applied"`

	// Verified is false when the history fetch failed and Applied is a
	// fail-open default rather than a checked answer.
	Verified bool `json:"verified"`
}
