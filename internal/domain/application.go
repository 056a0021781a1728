package domain

import "time"

// Application status values as reported by the upstream service.
const (
	StatusPending     = "pending"
	StatusShortlisted = "shortlisted"
	StatusAccepted    = "accepted"
	StatusRejected    = "rejected"
)

// ApplicationRecord is a read-only copy of a server-side application.
// Created server-side on submission; the client fetches on demand and keeps
// no local cache beyond the per-view refetch.
type ApplicationRecord struct {
	ID          int64      `json:"id"`
	Status      string     `json:"status"`
	AppliedAt   time.Time  `json:"applied_at"`
	Job         JobSummary `json:"job"`
	Resume      string     `json:"resume,omitempty"`
	CoverLetter string     `json:"cover_letter,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	LinkedIn    string     `json:"linkedin,omitempty"`
}

// ApplicationDraft carries the fields of an application submission. Resume
// is an optional file streamed through as multipart content.
type ApplicationDraft struct {
	JobID       int64
	CoverLetter string
	Phone       string
	LinkedIn    string

	ResumeName    string
	ResumeContent []byte
}
