package domain

import "context"

// TokenPair is the opaque access/refresh credential pair issued at login.
// Invariant: both tokens are present or both are absent - a partial pair is
// never persisted.
type TokenPair struct {
	Access  string
	Refresh string
}

// Complete reports whether both tokens are present.
func (p TokenPair) Complete() bool {
	return p.Access != "" && p.Refresh != ""
}

// CredentialStore persists the token pair across process restarts.
// Implementations treat storage failures on Load as "absent" rather than
// fatal; the session resolver decides what absence means.
type CredentialStore interface {
	// Save persists the pair. Saving a partial pair is an error.
	Save(ctx context.Context, pair TokenPair) error

	// Load returns the stored pair and whether one was present.
	Load(ctx context.Context) (TokenPair, bool, error)

	// Clear removes any stored pair. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
