package domain

import "errors"

var (
	// ErrAuthInFlight is returned when a login, registration, or resolve is
	// attempted while another authentication is already in flight. Callers
	// surface it as a busy condition; requests are rejected, not queued.
	ErrAuthInFlight = errors.New("authentication already in flight")

	// ErrAlreadyAuthenticated is returned when login is attempted from an
	// authenticated session. Callers must end the session first.
	ErrAlreadyAuthenticated = errors.New("already authenticated")

	// ErrNotAuthenticated is returned by operations that require a resolved
	// identity and a valid token.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionEnded is returned when an authentication attempt completes
	// after the session was ended mid-flight. The exchange result is
	// discarded; the session stays unauthenticated.
	ErrSessionEnded = errors.New("session ended during authentication")
)
