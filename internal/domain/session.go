package domain

import "time"

// State is the session lifecycle state. There is exactly one process-wide
// instance, owned by the auth state machine; everything else observes value
// snapshots.
type State int

const (
	// StateUnknown is the boot state before the resolver has run.
	StateUnknown State = iota
	// StateAuthenticating marks an in-flight resolution, login, or
	// registration. At most one is in flight at a time.
	StateAuthenticating
	// StateAuthenticated means a valid token and resolved identity are held.
	StateAuthenticated
	// StateUnauthenticated is the terminal "no session" state.
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "invalid"
	}
}

// Terminal reports whether the state is one the capability gate can act on.
func (s State) Terminal() bool {
	return s == StateAuthenticated || s == StateUnauthenticated
}

// Snapshot is a read-only copy of the session state handed to observers.
// Identity is non-nil iff State is StateAuthenticated.
type Snapshot struct {
	State     State
	Identity  *Identity
	ChangedAt time.Time
}
