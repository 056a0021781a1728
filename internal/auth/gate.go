package auth

import "github.com/vamshidandi/jobportal/internal/domain"

// LoginTarget is where unauthenticated callers are redirected.
const LoginTarget = "/login"

// DecisionKind is the capability gate's verdict for a protected view.
type DecisionKind int

const (
	// DecisionPending: the session is still resolving. The caller suspends
	// rendering instead of redirecting; bouncing during resolution would
	// kick every fresh page load to the login view.
	DecisionPending DecisionKind = iota
	// DecisionAllow: render the protected view.
	DecisionAllow
	// DecisionRedirect: send the caller to Decision.Target.
	DecisionRedirect
)

type Decision struct {
	Kind   DecisionKind
	Target string
}

// Guard evaluates the gate policy for a snapshot. Protected views consult
// it on every mount and on every state change, so a session invalidated by
// a background request evicts the user from an open view.
func Guard(snap domain.Snapshot) Decision {
	switch snap.State {
	case domain.StateAuthenticated:
		return Decision{Kind: DecisionAllow}
	case domain.StateUnauthenticated:
		return Decision{Kind: DecisionRedirect, Target: LoginTarget}
	default:
		return Decision{Kind: DecisionPending}
	}
}
