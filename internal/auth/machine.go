package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/vamshidandi/jobportal/internal/domain"
	"github.com/vamshidandi/jobportal/internal/errors"
	"github.com/vamshidandi/jobportal/internal/logging"
	"github.com/vamshidandi/jobportal/internal/metrics"
)

const logoutTimeout = 5 * time.Second

// subscriber channels are buffered; a slow observer misses intermediate
// snapshots but can always re-read the current one.
const subscriberBuffer = 8

// Machine is the auth state machine: the only component allowed to mutate
// session state. All I/O happens between a begin-transition and an
// end-transition, outside the lock, so observers are never blocked on the
// network.
type Machine struct {
	gateway domain.AuthGateway
	creds   domain.CredentialStore
	clock   clockwork.Clock

	mu        sync.Mutex
	state     domain.State
	identity  *domain.Identity
	tokens    domain.TokenPair
	changedAt time.Time

	subs    map[uint64]chan domain.Snapshot
	nextSub uint64
}

func NewMachine(gateway domain.AuthGateway, creds domain.CredentialStore, clock clockwork.Clock) *Machine {
	return &Machine{
		gateway: gateway,
		creds:   creds,
		clock:   clock,
		state:   domain.StateUnknown,
		subs:    make(map[uint64]chan domain.Snapshot),
	}
}

var _ domain.RejectionSink = (*Machine)(nil)

// Snapshot returns a read-only copy of the current session state.
func (m *Machine) Snapshot() domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Token returns the current access token. ok is false unless the session is
// authenticated.
func (m *Machine) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != domain.StateAuthenticated {
		return "", false
	}
	return m.tokens.Access, true
}

// Identity returns the resolved identity, or nil.
func (m *Machine) Identity() *domain.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return nil
	}
	copied := *m.identity
	return &copied
}

// Subscribe registers an observer for state changes. The returned cancel
// must be called when the observer goes away.
func (m *Machine) Subscribe() (<-chan domain.Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan domain.Snapshot, subscriberBuffer)
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Resolve restores the session from stored credentials. It runs once at
// process start: with no stored pair it reports unauthenticated without any
// network call; with a pair it exchanges the access token for the identity,
// and on any rejection clears the store. Calling it again while
// authenticated is a no-op returning the current snapshot; calling it while
// unauthenticated re-runs the resolution.
func (m *Machine) Resolve(ctx context.Context) (domain.Snapshot, error) {
	m.mu.Lock()
	switch m.state {
	case domain.StateAuthenticating:
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, domain.ErrAuthInFlight
	case domain.StateAuthenticated:
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, nil
	}
	m.transitionLocked(domain.StateAuthenticating, nil, domain.TokenPair{})
	m.mu.Unlock()

	pair, present, err := m.creds.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Credential load failed, treating as absent", "error", err)
	}
	if !present {
		// No stored pair: terminal without touching the network.
		m.mu.Lock()
		snap := m.transitionLocked(domain.StateUnauthenticated, nil, domain.TokenPair{})
		m.mu.Unlock()
		return snap, nil
	}

	identity, lookupErr := m.gateway.CurrentUser(ctx, pair.Access)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != domain.StateAuthenticating {
		// EndSession ran while the lookup was in flight; the stored pair is
		// already cleared and the restored identity must not win.
		return m.snapshotLocked(), nil
	}

	if lookupErr != nil {
		// Expired token, invalid token, or network failure: all collapse to
		// unauthenticated and the pair is discarded (no refresh exchange).
		if err := m.creds.Clear(ctx); err != nil {
			slog.WarnContext(ctx, "Failed to clear credentials after rejected resolution", "error", err)
		}
		slog.InfoContext(ctx, "Session resolution failed", "kind", errors.KindOf(lookupErr))
		return m.transitionLocked(domain.StateUnauthenticated, nil, domain.TokenPair{}), nil
	}

	logging.WithUser(identity.UserID).InfoContext(ctx, "Session restored", "username", identity.Username)
	return m.transitionLocked(domain.StateAuthenticated, identity, pair), nil
}

// SubmitCredentials performs the credential exchange. While another
// authentication is in flight the call is rejected with ErrAuthInFlight,
// not queued. On success the token pair is persisted and the session
// becomes authenticated; on rejection the upstream message is surfaced
// verbatim and the session settles unauthenticated.
func (m *Machine) SubmitCredentials(ctx context.Context, username, password string) (domain.Snapshot, error) {
	m.mu.Lock()
	switch m.state {
	case domain.StateAuthenticating:
		snap := m.snapshotLocked()
		m.mu.Unlock()
		metrics.LoginOutcomesTotal.WithLabelValues("busy").Inc()
		return snap, domain.ErrAuthInFlight
	case domain.StateAuthenticated:
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, domain.ErrAlreadyAuthenticated
	}
	m.transitionLocked(domain.StateAuthenticating, nil, domain.TokenPair{})
	m.mu.Unlock()

	result, err := m.gateway.Login(ctx, username, password)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != domain.StateAuthenticating {
		// EndSession ran while the exchange was in flight. Discard the
		// result instead of resurrecting the session the user just ended.
		slog.InfoContext(ctx, "Login result discarded, session ended mid-flight")
		return m.snapshotLocked(), domain.ErrSessionEnded
	}

	if err != nil {
		switch errors.KindOf(err) {
		case errors.KindInvalidCredentials:
			metrics.LoginOutcomesTotal.WithLabelValues("invalid_credentials").Inc()
		default:
			metrics.LoginOutcomesTotal.WithLabelValues("network").Inc()
		}
		return m.transitionLocked(domain.StateUnauthenticated, nil, domain.TokenPair{}), err
	}

	if err := m.creds.Save(ctx, result.Tokens); err != nil {
		// The session still works for this process; it just won't survive a
		// restart.
		slog.WarnContext(ctx, "Failed to persist credentials", "error", err)
	}

	metrics.LoginOutcomesTotal.WithLabelValues("success").Inc()
	logging.WithUser(result.Identity.UserID).InfoContext(ctx, "Login succeeded", "username", result.Identity.Username)
	identity := result.Identity
	return m.transitionLocked(domain.StateAuthenticated, &identity, result.Tokens), nil
}

// SubmitRegistration submits a registration. Success does not log the user
// in: the session returns to unauthenticated and the caller logs in
// separately. Shares the single-flight guarantee with SubmitCredentials.
func (m *Machine) SubmitRegistration(ctx context.Context, reg domain.Registration) (string, error) {
	m.mu.Lock()
	switch m.state {
	case domain.StateAuthenticating:
		m.mu.Unlock()
		return "", domain.ErrAuthInFlight
	case domain.StateAuthenticated:
		m.mu.Unlock()
		return "", domain.ErrAlreadyAuthenticated
	}
	m.transitionLocked(domain.StateAuthenticating, nil, domain.TokenPair{})
	m.mu.Unlock()

	message, err := m.gateway.Register(ctx, reg)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitionLocked(domain.StateUnauthenticated, nil, domain.TokenPair{})

	if err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "Registration succeeded", "username", reg.Username)
	return message, nil
}

// EndSession logs out. The server notification is best effort with a
// bounded timeout; local clearing happens unconditionally regardless of the
// server response.
func (m *Machine) EndSession(ctx context.Context) domain.Snapshot {
	notifyCtx, cancel := context.WithTimeout(ctx, logoutTimeout)
	defer cancel()
	if err := m.gateway.Logout(notifyCtx); err != nil {
		slog.WarnContext(ctx, "Server logout notification failed", "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.creds.Clear(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to clear credentials on logout", "error", err)
	}
	slog.InfoContext(ctx, "Session ended")
	return m.transitionLocked(domain.StateUnauthenticated, nil, domain.TokenPair{})
}

// ReportRejection is the single entry point for authorization rejections
// from any call site. Token rejection is terminal: the store is cleared and
// the session drops to unauthenticated. No-op unless authenticated.
func (m *Machine) ReportRejection(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != domain.StateAuthenticated {
		return
	}

	if err := m.creds.Clear(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to clear credentials after rejection", "error", err)
	}
	metrics.RejectionsReportedTotal.Inc()
	slog.WarnContext(ctx, "Session invalidated by authorization rejection")
	m.transitionLocked(domain.StateUnauthenticated, nil, domain.TokenPair{})
}

// --- internals (m.mu held) ---

func (m *Machine) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{State: m.state, ChangedAt: m.changedAt}
	if m.identity != nil {
		copied := *m.identity
		snap.Identity = &copied
	}
	return snap
}

func (m *Machine) transitionLocked(to domain.State, identity *domain.Identity, tokens domain.TokenPair) domain.Snapshot {
	from := m.state
	m.state = to
	m.identity = identity
	m.tokens = tokens
	m.changedAt = m.clock.Now()

	if from != to {
		metrics.AuthTransitionsTotal.WithLabelValues(from.String(), to.String()).Inc()
		slog.Debug("Session state transition", "from", from.String(), "to", to.String())
	}

	snap := m.snapshotLocked()
	for _, sub := range m.subs {
		select {
		case sub <- snap:
		default:
			// Observer is behind; it re-reads Snapshot() when it catches up.
		}
	}
	return snap
}
