package upstream

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/vamshidandi/jobportal/internal/errors"
	"github.com/vamshidandi/jobportal/internal/metrics"
)

// newBreaker builds the circuit breaker guarding upstream calls. Only
// transport-level failures count against it: an HTTP error status means the
// service answered, which is a healthy circuit.
func newBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "upstream",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.IsKind(err, errors.KindNetwork)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed",
				"component", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.UpstreamBreakerState.Set(breakerStateValue(to))
		},
	})
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
