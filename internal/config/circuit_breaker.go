package config

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// NewCircuitBreaker creates a circuit breaker with standard settings.
// The name parameter uniquely identifies the circuit breaker instance.
func NewCircuitBreaker(name string, log zerolog.Logger) *gobreaker.CircuitBreaker {
	var timeout time.Duration

	// Open-state timeout per dependency; Redis stays aligned with the 5s health check.
	switch name {
	case "Redis":
		timeout = 5 * time.Second
	case "PostgreSQL", "Relay-PostgreSQL":
		timeout = 10 * time.Second
	default:
		timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})
}
