// Package resilience builds circuit breakers for calls to downstream dependencies.
package resilience

import (
	"log/slog"

	"github.com/abgdnv/meiasjamais/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// NewCircuitBreaker creates a breaker that opens once failures exceed cfg's thresholds.
// isSuccessful decides which errors are system failures; errors it accepts never trip the breaker.
// A nil isSuccessful counts every non-nil error as a failure.
func NewCircuitBreaker(name string, cfg config.CircuitBreakerConfig, isSuccessful func(error) bool, logger *slog.Logger) *gobreaker.CircuitBreaker[any] {
	st := gobreaker.Settings{
		Name:         name,
		MaxRequests:  cfg.MaxRequests,
		Timeout:      cfg.OpenTimeout,
		ReadyToTrip:  readyToTrip(cfg),
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return gobreaker.NewCircuitBreaker[any](st)
}

func readyToTrip(cfg config.CircuitBreakerConfig) func(gobreaker.Counts) bool {
	return func(counts gobreaker.Counts) bool {
		if counts.ConsecutiveFailures >= cfg.ConsecutiveFailures {
			return true
		}
		total := counts.TotalSuccesses + counts.TotalFailures
		return total >= cfg.ConsecutiveFailures &&
			float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent)
	}
}
