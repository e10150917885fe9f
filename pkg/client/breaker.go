// Package client holds the resilience helpers shared by outbound API clients.
package client

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productstore/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// StatusError is implemented by errors that carry the HTTP status of a failed call.
type StatusError interface {
	error
	StatusCode() int
}

// IsSuccessful decides what the breaker counts as a failure. Transport errors and
// 5xx/429 responses trip it; other HTTP errors are the caller's fault and do not.
func IsSuccessful(err error) bool {
	if err == nil {
		return true
	}
	var se StatusError
	if !errors.As(err, &se) {
		return false
	}
	code := se.StatusCode()
	return code < http.StatusInternalServerError && code != http.StatusTooManyRequests
}

// NewCircuitBreaker creates a breaker that opens after cfg.ConsecutiveFailures failures
// in a row, or once the failure rate exceeds cfg.ErrorRatePercent.
func NewCircuitBreaker[T any](name string, cfg config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[T] {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(total >= cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: IsSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return gobreaker.NewCircuitBreaker[T](st)
}
