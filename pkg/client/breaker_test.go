package client

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/abgdnv/productstore/pkg/config"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) StatusCode() int { return int(e) }

func Test_IsSuccessful(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: true},
		{name: "transport error", err: errors.New("connection refused"), expected: false},
		{name: "not found", err: statusErr(http.StatusNotFound), expected: true},
		{name: "bad request", err: statusErr(http.StatusBadRequest), expected: true},
		{name: "too many requests", err: statusErr(http.StatusTooManyRequests), expected: false},
		{name: "server error", err: statusErr(http.StatusInternalServerError), expected: false},
		{name: "wrapped server error", err: fmt.Errorf("call: %w", statusErr(http.StatusBadGateway)), expected: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsSuccessful(tc.err))
		})
	}
}

func Test_CircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	// given
	cfg := config.CircuitBreakerConfig{
		ConsecutiveFailures: 3,
		ErrorRatePercent:    100,
		OpenTimeout:         time.Minute,
		HalfOpenRequests:    1,
	}
	cb := NewCircuitBreaker[int]("test", cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	calls := 0
	failing := func() (int, error) {
		calls++
		return 0, statusErr(http.StatusServiceUnavailable)
	}

	// when
	for i := 0; i < 3; i++ {
		_, err := cb.Execute(failing)
		require.Error(t, err)
	}
	_, err := cb.Execute(failing)

	// then
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, calls, "open breaker must not call through")
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}

func Test_CircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	cfg := config.CircuitBreakerConfig{ConsecutiveFailures: 2, ErrorRatePercent: 50, OpenTimeout: time.Minute, HalfOpenRequests: 1}
	cb := NewCircuitBreaker[int]("test", cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	for i := 0; i < 5; i++ {
		_, err := cb.Execute(func() (int, error) { return 0, statusErr(http.StatusNotFound) })
		require.Error(t, err)
		require.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
