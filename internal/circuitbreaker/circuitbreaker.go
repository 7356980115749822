// Package circuitbreaker wraps gobreaker with the defaults this project's
// outbound calls (Jupiter quotes) want: trip after a run of consecutive
// failures, half-open after a cooldown, and close again once
// MaxRequestsHalfOpen half-open probes succeed (one, by default).
package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// Config controls trip/reset behavior. Use DefaultConfig and override fields
// as needed.
type Config struct {
	Name                string
	MaxRequestsHalfOpen uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
	OnStateChange       func(name string, from, to gobreaker.State)
}

// DefaultConfig returns sane defaults for a single outbound dependency named
// name: trip after 5 consecutive failures, stay open 30s, then allow a
// single half-open probe.
func DefaultConfig(name string) Config {
	return Config{
		Name:                name,
		MaxRequestsHalfOpen: 1,
		Interval:            0, // never reset counts while closed
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// CircuitBreaker wraps gobreaker.CircuitBreaker[T] with this project's
// defaults for tripping and probing.
type CircuitBreaker[T any] struct {
	inner *gobreaker.CircuitBreaker[T]
}

// New builds a circuit breaker for calls that return T.
func New[T any](cfg Config) *CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequestsHalfOpen,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: cfg.OnStateChange,
	}

	return &CircuitBreaker[T]{
		inner: gobreaker.NewCircuitBreaker[T](settings),
	}
}

// Execute runs fn through the breaker. While open, it returns
// gobreaker.ErrOpenState without calling fn.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	return c.inner.Execute(fn)
}

// State returns the current breaker state (closed/open/half-open).
func (c *CircuitBreaker[T]) State() gobreaker.State {
	return c.inner.State()
}

// Counts returns the current request/failure counters for this breaker.
func (c *CircuitBreaker[T]) Counts() gobreaker.Counts {
	return c.inner.Counts()
}
