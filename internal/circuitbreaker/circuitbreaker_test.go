package circuitbreaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/solarb/arbitrage-detector/internal/circuitbreaker"
	"github.com/sony/gobreaker/v2"
)

func TestCircuitBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	cfg := circuitbreaker.DefaultConfig("test")
	cfg.ConsecutiveFailures = 3
	cfg.Timeout = time.Hour // don't auto half-open during the test
	cb := circuitbreaker.New[int](cfg)

	failing := func() (int, error) { return 0, errors.New("boom") }

	for i := 0; i < 3; i++ {
		if _, err := cb.Execute(failing); err == nil {
			t.Fatalf("call %d: expected failure to propagate", i)
		}
	}

	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("expected breaker to be open after %d consecutive failures, got %v",
			cfg.ConsecutiveFailures, cb.State())
	}

	_, err := cb.Execute(func() (int, error) { return 42, nil })
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState while open, got %v", err)
	}
}

func TestCircuitBreaker_SuccessResetsFailureStreak(t *testing.T) {
	cfg := circuitbreaker.DefaultConfig("test")
	cfg.ConsecutiveFailures = 2
	cb := circuitbreaker.New[int](cfg)

	_, _ = cb.Execute(func() (int, error) { return 0, errors.New("boom") })
	_, _ = cb.Execute(func() (int, error) { return 1, nil })
	_, err := cb.Execute(func() (int, error) { return 0, errors.New("boom") })

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected breaker to stay closed after an interleaved success, got %v (err=%v)",
			cb.State(), err)
	}
}
