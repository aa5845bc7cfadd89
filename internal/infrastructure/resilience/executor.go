package resilience

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
)

// Verdict says what a failed attempt means for the retry loop and the breaker.
type Verdict struct {
	Retry bool
	Trip  bool
}

type Classifier func(err error) Verdict

// Executor runs outbound calls with retries and one circuit breaker per
// operation name.
type Executor struct {
	policy Policy
	logger *slog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[struct{}]
}

func NewExecutor(policy Policy, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		policy:   policy.withDefaults(),
		logger:   logger,
		breakers: make(map[string]*gobreaker.CircuitBreaker[struct{}]),
	}
}

// Do calls fn until it succeeds, the classifier rejects a retry, attempts run
// out or ctx ends. The last error is returned.
func (e *Executor) Do(ctx context.Context, operation string, fn func(context.Context) error, classify Classifier) error {
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unknown"
	}
	if classify == nil {
		classify = TemporaryOnly
	}

	if !e.policy.Breaker.Enabled {
		return e.retry(ctx, op, fn, classify)
	}
	_, err := e.breaker(op, classify).Execute(func() (struct{}, error) {
		return struct{}{}, e.retry(ctx, op, fn, classify)
	})
	return err
}

// State reports the breaker state of operation; closed when never used.
func (e *Executor) State(operation string) gobreaker.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cb, ok := e.breakers[operation]; ok {
		return cb.State()
	}
	return gobreaker.StateClosed
}

func (e *Executor) retry(ctx context.Context, op string, fn func(context.Context) error, classify Classifier) error {
	var err error
	for attempt := 1; attempt <= e.policy.Attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return err
			}
			return ctxErr
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !classify(err).Retry || attempt == e.policy.Attempts {
			return err
		}

		wait := e.policy.backoff(attempt)
		e.logger.Warn("retry_attempt",
			"operation", op,
			"attempt", attempt,
			"max_attempts", e.policy.Attempts,
			"backoff_ms", float64(wait.Microseconds())/1000.0,
			"error", err,
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}

func (e *Executor) breaker(op string, classify Classifier) *gobreaker.CircuitBreaker[struct{}] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cb, ok := e.breakers[op]; ok {
		return cb
	}

	bp := e.policy.Breaker
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        op,
		MaxRequests: bp.HalfOpenMaxCalls,
		Timeout:     bp.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bp.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= bp.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !classify(err).Trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.logger.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
		},
	})
	e.breakers[op] = cb
	return cb
}

// IsCircuitOpen reports whether err was produced by a rejecting breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// TemporaryOnly retries errors of kind domain.ErrTemporary and trips the
// breaker on everything except cancellation.
func TemporaryOnly(err error) Verdict {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Verdict{}
	}
	return Verdict{Retry: domain.IsKind(err, domain.ErrTemporary), Trip: true}
}
