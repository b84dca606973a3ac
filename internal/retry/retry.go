// Package retry provides the single bounded-retry-with-delay executor used
// around every fallible, possibly-transient operation in the pipeline:
// transcript fetch, document generation, export rendering. Delay and attempt
// count are configuration, not per-call-site constants.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// ErrEmptyResult marks an operation that succeeded but produced an empty
// payload. Empty results are retryable failures, never zero-length successes.
var ErrEmptyResult = errors.New("operation returned an empty result")

// Permanent marks err as non-retryable; the executor stops immediately and
// surfaces it.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Executor runs operations up to a bounded number of attempts with a fixed
// delay between them.
type Executor struct {
	maxAttempts uint
	delay       time.Duration
	logger      *zap.Logger
}

// NewExecutor creates an executor. maxAttempts below 1 is treated as 1.
func NewExecutor(maxAttempts uint, delay time.Duration, logger *zap.Logger) *Executor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Executor{maxAttempts: maxAttempts, delay: delay, logger: logger}
}

type settings[T any] struct {
	onAttempt func(attempt int)
	isEmpty   func(T) bool
}

// Option customizes a single Do call.
type Option[T any] func(*settings[T])

// WithAttemptHook invokes fn before each attempt (1-based). The pipeline uses
// this to nudge progress upward per retry; the executor itself has no
// progress policy.
func WithAttemptHook[T any](fn func(attempt int)) Option[T] {
	return func(s *settings[T]) { s.onAttempt = fn }
}

// WithEmptyCheck treats results for which fn returns true as ErrEmptyResult,
// making them retryable instead of zero-length successes.
func WithEmptyCheck[T any](fn func(T) bool) Option[T] {
	return func(s *settings[T]) { s.isEmpty = fn }
}

// Do executes op until it yields a usable result, up to the executor's
// attempt limit. The last failure is propagated with the operation name and
// attempt count; nothing is swallowed.
func Do[T any](ctx context.Context, ex *Executor, name string, op func(context.Context) (T, error), opts ...Option[T]) (T, error) {
	var cfg settings[T]
	for _, opt := range opts {
		opt(&cfg)
	}

	attempt := 0
	operation := func() (T, error) {
		attempt++
		if cfg.onAttempt != nil {
			cfg.onAttempt(attempt)
		}

		value, err := op(ctx)
		if err != nil {
			ex.logger.Warn("attempt failed",
				zap.String("operation", name),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return value, err
		}
		if cfg.isEmpty != nil && cfg.isEmpty(value) {
			ex.logger.Warn("attempt returned empty result",
				zap.String("operation", name),
				zap.Int("attempt", attempt),
			)
			var zero T
			return zero, ErrEmptyResult
		}
		return value, nil
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(ex.delay)),
		backoff.WithMaxTries(ex.maxAttempts),
	)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s failed after %d attempt(s): %w", name, attempt, err)
	}
	return result, nil
}

// IsEmptyString is the empty check used for text-producing operations.
func IsEmptyString(s string) bool { return s == "" }
