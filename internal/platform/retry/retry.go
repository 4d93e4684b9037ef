// Package retry implements the attempt loop used when calling external
// services: bounded attempts, doubling backoff, and per-error classification
// so rate limits wait longer and permanent failures abort at once.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Action tells the loop what an attempt's error means.
type Action int

const (
	// Stop aborts immediately; the error comes back wrapped in PermanentError.
	Stop Action = iota
	// Retry schedules another attempt after the current backoff.
	Retry
	// After schedules another attempt after the rate-limit backoff.
	After
)

// Classify maps an attempt's error to the loop's next move.
type Classify func(err error) Action

// Policy bounds the loop.
type Policy struct {
	MaxAttempts      int
	InitialBackoff   time.Duration
	RateLimitBackoff time.Duration

	// OnRetry runs before each wait, for logging.
	OnRetry func(attempt int, err error, backoff time.Duration)
}

type Operation[T any] func() (T, error)
type VoidOperation func() error

// Do runs op until it succeeds, classification says Stop, or MaxAttempts is
// exhausted. The wait doubles after every attempt; a rate-limited attempt
// resets it to RateLimitBackoff first.
func Do[T any](ctx context.Context, p Policy, classify Classify, op Operation[T]) (T, error) {
	var zero T
	wait := p.InitialBackoff

	for attempt := 1; ; attempt++ {
		result, err := op()
		if err == nil {
			return result, nil
		}

		action := classify(err)
		if action == Stop {
			return zero, &PermanentError{Err: err}
		}
		if attempt >= p.MaxAttempts {
			return zero, fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, err)
		}
		if action == After {
			wait = p.RateLimitBackoff
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}

		select {
		case <-time.After(wait):
			wait *= 2
		case <-ctx.Done():
			return zero, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}
}

func DoVoid(ctx context.Context, p Policy, classify Classify, op VoidOperation) error {
	_, err := Do(ctx, p, classify, func() (struct{}, error) { return struct{}{}, op() })
	return err
}

// PermanentError marks an error the loop refused to retry.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }
