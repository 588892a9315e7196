package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ErrExhausted is returned (wrapped with the last failure) when every attempt failed
var ErrExhausted = errors.New("retry attempts exhausted")

// Backoff describes an exponential retry schedule
type Backoff struct {
	// Attempts is the total number of tries, including the first one
	Attempts int
	// Initial is the wait before the second attempt
	Initial time.Duration
	// Max caps a single wait
	Max time.Duration
	// Multiplier grows the wait after each failure
	Multiplier float64
	// Jitter is the random fraction (0-1) added to or removed from each wait
	Jitter float64
}

// ConnectBackoff is used when opening store and broker connections at startup
func ConnectBackoff(attempts int, interval time.Duration) Backoff {
	return Backoff{
		Attempts:   attempts,
		Initial:    interval,
		Max:        interval * 8,
		Multiplier: 2.0,
		Jitter:     0.1,
	}
}

// PublishBackoff is used for short-lived retries of event publication
func PublishBackoff() Backoff {
	return Backoff{
		Attempts:   3,
		Initial:    100 * time.Millisecond,
		Max:        time.Second,
		Multiplier: 2.0,
		Jitter:     0.2,
	}
}

func (b Backoff) normalized() Backoff {
	if b.Attempts < 1 {
		b.Attempts = 1
	}
	if b.Initial <= 0 {
		b.Initial = 100 * time.Millisecond
	}
	if b.Max < b.Initial {
		b.Max = b.Initial
	}
	if b.Multiplier < 1 {
		b.Multiplier = 1
	}
	b.Jitter = math.Min(math.Max(b.Jitter, 0), 1)
	return b
}

// Wait returns the pause after the given failed attempt (1-based)
func (b Backoff) Wait(attempt int) time.Duration {
	b = b.normalized()
	if attempt < 1 {
		attempt = 1
	}

	d := float64(b.Initial) * math.Pow(b.Multiplier, float64(attempt-1))
	if b.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * b.Jitter
	}
	if d > float64(b.Max) {
		d = float64(b.Max)
	}
	if d <= 0 {
		d = float64(b.Initial)
	}
	return time.Duration(d)
}

// permanentError stops the retry loop
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Notify is called after a failed attempt, before waiting
type Notify func(attempt int, err error, wait time.Duration)

// Do runs op until it succeeds, returns a permanent error, the attempts run out
// or ctx is done.
func Do(ctx context.Context, b Backoff, op func(ctx context.Context) error, notify Notify) error {
	b = b.normalized()

	var lastErr error
	for attempt := 1; attempt <= b.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return joinCtx(err, lastErr)
		}

		err := op(ctx)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err

		if attempt == b.Attempts {
			break
		}

		wait := b.Wait(attempt)
		if notify != nil {
			notify(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return joinCtx(ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, b.Attempts, lastErr)
}

func joinCtx(ctxErr, lastErr error) error {
	if lastErr == nil {
		return ctxErr
	}
	return fmt.Errorf("%w (last error: %w)", ctxErr, lastErr)
}
