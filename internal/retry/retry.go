package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Class tells Do whether an error is worth another attempt.
type Class int

const (
	Retryable Class = iota
	Fatal
)

// Policy configures exponential backoff.
type Policy struct {
	MaxAttempts int           // e.g. 3
	BaseDelay   time.Duration // e.g. 200ms
	MaxDelay    time.Duration // e.g. 2s
	Jitter      time.Duration // e.g. 100ms (<= BaseDelay recommended)

	// AttemptTimeout bounds each call to fn. Zero means no per-attempt bound.
	AttemptTimeout time.Duration

	// Classify decides whether an error is retryable.
	// If nil, context errors are fatal and everything else is retried.
	Classify func(error) Class

	// OnRetry is optional hook for logging/metrics.
	OnRetry func(attempt int, wait time.Duration, err error)
}

// DefaultClassify treats cancellation of the parent context as fatal.
func DefaultClassify(err error) Class {
	if errors.Is(err, context.Canceled) {
		return Fatal
	}
	return Retryable
}

// Do runs fn until it succeeds, the policy is exhausted, fn fails with a
// fatal error, or ctx is done.
func Do(ctx context.Context, p Policy, fn func(context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 100 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 5 * time.Second
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}

	classify := p.Classify
	if classify == nil {
		classify = DefaultClassify
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := runAttempt(ctx, p.AttemptTimeout, fn)
		if err == nil {
			return nil
		}
		lastErr = err

		if classify(err) == Fatal {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}

		wait := backoff(p, attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, wait, err)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = errors.New("retry: exhausted with no error")
	}
	return lastErr
}

func runAttempt(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}

// backoff doubles BaseDelay per attempt, capped at MaxDelay, plus jitter.
func backoff(p Policy, attempt int) time.Duration {
	wait := p.BaseDelay << (attempt - 1)
	if wait <= 0 || wait > p.MaxDelay {
		wait = p.MaxDelay
	}
	if p.Jitter > 0 {
		wait += time.Duration(rand.Int63n(int64(p.Jitter)))
	}
	return wait
}
