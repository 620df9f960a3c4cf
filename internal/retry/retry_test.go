package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	var retried []int
	err := Do(context.Background(), Policy{
		MaxAttempts: 4,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
		OnRetry: func(attempt int, _ time.Duration, _ error) {
			retried = append(retried, attempt)
		},
	}, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if len(retried) != 2 {
		t.Errorf("expected 2 retry hooks, got %d", len(retried))
	}
}

func TestDoStopsOnFatal(t *testing.T) {
	fatal := errors.New("bad request")
	attempts := 0
	err := Do(context.Background(), Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		Classify: func(err error) Class {
			if errors.Is(err, fatal) {
				return Fatal
			}
			return Retryable
		},
	}, func(context.Context) error {
		attempts++
		return fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected a single attempt, got %d", attempts)
	}
}

func TestDoReturnsLastErrorWhenExhausted(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}, func(context.Context) error {
		attempts++
		return errors.New("still failing")
	})
	if err == nil || err.Error() != "still failing" {
		t.Fatalf("expected last error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoAppliesAttemptTimeout(t *testing.T) {
	err := Do(context.Background(), Policy{MaxAttempts: 1, AttemptTimeout: 5 * time.Millisecond}, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestBackoffIsCapped(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond, MaxDelay: 250 * time.Millisecond}
	if got := backoff(p, 1); got != 100*time.Millisecond {
		t.Errorf("attempt 1: got %v", got)
	}
	if got := backoff(p, 2); got != 200*time.Millisecond {
		t.Errorf("attempt 2: got %v", got)
	}
	if got := backoff(p, 5); got != 250*time.Millisecond {
		t.Errorf("attempt 5: got %v", got)
	}
}
