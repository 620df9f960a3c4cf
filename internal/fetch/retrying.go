package fetch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vanshika/addrlink/internal/helius"
	"github.com/vanshika/addrlink/internal/retry"
)

// WithRetry wraps next so each fetch is retried according to policy. Client
// errors from the provider and parent cancellation are not retried.
func WithRetry(next Fetcher, policy retry.Policy, logger *slog.Logger) Fetcher {
	if policy.Classify == nil {
		policy.Classify = classifyFetchError
	}
	return &retryingFetcher{next: next, policy: policy, logger: logger}
}

type retryingFetcher struct {
	next   Fetcher
	policy retry.Policy
	logger *slog.Logger
}

func (f *retryingFetcher) FetchTransactions(ctx context.Context, address string, maxCount, sinceDays int) ([]helius.EnhancedTransaction, error) {
	policy := f.policy
	if f.logger != nil {
		policy.OnRetry = func(attempt int, wait time.Duration, err error) {
			f.logger.Warn("fetch attempt failed, retrying",
				"address", address,
				"attempt", attempt,
				"wait_ms", wait.Milliseconds(),
				"error", err,
			)
		}
	}

	var txs []helius.EnhancedTransaction
	err := retry.Do(ctx, policy, func(attemptCtx context.Context) error {
		res, err := f.next.FetchTransactions(attemptCtx, address, maxCount, sinceDays)
		if err != nil {
			return err
		}
		txs = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func classifyFetchError(err error) retry.Class {
	if errors.Is(err, context.Canceled) {
		return retry.Fatal
	}
	var statusErr *helius.StatusError
	if errors.As(err, &statusErr) && !statusErr.Retryable() {
		return retry.Fatal
	}
	return retry.Retryable
}
