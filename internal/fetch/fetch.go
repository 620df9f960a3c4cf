package fetch

import (
	"context"

	"github.com/vanshika/addrlink/internal/helius"
)

// Fetcher retrieves provider-native transaction records for one address,
// bounded by a record count and a lookback window in days.
type Fetcher interface {
	FetchTransactions(ctx context.Context, address string, maxCount, sinceDays int) ([]helius.EnhancedTransaction, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, address string, maxCount, sinceDays int) ([]helius.EnhancedTransaction, error)

// FetchTransactions implements Fetcher.
func (f FetcherFunc) FetchTransactions(ctx context.Context, address string, maxCount, sinceDays int) ([]helius.EnhancedTransaction, error) {
	return f(ctx, address, maxCount, sinceDays)
}
