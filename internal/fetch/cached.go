package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/vanshika/addrlink/internal/helius"
)

// Cache stores raw fetch results by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// WithCache serves repeated fetches of the same address window from cache.
// Cache failures never fail the fetch; they are logged and bypassed.
func WithCache(next Fetcher, cache Cache, ttl time.Duration, logger *slog.Logger) Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &cachedFetcher{next: next, cache: cache, ttl: ttl, logger: logger}
}

type cachedFetcher struct {
	next   Fetcher
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func (f *cachedFetcher) FetchTransactions(ctx context.Context, address string, maxCount, sinceDays int) ([]helius.EnhancedTransaction, error) {
	key := CacheKey(address, maxCount, sinceDays)

	data, ok, err := f.cache.Get(ctx, key)
	switch {
	case err != nil:
		f.logger.Warn("transaction cache read failed", "address", address, "error", err)
	case ok:
		var txs []helius.EnhancedTransaction
		if err := json.Unmarshal(data, &txs); err == nil {
			return txs, nil
		}
		f.logger.Warn("discarding undecodable cache entry", "address", address)
	}

	txs, err := f.next.FetchTransactions(ctx, address, maxCount, sinceDays)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(txs)
	if err != nil {
		return txs, nil
	}
	if err := f.cache.Set(ctx, key, payload, f.ttl); err != nil {
		f.logger.Warn("transaction cache write failed", "address", address, "error", err)
	}
	return txs, nil
}

// CacheKey identifies one address window in the cache.
func CacheKey(address string, maxCount, sinceDays int) string {
	return fmt.Sprintf("txs:%s:%d:%d", address, maxCount, sinceDays)
}
