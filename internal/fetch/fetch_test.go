package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/vanshika/addrlink/internal/helius"
	"github.com/vanshika/addrlink/internal/retry"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.sets++
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWithCacheServesSecondFetchFromCache(t *testing.T) {
	calls := 0
	next := FetcherFunc(func(ctx context.Context, address string, maxCount, sinceDays int) ([]helius.EnhancedTransaction, error) {
		calls++
		return []helius.EnhancedTransaction{{Signature: "sig-1", Timestamp: 10}}, nil
	})
	cache := newMemoryCache()
	f := WithCache(next, cache, time.Minute, discardLogger())

	for i := 0; i < 2; i++ {
		txs, err := f.FetchTransactions(context.Background(), "ADDR", 100, 30)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if len(txs) != 1 || txs[0].Signature != "sig-1" {
			t.Fatalf("fetch %d: unexpected result %+v", i, txs)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}
	if _, ok := cache.entries[CacheKey("ADDR", 100, 30)]; !ok {
		t.Errorf("expected cache entry under %s", CacheKey("ADDR", 100, 30))
	}
}

func TestWithCacheBypassesBrokenCache(t *testing.T) {
	calls := 0
	next := FetcherFunc(func(ctx context.Context, address string, maxCount, sinceDays int) ([]helius.EnhancedTransaction, error) {
		calls++
		return nil, nil
	})
	cache := newMemoryCache()
	cache.getErr = errors.New("connection refused")
	f := WithCache(next, cache, time.Minute, discardLogger())

	if _, err := f.FetchTransactions(context.Background(), "ADDR", 100, 30); err != nil {
		t.Fatalf("expected cache failure to be bypassed, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected upstream call, got %d", calls)
	}
}

func TestWithCacheDoesNotStoreErrors(t *testing.T) {
	next := FetcherFunc(func(ctx context.Context, address string, maxCount, sinceDays int) ([]helius.EnhancedTransaction, error) {
		return nil, errors.New("upstream down")
	})
	cache := newMemoryCache()
	f := WithCache(next, cache, time.Minute, discardLogger())

	if _, err := f.FetchTransactions(context.Background(), "ADDR", 100, 30); err == nil {
		t.Fatalf("expected upstream error")
	}
	if cache.sets != 0 {
		t.Errorf("expected no cache writes, got %d", cache.sets)
	}
}

func TestWithRetryRetriesTransientFailures(t *testing.T) {
	calls := 0
	next := FetcherFunc(func(ctx context.Context, address string, maxCount, sinceDays int) ([]helius.EnhancedTransaction, error) {
		calls++
		if calls == 1 {
			return nil, &helius.StatusError{StatusCode: http.StatusBadGateway}
		}
		return []helius.EnhancedTransaction{{Signature: "ok"}}, nil
	})
	f := WithRetry(next, retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}, discardLogger())

	txs, err := f.FetchTransactions(context.Background(), "ADDR", 10, 1)
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if calls != 2 || len(txs) != 1 {
		t.Errorf("expected 2 calls and 1 tx, got %d calls and %d txs", calls, len(txs))
	}
}

func TestWithRetryDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	next := FetcherFunc(func(ctx context.Context, address string, maxCount, sinceDays int) ([]helius.EnhancedTransaction, error) {
		calls++
		return nil, &helius.StatusError{StatusCode: http.StatusUnauthorized}
	})
	f := WithRetry(next, retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}, nil)

	if _, err := f.FetchTransactions(context.Background(), "ADDR", 10, 1); err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Errorf("expected a single call, got %d", calls)
	}
}

func TestFixtureSource(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	data := `[
  {"signature":"new","timestamp":` + itoa(now.Unix()-60) + `},
  {"signature":"old","timestamp":` + itoa(now.Unix()-10*86400) + `},
  {"signature":7}
]`
	if err := os.WriteFile(filepath.Join(dir, "ADDR.json"), []byte(data), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	src := NewFixtureSource(dir)
	src.WithClock(func() time.Time { return now })

	txs, err := src.FetchTransactions(context.Background(), "ADDR", 100, 7)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(txs) != 1 || txs[0].Signature != "new" {
		t.Fatalf("expected only the recent record, got %+v", txs)
	}

	missing, err := src.FetchTransactions(context.Background(), "OTHER", 100, 7)
	if err != nil {
		t.Fatalf("missing fixture: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("expected empty history for missing fixture, got %d", len(missing))
	}

	if _, err := src.FetchTransactions(context.Background(), "../etc", 100, 7); err == nil {
		t.Errorf("expected path traversal to be rejected")
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
