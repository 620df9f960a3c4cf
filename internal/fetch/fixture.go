package fetch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/vanshika/addrlink/internal/helius"
)

// FixtureSource serves transaction histories from <dir>/<address>.json files,
// each holding a JSON array of raw records. A missing file is an empty history.
type FixtureSource struct {
	dir   string
	nowFn func() time.Time
}

// NewFixtureSource returns a source rooted at dir.
func NewFixtureSource(dir string) *FixtureSource {
	return &FixtureSource{dir: dir, nowFn: time.Now}
}

// WithClock overrides the time provider used for the lookback cutoff.
func (s *FixtureSource) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// FetchTransactions implements Fetcher.
func (s *FixtureSource) FetchTransactions(ctx context.Context, address string, maxCount, sinceDays int) ([]helius.EnhancedTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if filepath.Base(address) != address {
		return nil, fmt.Errorf("invalid fixture address %q", address)
	}

	path := filepath.Join(s.dir, address+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []helius.EnhancedTransaction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}

	txs, _, err := helius.DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return helius.TrimWindow(txs, maxCount, helius.Since(s.nowFn(), sinceDays)), nil
}
