package analyzer

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vanshika/addrlink/internal/domain"
	"github.com/vanshika/addrlink/internal/fetch"
)

const (
	DefaultLookbackDays    = 30
	DefaultMaxTransactions = 1000
	DefaultMaxConcurrency  = 5
)

// Options tune an Analyzer. Zero values fall back to the defaults above and
// the built-in denylist.
type Options struct {
	LookbackDays    int
	MaxTransactions int
	MaxConcurrency  int
	Denylist        *Denylist
	Logger          *slog.Logger
}

// Analyzer fetches address histories and scores every pair among them.
type Analyzer struct {
	fetcher fetch.Fetcher
	opts    Options
	logger  *slog.Logger
	nowFn   func() time.Time
	idFn    func() string
}

// New constructs an Analyzer backed by the given fetcher.
func New(fetcher fetch.Fetcher, opts Options) *Analyzer {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = DefaultLookbackDays
	}
	if opts.MaxTransactions <= 0 {
		opts.MaxTransactions = DefaultMaxTransactions
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}
	if opts.Denylist == nil {
		opts.Denylist = DefaultDenylist()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		fetcher: fetcher,
		opts:    opts,
		logger:  logger,
		nowFn:   time.Now,
		idFn:    uuid.NewString,
	}
}

// WithClock overrides the time source used for report timestamps.
func (a *Analyzer) WithClock(nowFn func() time.Time) {
	if nowFn == nil {
		return
	}
	a.nowFn = nowFn
}

// Analyze validates the addresses, fetches each history concurrently and
// returns the aggregated report. Only invalid input and cancellation of ctx
// produce an error; fetch failures degrade the evidence instead.
func (a *Analyzer) Analyze(ctx context.Context, addresses []string, lookbackDays int) (domain.Report, error) {
	addrs, err := ValidateAddresses(addresses)
	if err != nil {
		return domain.Report{}, err
	}
	if lookbackDays <= 0 {
		lookbackDays = a.opts.LookbackDays
	}

	datasets, err := a.CollectDatasets(ctx, addrs, lookbackDays)
	if err != nil {
		return domain.Report{}, err
	}

	report := a.BuildReport(datasets)
	report.LookbackDays = lookbackDays

	a.logger.Debug("analysis complete",
		slog.String("report_id", report.ID),
		slog.Int("addresses", len(addrs)),
		slog.Int("pairs", len(report.Pairs)),
		slog.Float64("score", report.Score),
	)
	return report, nil
}

// CollectDatasets fetches and normalizes every address. Results keep the
// input order. A failed fetch yields an empty dataset flagged with the error.
func (a *Analyzer) CollectDatasets(ctx context.Context, addresses []string, lookbackDays int) ([]domain.AddressDataset, error) {
	datasets := make([]domain.AddressDataset, len(addresses))

	var g errgroup.Group
	g.SetLimit(min(len(addresses), a.opts.MaxConcurrency))
	for i, addr := range addresses {
		i, addr := i, addr
		g.Go(func() error {
			raw, err := a.fetcher.FetchTransactions(ctx, addr, a.opts.MaxTransactions, lookbackDays)
			if err != nil {
				a.logger.Warn("fetch transactions failed",
					slog.String("address", addr),
					slog.Any("error", err),
				)
				datasets[i] = domain.FailedAddressDataset(addr, err)
				return nil
			}
			datasets[i] = domain.NewAddressDataset(addr, NormalizeTransactions(raw))
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return datasets, nil
}

// BuildReport scores every unordered pair of datasets and aggregates the
// result. It never fails.
func (a *Analyzer) BuildReport(datasets []domain.AddressDataset) domain.Report {
	pairs := a.AnalyzePairs(datasets)

	addresses := make([]string, len(datasets))
	coverage := make([]domain.AddressCoverage, len(datasets))
	for i, ds := range datasets {
		addresses[i] = ds.Address
		coverage[i] = domain.AddressCoverage{
			Address:          ds.Address,
			TransactionCount: ds.Total,
			FetchError:       ds.FetchError,
		}
	}

	score := AggregateScore(pairs)
	return domain.Report{
		ID:           a.idFn(),
		Score:        score,
		Tags:         DeriveTags(score, pairs),
		Addresses:    addresses,
		LookbackDays: a.opts.LookbackDays,
		GeneratedAt:  a.nowFn().UTC(),
		Pairs:        pairs,
		Coverage:     coverage,
	}
}

// AnalyzePairs evaluates the C(n,2) pairs in (i, j) order with i < j.
// Each pair only reads its two datasets, so they are evaluated concurrently.
func (a *Analyzer) AnalyzePairs(datasets []domain.AddressDataset) []domain.PairResult {
	n := len(datasets)
	pairs := make([]domain.PairResult, n*(n-1)/2)

	var g errgroup.Group
	g.SetLimit(a.opts.MaxConcurrency)
	k := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			slot, i, j := k, i, j
			g.Go(func() error {
				pairs[slot] = AnalyzePair(datasets[i], datasets[j], a.opts.Denylist)
				return nil
			})
			k++
		}
	}
	_ = g.Wait()
	return pairs
}

// AnalyzePair gathers all evidence for one pair and scores it.
func AnalyzePair(a, b domain.AddressDataset, deny *Denylist) domain.PairResult {
	direct := DetectDirectLink(a, b)
	indirect := DetectIndirectLink(a, b, deny)
	tokens := DetectCommonTokens(a, b)
	return domain.PairResult{
		Addresses:    [2]string{a.Address, b.Address},
		Score:        ScorePair(direct, indirect, tokens),
		DirectLink:   direct,
		IndirectLink: indirect,
		CommonTokens: tokens,
	}
}

// AggregateScore is the mean pair score rounded to one decimal, 0 without pairs.
func AggregateScore(pairs []domain.PairResult) float64 {
	if len(pairs) == 0 {
		return 0
	}
	total := 0
	for _, p := range pairs {
		total += p.Score
	}
	mean := float64(total) / float64(len(pairs))
	return math.Round(mean*10) / 10
}

// DeriveTags returns the score bucket followed by evidence tags.
func DeriveTags(score float64, pairs []domain.PairResult) []string {
	tags := []string{bucketTag(score)}

	direct, synced := false, false
	for _, p := range pairs {
		direct = direct || p.DirectLink.Exists
		synced = synced || p.CommonTokens.CorrelatedTokenCount > 0
	}
	if direct {
		tags = append(tags, domain.TagDirectTransfer)
	}
	if synced {
		tags = append(tags, domain.TagSynchronizedTokenBuy)
	}
	return tags
}

func bucketTag(score float64) string {
	switch {
	case score >= 8:
		return domain.TagHighControl
	case score >= 5:
		return domain.TagSuspectedLink
	case score >= 3:
		return domain.TagWeakLink
	default:
		return domain.TagUnrelated
	}
}
