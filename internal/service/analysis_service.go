package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vanshika/addrlink/internal/domain"
	"github.com/vanshika/addrlink/internal/metrics"
	"github.com/vanshika/addrlink/internal/publish"
)

// Analyzer is the analysis contract required by the service.
type Analyzer interface {
	Analyze(ctx context.Context, addresses []string, lookbackDays int) (domain.Report, error)
}

// AnalysisService runs analyses and fans the result out to metrics and the
// report publisher.
type AnalysisService struct {
	analyzer  Analyzer
	metrics   *metrics.Metrics
	publisher publish.Publisher
	logger    *slog.Logger
	nowFn     func() time.Time
}

// NewAnalysisService wires the service. metrics and publisher may be nil.
func NewAnalysisService(analyzer Analyzer, m *metrics.Metrics, publisher publish.Publisher, logger *slog.Logger) *AnalysisService {
	if publisher == nil {
		publisher = publish.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		analyzer:  analyzer,
		metrics:   m,
		publisher: publisher,
		logger:    logger,
		nowFn:     time.Now,
	}
}

// WithClock allows overriding the time source, primarily for testing.
func (s *AnalysisService) WithClock(nowFn func() time.Time) {
	if nowFn == nil {
		return
	}
	s.nowFn = nowFn
}

// Analyze runs one analysis. A report that fails to publish is still returned.
func (s *AnalysisService) Analyze(ctx context.Context, addresses []string, lookbackDays int) (domain.Report, error) {
	start := s.nowFn()

	report, err := s.analyzer.Analyze(ctx, addresses, lookbackDays)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			s.metrics.ObserveFailure(metrics.OutcomeInvalid)
		} else {
			s.metrics.ObserveFailure(metrics.OutcomeError)
		}
		return domain.Report{}, err
	}
	s.metrics.ObserveReport(report, s.nowFn().Sub(start))

	if err := s.publisher.Publish(ctx, report); err != nil {
		s.metrics.ObservePublishError()
		s.logger.Error("publish report failed",
			slog.String("report_id", report.ID),
			slog.Any("error", err),
		)
	}

	s.logger.Info("analysis finished",
		slog.String("report_id", report.ID),
		slog.Int("addresses", len(report.Addresses)),
		slog.Float64("score", report.Score),
		slog.Any("tags", report.Tags),
	)
	return report, nil
}
