package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vanshika/addrlink/internal/domain"
	"github.com/vanshika/addrlink/internal/metrics"
)

type stubAnalyzer struct {
	mu     sync.Mutex
	calls  int
	report domain.Report
	errFor map[string]error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, addresses []string, lookbackDays int) (domain.Report, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if len(addresses) > 0 {
		if err := s.errFor[addresses[0]]; err != nil {
			return domain.Report{}, err
		}
	}
	report := s.report
	report.Addresses = addresses
	report.LookbackDays = lookbackDays
	return report, nil
}

type stubPublisher struct {
	published []domain.Report
	err       error
}

func (p *stubPublisher) Publish(ctx context.Context, report domain.Report) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, report)
	return nil
}

func (p *stubPublisher) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnalysisService_PublishesAndRecords(t *testing.T) {
	an := &stubAnalyzer{report: domain.Report{ID: "r1", Score: 10, Tags: []string{domain.TagHighControl}, Pairs: []domain.PairResult{{Score: 10}}}}
	pub := &stubPublisher{}
	m := metrics.New()
	svc := NewAnalysisService(an, m, pub, discardLogger())

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return now })

	report, err := svc.Analyze(context.Background(), []string{"a", "b"}, 7)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.ID != "r1" || report.LookbackDays != 7 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(pub.published) != 1 || pub.published[0].ID != "r1" {
		t.Fatalf("expected report to be published, got %+v", pub.published)
	}
	if got := testutil.ToFloat64(m.Runs.WithLabelValues(metrics.OutcomeOK)); got != 1 {
		t.Fatalf("expected ok run recorded, got %v", got)
	}
	if got := testutil.ToFloat64(m.PairScores.WithLabelValues("10")); got != 1 {
		t.Fatalf("expected pair score recorded, got %v", got)
	}
}

func TestAnalysisService_PublishFailureKeepsReport(t *testing.T) {
	an := &stubAnalyzer{report: domain.Report{ID: "r2"}}
	m := metrics.New()
	svc := NewAnalysisService(an, m, &stubPublisher{err: errors.New("broker down")}, discardLogger())

	report, err := svc.Analyze(context.Background(), []string{"a", "b"}, 30)
	if err != nil {
		t.Fatalf("publish failure should not fail analysis: %v", err)
	}
	if report.ID != "r2" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if got := testutil.ToFloat64(m.PublishErrors); got != 1 {
		t.Fatalf("expected publish error counted, got %v", got)
	}
}

func TestAnalysisService_InvalidInput(t *testing.T) {
	invalid := errors.Join(domain.ErrInvalidInput, errors.New("one address"))
	an := &stubAnalyzer{errFor: map[string]error{"a": invalid}}
	m := metrics.New()
	pub := &stubPublisher{}
	svc := NewAnalysisService(an, m, pub, discardLogger())

	if _, err := svc.Analyze(context.Background(), []string{"a"}, 30); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(pub.published) != 0 {
		t.Fatalf("nothing should be published")
	}
	if got := testutil.ToFloat64(m.Runs.WithLabelValues(metrics.OutcomeInvalid)); got != 1 {
		t.Fatalf("expected invalid run recorded, got %v", got)
	}
}

func TestAnalysisService_NilCollaborators(t *testing.T) {
	svc := NewAnalysisService(&stubAnalyzer{report: domain.Report{ID: "r3"}}, nil, nil, nil)
	if _, err := svc.Analyze(context.Background(), []string{"a", "b"}, 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBatchAnalyzer_Run(t *testing.T) {
	bad := errors.Join(domain.ErrInvalidInput, errors.New("duplicate"))
	an := &stubAnalyzer{report: domain.Report{ID: "batch"}, errFor: map[string]error{"x": bad}}
	ba := NewBatchAnalyzer(an, 2)

	groups := [][]string{{"a", "b"}, {"x", "x"}, {"c", "d", "e"}}
	results, err := ba.Run(context.Background(), groups, 14)

	var taskErr *TaskError
	if !errors.As(err, &taskErr) || len(taskErr.Errors) != 1 {
		t.Fatalf("expected one task error, got %v", err)
	}
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected task error to unwrap to ErrInvalidInput")
	}
	if len(results) != 3 || an.calls != 3 {
		t.Fatalf("expected all groups processed, got %d results / %d calls", len(results), an.calls)
	}
	if results[0].Report == nil || results[0].Report.LookbackDays != 14 {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
	if results[1].Report != nil || results[1].Error == "" {
		t.Fatalf("expected second group to fail, got %+v", results[1])
	}
	if len(results[2].Report.Addresses) != 3 {
		t.Fatalf("results out of order: %+v", results[2])
	}
}

func TestBatchAnalyzer_Empty(t *testing.T) {
	results, err := NewBatchAnalyzer(&stubAnalyzer{}, 0).Run(context.Background(), nil, 30)
	if err != nil || len(results) != 0 {
		t.Fatalf("expected empty run, got %v / %v", results, err)
	}
}

func TestBatchAnalyzer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBatchAnalyzer(&stubAnalyzer{}, 2).Run(ctx, [][]string{{"a", "b"}}, 30)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
