package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanshika/addrlink/internal/config"
	"github.com/vanshika/addrlink/internal/fetch"
	"github.com/vanshika/addrlink/internal/graph"
	"github.com/vanshika/addrlink/internal/helius"
	"github.com/vanshika/addrlink/internal/repository"
)

func TestBuildSource(t *testing.T) {
	cfg := config.Config{}

	cfg.Analyzer.Source = config.SourceHelius
	if _, err := BuildSource(cfg, nil); !errors.Is(err, helius.ErrMissingAPIKey) {
		t.Fatalf("expected missing api key, got %v", err)
	}
	cfg.Helius.APIKey = "key"
	if src, err := BuildSource(cfg, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	} else if _, ok := src.(*helius.Client); !ok {
		t.Fatalf("expected helius client, got %T", src)
	}

	cfg.Analyzer.Source = config.SourceGraph
	if _, err := BuildSource(cfg, nil); !errors.Is(err, graph.ErrMissingURI) {
		t.Fatalf("expected missing graph, got %v", err)
	}
	if src, err := BuildSource(cfg, graph.NewMemoryClient()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	} else if _, ok := src.(*repository.TransferSource); !ok {
		t.Fatalf("expected transfer source, got %T", src)
	}

	cfg.Analyzer.Source = config.SourceFixture
	if src, err := BuildSource(cfg, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	} else if _, ok := src.(*fetch.FixtureSource); !ok {
		t.Fatalf("expected fixture source, got %T", src)
	}
}

func TestLoadDenylist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deny.txt")
	content := "# custom hubs\n11111111111111111111111111111111\n\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	deny, err := LoadDenylist(config.AnalyzerConfig{DenylistFile: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deny.Contains("11111111111111111111111111111111") {
		t.Fatalf("file entry missing")
	}
	if !deny.Contains("JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4") {
		t.Fatalf("built-in entry missing")
	}

	if _, err := LoadDenylist(config.AnalyzerConfig{Denylist: []string{"nope"}}); err == nil {
		t.Fatalf("expected invalid entry error")
	}
	if _, err := LoadDenylist(config.AnalyzerConfig{DenylistFile: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestBuildFixtureApp(t *testing.T) {
	cfg := config.Config{
		Analyzer: config.AnalyzerConfig{Source: config.SourceFixture, FixtureDir: t.TempDir()},
		Fetch:    config.FetchConfig{RetryAttempts: 1, Timeout: time.Second},
	}
	app, err := Build(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer app.Close(context.Background())

	if app.Graph != nil || app.Cache != nil {
		t.Fatalf("optional dependencies should stay nil")
	}
	report, err := app.Service.Analyze(context.Background(), []string{
		"11111111111111111111111111111111",
		"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4",
	}, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Pairs[0].Score != 1 {
		t.Fatalf("empty fixtures should floor, got %d", report.Pairs[0].Score)
	}
}
