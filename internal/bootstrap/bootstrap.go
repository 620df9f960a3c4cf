package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/vanshika/addrlink/internal/analyzer"
	"github.com/vanshika/addrlink/internal/cache"
	"github.com/vanshika/addrlink/internal/config"
	"github.com/vanshika/addrlink/internal/fetch"
	"github.com/vanshika/addrlink/internal/graph"
	"github.com/vanshika/addrlink/internal/helius"
	"github.com/vanshika/addrlink/internal/metrics"
	"github.com/vanshika/addrlink/internal/publish"
	"github.com/vanshika/addrlink/internal/repository"
	"github.com/vanshika/addrlink/internal/retry"
	"github.com/vanshika/addrlink/internal/service"
)

// App holds the wired components shared by the binaries.
type App struct {
	Analyzer  *analyzer.Analyzer
	Service   *service.AnalysisService
	Metrics   *metrics.Metrics
	Publisher publish.Publisher
	// Graph and Cache are nil when not configured.
	Graph     graph.Client
	Cache     *cache.RedisCache

	logger *slog.Logger
}

// Build wires the analyzer and its collaborators from cfg. Optional
// dependencies (graph, redis, kafka) are only connected when configured.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	app := &App{logger: logger, Publisher: publish.Nop{}}

	if cfg.Graph.URI != "" {
		client, err := graph.NewNeo4jClient(ctx, graph.Options{
			URI:            cfg.Graph.URI,
			Database:       cfg.Graph.Database,
			Username:       cfg.Graph.Username,
			Password:       cfg.Graph.Password,
			MaxConnections: cfg.Graph.MaxConnections,
		})
		if err != nil {
			return nil, fmt.Errorf("connect graph: %w", err)
		}
		app.Graph = client
	}

	if cfg.Cache.Addr != "" && cfg.Analyzer.Source != config.SourceFixture {
		rc, err := cache.NewRedisCache(ctx, cache.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			app.Close(ctx)
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		app.Cache = rc
	}

	if len(cfg.Kafka.Brokers) > 0 {
		pub, err := publish.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.ReportTopic)
		if err != nil {
			app.Close(ctx)
			return nil, fmt.Errorf("connect kafka: %w", err)
		}
		app.Publisher = pub
	}

	source, err := BuildSource(cfg, app.Graph)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}

	fetcher := source
	if cfg.Analyzer.Source != config.SourceFixture {
		fetcher = fetch.WithRetry(fetcher, RetryPolicy(cfg.Fetch), logger)
	}
	if app.Cache != nil {
		fetcher = fetch.WithCache(fetcher, app.Cache, cfg.Cache.TTL, logger)
	}

	deny, err := LoadDenylist(cfg.Analyzer)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}

	app.Analyzer = analyzer.New(fetcher, analyzer.Options{
		LookbackDays:    cfg.Analyzer.LookbackDays,
		MaxTransactions: cfg.Analyzer.MaxTransactions,
		MaxConcurrency:  cfg.Analyzer.MaxConcurrency,
		Denylist:        deny,
		Logger:          logger,
	})
	app.Metrics = metrics.New()
	app.Service = service.NewAnalysisService(app.Analyzer, app.Metrics, app.Publisher, logger)

	logger.Info("analyzer ready",
		slog.String("source", string(cfg.Analyzer.Source)),
		slog.Bool("cache", app.Cache != nil),
		slog.Bool("graph", app.Graph != nil),
		slog.Bool("kafka", len(cfg.Kafka.Brokers) > 0),
		slog.Int("denylist", deny.Len()),
	)
	return app, nil
}

// BuildSource returns the raw history source selected by cfg.
func BuildSource(cfg config.Config, graphClient graph.Client) (fetch.Fetcher, error) {
	switch cfg.Analyzer.Source {
	case config.SourceHelius:
		client, err := helius.NewClient(helius.Options{
			APIKey:  cfg.Helius.APIKey,
			BaseURL: cfg.Helius.BaseURL,
			Timeout: cfg.Helius.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("helius source: %w", err)
		}
		return client, nil
	case config.SourceGraph:
		if graphClient == nil {
			return nil, fmt.Errorf("graph source: %w", graph.ErrMissingURI)
		}
		return repository.NewTransferSource(graphClient), nil
	case config.SourceFixture:
		return fetch.NewFixtureSource(cfg.Analyzer.FixtureDir), nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Analyzer.Source)
	}
}

// RetryPolicy maps fetch settings onto a retry policy.
func RetryPolicy(cfg config.FetchConfig) retry.Policy {
	return retry.Policy{
		MaxAttempts:    cfg.RetryAttempts,
		BaseDelay:      cfg.RetryBaseDelay,
		MaxDelay:       cfg.RetryMaxDelay,
		Jitter:         cfg.RetryBaseDelay / 2,
		AttemptTimeout: cfg.Timeout,
	}
}

// LoadDenylist merges the built-in list with configured entries and the
// optional one-address-per-line file.
func LoadDenylist(cfg config.AnalyzerConfig) (*analyzer.Denylist, error) {
	entries := append([]string(nil), cfg.Denylist...)
	if cfg.DenylistFile != "" {
		data, err := os.ReadFile(cfg.DenylistFile)
		if err != nil {
			return nil, fmt.Errorf("read denylist file: %w", err)
		}
		entries = append(entries, strings.Split(string(data), "\n")...)
	}

	extra, err := analyzer.ParseDenylist(entries)
	if err != nil {
		return nil, err
	}
	return analyzer.DefaultDenylist().Merge(extra), nil
}

// Close releases every connected dependency.
func (a *App) Close(ctx context.Context) {
	var errs []error
	if a.Publisher != nil {
		errs = append(errs, a.Publisher.Close())
	}
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if a.Graph != nil {
		errs = append(errs, a.Graph.Close(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("closing dependencies failed", "error", err)
	}
}
