package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP     HTTPConfig
	Graph    GraphConfig
	Logging  LoggingConfig
	Analyzer AnalyzerConfig
	Helius   HeliusConfig
	Fetch    FetchConfig
	Cache    CacheConfig
	Kafka    KafkaConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MetricsEnabled    bool
	AllowedOriginsCSV string
}

// AllowedOrigins splits AllowedOriginsCSV into trimmed, non-empty origins.
func (c HTTPConfig) AllowedOrigins() []string {
	return splitCSV(c.AllowedOriginsCSV)
}

// GraphConfig describes connectivity to the indexer's Neo4j transfer graph.
// An empty URI disables the graph source.
type GraphConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

// Source selects where transaction histories come from.
type Source string

const (
	SourceHelius  Source = "helius"
	SourceGraph   Source = "graph"
	SourceFixture Source = "fixture"
)

// AnalyzerConfig tunes analysis runs.
type AnalyzerConfig struct {
	LookbackDays    int
	MaxTransactions int
	MaxConcurrency  int
	Source          Source
	FixtureDir      string
	// Denylist entries extend the built-in program list.
	Denylist        []string
	DenylistFile    string
}

// HeliusConfig configures the enhanced transactions API client.
type HeliusConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// FetchConfig bounds each history fetch.
type FetchConfig struct {
	Timeout        time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// CacheConfig configures the redis history cache. An empty Addr disables it.
type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// KafkaConfig configures report publishing. No brokers disables it.
type KafkaConfig struct {
	Brokers     []string
	ReportTopic string
}

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 60 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphMaxSessions = 10

	defaultLookbackDays    = 30
	defaultMaxTransactions = 1000
	defaultMaxConcurrency  = 5
	defaultHeliusBaseURL   = "https://api.helius.xyz"
	defaultHeliusTimeout   = 30 * time.Second
	defaultFetchTimeout    = 45 * time.Second
	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxDelay   = 5 * time.Second
	defaultCacheTTL        = 5 * time.Minute
	defaultReportTopic     = "addrlink.reports"
)

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Host:              valueOrDefault("SERVER_HOST", defaultHost),
			MetricsEnabled:    parseBoolWithDefault("SERVER_METRICS_ENABLED", false),
			AllowedOriginsCSV: os.Getenv("SERVER_ALLOWED_ORIGINS"),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
		Graph: GraphConfig{
			URI:            os.Getenv("GRAPH_URI"),
			Database:       valueOrDefault("GRAPH_DATABASE", ""),
			Username:       os.Getenv("GRAPH_USERNAME"),
			Password:       os.Getenv("GRAPH_PASSWORD"),
			MaxConnections: parseIntWithDefault("GRAPH_MAX_CONNECTIONS", defaultGraphMaxSessions),
		},
		Analyzer: AnalyzerConfig{
			LookbackDays:    parseIntWithDefault("ANALYZER_LOOKBACK_DAYS", defaultLookbackDays),
			MaxTransactions: parseIntWithDefault("ANALYZER_MAX_TRANSACTIONS", defaultMaxTransactions),
			MaxConcurrency:  parseIntWithDefault("ANALYZER_MAX_CONCURRENCY", defaultMaxConcurrency),
			Source:          Source(strings.ToLower(valueOrDefault("ANALYZER_SOURCE", string(SourceHelius)))),
			FixtureDir:      valueOrDefault("ANALYZER_FIXTURE_DIR", "fixtures"),
			Denylist:        splitCSV(os.Getenv("ANALYZER_DENYLIST")),
			DenylistFile:    os.Getenv("ANALYZER_DENYLIST_FILE"),
		},
		Helius: HeliusConfig{
			APIKey:  os.Getenv("HELIUS_API_KEY"),
			BaseURL: valueOrDefault("HELIUS_BASE_URL", defaultHeliusBaseURL),
		},
		Fetch: FetchConfig{
			RetryAttempts: parseIntWithDefault("FETCH_RETRY_ATTEMPTS", defaultRetryAttempts),
		},
		Cache: CacheConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       parseIntWithDefault("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:     splitCSV(os.Getenv("KAFKA_BROKERS")),
			ReportTopic: valueOrDefault("KAFKA_REPORT_TOPIC", defaultReportTopic),
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", defaultReadTimeout, &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", defaultWriteTimeout, &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", defaultIdleTimeout, &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout, &cfg.HTTP.ShutdownTimeout},
		{"HELIUS_TIMEOUT", defaultHeliusTimeout, &cfg.Helius.Timeout},
		{"FETCH_TIMEOUT", defaultFetchTimeout, &cfg.Fetch.Timeout},
		{"FETCH_RETRY_BASE_DELAY", defaultRetryBaseDelay, &cfg.Fetch.RetryBaseDelay},
		{"FETCH_RETRY_MAX_DELAY", defaultRetryMaxDelay, &cfg.Fetch.RetryMaxDelay},
		{"CACHE_TTL", defaultCacheTTL, &cfg.Cache.TTL},
	}
	for _, d := range durations {
		v, err := parseDuration(d.key, d.fallback)
		if err != nil {
			return Config{}, err
		}
		*d.dst = v
	}

	switch cfg.Analyzer.Source {
	case SourceHelius, SourceGraph, SourceFixture:
	default:
		return Config{}, fmt.Errorf("invalid ANALYZER_SOURCE %q", cfg.Analyzer.Source)
	}
	if cfg.Analyzer.MaxConcurrency <= 0 {
		cfg.Analyzer.MaxConcurrency = defaultMaxConcurrency
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
