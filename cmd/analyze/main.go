package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vanshika/addrlink/internal/bootstrap"
	"github.com/vanshika/addrlink/internal/config"
	"github.com/vanshika/addrlink/internal/domain"
	"github.com/vanshika/addrlink/internal/logging"
	"github.com/vanshika/addrlink/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	var (
		addresses = flag.String("addresses", "", "comma separated addresses to analyze (2-5)")
		batchPath = flag.String("batch", "", "JSON file holding an array of address groups")
		days      = flag.Int("days", cfg.Analyzer.LookbackDays, "lookback window in days")
		source    = flag.String("source", string(cfg.Analyzer.Source), "history source: helius|graph|fixture")
		fixtures  = flag.String("fixtures", cfg.Analyzer.FixtureDir, "fixture directory for -source=fixture")
		workers   = flag.Int("workers", 4, "concurrent groups in batch mode")
	)
	flag.Parse()

	cfg.Analyzer.Source = config.Source(strings.ToLower(*source))
	cfg.Analyzer.FixtureDir = *fixtures

	groups, err := loadGroups(*addresses, *batchPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	// Reports go to stdout.
	logger := logging.NewWithWriter(os.Stderr, cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build analyzer", "error", err)
		os.Exit(1)
	}
	defer app.Close(context.Background())

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if *batchPath == "" {
		report, err := app.Service.Analyze(ctx, groups[0], *days)
		if err != nil {
			logger.Error("analysis failed", "error", err)
			os.Exit(exitCode(err))
		}
		if err := encoder.Encode(report); err != nil {
			logger.Error("write report failed", "error", err)
			os.Exit(1)
		}
		return
	}

	results, runErr := service.NewBatchAnalyzer(app.Service, *workers).Run(ctx, groups, *days)
	if err := encoder.Encode(results); err != nil {
		logger.Error("write reports failed", "error", err)
		os.Exit(1)
	}
	if runErr != nil {
		logger.Error("batch finished with errors", "error", runErr)
		os.Exit(exitCode(runErr))
	}
}

func loadGroups(addresses, batchPath string) ([][]string, error) {
	switch {
	case addresses != "" && batchPath != "":
		return nil, errors.New("use either -addresses or -batch")
	case addresses != "":
		return [][]string{strings.Split(addresses, ",")}, nil
	case batchPath != "":
		data, err := os.ReadFile(batchPath)
		if err != nil {
			return nil, fmt.Errorf("read batch file: %w", err)
		}
		var groups [][]string
		if err := json.Unmarshal(data, &groups); err != nil {
			return nil, fmt.Errorf("decode batch file: %w", err)
		}
		return groups, nil
	default:
		return nil, errors.New("-addresses or -batch is required")
	}
}

func exitCode(err error) int {
	if errors.Is(err, domain.ErrInvalidInput) {
		return 2
	}
	return 1
}
