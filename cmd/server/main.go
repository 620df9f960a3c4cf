package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vanshika/addrlink/internal/bootstrap"
	"github.com/vanshika/addrlink/internal/config"
	"github.com/vanshika/addrlink/internal/logging"
	"github.com/vanshika/addrlink/internal/server"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build analyzer", "error", err)
		os.Exit(1)
	}
	defer app.Close(context.Background())

	health := server.HealthChecks{}
	if app.Graph != nil {
		health = append(health, server.NamedProbe{Name: "graph", Probe: server.GraphHealthService{Client: app.Graph}})
	}
	if app.Cache != nil {
		health = append(health, server.NamedProbe{Name: "redis", Probe: app.Cache})
	}

	var metricsHandler http.Handler
	if cfg.HTTP.MetricsEnabled {
		metricsHandler = app.Metrics.Handler()
	}

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           health,
		API:              server.NewAPIHandlers(logger, app.Service),
		Metrics:          metricsHandler,
		AllowedOrigins:   cfg.HTTP.AllowedOrigins(),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped unexpectedly", "error", err)
		os.Exit(1)
	}
}
