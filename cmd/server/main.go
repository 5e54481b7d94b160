package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"simtax/internal/platform/config"
	"simtax/internal/platform/httpserver"
	"simtax/internal/platform/logger"
	"simtax/internal/platform/metrics"
	"simtax/internal/platform/redis"
	"simtax/internal/simplifiedtax"
	"simtax/internal/simplifiedtax/adapters"
	"simtax/internal/simplifiedtax/handler"
	taxmetrics "simtax/internal/simplifiedtax/metrics"
	"simtax/internal/simplifiedtax/ports"
	"simtax/internal/simplifiedtax/service"
	httptransport "simtax/internal/transport/http"
)

var version = "dev"

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		stop()
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	params, err := config.LoadParameters(cfg.ParametersFile, os.LookupEnv)
	if err != nil {
		return fmt.Errorf("load tax parameters: %w", err)
	}
	engine, err := simplifiedtax.NewEngine(params.Parameters)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	var amounts ports.AmountSource = adapters.NewParameterTable(adapters.AmountTable{
		FixedAmounts:        params.FixedAmounts,
		LandRatesPerHectare: params.LandRatesPerHectare,
	})
	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect amount registry: %w", err)
	}
	defer rdb.Close()
	if rdb != nil {
		amounts = adapters.NewRedisRegistry(rdb.Client, adapters.WithFallback(amounts))
		log.Info("amount registry enabled", "backend", "redis")
	}

	svc := service.New(engine,
		service.WithLogger(log),
		service.WithMetrics(taxmetrics.New()),
		service.WithAmountSource(amounts),
		service.WithBatchLimit(cfg.BatchLimit),
		service.WithBatchConcurrency(cfg.BatchConcurrency),
		service.WithTraceDefault(cfg.DebugTraceDefault),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:  log,
		Metrics: metrics.New(),
		Version: version,
		Ready:   rdb.Health,
	}, handler.New(svc, log))

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting simtax",
		"addr", cfg.Addr,
		"version", version,
		"parameters_file", cfg.ParametersFile,
		"auto_route_disqualifiers", params.Parameters.AutoRouteDisqualifiers,
		"trade_split_mode", params.Parameters.TradeSplitMode,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
