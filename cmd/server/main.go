// Package main runs the swap gateway HTTP server: quote endpoints with
// per-network aggregator fan-out, execution building, and best-effort
// audit trails.
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

	"github.com/joho/godotenv"

	"swapgate/internal/config"
	"swapgate/internal/execution"
	"swapgate/internal/handler"
	"swapgate/internal/quotecache"
	"swapgate/internal/ratelimit"
	"swapgate/internal/router"
	"swapgate/internal/rpc"
	"swapgate/internal/storage"
	chstore "swapgate/internal/storage/clickhouse"
	"swapgate/internal/storage/memory"
	"swapgate/internal/storage/migrations"
	pgstore "swapgate/internal/storage/postgres"
	"swapgate/internal/upstream"
)

func main() {
	// .env values never override the real environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events, metrics, closeStores, err := buildStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	checker := rpc.NewChecker(cfg.SolanaRPCs, cfg.EVMRPCs, rpc.WithLogger(logger))

	clientOpts := []upstream.Option{
		upstream.WithTimeout(cfg.UpstreamTimeout),
		upstream.WithLogger(logger),
	}
	jupiter := upstream.NewJupiterClient(cfg.JupiterBaseURL, checker, clientOpts...)
	oneInch := upstream.NewOneInchClient(cfg.OneInchBaseURL, cfg.OneInchAPIKey, clientOpts...)
	zeroEx := upstream.NewZeroExClient(cfg.ZeroExBaseURL, clientOpts...)
	thorchain := upstream.NewThorchainClient(cfg.MidgardBaseURL, clientOpts...)

	rt := router.New(jupiter, []router.EVMSource{oneInch, zeroEx}, thorchain,
		router.WithLogger(logger))

	builder := execution.New(jupiter, oneInch, zeroEx, thorchain,
		execution.FeeWallets{
			Solana:  cfg.FeeSolWallet,
			EVM:     cfg.FeeEVMWallet,
			Bitcoin: cfg.FeeBTCWallet,
		},
		execution.WithMaxPriceImpact(cfg.MaxPriceImpact),
		execution.WithLogger(logger),
	)

	h := handler.New(rt, builder,
		ratelimit.New(cfg.RateWindow, cfg.QuoteRateLimit, cfg.ExecuteRateLimit),
		quotecache.New(),
		handler.WithQuoteTTLs(cfg.QuoteCacheTTL, cfg.BTCQuoteCacheTTL),
		handler.WithAuditStores(events, metrics),
		handler.WithLogger(logger),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// buildStores selects the audit backends: postgres and clickhouse when
// DSNs are configured, in-memory otherwise. A configured but unreachable
// database is a startup error, not a silent fallback.
func buildStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.SwapEventStore, storage.QuoteMetricStore, func(), error) {
	var (
		events  storage.SwapEventStore   = memory.NewSwapEventStore()
		metrics storage.QuoteMetricStore = memory.NewQuoteMetricStore()
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		if err := migrations.RunPostgres(ctx, pool); err != nil {
			closeAll()
			return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		events = pgstore.NewSwapEventStore(pool)
		logger.Info("audit events", "backend", "postgres")
	} else {
		logger.Info("audit events", "backend", "memory")
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, cfg.ClickhouseDSN)
		if err != nil {
			closeAll()
			return nil, nil, nil, fmt.Errorf("clickhouse: %w", err)
		}
		closers = append(closers, func() { _ = conn.Close() })
		if err := migrations.RunClickhouse(ctx, conn); err != nil {
			closeAll()
			return nil, nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		metrics = chstore.NewQuoteMetricStore(conn)
		logger.Info("quote metrics", "backend", "clickhouse")
	} else {
		logger.Info("quote metrics", "backend", "memory")
	}

	return events, metrics, closeAll, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
