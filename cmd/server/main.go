// Package main runs the flex card HTTP service: card generation, price
// summary, holder snapshot refresh and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"solana-flex-card/internal/chain"
	"solana-flex-card/internal/config"
	"solana-flex-card/internal/holders"
	"solana-flex-card/internal/market"
	"solana-flex-card/internal/metrics"
	"solana-flex-card/internal/observability"
	"solana-flex-card/internal/pipeline"
	"solana-flex-card/internal/ratelimit"
	"solana-flex-card/internal/render"
	"solana-flex-card/internal/server"
	"solana-flex-card/internal/solana"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := newLogger(cfg.LogLevel)
	log.Info().
		Str("mint", cfg.TokenMint).
		Str("ticker", cfg.TokenTicker).
		Msg("starting flex card server")

	rpc := solana.NewHTTPClient(cfg.RPCEndpoint)
	chainClient := chain.New(rpc, cfg.TokenMint, log,
		chain.WithPageLimit(cfg.ScanPageLimit),
		chain.WithMaxPages(cfg.ScanMaxPages))
	marketClient := market.New(cfg.MarketEndpoint(), log)
	holderSvc := holders.New(rpc, cfg.TokenMint, cfg.Thresholds, log)
	aggregator := metrics.New(chainClient, marketClient, holderSvc, log)

	renderer, err := render.New(render.Config{
		Width:   cfg.CardWidth,
		Height:  cfg.CardHeight,
		Ticker:  cfg.TokenTicker,
		Tagline: cfg.Tagline,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize renderer")
	}

	limiter := ratelimit.New(cfg.Cooldown)
	cards := pipeline.New(aggregator, renderer, marketClient, limiter, log)
	srv := server.New(server.Config{
		Addr:   cfg.ListenAddr,
		Ticker: cfg.TokenTicker,
		Log:    log,
	}, cards)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Warm the holder snapshot before taking traffic. Non-fatal: the first
	// card request retries through Warm.
	warmCtx, warmCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := holderSvc.Refresh(warmCtx); err != nil {
		log.Warn().Err(err).Msg("initial holder snapshot refresh failed")
	}
	warmCancel()

	// Scheduled snapshot refresh and limiter pruning.
	sched := cron.New()
	if _, err := sched.AddFunc(cfg.RefreshSpec, func() {
		rctx, rcancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer rcancel()
		if err := holderSvc.Refresh(rctx); err != nil {
			log.Warn().Err(err).Msg("scheduled holder snapshot refresh failed")
		}
		if pruned := limiter.Prune(4); pruned > 0 {
			log.Debug().Int("pruned", pruned).Msg("cooldown entries pruned")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.RefreshSpec).Msg("invalid refresh schedule")
	}
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	// Live balance updates between refreshes, when enabled.
	if cfg.WatchHolders {
		ws, err := solana.NewWSClient(ctx, cfg.WSEndpoint, nil)
		if err != nil {
			log.Error().Err(err).Msg("websocket connect failed, running without live holder updates")
		} else {
			defer ws.Close()
			watcher := holders.NewWatcher(ws, holderSvc, chain.TokenProgramID, cfg.TokenMint, cfg.TokenDecimals, log)
			go func() {
				if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error().Err(err).Msg("holder watcher stopped")
				}
			}()
		}
	}

	// Prometheus metrics on a separate listener.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server listening")
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server stopped")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}
