// Package main provides a one-shot CLI: render a flex card for a wallet to a
// PNG file, or print the current price summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"solana-flex-card/internal/chain"
	"solana-flex-card/internal/config"
	"solana-flex-card/internal/holders"
	"solana-flex-card/internal/market"
	"solana-flex-card/internal/metrics"
	"solana-flex-card/internal/pipeline"
	"solana-flex-card/internal/ratelimit"
	"solana-flex-card/internal/render"
	"solana-flex-card/internal/solana"
)

func main() {
	wallet := flag.String("wallet", "", "Wallet address to render a card for")
	out := flag.String("out", "flex_card.png", "Output PNG path")
	price := flag.Bool("price", false, "Print the price summary instead of rendering a card")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	lvl := zerolog.WarnLevel
	if *verbose {
		lvl = zerolog.DebugLevel
	}
	log := zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	rpc := solana.NewHTTPClient(cfg.RPCEndpoint)
	marketClient := market.New(cfg.MarketEndpoint(), log)

	if *price {
		snap, err := marketClient.Snapshot(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("market data unavailable")
		}
		fmt.Printf("%s price: %s\n", cfg.TokenTicker, render.FormatUSD(snap.PriceUSD))
		fmt.Printf("market cap: %s\n", render.FormatMarketCap(snap.MarketCapUSD, true))
		fmt.Printf("24h volume: %s\n", render.FormatUSD(snap.Volume24hUSD))
		fmt.Printf("24h change: %s\n", render.FormatChange(snap.PriceChange24h))
		return
	}

	if *wallet == "" {
		fmt.Fprintln(os.Stderr, "usage: flexcard -wallet <address> [-out card.png] | flexcard -price")
		os.Exit(2)
	}

	chainClient := chain.New(rpc, cfg.TokenMint, log,
		chain.WithPageLimit(cfg.ScanPageLimit),
		chain.WithMaxPages(cfg.ScanMaxPages))
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

	// One-shot runs never hit the cooldown, but the pipeline stays identical
	// to the server's.
	cards := pipeline.New(aggregator, renderer, marketClient, ratelimit.New(cfg.Cooldown), log)

	img, err := cards.GenerateCard(ctx, *wallet)
	if err != nil {
		log.Fatal().Err(err).Str("wallet", *wallet).Msg("card generation failed")
	}

	if err := os.WriteFile(*out, img, 0o644); err != nil {
		log.Fatal().Err(err).Str("path", *out).Msg("failed to write card")
	}
	fmt.Printf("card written to %s (%d bytes)\n", *out, len(img))
}
