// Package pipeline wires validation, rate limiting, aggregation and
// rendering into the card generation entry points.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"solana-flex-card/internal/domain"
	"solana-flex-card/internal/observability"
)

// Aggregator builds the metrics record for a wallet.
type Aggregator interface {
	Build(ctx context.Context, wallet domain.WalletAddress) (domain.HolderMetrics, error)
}

// Renderer draws a metrics record into PNG bytes.
type Renderer interface {
	Render(m domain.HolderMetrics) ([]byte, error)
}

// MarketSource serves the standalone price summary.
type MarketSource interface {
	Snapshot(ctx context.Context) (domain.MarketSnapshot, error)
}

// RateLimiter gates card requests per wallet.
type RateLimiter interface {
	Allow(wallet domain.WalletAddress) (bool, time.Duration)
}

// RateLimitedError carries the remaining cooldown so callers can surface a
// retry hint. Matches domain.ErrRateLimited under errors.Is.
type RateLimitedError struct {
	RetryIn time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: retry in %s", e.RetryIn.Round(time.Second))
}

func (e *RateLimitedError) Unwrap() error { return domain.ErrRateLimited }

// Pipeline is the top-level card service.
type Pipeline struct {
	aggregator Aggregator
	renderer   Renderer
	market     MarketSource
	limiter    RateLimiter
	log        zerolog.Logger
}

// New creates a pipeline.
func New(aggregator Aggregator, renderer Renderer, market MarketSource, limiter RateLimiter, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		aggregator: aggregator,
		renderer:   renderer,
		market:     market,
		limiter:    limiter,
		log:        log.With().Str("component", "pipeline").Logger(),
	}
}

// GenerateCard validates the address, applies the cooldown, aggregates the
// holder metrics and renders the card. The rate limit is checked before any
// external call happens.
func (p *Pipeline) GenerateCard(ctx context.Context, walletAddress string) ([]byte, error) {
	start := time.Now()

	wallet, err := domain.ParseWallet(walletAddress)
	if err != nil {
		observability.RecordCardFailure("invalid_address")
		return nil, err
	}

	if ok, retry := p.limiter.Allow(wallet); !ok {
		observability.RecordRateLimited()
		p.log.Debug().Str("wallet", wallet.Short()).Dur("retry_in", retry).Msg("request rate limited")
		return nil, &RateLimitedError{RetryIn: retry}
	}

	metrics, err := p.aggregator.Build(ctx, wallet)
	if err != nil {
		observability.RecordCardFailure("aggregation")
		return nil, err
	}

	renderStart := time.Now()
	img, err := p.renderer.Render(metrics)
	observability.RecordRenderDuration(time.Since(renderStart).Seconds())
	if err != nil {
		observability.RecordCardFailure("render")
		return nil, err
	}

	observability.RecordCardGenerated()
	observability.RecordPipelineDuration(time.Since(start).Seconds())
	p.log.Info().
		Str("wallet", wallet.Short()).
		Str("tier", metrics.Tier.String()).
		Dur("elapsed", time.Since(start)).
		Msg("card generated")
	return img, nil
}

// PriceSummary returns the current market snapshot. Not rate limited.
func (p *Pipeline) PriceSummary(ctx context.Context) (domain.MarketSnapshot, error) {
	return p.market.Snapshot(ctx)
}
