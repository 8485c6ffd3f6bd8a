// Package metrics builds the HolderMetrics record that feeds the card
// renderer, reconciling independently-failing data sources.
package metrics

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"solana-flex-card/internal/domain"
	"solana-flex-card/internal/observability"
)

// Per-source fetch timeout defaults. A single slow upstream degrades its own
// field instead of stalling the request.
const (
	DefaultBalanceTimeout     = 10 * time.Second
	DefaultAcquisitionTimeout = 20 * time.Second
	DefaultMarketTimeout      = 10 * time.Second
	DefaultRankTimeout        = 10 * time.Second
)

// ChainSource reads on-chain state for a wallet.
type ChainSource interface {
	Balance(ctx context.Context, wallet domain.WalletAddress) (decimal.Decimal, error)
	Acquisition(ctx context.Context, wallet domain.WalletAddress) (domain.Acquisition, error)
	AssociatedTokenAccount(wallet domain.WalletAddress) (string, error)
}

// MarketSource reads the current market snapshot.
type MarketSource interface {
	Snapshot(ctx context.Context) (domain.MarketSnapshot, error)
}

// RankSource warms the bounded holder snapshot and ranks a balance in it.
// Rank itself is pure; the I/O all happens in Warm.
type RankSource interface {
	Warm(ctx context.Context) error
	Rank(tokenAccount string, balance decimal.Decimal) (domain.Rank, domain.Tier)
}

// Timeouts bounds each source fetch independently.
type Timeouts struct {
	Balance     time.Duration
	Acquisition time.Duration
	Market      time.Duration
	Rank        time.Duration
}

// DefaultTimeouts returns the stock per-source timeouts.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Balance:     DefaultBalanceTimeout,
		Acquisition: DefaultAcquisitionTimeout,
		Market:      DefaultMarketTimeout,
		Rank:        DefaultRankTimeout,
	}
}

// Aggregator orchestrates the data sources into one immutable HolderMetrics.
//
// Degradation policy: balance is mandatory and aborts the request on failure.
// Acquisition degrades to Indeterminate, market data to Unavailable, rank to
// Unranked. Tier is always computed.
type Aggregator struct {
	chain    ChainSource
	market   MarketSource
	holders  RankSource
	timeouts Timeouts
	now      func() time.Time
	log      zerolog.Logger
}

// Option configures Aggregator.
type Option func(*Aggregator)

// WithTimeouts overrides the per-source timeouts.
func WithTimeouts(t Timeouts) Option {
	return func(a *Aggregator) {
		a.timeouts = t
	}
}

// WithClock overrides the time source for hold-duration math.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// New creates a metrics aggregator.
func New(chain ChainSource, market MarketSource, holders RankSource, log zerolog.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		chain:    chain,
		market:   market,
		holders:  holders,
		timeouts: DefaultTimeouts(),
		now:      time.Now,
		log:      log.With().Str("component", "aggregator").Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build fetches from all sources concurrently and assembles the metrics
// record. Only a balance failure aborts, surfaced as an AggregationError
// naming the source.
func (a *Aggregator) Build(ctx context.Context, wallet domain.WalletAddress) (domain.HolderMetrics, error) {
	var (
		balance     decimal.Decimal
		acquisition domain.Acquisition
		acqErr      error
		snapshot    domain.MarketSnapshot
		marketErr   error
		warmErr     error
	)

	g, gctx := errgroup.WithContext(ctx)

	// Mandatory: balance. Its error cancels the group.
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, a.timeouts.Balance)
		defer cancel()

		start := time.Now()
		var err error
		balance, err = a.chain.Balance(fctx, wallet)
		observability.RecordFetch("balance", time.Since(start).Seconds(), err)
		if err != nil {
			return &domain.AggregationError{Source: "balance", Err: err}
		}
		return nil
	})

	// Optional: acquisition history. Degrades to Indeterminate.
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, a.timeouts.Acquisition)
		defer cancel()

		start := time.Now()
		acquisition, acqErr = a.chain.Acquisition(fctx, wallet)
		observability.RecordFetch("acquisition", time.Since(start).Seconds(), acqErr)
		return nil
	})

	// Optional: market data. Degrades to Unavailable.
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, a.timeouts.Market)
		defer cancel()

		start := time.Now()
		snapshot, marketErr = a.market.Snapshot(fctx)
		observability.RecordFetch("market", time.Since(start).Seconds(), marketErr)
		return nil
	})

	// Optional: holder snapshot warm-up. Ranking itself is pure and runs
	// after the balance resolves.
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, a.timeouts.Rank)
		defer cancel()

		start := time.Now()
		warmErr = a.holders.Warm(fctx)
		observability.RecordFetch("holders", time.Since(start).Seconds(), warmErr)
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.HolderMetrics{}, err
	}

	if acqErr != nil {
		a.log.Warn().Err(acqErr).Str("wallet", wallet.Short()).Msg("acquisition degraded to indeterminate")
		acquisition = domain.Acquisition{Status: domain.AcquisitionIndeterminate}
	}
	if marketErr != nil {
		a.log.Warn().Err(marketErr).Msg("market data degraded to unavailable")
	}
	if warmErr != nil {
		a.log.Warn().Err(warmErr).Msg("holder snapshot stale or empty, rank may degrade")
	}

	metrics := domain.HolderMetrics{
		Wallet:       wallet,
		Balance:      balance,
		HoldDuration: a.holdDuration(acquisition),
	}

	if marketErr == nil {
		metrics.Market = snapshot
		metrics.MarketAvailable = true
		metrics.USDValue = balance.Mul(snapshot.PriceUSD)
		metrics.USDAvailable = true
	}

	tokenAccount, err := a.chain.AssociatedTokenAccount(wallet)
	if err != nil {
		// Derivation is local and deterministic; failing it only loses the
		// exact-address match, balance comparison still ranks.
		a.log.Warn().Err(err).Str("wallet", wallet.Short()).Msg("token account derivation failed")
		tokenAccount = ""
	}
	metrics.Rank, metrics.Tier = a.holders.Rank(tokenAccount, balance)

	return metrics, nil
}

// holdDuration converts an acquisition outcome into elapsed time. Known
// durations clamp at zero; Indeterminate and NoHistory pass through tagged.
func (a *Aggregator) holdDuration(acq domain.Acquisition) domain.HoldDuration {
	if acq.Status != domain.AcquisitionKnown {
		return domain.HoldDuration{Status: acq.Status}
	}

	d := a.now().Sub(acq.Time)
	if d < 0 {
		d = 0
	}
	return domain.HoldDuration{Status: domain.AcquisitionKnown, Duration: d}
}
