package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-flex-card/internal/domain"
)

const testWallet = "HgBRWfYxEfvPhtqkaPymwnrmFVnXzSBVVrWudp2Ppump"

type stubAggregator struct {
	metrics domain.HolderMetrics
	err     error
	calls   int
}

func (s *stubAggregator) Build(_ context.Context, _ domain.WalletAddress) (domain.HolderMetrics, error) {
	s.calls++
	return s.metrics, s.err
}

type stubRenderer struct {
	out   []byte
	err   error
	calls int
}

func (s *stubRenderer) Render(_ domain.HolderMetrics) ([]byte, error) {
	s.calls++
	return s.out, s.err
}

type stubMarket struct {
	snapshot domain.MarketSnapshot
	err      error
}

func (s *stubMarket) Snapshot(_ context.Context) (domain.MarketSnapshot, error) {
	return s.snapshot, s.err
}

type stubLimiter struct {
	allow bool
	retry time.Duration
}

func (s *stubLimiter) Allow(_ domain.WalletAddress) (bool, time.Duration) {
	return s.allow, s.retry
}

func newPipeline(agg *stubAggregator, r *stubRenderer, m *stubMarket, l *stubLimiter) *Pipeline {
	return New(agg, r, m, l, zerolog.Nop())
}

func TestPipeline_GenerateCard(t *testing.T) {
	agg := &stubAggregator{metrics: domain.HolderMetrics{Tier: domain.TierShark}}
	renderer := &stubRenderer{out: []byte{0x89, 'P', 'N', 'G'}}
	p := newPipeline(agg, renderer, &stubMarket{}, &stubLimiter{allow: true})

	out, err := p.GenerateCard(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Equal(t, renderer.out, out)
	assert.Equal(t, 1, agg.calls)
	assert.Equal(t, 1, renderer.calls)
}

func TestPipeline_InvalidAddressBeforeAnyWork(t *testing.T) {
	agg := &stubAggregator{}
	p := newPipeline(agg, &stubRenderer{}, &stubMarket{}, &stubLimiter{allow: true})

	_, err := p.GenerateCard(context.Background(), "not-a-wallet")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
	assert.Zero(t, agg.calls, "invalid address must not trigger aggregation")
}

func TestPipeline_RateLimitedBeforeExternalCalls(t *testing.T) {
	agg := &stubAggregator{}
	renderer := &stubRenderer{}
	p := newPipeline(agg, renderer, &stubMarket{}, &stubLimiter{allow: false, retry: 9 * time.Second})

	_, err := p.GenerateCard(context.Background(), testWallet)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	var rl *RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 9*time.Second, rl.RetryIn)

	assert.Zero(t, agg.calls, "cooldown must reject before any fetch")
	assert.Zero(t, renderer.calls)
}

func TestPipeline_AggregationFailurePropagates(t *testing.T) {
	agg := &stubAggregator{err: &domain.AggregationError{Source: "balance", Err: domain.ErrChainUnavailable}}
	renderer := &stubRenderer{}
	p := newPipeline(agg, renderer, &stubMarket{}, &stubLimiter{allow: true})

	_, err := p.GenerateCard(context.Background(), testWallet)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrChainUnavailable)
	assert.Zero(t, renderer.calls)
}

func TestPipeline_RenderFailurePropagates(t *testing.T) {
	agg := &stubAggregator{}
	renderer := &stubRenderer{err: domain.ErrRenderFailure}
	p := newPipeline(agg, renderer, &stubMarket{}, &stubLimiter{allow: true})

	_, err := p.GenerateCard(context.Background(), testWallet)
	assert.ErrorIs(t, err, domain.ErrRenderFailure)
}

func TestPipeline_PriceSummary(t *testing.T) {
	market := &stubMarket{snapshot: domain.MarketSnapshot{
		PriceUSD: decimal.RequireFromString("0.0098"),
	}}
	p := newPipeline(&stubAggregator{}, &stubRenderer{}, market, &stubLimiter{allow: false})

	snap, err := p.PriceSummary(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.PriceUSD.Equal(decimal.RequireFromString("0.0098")))
}

func TestPipeline_PriceSummaryUnavailable(t *testing.T) {
	market := &stubMarket{err: domain.ErrMarketDataUnavailable}
	p := newPipeline(&stubAggregator{}, &stubRenderer{}, market, &stubLimiter{allow: true})

	_, err := p.PriceSummary(context.Background())
	assert.ErrorIs(t, err, domain.ErrMarketDataUnavailable)
}
