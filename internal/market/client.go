// Package market reads current price, volume and market cap for the tracked
// token from the DexScreener public endpoint.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"solana-flex-card/internal/domain"
)

// DefaultTimeout bounds a single snapshot fetch.
const DefaultTimeout = 15 * time.Second

// Client is the market data source. Every failure mode maps to
// domain.ErrMarketDataUnavailable; it never surfaces another error kind.
type Client struct {
	endpoint string
	client   *http.Client
	now      func() time.Time
	log      zerolog.Logger
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithClock overrides the snapshot timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a market data client for a token-pairs endpoint.
func New(endpoint string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
		now:      time.Now,
		log:      log.With().Str("component", "market").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pairsResponse is the DexScreener token endpoint payload, reduced to the
// fields the card needs. Prices arrive as strings and stay exact via decimal.
type pairsResponse struct {
	Pairs []pair `json:"pairs"`
}

type pair struct {
	PriceUSD  string  `json:"priceUsd"`
	MarketCap float64 `json:"marketCap"`
	FDV       float64 `json:"fdv"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	PriceChange struct {
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
}

// Snapshot fetches the current market state. The pair with the deepest
// liquidity wins when the token trades in several pools.
func (c *Client) Snapshot(ctx context.Context) (domain.MarketSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("%w: create request: %v", domain.ErrMarketDataUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("%w: %v", domain.ErrMarketDataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.MarketSnapshot{}, fmt.Errorf("%w: status %d", domain.ErrMarketDataUnavailable, resp.StatusCode)
	}

	var payload pairsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("%w: decode: %v", domain.ErrMarketDataUnavailable, err)
	}

	if len(payload.Pairs) == 0 {
		return domain.MarketSnapshot{}, fmt.Errorf("%w: no pairs", domain.ErrMarketDataUnavailable)
	}

	best := payload.Pairs[0]
	for _, p := range payload.Pairs[1:] {
		if p.Liquidity.USD > best.Liquidity.USD {
			best = p
		}
	}

	price, err := decimal.NewFromString(best.PriceUSD)
	if err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("%w: parse price %q: %v", domain.ErrMarketDataUnavailable, best.PriceUSD, err)
	}

	marketCap := best.MarketCap
	if marketCap == 0 {
		marketCap = best.FDV
	}

	return domain.MarketSnapshot{
		PriceUSD:       price,
		MarketCapUSD:   decimal.NewFromFloat(marketCap),
		Volume24hUSD:   decimal.NewFromFloat(best.Volume.H24),
		PriceChange24h: best.PriceChange.H24,
		FetchedAt:      c.now().UTC(),
	}, nil
}
