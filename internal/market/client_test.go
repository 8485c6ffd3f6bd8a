package market

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-flex-card/internal/domain"
)

func TestClient_Snapshot_PicksDeepestLiquidity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"pairs": [
				{"priceUsd": "0.0010", "marketCap": 1000000, "liquidity": {"usd": 5000},
				 "priceChange": {"h24": -3.2}, "volume": {"h24": 20000}},
				{"priceUsd": "0.0020", "marketCap": 10800000, "liquidity": {"usd": 250000},
				 "priceChange": {"h24": 12.8}, "volume": {"h24": 450000}}
			]
		}`))
	}))
	defer server.Close()

	fixed := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	client := New(server.URL, zerolog.Nop(), WithClock(func() time.Time { return fixed }))

	snap, err := client.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "0.002", snap.PriceUSD.String())
	assert.Equal(t, "10800000", snap.MarketCapUSD.String())
	assert.Equal(t, "450000", snap.Volume24hUSD.String())
	assert.InDelta(t, 12.8, snap.PriceChange24h, 1e-9)
	assert.Equal(t, fixed, snap.FetchedAt)
}

func TestClient_Snapshot_FallsBackToFDV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs": [{"priceUsd": "0.5", "marketCap": 0, "fdv": 42000,
			"liquidity": {"usd": 1}, "priceChange": {"h24": 0}, "volume": {"h24": 0}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, zerolog.Nop())

	snap, err := client.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "42000", snap.MarketCapUSD.String())
}

func TestClient_Snapshot_UpstreamFailureMapsToUnavailable(t *testing.T) {
	codes := []int{http.StatusBadRequest, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway}

	for _, code := range codes {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		client := New(server.URL, zerolog.Nop())
		_, err := client.Snapshot(context.Background())
		server.Close()

		require.Error(t, err, "status %d", code)
		assert.True(t, errors.Is(err, domain.ErrMarketDataUnavailable),
			"status %d must map to ErrMarketDataUnavailable, got %v", code, err)
	}
}

func TestClient_Snapshot_EmptyPairs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs": []}`))
	}))
	defer server.Close()

	client := New(server.URL, zerolog.Nop())

	_, err := client.Snapshot(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMarketDataUnavailable))
}

func TestClient_Snapshot_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := New(server.URL, zerolog.Nop())

	_, err := client.Snapshot(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMarketDataUnavailable))
}

func TestClient_Snapshot_UnreachableEndpoint(t *testing.T) {
	client := New("http://127.0.0.1:1", zerolog.Nop(),
		WithHTTPClient(&http.Client{Timeout: 200 * time.Millisecond}))

	_, err := client.Snapshot(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMarketDataUnavailable))
}
