package holders

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-flex-card/internal/domain"
	"solana-flex-card/internal/solana"
)

// stubRPC serves a fixed largest-accounts list.
type stubRPC struct {
	largest []solana.LargestAccount
	err     error
	calls   int
}

func (s *stubRPC) GetTokenAccountsByOwner(context.Context, string, string) ([]solana.TokenAccount, error) {
	return nil, nil
}

func (s *stubRPC) GetTokenLargestAccounts(context.Context, string) ([]solana.LargestAccount, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.largest, nil
}

func (s *stubRPC) GetSignaturesForAddress(context.Context, string, *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	return nil, nil
}

func largest(address, uiAmount string) solana.LargestAccount {
	return solana.LargestAccount{
		Address: address,
		Amount:  solana.TokenAmount{Decimals: 6, UIAmountString: uiAmount},
	}
}

func newService(t *testing.T, rpc *stubRPC, opts ...Option) *Service {
	t.Helper()
	svc := New(rpc, "mint", domain.DefaultTierThresholds(), zerolog.Nop(), opts...)
	require.NoError(t, svc.Refresh(context.Background()))
	return svc
}

func TestService_Rank_ExactMatch(t *testing.T) {
	svc := newService(t, &stubRPC{largest: []solana.LargestAccount{
		largest("whale1", "5000000"),
		largest("whale2", "2000000"),
		largest("shark1", "500000"),
	}})

	rank, tier := svc.Rank("whale2", decimal.NewFromInt(2_000_000))
	assert.True(t, rank.Ranked)
	assert.Equal(t, 2, rank.Position)
	assert.Equal(t, domain.TierWhale, tier)
}

func TestService_Rank_ByBalanceComparison(t *testing.T) {
	svc := newService(t, &stubRPC{largest: []solana.LargestAccount{
		largest("a", "5000000"),
		largest("b", "2000000"),
		largest("c", "500000"),
	}})

	// Not in the list, but clears the smallest ranked balance.
	rank, tier := svc.Rank("unknown", decimal.NewFromInt(3_000_000))
	assert.True(t, rank.Ranked)
	assert.Equal(t, 2, rank.Position)
	assert.Equal(t, domain.TierWhale, tier)
}

func TestService_Rank_Unranked(t *testing.T) {
	svc := newService(t, &stubRPC{largest: []solana.LargestAccount{
		largest("a", "5000000"),
		largest("b", "500000"),
	}})

	rank, tier := svc.Rank("unknown", decimal.NewFromInt(400_000))
	assert.False(t, rank.Ranked)
	assert.Equal(t, domain.TierShark, tier, "tier stays computable when rank is not")
}

func TestService_Rank_EmptySnapshot(t *testing.T) {
	svc := New(&stubRPC{}, "mint", domain.DefaultTierThresholds(), zerolog.Nop())

	rank, tier := svc.Rank("anyone", decimal.NewFromInt(2_000_000))
	assert.False(t, rank.Ranked)
	assert.Equal(t, domain.TierWhale, tier)
}

func TestService_Rank_Monotonic(t *testing.T) {
	svc := newService(t, &stubRPC{largest: []solana.LargestAccount{
		largest("a", "5000000"),
		largest("b", "2000000"),
		largest("c", "1000000"),
		largest("d", "500000"),
	}})

	rankHigh, _ := svc.Rank("x", decimal.NewFromInt(4_000_000))
	rankLow, _ := svc.Rank("y", decimal.NewFromInt(600_000))

	require.True(t, rankHigh.Ranked)
	require.True(t, rankLow.Ranked)
	assert.Less(t, rankHigh.Position, rankLow.Position,
		"greater balance must rank numerically better")
}

func TestService_Rank_NeverExceedsListSize(t *testing.T) {
	svc := newService(t, &stubRPC{largest: []solana.LargestAccount{
		largest("a", "5000000"),
		largest("b", "500000"),
	}})

	rank, _ := svc.Rank("x", decimal.NewFromInt(500_000))
	require.True(t, rank.Ranked)
	assert.LessOrEqual(t, rank.Position, svc.Size())
}

func TestService_Warm_SkipsFreshSnapshot(t *testing.T) {
	current := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	rpc := &stubRPC{largest: []solana.LargestAccount{largest("a", "1")}}
	svc := New(rpc, "mint", domain.DefaultTierThresholds(), zerolog.Nop(),
		WithMaxAge(time.Minute),
		WithClock(func() time.Time { return current }),
	)

	require.NoError(t, svc.Warm(context.Background()))
	require.NoError(t, svc.Warm(context.Background()))
	assert.Equal(t, 1, rpc.calls, "fresh snapshot must not refetch")

	current = current.Add(2 * time.Minute)
	require.NoError(t, svc.Warm(context.Background()))
	assert.Equal(t, 2, rpc.calls, "stale snapshot must refetch")
}

func TestService_Warm_PropagatesRefreshError(t *testing.T) {
	svc := New(&stubRPC{err: errors.New("boom")}, "mint", domain.DefaultTierThresholds(), zerolog.Nop())

	err := svc.Warm(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, svc.Size())
}

func TestService_Apply_Reorders(t *testing.T) {
	svc := newService(t, &stubRPC{largest: []solana.LargestAccount{
		largest("a", "5000000"),
		largest("b", "2000000"),
	}})

	// b overtakes a.
	svc.Apply("b", decimal.NewFromInt(9_000_000))

	rank, _ := svc.Rank("b", decimal.NewFromInt(9_000_000))
	require.True(t, rank.Ranked)
	assert.Equal(t, 1, rank.Position)
}

func TestService_Apply_IgnoresUnknownAccount(t *testing.T) {
	svc := newService(t, &stubRPC{largest: []solana.LargestAccount{
		largest("a", "5000000"),
	}})

	svc.Apply("stranger", decimal.NewFromInt(9_000_000))
	assert.Equal(t, 1, svc.Size())
}

func TestParseTokenAccountBalance(t *testing.T) {
	data := make([]byte, 165)
	binary.LittleEndian.PutUint64(data[64:72], 18_040_000_000_000) // 18.04M at 6 decimals

	balance, err := parseTokenAccountBalance(base64.StdEncoding.EncodeToString(data), 6)
	require.NoError(t, err)
	assert.Equal(t, "18040000", balance.String())
}

func TestParseTokenAccountBalance_TooShort(t *testing.T) {
	_, err := parseTokenAccountBalance(base64.StdEncoding.EncodeToString(make([]byte, 10)), 6)
	assert.Error(t, err)
}

func TestParseTokenAccountBalance_BadBase64(t *testing.T) {
	_, err := parseTokenAccountBalance("%%%", 6)
	assert.Error(t, err)
}
