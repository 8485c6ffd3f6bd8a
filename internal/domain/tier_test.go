package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTierThresholds_Classify(t *testing.T) {
	tt := DefaultTierThresholds()

	cases := []struct {
		balance int64
		want    Tier
	}{
		{0, TierFish},
		{9_999, TierFish},
		{10_000, TierDolphin}, // inclusive lower bound
		{99_999, TierDolphin},
		{100_000, TierShark},
		{500_000, TierShark}, // below Whale threshold
		{999_999, TierShark},
		{1_000_000, TierWhale},
		{50_000_000, TierWhale},
	}

	for _, tc := range cases {
		got := tt.Classify(decimal.NewFromInt(tc.balance))
		assert.Equal(t, tc.want, got, "balance %d", tc.balance)
	}
}

func TestTierThresholds_Monotonic(t *testing.T) {
	tt := DefaultTierThresholds()

	prev := TierFish
	for _, b := range []int64{0, 5_000, 10_000, 50_000, 100_000, 600_000, 1_000_000, 2_000_000} {
		got := tt.Classify(decimal.NewFromInt(b))
		assert.GreaterOrEqual(t, int(got), int(prev), "tier must not drop as balance grows")
		prev = got
	}
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "WHALE", TierWhale.String())
	assert.Equal(t, "SHARK", TierShark.String())
	assert.Equal(t, "DOLPHIN", TierDolphin.String())
	assert.Equal(t, "FISH", TierFish.String())
}
