package domain

import "github.com/shopspring/decimal"

// Tier is the coarse holding-size classification, ordered by descending
// holdings.
type Tier int

const (
	TierFish Tier = iota
	TierDolphin
	TierShark
	TierWhale
)

// String returns the display name of the tier.
func (t Tier) String() string {
	switch t {
	case TierWhale:
		return "WHALE"
	case TierShark:
		return "SHARK"
	case TierDolphin:
		return "DOLPHIN"
	default:
		return "FISH"
	}
}

// TierThresholds holds the inclusive lower balance bound of each tier above
// Fish. Values are token amounts at declared precision.
type TierThresholds struct {
	Whale   decimal.Decimal
	Shark   decimal.Decimal
	Dolphin decimal.Decimal
}

// DefaultTierThresholds returns the stock thresholds:
// Whale >= 1,000,000, Shark >= 100,000, Dolphin >= 10,000.
func DefaultTierThresholds() TierThresholds {
	return TierThresholds{
		Whale:   decimal.NewFromInt(1_000_000),
		Shark:   decimal.NewFromInt(100_000),
		Dolphin: decimal.NewFromInt(10_000),
	}
}

// Classify maps a balance to its tier. Bounds are inclusive: a balance
// exactly at a threshold classifies into the higher tier.
func (tt TierThresholds) Classify(balance decimal.Decimal) Tier {
	switch {
	case balance.GreaterThanOrEqual(tt.Whale):
		return TierWhale
	case balance.GreaterThanOrEqual(tt.Shark):
		return TierShark
	case balance.GreaterThanOrEqual(tt.Dolphin):
		return TierDolphin
	default:
		return TierFish
	}
}
