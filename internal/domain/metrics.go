package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AcquisitionStatus tags the outcome of the first-acquisition history scan.
type AcquisitionStatus int

const (
	// AcquisitionNoHistory means the wallet has no transfer history for the
	// tracked token at all: confirmed never held (or holds with no recorded
	// signatures).
	AcquisitionNoHistory AcquisitionStatus = iota

	// AcquisitionKnown means the earliest inbound transfer was found.
	AcquisitionKnown

	// AcquisitionIndeterminate means the bounded scan was exhausted before
	// the earliest transfer was reached. Distinct from NoHistory and never
	// coerced to a zero duration.
	AcquisitionIndeterminate
)

// Acquisition is the earliest detected transfer-in of the tracked token.
type Acquisition struct {
	Status AcquisitionStatus
	Time   time.Time // valid only when Status == AcquisitionKnown
}

// HoldDuration is the elapsed time since acquisition, carrying the same
// tagged outcomes as Acquisition.
type HoldDuration struct {
	Status   AcquisitionStatus
	Duration time.Duration // valid only when Status == AcquisitionKnown, >= 0
}

// Rank is a wallet's 1-indexed position among the bounded holder ranking.
// Ranked is false when the wallet is absent from the bounded list.
type Rank struct {
	Position int
	Ranked   bool
}

// MarketSnapshot is the market state at fetch time. It is all-or-nothing:
// either every field is populated or the snapshot is absent entirely
// (HolderMetrics.MarketAvailable == false).
type MarketSnapshot struct {
	PriceUSD       decimal.Decimal
	MarketCapUSD   decimal.Decimal
	Volume24hUSD   decimal.Decimal
	PriceChange24h float64 // percent
	FetchedAt      time.Time
}

// HolderMetrics is the immutable aggregate handed to the renderer. Exactly
// one instance exists per request.
type HolderMetrics struct {
	Wallet  WalletAddress
	Balance decimal.Decimal // token units at declared precision, never negative

	// USDValue = Balance * Market.PriceUSD, valid only when USDAvailable.
	USDValue     decimal.Decimal
	USDAvailable bool

	Market          MarketSnapshot
	MarketAvailable bool

	HoldDuration HoldDuration
	Rank         Rank
	Tier         Tier
}
