package solana

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// TokenAmount is an SPL token amount as reported by jsonParsed encodings.
type TokenAmount struct {
	Amount         string `json:"amount"` // raw integer, base units
	Decimals       int    `json:"decimals"`
	UIAmountString string `json:"uiAmountString"`
}

// Decimal converts the amount to a decimal at the token's declared precision.
// UIAmountString is preferred; the raw amount is the fallback.
func (a TokenAmount) Decimal() (decimal.Decimal, error) {
	if a.UIAmountString != "" {
		d, err := decimal.NewFromString(a.UIAmountString)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse uiAmountString %q: %w", a.UIAmountString, err)
		}
		return d, nil
	}

	raw, ok := new(big.Int).SetString(a.Amount, 10)
	if !ok {
		return decimal.Zero, fmt.Errorf("parse raw amount %q", a.Amount)
	}
	return decimal.NewFromBigInt(raw, -int32(a.Decimals)), nil
}

// TokenAccount is one of an owner's token accounts for a mint.
type TokenAccount struct {
	Pubkey string
	Amount TokenAmount
}

// LargestAccount is one entry of getTokenLargestAccounts.
type LargestAccount struct {
	Address string
	Amount  TokenAmount
}

// SignatureInfo from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      int64
	BlockTime *int64
	Err       interface{}
}

// SignaturesOpts defines optional pagination parameters for
// getSignaturesForAddress.
type SignaturesOpts struct {
	Before string // Start searching backwards from this signature
	Until  string // Search until this signature
	Limit  int    // Maximum number of signatures to return
}
