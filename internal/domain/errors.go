package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy for the card pipeline. Callers match with errors.Is.
var (
	// ErrInvalidAddress means the input failed validation; no external call
	// was made.
	ErrInvalidAddress = errors.New("invalid wallet address")

	// ErrChainUnavailable means the RPC endpoint kept failing after bounded
	// retries.
	ErrChainUnavailable = errors.New("chain data unavailable")

	// ErrMarketDataUnavailable means the market endpoint failed or returned
	// unusable data. It degrades the card, it never aborts it.
	ErrMarketDataUnavailable = errors.New("market data unavailable")

	// ErrRateLimited means the wallet is still inside its cooldown window.
	ErrRateLimited = errors.New("rate limited")

	// ErrRenderFailure means an internal invariant broke while rendering an
	// already-valid metrics record. This is a programming fault.
	ErrRenderFailure = errors.New("render failure")
)

// AggregationError reports which mandatory source failed while building
// holder metrics.
type AggregationError struct {
	Source string
	Err    error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation failed: source %s: %v", e.Source, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}
