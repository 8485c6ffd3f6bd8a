// Package chain reads the tracked token's on-chain state for a wallet:
// current balance and the earliest detected acquisition.
package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"solana-flex-card/internal/domain"
	"solana-flex-card/internal/solana"
)

// Scan bound defaults. The history walk is deliberately bounded: hitting the
// bound yields an Indeterminate acquisition, never a fabricated one.
const (
	DefaultPageLimit = 1000
	DefaultMaxPages  = 3
)

// Client implements the chain data source on top of the Solana RPC client.
type Client struct {
	rpc       solana.RPCClient
	mint      string
	pageLimit int
	maxPages  int
	log       zerolog.Logger
}

// Option configures Client.
type Option func(*Client)

// WithPageLimit sets signatures fetched per history page.
func WithPageLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageLimit = n
		}
	}
}

// WithMaxPages sets the history scan page bound.
func WithMaxPages(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// New creates a chain client for one tracked mint.
func New(rpc solana.RPCClient, mint string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		rpc:       rpc,
		mint:      mint,
		pageLimit: DefaultPageLimit,
		maxPages:  DefaultMaxPages,
		log:       log.With().Str("component", "chain").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Balance returns the wallet's total balance of the tracked token, summed
// over all of its token accounts. A wallet with no token account holds zero.
func (c *Client) Balance(ctx context.Context, wallet domain.WalletAddress) (decimal.Decimal, error) {
	accounts, err := c.rpc.GetTokenAccountsByOwner(ctx, wallet.String(), c.mint)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrChainUnavailable, err)
	}

	total := decimal.Zero
	for _, acc := range accounts {
		amount, err := acc.Amount.Decimal()
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: account %s: %v", domain.ErrChainUnavailable, acc.Pubkey, err)
		}
		total = total.Add(amount)
	}

	if total.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative balance %s", domain.ErrChainUnavailable, total)
	}

	return total, nil
}

// Acquisition finds the earliest inbound transfer of the tracked token by
// walking the token account's signature history newest to oldest, at most
// maxPages pages of pageLimit signatures each.
//
// Outcomes:
//   - no token account or no signatures: NoHistory
//   - history end reached inside the bound: Known, earliest block time
//   - bound exhausted first: Indeterminate
func (c *Client) Acquisition(ctx context.Context, wallet domain.WalletAddress) (domain.Acquisition, error) {
	accounts, err := c.rpc.GetTokenAccountsByOwner(ctx, wallet.String(), c.mint)
	if err != nil {
		return domain.Acquisition{}, fmt.Errorf("%w: %v", domain.ErrChainUnavailable, err)
	}
	if len(accounts) == 0 {
		return domain.Acquisition{Status: domain.AcquisitionNoHistory}, nil
	}

	tokenAccount := accounts[0].Pubkey

	var (
		before   string
		oldest   *solana.SignatureInfo
		sawSigs  bool
		complete bool
	)

	for page := 0; page < c.maxPages; page++ {
		sigs, err := c.rpc.GetSignaturesForAddress(ctx, tokenAccount, &solana.SignaturesOpts{
			Before: before,
			Limit:  c.pageLimit,
		})
		if err != nil {
			return domain.Acquisition{}, fmt.Errorf("%w: %v", domain.ErrChainUnavailable, err)
		}

		if len(sigs) == 0 {
			complete = true
			break
		}

		sawSigs = true
		// Responses are newest-first; the page's last entry is its oldest.
		last := sigs[len(sigs)-1]
		oldest = &last
		before = last.Signature

		if len(sigs) < c.pageLimit {
			complete = true
			break
		}
	}

	if !sawSigs {
		return domain.Acquisition{Status: domain.AcquisitionNoHistory}, nil
	}

	if !complete {
		c.log.Debug().
			Str("wallet", wallet.Short()).
			Int("pages", c.maxPages).
			Msg("history scan bound exhausted")
		return domain.Acquisition{Status: domain.AcquisitionIndeterminate}, nil
	}

	if oldest.BlockTime == nil {
		// History end reached but the earliest signature cannot be dated.
		return domain.Acquisition{Status: domain.AcquisitionIndeterminate}, nil
	}

	return domain.Acquisition{
		Status: domain.AcquisitionKnown,
		Time:   time.Unix(*oldest.BlockTime, 0).UTC(),
	}, nil
}

// AssociatedTokenAccount derives the wallet's canonical token account address
// for the tracked mint without any network call.
func (c *Client) AssociatedTokenAccount(wallet domain.WalletAddress) (string, error) {
	return DeriveAssociatedTokenAccount(wallet, c.mint)
}
