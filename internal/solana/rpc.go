package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface used by the card pipeline.
type RPCClient interface {
	// GetTokenAccountsByOwner retrieves the owner's token accounts for a mint.
	GetTokenAccountsByOwner(ctx context.Context, owner, mint string) ([]TokenAccount, error)

	// GetTokenLargestAccounts retrieves the largest token accounts for a mint
	// (the RPC returns at most 20).
	GetTokenLargestAccounts(ctx context.Context, mint string) ([]LargestAccount, error)

	// GetSignaturesForAddress retrieves signatures for an address, newest
	// first, with pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)
}
