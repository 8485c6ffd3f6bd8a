package solana

import "context"

// WSClient defines the Solana pubsub interface used by the holder watcher.
type WSClient interface {
	// SubscribeProgram subscribes to account changes owned by a program,
	// filtered to SPL token accounts of one mint.
	SubscribeProgram(ctx context.Context, filter ProgramFilter) (<-chan AccountNotification, error)

	// Close closes the connection and all subscription channels.
	Close() error
}

// ProgramFilter selects the token accounts to watch.
type ProgramFilter struct {
	// Program is the owning program ID (the SPL token program).
	Program string
	// Mint restricts notifications to token accounts of this mint via a
	// memcmp filter at offset 0.
	Mint string
	// DataSize restricts account size; SPL token accounts are 165 bytes.
	DataSize int
}

// AccountNotification is one programNotification event.
type AccountNotification struct {
	// Pubkey is the changed account (a token account address).
	Pubkey string
	// Data is the base64-encoded account data.
	Data string
	// Slot at which the change was observed.
	Slot int64
}
