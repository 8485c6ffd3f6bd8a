package holders

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"solana-flex-card/internal/observability"
	"solana-flex-card/internal/solana"
)

// Watcher applies live token-account balance changes to the snapshot via the
// Solana pubsub feed, so ranks drift less between scheduled refreshes.
type Watcher struct {
	ws       solana.WSClient
	svc      *Service
	program  string
	mint     string
	decimals int
	log      zerolog.Logger
}

// NewWatcher creates a watcher over the SPL token program for one mint.
func NewWatcher(ws solana.WSClient, svc *Service, program, mint string, decimals int, log zerolog.Logger) *Watcher {
	return &Watcher{
		ws:       ws,
		svc:      svc,
		program:  program,
		mint:     mint,
		decimals: decimals,
		log:      log.With().Str("component", "holder_watcher").Logger(),
	}
}

// Run subscribes and applies updates until the context is cancelled or the
// subscription channel closes.
func (w *Watcher) Run(ctx context.Context) error {
	ch, err := w.ws.SubscribeProgram(ctx, solana.ProgramFilter{
		Program:  w.program,
		Mint:     w.mint,
		DataSize: 165,
	})
	if err != nil {
		return fmt.Errorf("subscribe token accounts: %w", err)
	}

	w.log.Info().Str("mint", w.mint).Msg("holder watcher running")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case notif, ok := <-ch:
			if !ok {
				return nil
			}
			balance, err := parseTokenAccountBalance(notif.Data, w.decimals)
			if err != nil {
				w.log.Warn().Err(err).Str("account", notif.Pubkey).Msg("skip malformed account update")
				continue
			}
			w.svc.Apply(notif.Pubkey, balance)
			observability.RecordWatcherUpdate()
		}
	}
}

// parseTokenAccountBalance extracts the amount from base64 SPL token account
// data. Layout: mint(32) | owner(32) | amount(8, u64 LE) | ...
func parseTokenAccountBalance(data string, decimals int) (decimal.Decimal, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode account data: %w", err)
	}
	if len(decoded) < 72 {
		return decimal.Zero, fmt.Errorf("account data too short: %d", len(decoded))
	}

	amount := binary.LittleEndian.Uint64(decoded[64:72])
	raw := new(big.Int).SetUint64(amount)
	return decimal.NewFromBigInt(raw, -int32(decimals)), nil
}
