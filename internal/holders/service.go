// Package holders maintains a bounded ranked list of the largest token
// accounts for the tracked mint and derives rank and tier from it.
package holders

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"solana-flex-card/internal/domain"
	"solana-flex-card/internal/observability"
	"solana-flex-card/internal/solana"
)

// DefaultMaxAge is how stale the snapshot may get before Warm refetches it.
const DefaultMaxAge = 5 * time.Minute

// Entry is one holder in the bounded ranking: a token account and its
// balance at declared precision.
type Entry struct {
	Address string
	Balance decimal.Decimal
}

// Service holds the snapshot. All access goes through the RWMutex; the
// request path only takes read locks.
type Service struct {
	rpc        solana.RPCClient
	mint       string
	thresholds domain.TierThresholds
	maxAge     time.Duration
	now        func() time.Time
	log        zerolog.Logger

	mu          sync.RWMutex
	entries     []Entry // sorted by balance, descending
	refreshedAt time.Time
}

// Option configures Service.
type Option func(*Service)

// WithMaxAge sets the snapshot staleness bound used by Warm.
func WithMaxAge(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.maxAge = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a holder snapshot service for one mint.
func New(rpc solana.RPCClient, mint string, thresholds domain.TierThresholds, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		rpc:        rpc,
		mint:       mint,
		thresholds: thresholds,
		maxAge:     DefaultMaxAge,
		now:        time.Now,
		log:        log.With().Str("component", "holders").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh replaces the snapshot with the current largest accounts.
func (s *Service) Refresh(ctx context.Context) error {
	largest, err := s.rpc.GetTokenLargestAccounts(ctx, s.mint)
	if err != nil {
		return fmt.Errorf("refresh holder snapshot: %w", err)
	}

	entries := make([]Entry, 0, len(largest))
	for _, acc := range largest {
		balance, err := acc.Amount.Decimal()
		if err != nil {
			return fmt.Errorf("refresh holder snapshot: account %s: %w", acc.Address, err)
		}
		entries = append(entries, Entry{Address: acc.Address, Balance: balance})
	}

	sortEntries(entries)

	s.mu.Lock()
	s.entries = entries
	s.refreshedAt = s.now()
	s.mu.Unlock()

	observability.RecordSnapshotRefresh()
	observability.UpdateSnapshotSize(len(entries))
	s.log.Debug().Int("holders", len(entries)).Msg("holder snapshot refreshed")
	return nil
}

// Warm refreshes the snapshot only when it is stale or empty. The aggregator
// runs it concurrently with the other fetches.
func (s *Service) Warm(ctx context.Context) error {
	s.mu.RLock()
	fresh := len(s.entries) > 0 && s.now().Sub(s.refreshedAt) < s.maxAge
	s.mu.RUnlock()

	if fresh {
		return nil
	}
	return s.Refresh(ctx)
}

// Rank derives the wallet's rank and tier. Rank compares against the bounded
// list — an exact token-account match wins, otherwise the balance is slotted
// in if it clears the smallest ranked entry. Tier always derives from the
// absolute thresholds, so it is available even when rank is not.
func (s *Service) Rank(tokenAccount string, balance decimal.Decimal) (domain.Rank, domain.Tier) {
	tier := s.thresholds.Classify(balance)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return domain.Rank{}, tier
	}

	for i, e := range s.entries {
		if e.Address == tokenAccount {
			return domain.Rank{Position: i + 1, Ranked: true}, tier
		}
	}

	smallest := s.entries[len(s.entries)-1].Balance
	if balance.LessThan(smallest) {
		return domain.Rank{}, tier
	}

	// Count strictly larger balances; ties share the better position.
	position := 1
	for _, e := range s.entries {
		if e.Balance.GreaterThan(balance) {
			position++
		}
	}
	return domain.Rank{Position: position, Ranked: true}, tier
}

// Apply updates one token account's balance in the snapshot. Used by the
// live watcher; unknown accounts are ignored — the bounded list only ever
// shrinks or reorders between refreshes.
func (s *Service) Apply(tokenAccount string, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].Address == tokenAccount {
			s.entries[i].Balance = balance
			sortEntries(s.entries)
			return
		}
	}
}

// Size returns the current number of ranked holders.
func (s *Service) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// sortEntries orders by balance descending, address ascending on ties for
// deterministic ranking.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Balance.Equal(entries[j].Balance) {
			return entries[i].Balance.GreaterThan(entries[j].Balance)
		}
		return entries[i].Address < entries[j].Address
	})
}
