// Package ratelimit enforces the per-wallet cooldown between card requests.
package ratelimit

import (
	"sync"
	"time"

	"solana-flex-card/internal/domain"
)

// Limiter tracks the last allowed request per wallet. Wallets are fully
// independent of each other. The cooldown is consumed when Allow grants,
// so an abandoned request still counts against the wallet.
type Limiter struct {
	cooldown time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last map[domain.WalletAddress]time.Time
}

// Option configures Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a limiter with the given cooldown window.
func New(cooldown time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		cooldown: cooldown,
		now:      time.Now,
		last:     make(map[domain.WalletAddress]time.Time),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether the wallet may proceed. When denied it returns the
// remaining wait; when granted the cooldown restarts immediately.
func (l *Limiter) Allow(wallet domain.WalletAddress) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if at, ok := l.last[wallet]; ok {
		if remaining := l.cooldown - now.Sub(at); remaining > 0 {
			return false, remaining
		}
	}
	l.last[wallet] = now
	return true, 0
}

// Prune drops wallets idle for at least idleFactor cooldowns and returns how
// many were removed. Keeps the map bounded under long uptimes.
func (l *Limiter) Prune(idleFactor int) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-time.Duration(idleFactor) * l.cooldown)
	removed := 0
	for wallet, at := range l.last {
		if at.Before(cutoff) {
			delete(l.last, wallet)
			removed++
		}
	}
	return removed
}

// Size returns the number of tracked wallets.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.last)
}
