package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-flex-card/internal/domain"
)

func wallet(t *testing.T, addr string) domain.WalletAddress {
	t.Helper()
	w, err := domain.ParseWallet(addr)
	require.NoError(t, err)
	return w
}

func TestLimiter_AllowThenDeny(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New(15*time.Second, WithClock(func() time.Time { return now }))
	w := wallet(t, "HgBRWfYxEfvPhtqkaPymwnrmFVnXzSBVVrWudp2Ppump")

	ok, _ := l.Allow(w)
	require.True(t, ok, "first request must pass")

	ok, retry := l.Allow(w)
	assert.False(t, ok)
	assert.Equal(t, 15*time.Second, retry)

	now = now.Add(10 * time.Second)
	ok, retry = l.Allow(w)
	assert.False(t, ok)
	assert.Equal(t, 5*time.Second, retry)

	now = now.Add(5 * time.Second)
	ok, _ = l.Allow(w)
	assert.True(t, ok, "cooldown elapsed")
}

func TestLimiter_WalletsIndependent(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New(15*time.Second, WithClock(func() time.Time { return now }))

	a := wallet(t, "HgBRWfYxEfvPhtqkaPymwnrmFVnXzSBVVrWudp2Ppump")
	b := wallet(t, "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

	ok, _ := l.Allow(a)
	require.True(t, ok)

	ok, _ = l.Allow(b)
	assert.True(t, ok, "one wallet's cooldown must not block another")
}

func TestLimiter_CooldownConsumedOnAllow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New(15*time.Second, WithClock(func() time.Time { return now }))
	w := wallet(t, "HgBRWfYxEfvPhtqkaPymwnrmFVnXzSBVVrWudp2Ppump")

	// Grant at t=20s resets the window from the grant, not from the first
	// request.
	ok, _ := l.Allow(w)
	require.True(t, ok)
	now = now.Add(20 * time.Second)
	ok, _ = l.Allow(w)
	require.True(t, ok)

	now = now.Add(10 * time.Second)
	ok, retry := l.Allow(w)
	assert.False(t, ok)
	assert.Equal(t, 5*time.Second, retry)
}

func TestLimiter_Prune(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New(15*time.Second, WithClock(func() time.Time { return now }))

	a := wallet(t, "HgBRWfYxEfvPhtqkaPymwnrmFVnXzSBVVrWudp2Ppump")
	b := wallet(t, "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

	l.Allow(a)
	now = now.Add(50 * time.Second)
	l.Allow(b)
	require.Equal(t, 2, l.Size())

	removed := l.Prune(3)
	assert.Equal(t, 1, removed, "only the wallet idle past 3 cooldowns drops")
	assert.Equal(t, 1, l.Size())

	ok, _ := l.Allow(a)
	assert.True(t, ok, "pruned wallet starts fresh")
}
