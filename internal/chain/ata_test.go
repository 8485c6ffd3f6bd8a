package chain

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-flex-card/internal/domain"
)

func TestDeriveAssociatedTokenAccount_Deterministic(t *testing.T) {
	w, err := domain.ParseWallet(testWallet)
	require.NoError(t, err)

	first, err := DeriveAssociatedTokenAccount(w, testMint)
	require.NoError(t, err)

	second, err := DeriveAssociatedTokenAccount(w, testMint)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	decoded, err := base58.Decode(first)
	require.NoError(t, err)
	assert.Len(t, decoded, 32)
}

func TestDeriveAssociatedTokenAccount_VariesByWallet(t *testing.T) {
	w1, err := domain.ParseWallet(testWallet)
	require.NoError(t, err)
	w2, err := domain.ParseWallet("So11111111111111111111111111111111111111112")
	require.NoError(t, err)

	a1, err := DeriveAssociatedTokenAccount(w1, testMint)
	require.NoError(t, err)
	a2, err := DeriveAssociatedTokenAccount(w2, testMint)
	require.NoError(t, err)

	assert.NotEqual(t, a1, a2)
}

func TestDerivePDA_TriesBumpZero(t *testing.T) {
	orig := onCurve
	defer func() { onCurve = orig }()

	// Reject every candidate except the 256th, which corresponds to bump 0.
	calls := 0
	onCurve = func(point []byte) bool {
		calls++
		return calls < 256
	}

	addr := derivePDA([][]byte{[]byte("seed")}, make([]byte, 32))
	assert.NotEmpty(t, addr)
	assert.Equal(t, 256, calls)
}

func TestDerivePDA_OffCurve(t *testing.T) {
	w, err := domain.ParseWallet(testWallet)
	require.NoError(t, err)

	addr, err := DeriveAssociatedTokenAccount(w, testMint)
	require.NoError(t, err)

	decoded, err := base58.Decode(addr)
	require.NoError(t, err)
	assert.False(t, isOnCurve(decoded), "PDA must be off the ed25519 curve")
}
