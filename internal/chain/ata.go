package chain

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"solana-flex-card/internal/domain"
)

// SPL program IDs.
const (
	TokenProgramID           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	AssociatedTokenProgramID = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
)

// TokenAccountSize is the byte size of an SPL token account.
const TokenAccountSize = 165

// DeriveAssociatedTokenAccount derives the associated token account address
// for (wallet, mint): a PDA of [wallet, token program, mint] under the
// associated token program.
func DeriveAssociatedTokenAccount(wallet domain.WalletAddress, mint string) (string, error) {
	walletBytes, err := wallet.Bytes()
	if err != nil {
		return "", err
	}

	tokenProgramBytes, err := base58.Decode(TokenProgramID)
	if err != nil {
		return "", fmt.Errorf("decode token program id: %w", err)
	}

	mintBytes, err := base58.Decode(mint)
	if err != nil {
		return "", fmt.Errorf("decode mint %s: %w", mint, err)
	}

	programBytes, err := base58.Decode(AssociatedTokenProgramID)
	if err != nil {
		return "", fmt.Errorf("decode associated token program id: %w", err)
	}

	addr := derivePDA([][]byte{walletBytes, tokenProgramBytes, mintBytes}, programBytes)
	if addr == "" {
		return "", fmt.Errorf("no valid bump seed for wallet %s", wallet.Short())
	}
	return addr, nil
}

// derivePDA derives a Program Derived Address using the Solana algorithm:
// concatenate seeds with a bump, append the program ID and the
// "ProgramDerivedAddress" marker, SHA256, and take the first bump whose hash
// is off the ed25519 curve.
func derivePDA(seeds [][]byte, programID []byte) string {
	for b := 255; b >= 0; b-- {
		bump := byte(b)
		data := make([]byte, 0)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, bump)
		data = append(data, programID...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)

		if !onCurve(hash[:]) {
			return base58.Encode(hash[:])
		}
	}

	return ""
}

// onCurve is a hook point for tests.
var onCurve = isOnCurve

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
