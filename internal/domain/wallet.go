package domain

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// Solana address length bounds in base58 characters.
const (
	minAddressLen = 32
	maxAddressLen = 44
)

// WalletAddress is a validated Solana account address (base58 of a 32-byte
// public key). Construct via ParseWallet; the zero value is not valid.
type WalletAddress string

// ParseWallet validates a raw address string. It rejects invalid input before
// any external call is made.
func ParseWallet(raw string) (WalletAddress, error) {
	if len(raw) < minAddressLen || len(raw) > maxAddressLen {
		return "", fmt.Errorf("%w: length %d outside [%d, %d]", ErrInvalidAddress, len(raw), minAddressLen, maxAddressLen)
	}

	decoded, err := base58.Decode(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(decoded) != 32 {
		return "", fmt.Errorf("%w: decodes to %d bytes, want 32", ErrInvalidAddress, len(decoded))
	}

	return WalletAddress(raw), nil
}

// String returns the full base58 address.
func (w WalletAddress) String() string {
	return string(w)
}

// Bytes returns the decoded 32-byte public key.
func (w WalletAddress) Bytes() ([]byte, error) {
	decoded, err := base58.Decode(string(w))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return decoded, nil
}

// Short returns the fixed prefix+suffix form used on cards, e.g. "5c1C...bxcv".
func (w WalletAddress) Short() string {
	s := string(w)
	if len(s) < 8 {
		return s
	}
	return s[:4] + "..." + s[len(s)-4:]
}
