package extract

import (
	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// IsValidAddress reports whether s decodes as a 32-byte base58 address.
func IsValidAddress(s string) bool {
	decoded, err := base58.Decode(s)
	return err == nil && len(decoded) == 32
}

// OnCurve reports whether a wallet address is a valid ed25519 curve
// point. Off-curve addresses are program-derived accounts that cannot
// sign transactions and therefore cannot be real buyers.
func OnCurve(address string) bool {
	decoded, err := base58.Decode(address)
	if err != nil || len(decoded) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}
