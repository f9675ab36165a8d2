// Package account normalizes the hex addresses that identify marketplace
// participants.
package account

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	pkgerrors "github.com/angelmondragon/ticket-escrow-backend/pkg/errors"
)

// Normalize validates a 20-byte hex address and returns its EIP-55 checksum form.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if !common.IsHexAddress(trimmed) {
		return "", pkgerrors.ErrInvalidAccount.WithDetails(map[string]any{"account": raw})
	}
	addr := common.HexToAddress(trimmed)
	if addr == (common.Address{}) {
		return "", pkgerrors.ErrInvalidAccount.WithDetails(map[string]any{"account": raw, "reason": "zero address"})
	}
	return addr.Hex(), nil
}

// MustNormalize is Normalize for trusted configuration values.
func MustNormalize(raw string) string {
	addr, err := Normalize(raw)
	if err != nil {
		panic(err)
	}
	return addr
}

// Equal compares two addresses ignoring case and surrounding whitespace.
func Equal(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
