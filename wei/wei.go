// Package wei converts between raw base-unit amounts (wei) and human
// decimal strings. All scaling is exact integer arithmetic on uint256
// values; amounts never pass through binary floating point.
package wei

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Decimals is the scaling factor between wei and ether.
const Decimals = 18

var (
	ErrEmptyAmount   = errors.New("wei: empty amount")
	ErrTooManyDigits = errors.New("wei: too many fractional digits")
)

// Format renders a wei amount as a decimal ether string with trailing
// zeros trimmed: 1500000000000000 wei formats as "0.0015".
func Format(amount *uint256.Int) string {
	if amount == nil || amount.IsZero() {
		return "0"
	}

	digits := amount.Dec()
	if len(digits) <= Decimals {
		frac := strings.Repeat("0", Decimals-len(digits)) + digits
		frac = strings.TrimRight(frac, "0")
		if frac == "" {
			return "0"
		}
		return "0." + frac
	}

	whole := digits[:len(digits)-Decimals]
	frac := strings.TrimRight(digits[len(digits)-Decimals:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// Parse converts a decimal ether string back into a wei amount. It is the
// exact inverse of Format for any representable amount. More than 18
// fractional digits cannot be represented and is an error rather than a
// silent truncation.
func Parse(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyAmount
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > Decimals {
		return nil, ErrTooManyDigits
	}

	// Scale to an integer wei count by padding the fraction to 18 digits.
	padded := whole + frac + strings.Repeat("0", Decimals-len(frac))
	padded = strings.TrimLeft(padded, "0")
	if padded == "" {
		return uint256.NewInt(0), nil
	}

	amount, err := uint256.FromDecimal(padded)
	if err != nil {
		return nil, fmt.Errorf("wei: parse %q: %w", s, err)
	}
	return amount, nil
}
