package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount of currency expressed in minor units (cents).
// All ledger arithmetic is integer arithmetic, so split sums and report
// totals reconcile exactly.
type Money int64

// Tolerance is the acceptable residue, in minor units, when reconciling a
// caller-supplied split against an expense total.
const Tolerance Money = 1

// ParseMoney converts a decimal string to Money with half-up rounding on the
// third decimal place. Both dot and comma decimal separators are accepted.
// Negative and malformed inputs are rejected.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("%w: signed amount %q", ErrInvalidAmount, s)
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("%w: malformed amount %q", ErrInvalidAmount, s)
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, fmt.Errorf("%w: malformed amount %q", ErrInvalidAmount, s)
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q out of range", ErrInvalidAmount, s)
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, fmt.Errorf("%w: amount %q out of range", ErrInvalidAmount, s)
	}

	// Take the first two fractional digits, half-up rounding on the third.
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}

	return Money(iv*100 + frac), nil
}

// String renders the amount as a plain decimal with two fractional digits.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Abs returns the magnitude of the amount.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}
