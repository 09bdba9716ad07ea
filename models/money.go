package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Lamports is an amount of SOL in minor units (1 SOL = 1_000_000_000 lamports).
// All arithmetic on amounts happens in this type; decimal SOL strings exist
// only at the API boundary.
type Lamports int64

const LamportsPerSOL = 1_000_000_000

var lamportsPerSOL = decimal.NewFromInt(LamportsPerSOL)

// ParseSOL converts a decimal SOL string (e.g. "0.2002") to lamports exactly.
// Returns an error if the string is not a valid decimal or has more than nine
// fractional digits.
func ParseSOL(s string) (Lamports, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid SOL amount %q: %w", s, err)
	}

	scaled := d.Mul(lamportsPerSOL)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("SOL amount %q has sub-lamport precision", s)
	}
	if !scaled.BigInt().IsInt64() {
		return 0, fmt.Errorf("SOL amount %q out of range", s)
	}

	return Lamports(scaled.IntPart()), nil
}

// SOL renders the amount as a decimal SOL string without trailing zeros.
func (l Lamports) SOL() string {
	return decimal.NewFromInt(int64(l)).Div(lamportsPerSOL).String()
}

func (l Lamports) String() string {
	return fmt.Sprintf("%d lamports", int64(l))
}
