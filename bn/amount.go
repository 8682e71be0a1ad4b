// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bn

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/bitsongofficial/realign/faults"
)

var (
	// ErrSyntax is returned when a string is not a base 10 unsigned integer.
	ErrSyntax = errors.New("invalid amount syntax")
	// ErrNegative is returned when a string holds a negative integer.
	ErrNegative = errors.New("negative amount")
)

// Amount is a non-negative count of minor-denomination tokens.
// It can be used as a value without state sharing.
// Arithmetic never wraps: Add and Sub report overflow and underflow as errors.
type Amount struct {
	value uint256.Int
}

// Zero returns the zero amount.
func Zero() Amount {
	return Amount{}
}

// NewAmount creates an amount from an uint64.
func NewAmount(v uint64) Amount {
	var a Amount
	a.value.SetUint64(v)
	return a
}

// FromBig creates an amount from big.Int.
func FromBig(bi *big.Int) (Amount, error) {
	var a Amount
	if bi == nil {
		return a, nil
	}
	if bi.Sign() < 0 {
		return a, ErrNegative
	}
	if a.value.SetFromBig(bi) {
		return Amount{}, errors.WithStack(faults.ErrAmountOverflow)
	}
	return a, nil
}

// ParseAmount parses a base 10 unsigned integer.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrSyntax
	}
	digits := s
	if s[0] == '-' || s[0] == '+' {
		digits = s[1:]
	}
	if digits == "" {
		return Amount{}, ErrSyntax
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Amount{}, ErrSyntax
		}
	}
	if s[0] == '-' {
		if strings.Trim(digits, "0") == "" {
			return Amount{}, nil
		}
		return Amount{}, ErrNegative
	}

	v, err := uint256.FromDecimal(strings.TrimLeft(digits, "0"))
	if err != nil {
		if strings.Trim(digits, "0") == "" {
			return Amount{}, nil
		}
		return Amount{}, errors.Wrap(faults.ErrAmountOverflow, s)
	}
	return Amount{value: *v}, nil
}

// MustParse parses s and panics on error. Intended for constants and tests.
func MustParse(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(fmt.Sprintf("bn: invalid amount %q: %v", s, err))
	}
	return a
}

// ToBig converts to big.Int.
func (a Amount) ToBig() *big.Int {
	return a.value.ToBig()
}

// Uint64 returns the amount as uint64 and whether it fits.
func (a Amount) Uint64() (uint64, bool) {
	return a.value.Uint64(), a.value.IsUint64()
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.value.IsZero()
}

// Cmp compares with another amount.
// Returns:
//
//	-1 if a <  other
//	 0 if a == other
//	+1 if a >  other
func (a Amount) Cmp(other Amount) int {
	return a.value.Cmp(&other.value)
}

// Add returns a + other.
func (a Amount) Add(other Amount) (Amount, error) {
	var r Amount
	if _, overflow := r.value.AddOverflow(&a.value, &other.value); overflow {
		return Amount{}, errors.Wrapf(faults.ErrAmountOverflow, "%s + %s", a, other)
	}
	return r, nil
}

// Sub returns a - other.
func (a Amount) Sub(other Amount) (Amount, error) {
	var r Amount
	if _, underflow := r.value.SubOverflow(&a.value, &other.value); underflow {
		return Amount{}, errors.Wrapf(faults.ErrAmountUnderflow, "%s - %s", a, other)
	}
	return r, nil
}

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// Sum adds all amounts.
func Sum(amounts ...Amount) (Amount, error) {
	var (
		total Amount
		err   error
	)
	for _, a := range amounts {
		if total, err = total.Add(a); err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}

// String implements Stringer.
func (a Amount) String() string {
	return a.value.Dec()
}

// Decimal renders the amount with the given number of fractional digits,
// trimming trailing zeros, e.g. 1500000 with 6 decimals is "1.5".
func (a Amount) Decimal(decimals uint8) string {
	s := a.value.Dec()
	if decimals == 0 {
		return s
	}
	d := int(decimals)
	if len(s) <= d {
		s = strings.Repeat("0", d-len(s)+1) + s
	}
	whole, frac := s[:len(s)-d], strings.TrimRight(s[len(s)-d:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// MarshalText implements the encoding.TextMarshaler interface.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.value.Dec()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (a *Amount) UnmarshalText(text []byte) error {
	v, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
// Amounts are encoded as decimal strings, the way the chain's REST API does.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.value.Dec() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// Both quoted and bare decimal numbers are accepted.
func (a *Amount) UnmarshalJSON(text []byte) error {
	text = bytes.TrimSpace(text)
	if bytes.Equal(text, []byte("null")) {
		*a = Amount{}
		return nil
	}
	return a.UnmarshalText(bytes.Trim(text, `"`))
}
