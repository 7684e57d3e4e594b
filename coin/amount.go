package coin

import (
	"encoding/json"
	"math"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/iov-one/tipjar/errors"
)

// Amount is an unsigned 128 bit quantity. The zero value is a valid zero
// amount.
type Amount struct {
	lo, hi uint64
}

// amountBits is the width of an Amount.
const amountBits = 128

// NewAmount returns an amount of given value.
func NewAmount(v uint64) Amount {
	return Amount{lo: v}
}

// MaxAmount returns the biggest representable amount, 2^128-1.
func MaxAmount() Amount {
	return Amount{lo: math.MaxUint64, hi: math.MaxUint64}
}

// FromInt converts a 256 bit integer into an amount. It fails if the value
// does not fit in 128 bits.
func FromInt(x *uint256.Int) (Amount, error) {
	if x.BitLen() > amountBits {
		return Amount{}, errors.Wrapf(errors.ErrOverflow, "%s does not fit in %d bits", x.ToBig(), amountBits)
	}
	return Amount{lo: x[0], hi: x[1]}, nil
}

// Int returns a new 256 bit integer representing this amount.
func (a Amount) Int() *uint256.Int {
	return &uint256.Int{a.lo, a.hi, 0, 0}
}

// IsZero returns true if this amount is zero.
func (a Amount) IsZero() bool {
	return a.lo == 0 && a.hi == 0
}

// Cmp compares two amounts and returns -1, 0 or 1.
func (a Amount) Cmp(b Amount) int {
	switch {
	case a.hi < b.hi:
		return -1
	case a.hi > b.hi:
		return 1
	case a.lo < b.lo:
		return -1
	case a.lo > b.lo:
		return 1
	}
	return 0
}

// Equals returns true if both amounts represent the same value.
func (a Amount) Equals(b Amount) bool {
	return a == b
}

// LessThan returns true if a < b.
func (a Amount) LessThan(b Amount) bool {
	return a.Cmp(b) < 0
}

// Add returns a + b. It fails if the result exceeds 128 bits.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := new(uint256.Int).Add(a.Int(), b.Int())
	return FromInt(sum)
}

// Sub returns a - b. Amounts are unsigned, subtracting a bigger value fails
// with errors.ErrAmount.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.LessThan(b) {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "cannot subtract %s from %s", b, a)
	}
	diff := new(uint256.Int).Sub(a.Int(), b.Int())
	return FromInt(diff)
}

// MulDiv returns a * num / den, truncated toward zero. The product is
// computed with a 256 bit intermediate. A zero denominator is an input error,
// a quotient that does not fit in 128 bits is an overflow.
func (a Amount) MulDiv(num, den uint64) (Amount, error) {
	if den == 0 {
		return Amount{}, errors.Wrap(errors.ErrInput, "zero division")
	}
	prod := new(uint256.Int).Mul(a.Int(), uint256.NewInt(num))
	quo := new(uint256.Int).Div(prod, uint256.NewInt(den))
	return FromInt(quo)
}

// Uint64 returns the amount as uint64 and a flag telling if the conversion
// was lossless.
func (a Amount) Uint64() (uint64, bool) {
	return a.lo, a.hi == 0
}

// String returns the decimal representation.
func (a Amount) String() string {
	return a.Int().ToBig().String()
}

// ParseAmount parses a decimal representation of an amount.
func ParseAmount(raw string) (Amount, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Amount{}, errors.Wrap(errors.ErrInput, "empty amount")
	}
	b, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return Amount{}, errors.Wrapf(errors.ErrInput, "not a decimal number: %q", raw)
	}
	if b.Sign() < 0 {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "negative amount: %q", raw)
	}
	if b.BitLen() > amountBits {
		return Amount{}, errors.Wrapf(errors.ErrOverflow, "%q does not fit in %d bits", raw, amountBits)
	}
	x, overflow := uint256.FromBig(b)
	if overflow {
		return Amount{}, errors.Wrapf(errors.ErrOverflow, "%q", raw)
	}
	return FromInt(x)
}

// MustParseAmount is like ParseAmount but panics on error. Use it only with
// constant values.
func MustParseAmount(raw string) Amount {
	a, err := ParseAmount(raw)
	if err != nil {
		panic(err)
	}
	return a
}

// MarshalJSON serializes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both a decimal string and a JSON number.
func (a *Amount) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return errors.Wrap(errors.ErrInput, "amount must be a decimal string or a number")
		}
		s = n.String()
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// MarshalAmino implements the amino representation of an amount.
func (a Amount) MarshalAmino() (string, error) {
	return a.String(), nil
}

// UnmarshalAmino implements the amino representation of an amount.
func (a *Amount) UnmarshalAmino(raw string) error {
	v, err := ParseAmount(raw)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
