package coin

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/tipjar/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxU128 = "340282366920938463463374607431768211455"

func TestParseAmount(t *testing.T) {
	cases := map[string]struct {
		raw     string
		want    string
		wantErr *errors.Error
	}{
		"zero":             {raw: "0", want: "0"},
		"small":            {raw: "1000", want: "1000"},
		"spaces trimmed":   {raw: " 42 ", want: "42"},
		"max u128":         {raw: maxU128, want: maxU128},
		"above u64":        {raw: "18446744073709551616", want: "18446744073709551616"},
		"max plus one":     {raw: "340282366920938463463374607431768211456", wantErr: errors.ErrOverflow},
		"negative":         {raw: "-1", wantErr: errors.ErrAmount},
		"empty":            {raw: "", wantErr: errors.ErrInput},
		"not a number":     {raw: "12a", wantErr: errors.ErrInput},
		"fractional input": {raw: "1.5", wantErr: errors.ErrInput},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			a, err := ParseAmount(tc.raw)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, a.String())
		})
	}
}

func TestAmountArithmetic(t *testing.T) {
	one := NewAmount(1)

	sum, err := NewAmount(7).Add(NewAmount(5))
	require.NoError(t, err)
	assert.Equal(t, NewAmount(12), sum)

	_, err = MaxAmount().Add(one)
	assert.True(t, errors.ErrOverflow.Is(err))

	diff, err := NewAmount(7).Sub(NewAmount(5))
	require.NoError(t, err)
	assert.Equal(t, NewAmount(2), diff)

	_, err = NewAmount(5).Sub(NewAmount(7))
	assert.True(t, errors.ErrAmount.Is(err))

	// Carry across the 64 bit limb boundary.
	big, err := NewAmount(^uint64(0)).Add(one)
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551616", big.String())
	back, err := big.Sub(one)
	require.NoError(t, err)
	v, ok := back.Uint64()
	assert.True(t, ok)
	assert.Equal(t, ^uint64(0), v)
	_, ok = big.Uint64()
	assert.False(t, ok)
}

func TestAmountMulDiv(t *testing.T) {
	cases := map[string]struct {
		amount  Amount
		num     uint64
		den     uint64
		want    string
		wantErr *errors.Error
	}{
		"one percent": {
			amount: NewAmount(1000000),
			num:    100,
			den:    10000,
			want:   "10000",
		},
		"truncated toward zero": {
			amount: NewAmount(999),
			num:    100,
			den:    10000,
			want:   "9",
		},
		"max amount does not overflow the intermediate": {
			amount: MaxAmount(),
			num:    10000,
			den:    10000,
			want:   maxU128,
		},
		"max amount scaled down": {
			amount: MaxAmount(),
			num:    5000,
			den:    10000,
			want:   "170141183460469231731687303715884105727",
		},
		"result above 128 bits": {
			amount:  MaxAmount(),
			num:     3,
			den:     2,
			wantErr: errors.ErrOverflow,
		},
		"zero denominator": {
			amount:  NewAmount(1),
			num:     1,
			den:     0,
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := tc.amount.MulDiv(tc.num, tc.den)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestAmountCmp(t *testing.T) {
	low := NewAmount(^uint64(0))
	high := MustParseAmount("18446744073709551616")

	assert.Equal(t, -1, low.Cmp(high))
	assert.Equal(t, 1, high.Cmp(low))
	assert.Equal(t, 0, high.Cmp(high))
	assert.True(t, low.LessThan(high))
	assert.True(t, Amount{}.IsZero())
	assert.False(t, low.IsZero())
}

func TestAmountJSON(t *testing.T) {
	a := MustParseAmount(maxU128)
	raw, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"`+maxU128+`"`, string(raw))

	var got Amount
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, a, got)

	require.NoError(t, json.Unmarshal([]byte(`1234`), &got))
	assert.Equal(t, NewAmount(1234), got)

	err = json.Unmarshal([]byte(`"-5"`), &got)
	assert.True(t, errors.ErrAmount.Is(err))

	err = json.Unmarshal([]byte(`true`), &got)
	assert.True(t, errors.ErrInput.Is(err))
}
