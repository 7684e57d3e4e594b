package paysplit

import (
	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/errors"
)

// FractionalBase is the denominator of all fee and burn numerators. A
// numerator of 100 is one percent.
const FractionalBase = 10000

// SplitResult is the division of a gross amount. The sum of all shares is
// always equal to the gross amount.
type SplitResult struct {
	Recipient coin.Amount
	Fee       coin.Amount
	Burn      coin.Amount
}

// Split divides gross into the recipient, fee and burn shares. Both
// numerators are over FractionalBase. The remainder of the integer division
// is always part of the fee.
func Split(gross coin.Amount, feeNumerator, burnNumerator uint64) (*SplitResult, error) {
	if feeNumerator > FractionalBase || burnNumerator > FractionalBase || feeNumerator+burnNumerator > FractionalBase {
		return nil, errors.Wrapf(errors.ErrConfig, "fee %d and burn %d exceed %d", feeNumerator, burnNumerator, FractionalBase)
	}
	recipient, err := gross.MulDiv(FractionalBase-feeNumerator-burnNumerator, FractionalBase)
	if err != nil {
		return nil, errors.Wrap(err, "recipient share")
	}
	burn, err := gross.MulDiv(burnNumerator, FractionalBase)
	if err != nil {
		return nil, errors.Wrap(err, "burn share")
	}
	kept, err := recipient.Add(burn)
	if err != nil {
		return nil, err
	}
	fee, err := gross.Sub(kept)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrOverflow, "shares exceed gross amount %s", gross)
	}
	return &SplitResult{Recipient: recipient, Fee: fee, Burn: burn}, nil
}

// SplitNative divides a native payment. Nothing is burned.
func SplitNative(gross coin.Amount, feeNumerator uint64) (*SplitResult, error) {
	return Split(gross, feeNumerator, 0)
}

// SplitToken divides a token payment that carries a burn share. The burn
// share uses the fee numerator as well, so both the fee and the burn are
// taken from the gross amount.
func SplitToken(gross coin.Amount, feeNumerator uint64) (*SplitResult, error) {
	return Split(gross, feeNumerator, feeNumerator)
}
