package paysplit

import (
	"encoding/json"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/errors"
)

// FeeInfo is the result of the fee query.
type FeeInfo struct {
	Owner        tipjar.Address `json:"owner"`
	FeeNumerator uint64         `json:"fee_numerator"`
	Base         uint64         `json:"base"`
}

// RegisterQuery registers the current fee as "/paysplit/fee".
func RegisterQuery(qr tipjar.QueryRouter) {
	qr.Register("/paysplit/fee", feeQuery{})
}

type feeQuery struct{}

func (feeQuery) Query(db tipjar.ReadOnlyKVStore, mod string, data []byte) ([]tipjar.Model, error) {
	if mod != tipjar.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported query modifier %q", mod)
	}
	conf, err := LoadConfiguration(db)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(FeeInfo{
		Owner:        conf.Owner,
		FeeNumerator: conf.FeeNumerator,
		Base:         FractionalBase,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return []tipjar.Model{tipjar.Pair([]byte(confPkg), raw)}, nil
}
