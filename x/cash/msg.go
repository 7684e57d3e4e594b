package cash

import (
	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/codec"
	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/errors"
)

const maxMemoSize = 128

func init() {
	codec.RegisterMsg(&SendMsg{}, "cash/send")
}

// SendMsg moves native coins from the source to the destination account.
type SendMsg struct {
	Src    tipjar.Address `json:"src"`
	Dest   tipjar.Address `json:"dest"`
	Amount coin.Amount    `json:"amount"`
	Memo   string         `json:"memo,omitempty"`
}

var _ tipjar.Msg = (*SendMsg)(nil)

// Path returns the routing path for this message.
func (SendMsg) Path() string {
	return "cash/send"
}

// Validate makes sure that this is sensible.
func (m *SendMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Src", m.Src.Validate())
	errs = errors.AppendField(errs, "Dest", m.Dest.Validate())
	if m.Amount.IsZero() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.ErrInput)
	}
	return errs
}
