package token

import (
	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/codec"
	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/errors"
)

const (
	maxMemoSize    = 128
	maxMessageSize = 1024
)

func init() {
	codec.RegisterMsg(&TransferMsg{}, "token/transfer")
	codec.RegisterMsg(&TransferCallMsg{}, "token/transfer_call")
	codec.RegisterMsg(&ResolveTransferMsg{}, "token/resolve_transfer")
}

// TransferMsg moves tokens from the calling account to the destination.
type TransferMsg struct {
	Dest   tipjar.Address `json:"dest"`
	Amount coin.Amount    `json:"amount"`
	Memo   string         `json:"memo,omitempty"`
}

var _ tipjar.Msg = (*TransferMsg)(nil)

func (TransferMsg) Path() string {
	return "token/transfer"
}

func (m *TransferMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Dest", m.Dest.Validate())
	if m.Amount.IsZero() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.ErrInput)
	}
	return errs
}

// TransferCallMsg moves tokens from the calling account to the destination
// and notifies the destination account about the transfer. Message is
// passed to the destination as is.
type TransferCallMsg struct {
	Dest    tipjar.Address `json:"dest"`
	Amount  coin.Amount    `json:"amount"`
	Memo    string         `json:"memo,omitempty"`
	Message string         `json:"message"`
}

var _ tipjar.Msg = (*TransferCallMsg)(nil)

func (TransferCallMsg) Path() string {
	return "token/transfer_call"
}

func (m *TransferCallMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Dest", m.Dest.Validate())
	if m.Amount.IsZero() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.ErrInput)
	}
	if len(m.Message) > maxMessageSize {
		errs = errors.AppendField(errs, "Message", errors.ErrInput)
	}
	return errs
}

// ResolveTransferMsg refunds the amount that the receiver of a
// TransferCallMsg did not use. It can be sent only by the ledger itself.
type ResolveTransferMsg struct {
	Sender   tipjar.Address `json:"sender"`
	Receiver tipjar.Address `json:"receiver"`
	Amount   coin.Amount    `json:"amount"`
}

var _ tipjar.Msg = (*ResolveTransferMsg)(nil)

func (ResolveTransferMsg) Path() string {
	return "token/resolve_transfer"
}

func (m *ResolveTransferMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Sender", m.Sender.Validate())
	errs = errors.AppendField(errs, "Receiver", m.Receiver.Validate())
	if m.Amount.IsZero() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	return errs
}
