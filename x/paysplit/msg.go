package paysplit

import (
	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/codec"
	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/errors"
)

const (
	// NativeAsset is the asset name of native payments.
	NativeAsset = "NATIVE"

	maxMessageSize = 1024
)

func init() {
	codec.RegisterMsg(&TransferPaymentMsg{}, "paysplit/transfer_payment")
	codec.RegisterMsg(&OnTokenTransferMsg{}, "paysplit/on_token_transfer")
	codec.RegisterMsg(&FinalizeMsg{}, "paysplit/finalize")
	codec.RegisterMsg(&ChangeFeeMsg{}, "paysplit/change_fee")
	codec.RegisterMsg(&WithdrawFundsMsg{}, "paysplit/withdraw_funds")
}

// TransferPaymentMsg splits the native deposit attached to the transaction
// and forwards the recipient share to the receiver.
type TransferPaymentMsg struct {
	Receiver tipjar.Address `json:"receiver"`
}

var _ tipjar.Msg = (*TransferPaymentMsg)(nil)

func (TransferPaymentMsg) Path() string {
	return "paysplit/transfer_payment"
}

func (m *TransferPaymentMsg) Validate() error {
	return errors.AppendField(nil, "Receiver", m.Receiver.Validate())
}

// OnTokenTransferMsg is the notification sent by a token ledger after
// Amount of its tokens was transferred to the contract. Message is the JSON
// routing payload, see ParseRouting.
type OnTokenTransferMsg struct {
	Sender  tipjar.Address `json:"sender"`
	Amount  coin.Amount    `json:"amount"`
	Message string         `json:"message"`
}

var _ tipjar.Msg = (*OnTokenTransferMsg)(nil)

func (OnTokenTransferMsg) Path() string {
	return "paysplit/on_token_transfer"
}

func (m *OnTokenTransferMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Sender", m.Sender.Validate())
	if m.Amount.IsZero() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	if len(m.Message) > maxMessageSize {
		errs = errors.AppendField(errs, "Message", errors.ErrInput)
	}
	return errs
}

// Notify builds the token transfer notification of the contract. It is
// meant to be used as token.NotifyFunc.
func Notify(sender tipjar.Address, amount coin.Amount, message string) tipjar.Msg {
	return &OnTokenTransferMsg{Sender: sender, Amount: amount, Message: message}
}

// FinalizeMsg is the continuation scheduled after the last transfer of a
// payment. It carries everything needed to build the settlement event.
type FinalizeMsg struct {
	Sender   tipjar.Address `json:"sender"`
	Receiver tipjar.Address `json:"receiver"`
	// Burner is empty when nothing was burned.
	Burner tipjar.Address `json:"burner,omitempty"`
	// Asset is the token ticker or NativeAsset.
	Asset       string      `json:"asset"`
	FullAmount  coin.Amount `json:"full_amount"`
	Transferred coin.Amount `json:"transferred"`
	Fee         coin.Amount `json:"fee"`
	Burn        coin.Amount `json:"burn"`
}

var _ tipjar.Msg = (*FinalizeMsg)(nil)

func (FinalizeMsg) Path() string {
	return "paysplit/finalize"
}

func (m *FinalizeMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Sender", m.Sender.Validate())
	errs = errors.AppendField(errs, "Receiver", m.Receiver.Validate())
	if len(m.Burner) != 0 {
		errs = errors.AppendField(errs, "Burner", m.Burner.Validate())
	}
	if m.Asset == "" {
		errs = errors.AppendField(errs, "Asset", errors.ErrEmpty)
	}
	sum, err := m.Transferred.Add(m.Fee)
	if err == nil {
		sum, err = sum.Add(m.Burn)
	}
	if err != nil || !sum.Equals(m.FullAmount) {
		errs = errors.AppendField(errs, "FullAmount",
			errors.Wrap(errors.ErrAmount, "shares do not sum up to the full amount"))
	}
	return errs
}

// ChangeFeeMsg sets a new fee numerator. Only the owner can send it, with
// exactly one unit of deposit attached.
type ChangeFeeMsg struct {
	FeeNumerator uint64 `json:"fee_numerator"`
}

var _ tipjar.Msg = (*ChangeFeeMsg)(nil)

func (ChangeFeeMsg) Path() string {
	return "paysplit/change_fee"
}

func (m *ChangeFeeMsg) Validate() error {
	if m.FeeNumerator > FractionalBase {
		return errors.Field("FeeNumerator", errors.ErrConfig, "must not exceed %d", FractionalBase)
	}
	return nil
}

// WithdrawFundsMsg sends Amount of the native coins collected by the
// contract to the owner. Only the owner can send it, with exactly one unit
// of deposit attached.
type WithdrawFundsMsg struct {
	Amount coin.Amount `json:"amount"`
}

var _ tipjar.Msg = (*WithdrawFundsMsg)(nil)

func (WithdrawFundsMsg) Path() string {
	return "paysplit/withdraw_funds"
}

func (m *WithdrawFundsMsg) Validate() error {
	if m.Amount.IsZero() {
		return errors.Field("Amount", errors.ErrAmount, "nothing to withdraw")
	}
	return nil
}
