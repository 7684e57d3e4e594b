package paysplit

import (
	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/coin"
)

const (
	// EventKind is the kind of all settlement events in the execution log.
	EventKind = "paysplit/transfer"

	eventVersion = "1.0.0"
	eventName    = "transfer"
	noBurner     = "none"
)

// SettlementEvent confirms that all shares of a payment were forwarded.
type SettlementEvent struct {
	Standard string         `json:"standard"`
	Version  string         `json:"version"`
	Event    string         `json:"event"`
	Data     SettlementData `json:"data"`
}

// SettlementData describes a single settled payment. Accounts are bech32
// addresses and amounts are decimal strings.
type SettlementData struct {
	Sender            string      `json:"sender"`
	Receiver          string      `json:"receiver"`
	Burner            string      `json:"burner"`
	Token             string      `json:"token"`
	FullAmount        coin.Amount `json:"full_amount"`
	TransferredAmount coin.Amount `json:"transferred_amount"`
	FeeAmount         coin.Amount `json:"fee_amount"`
	BurnAmount        coin.Amount `json:"burn_amount"`
}

// NewSettlementEvent returns the event confirming the payment described by
// the finalizer message.
func NewSettlementEvent(standard string, msg *FinalizeMsg) SettlementEvent {
	burner := noBurner
	if len(msg.Burner) != 0 {
		burner = msg.Burner.String()
	}
	return SettlementEvent{
		Standard: standard,
		Version:  eventVersion,
		Event:    eventName,
		Data: SettlementData{
			Sender:            msg.Sender.String(),
			Receiver:          msg.Receiver.String(),
			Burner:            burner,
			Token:             msg.Asset,
			FullAmount:        msg.FullAmount,
			TransferredAmount: msg.Transferred,
			FeeAmount:         msg.Fee,
			BurnAmount:        msg.Burn,
		},
	}
}

// LogEvent renders the settlement as an execution log event.
func (e SettlementEvent) LogEvent() (tipjar.Event, error) {
	return tipjar.NewEvent(EventKind, e)
}
