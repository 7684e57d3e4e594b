package tipjar

import (
	"reflect"

	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/errors"
)

// Msg is message for the application to take an action (make a state
// transition). It is just the request, and must be validated by the
// Handlers. All authentication information is in the wrapping Tx.
type Msg interface {
	// Path returns the message path. This is used by the Router to
	// locate the proper Handler. Msg should be created alongside the
	// Handler that corresponds to them.
	//
	// Must be alphanumeric [0-9A-Za-z_\-/]+
	Path() string

	// Validate performs a sanity check of the message content. It does
	// not access the store.
	Validate() error
}

// Tx represent the data sent from the user to the application. It includes
// the actual message, along with information needed to authenticate the
// sender and anything else needed to pass through decorators.
type Tx interface {
	// GetMsg returns the action we wish to communicate.
	GetMsg() (Msg, error)
}

// DepositTx is implemented by transactions that attach native coins to the
// call. The deposit is moved to the called account before the handler runs.
type DepositTx interface {
	Tx
	GetDeposit() coin.Amount
}

// ContractTx is implemented by transactions that are addressed to a specific
// account.
type ContractTx interface {
	Tx
	GetContract() Address
}

// GetPath returns the path of the message, or (missing) if no message.
func GetPath(tx Tx) string {
	msg, err := tx.GetMsg()
	if err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// TxDecoder can parse bytes into a Tx.
type TxDecoder func(txBytes []byte) (Tx, error)

// LoadMsg extracts the message represented by given transaction into given
// destination. The destination must be a pointer of the same type as the
// message carried by the transaction. Before returning, message validation
// method is called.
func LoadMsg(tx Tx, destination interface{}) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get transaction message")
	}
	if msg == nil {
		return errors.Wrap(errors.ErrEmpty, "message")
	}
	dest := reflect.ValueOf(destination)
	if dest.Kind() != reflect.Ptr || dest.IsNil() {
		return errors.Wrapf(errors.ErrHuman, "destination must be a non nil pointer, got %T", destination)
	}
	src := reflect.ValueOf(msg)
	if src.Type() != dest.Type() {
		return errors.Wrapf(errors.ErrType, "want %T message, got %T", destination, msg)
	}
	if src.IsNil() {
		return errors.Wrap(errors.ErrEmpty, "message")
	}
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	dest.Elem().Set(src.Elem())
	return nil
}
