/*
Package codec holds the binary codec shared by all extensions.

Models, messages and scheduled calls are serialized with go-amino. Every
message type must be registered with RegisterMsg, usually from the init
function of the package defining it, so that it can be stored inside an
interface field (for example a scheduled call).
*/
package codec

import (
	"sync"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/errors"
	amino "github.com/tendermint/go-amino"
)

var (
	mu  sync.Mutex
	cdc = newCodec()
)

func newCodec() *amino.Codec {
	c := amino.NewCodec()
	c.RegisterInterface((*tipjar.Msg)(nil), nil)
	return c
}

// Amino returns the shared codec instance.
func Amino() *amino.Codec {
	return cdc
}

// RegisterMsg registers a message type under given name. The name is
// persisted together with the message and must never change. Always
// register a pointer, for example RegisterMsg(&SendMsg{}, "cash/send").
func RegisterMsg(msg tipjar.Msg, name string) {
	mu.Lock()
	defer mu.Unlock()
	cdc.RegisterConcrete(msg, name, nil)
}

// Marshal serializes a value into its binary representation.
func Marshal(o interface{}) ([]byte, error) {
	raw, err := cdc.MarshalBinaryBare(o)
	if err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return raw, nil
}

// Unmarshal deserializes a value produced by Marshal. ptr must be a pointer.
func Unmarshal(raw []byte, ptr interface{}) error {
	if err := cdc.UnmarshalBinaryBare(raw, ptr); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	return nil
}

// MarshalMsg serializes a message. The registered type prefix is included
// so that UnmarshalMsg can restore the concrete type.
func MarshalMsg(msg tipjar.Msg) ([]byte, error) {
	if msg == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "no message")
	}
	return Marshal(msg)
}

// UnmarshalMsg deserializes a message produced by MarshalMsg.
func UnmarshalMsg(raw []byte) (tipjar.Msg, error) {
	var msg tipjar.Msg
	if err := Unmarshal(raw, &msg); err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrModel, "no message")
	}
	return msg, nil
}
