package cash

import (
	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/x"
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r tipjar.Registry, auth x.Authenticator, control Controller) {
	r.Handle(SendMsg{}.Path(), NewSendHandler(auth, control))
}

// RegisterQuery will register the wallets bucket as "/wallets".
func RegisterQuery(qr tipjar.QueryRouter) {
	NewBucket().Register("/wallets", qr)
}

// SendHandler will handle sending coins.
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ tipjar.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg.
func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check just verifies it is properly formed and authorized.
func (h SendHandler) Check(ctx tipjar.Context, store tipjar.KVStore, tx tipjar.Tx) (*tipjar.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &tipjar.CheckResult{}, nil
}

// Deliver moves the coins from source to receiver if all preconditions are
// met.
func (h SendHandler) Deliver(ctx tipjar.Context, store tipjar.KVStore, tx tipjar.Tx) (*tipjar.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.MoveCoins(store, msg.Src, msg.Dest, msg.Amount); err != nil {
		return nil, err
	}
	tipjar.GetLogger(ctx).Debug("native transfer", "src", msg.Src, "dest", msg.Dest, "amount", msg.Amount)
	return &tipjar.DeliverResult{}, nil
}

func (h SendHandler) validate(ctx tipjar.Context, tx tipjar.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := tipjar.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Src) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "account owner signature missing")
	}
	return &msg, nil
}
