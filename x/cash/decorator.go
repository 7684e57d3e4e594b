package cash

import (
	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/x"
)

// DepositDecorator moves the native coins attached to a transaction from
// the signer to the called account before calling down the stack. The
// attached amount is available to the handler via tipjar.GetDeposit.
//
// It uses auth to find the signer.
type DepositDecorator struct {
	auth    x.Authenticator
	control Controller
}

var _ tipjar.Decorator = DepositDecorator{}

// NewDepositDecorator returns a DepositDecorator using given controller to
// move the coins.
func NewDepositDecorator(auth x.Authenticator, control Controller) DepositDecorator {
	return DepositDecorator{
		auth:    auth,
		control: control,
	}
}

// Check verifies and moves the deposit before calling down the stack.
func (d DepositDecorator) Check(ctx tipjar.Context, store tipjar.KVStore, tx tipjar.Tx, next tipjar.Checker) (*tipjar.CheckResult, error) {
	ctx, err := d.deposit(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	return next.Check(ctx, store, tx)
}

// Deliver moves the deposit before calling down the stack.
func (d DepositDecorator) Deliver(ctx tipjar.Context, store tipjar.KVStore, tx tipjar.Tx, next tipjar.Deliverer) (*tipjar.DeliverResult, error) {
	ctx, err := d.deposit(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, store, tx)
}

func (d DepositDecorator) deposit(ctx tipjar.Context, store tipjar.KVStore, tx tipjar.Tx) (tipjar.Context, error) {
	dtx, ok := tx.(tipjar.DepositTx)
	if !ok || dtx.GetDeposit().IsZero() {
		return ctx, nil
	}
	amount := dtx.GetDeposit()

	contract, ok := tipjar.CurrentAccount(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrInput, "deposit requires a called account")
	}
	signer := x.MainSigner(ctx, d.auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "deposit requires a signer")
	}
	if err := d.control.MoveCoins(store, signer.Address(), contract, amount); err != nil {
		return nil, errors.Wrap(err, "deposit")
	}
	return tipjar.WithDeposit(ctx, amount), nil
}
