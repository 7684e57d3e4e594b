package utils

import (
	"fmt"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/errors"
)

// Recovery stops a panicking handler from taking down the host. The panic is
// logged and returned as an ErrPanic naming the message path and the called
// account.
type Recovery struct{}

var _ tipjar.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

func (r Recovery) Check(ctx tipjar.Context, store tipjar.KVStore, tx tipjar.Tx, next tipjar.Checker) (_ *tipjar.CheckResult, err error) {
	defer recoverInvocation(ctx, tx, &err)
	return next.Check(ctx, store, tx)
}

func (r Recovery) Deliver(ctx tipjar.Context, store tipjar.KVStore, tx tipjar.Tx, next tipjar.Deliverer) (_ *tipjar.DeliverResult, err error) {
	defer recoverInvocation(ctx, tx, &err)
	return next.Deliver(ctx, store, tx)
}

// recoverInvocation must be deferred directly, recover has no effect
// otherwise.
func recoverInvocation(ctx tipjar.Context, tx tipjar.Tx, err *error) {
	p := recover()
	if p == nil {
		return
	}
	account := "none"
	if addr, ok := tipjar.CurrentAccount(ctx); ok {
		account = addr.String()
	}
	path := tipjar.GetPath(tx)
	tipjar.GetLogger(ctx).Error("invocation panicked", "path", path, "account", account, "panic", fmt.Sprint(p))
	*err = errors.Wrapf(errors.ErrPanic, "%s on %s: %v", path, account, p)
}
