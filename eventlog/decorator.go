package eventlog

import (
	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/errors"
)

// Decorator appends events of every successful invocation to the log.
type Decorator struct {
	log *Log
}

var _ tipjar.Decorator = Decorator{}

// NewDecorator returns a decorator writing to the execution log.
func NewDecorator() Decorator {
	return Decorator{log: NewLog()}
}

// Check does nothing, checks never produce events.
func (d Decorator) Check(ctx tipjar.Context, store tipjar.KVStore, tx tipjar.Tx, next tipjar.Checker) (*tipjar.CheckResult, error) {
	return next.Check(ctx, store, tx)
}

// Deliver appends the result events to the log in the same store.
func (d Decorator) Deliver(ctx tipjar.Context, store tipjar.KVStore, tx tipjar.Tx, next tipjar.Deliverer) (*tipjar.DeliverResult, error) {
	res, err := next.Deliver(ctx, store, tx)
	if err != nil || len(res.Events) == 0 {
		return res, err
	}
	height, _ := tipjar.GetHeight(ctx)
	id, err := d.log.Append(store, height, tipjar.GetPath(tx), res.Events)
	if err != nil {
		return nil, errors.Wrap(err, "event log")
	}
	tipjar.GetLogger(ctx).Debug("events appended", "count", len(res.Events), "last", id)
	return res, nil
}
