package tipjartest

import "github.com/iov-one/tipjar"

// Handler is a mock implementation of the tipjar.Handler interface.
//
// Set CheckErr or DeliverErr to force error response for corresponding
// method. Each method call is counted. Context and transaction of the last
// Deliver call are kept for inspection.
type Handler struct {
	checkCall int
	// CheckResult is returned by Check method.
	CheckResult tipjar.CheckResult
	// CheckErr if set is returned by Check method.
	CheckErr error

	deliverCall int
	// DeliverResult is returned by Deliver method.
	DeliverResult tipjar.DeliverResult
	// DeliverErr if set is returned by Deliver method.
	DeliverErr error

	// Write, when set, is stored under the WriteKey on every Deliver
	// call, including failed ones.
	WriteKey   []byte
	WriteValue []byte

	LastCtx tipjar.Context
	LastTx  tipjar.Tx
}

var _ tipjar.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.CheckResult, error) {
	h.checkCall++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.DeliverResult, error) {
	h.deliverCall++
	h.LastCtx = ctx
	h.LastTx = tx
	if h.WriteKey != nil {
		if err := db.Set(h.WriteKey, h.WriteValue); err != nil {
			return nil, err
		}
	}
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}

// Decorator is a mock implementation of the tipjar.Decorator interface.
type Decorator struct {
	checkCall   int
	CheckErr    error
	deliverCall int
	DeliverErr  error
}

var _ tipjar.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx, next tipjar.Checker) (*tipjar.CheckResult, error) {
	d.checkCall++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx, next tipjar.Deliverer) (*tipjar.DeliverResult, error) {
	d.deliverCall++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CallCount() int {
	return d.checkCall + d.deliverCall
}

// Decorate wraps the handler with one decorator and returns it as a single
// handler.
func Decorate(h tipjar.Handler, d tipjar.Decorator) tipjar.Handler {
	return &decoratedHandler{hn: h, dc: d}
}

type decoratedHandler struct {
	hn tipjar.Handler
	dc tipjar.Decorator
}

func (d *decoratedHandler) Check(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.CheckResult, error) {
	return d.dc.Check(ctx, db, tx, d.hn)
}

func (d *decoratedHandler) Deliver(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.DeliverResult, error) {
	return d.dc.Deliver(ctx, db, tx, d.hn)
}
