package promise

import (
	"context"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/x"
)

type ctxKey int

const (
	ctxKeyConditions ctxKey = iota
)

// withAuth returns a context instance with the conditions attached. Attached
// conditions are used for authentication by authenticator implementation from
// this package.
func withAuth(ctx tipjar.Context, cs []tipjar.Condition) tipjar.Context {
	if old, ok := ctx.Value(ctxKeyConditions).([]tipjar.Condition); ok {
		cs = append(cs, old...)
	}
	return context.WithValue(ctx, ctxKeyConditions, cs)
}

// Authenticator implements an x.Authenticator interface that should be used
// to authorize execution of scheduled calls.
type Authenticator struct{}

var _ x.Authenticator = (*Authenticator)(nil)

// GetConditions implements x.Authenticator interface.
func (Authenticator) GetConditions(ctx tipjar.Context) []tipjar.Condition {
	val, ok := ctx.Value(ctxKeyConditions).([]tipjar.Condition)
	if !ok {
		return nil
	}
	return val
}

// HasAddress implements x.Authenticator interface.
func (a Authenticator) HasAddress(ctx tipjar.Context, addr tipjar.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
