package tipjartest

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/iov-one/tipjar"
)

var conditionSeq uint64

// NewCondition returns a new, unique user condition.
func NewCondition() tipjar.Condition {
	n := atomic.AddUint64(&conditionSeq, 1)
	return tipjar.NewCondition("test", "user", []byte(fmt.Sprintf("%08d", n)))
}

// Auth is a mock implementing x.Authenticator interface.
//
// This structure authenticates any of referenced conditions. Signer is
// considered the main signer and is returned first.
type Auth struct {
	Signer  tipjar.Condition
	Signers []tipjar.Condition
}

func (a *Auth) GetConditions(tipjar.Context) []tipjar.Condition {
	if a.Signer == nil {
		return a.Signers
	}
	return append([]tipjar.Condition{a.Signer}, a.Signers...)
}

func (a *Auth) HasAddress(ctx tipjar.Context, addr tipjar.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}

// CtxAuth is a mock implementing x.Authenticator interface.
//
// This implementation is using context to store and retrieve conditions.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context. For
	// convenience only string type keys are allowed.
	Key string
}

func (a *CtxAuth) SetConditions(ctx tipjar.Context, conds ...tipjar.Condition) tipjar.Context {
	return context.WithValue(ctx, a.Key, conds)
}

func (a *CtxAuth) GetConditions(ctx tipjar.Context) []tipjar.Condition {
	val := ctx.Value(a.Key)
	if val == nil {
		return nil
	}
	conds, ok := val.([]tipjar.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []tipjar.Condition got %T", val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx tipjar.Context, addr tipjar.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
