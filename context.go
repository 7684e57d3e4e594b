/*
We pass context through context.Context between the host, decorators and
handlers. To do so, this package defines some common keys to store info,
such as block height, the account being called or the attached deposit.
Each extension may add its own keys to enrich the context with specific
data.

There should exist two functions for every XYZ of type T that we want to
support in Context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)

WithXYZ may panic if the value was previously set to avoid lower-level
modules overwriting the value (eg. height, chain id).
*/
package tipjar

import (
	"context"
	"regexp"
	"time"

	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Context is just an alias for the standard implementation.
type Context = context.Context

type contextKey int

const (
	contextKeyHeight contextKey = iota
	contextKeyChainID
	contextKeyBlockTime
	contextKeyLogger
	contextKeyDeposit
	contextKeyCurrentAccount
	contextKeyCallResults
)

var (
	// DefaultLogger is used for all context that have not set anything
	// themselves.
	DefaultLogger = log.NewNopLogger()

	// IsValidChainID is the RegExp to ensure valid chain IDs.
	IsValidChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,20}$`).MatchString
)

// WithHeight sets the block height for the context. It panics if the height
// was already set.
func WithHeight(ctx Context, height int64) Context {
	if _, ok := GetHeight(ctx); ok {
		panic("Height already set")
	}
	return context.WithValue(ctx, contextKeyHeight, height)
}

// GetHeight returns the current block height.
func GetHeight(ctx Context) (int64, bool) {
	val, ok := ctx.Value(contextKeyHeight).(int64)
	return val, ok
}

// WithChainID sets the chain id for the context. It panics on invalid id or
// if the chain id was already set.
func WithChainID(ctx Context, chainID string) Context {
	if ctx.Value(contextKeyChainID) != nil {
		panic("Chain ID already set")
	}
	if !IsValidChainID(chainID) {
		panic("Invalid chain ID")
	}
	return context.WithValue(ctx, contextKeyChainID, chainID)
}

// GetChainID returns the current chain id. Returns empty string if not set.
func GetChainID(ctx Context) string {
	val, _ := ctx.Value(contextKeyChainID).(string)
	return val
}

// WithBlockTime sets the block time for the context. The block time is the
// "now" of every invocation.
func WithBlockTime(ctx Context, t time.Time) Context {
	return context.WithValue(ctx, contextKeyBlockTime, t)
}

// BlockTime returns the current block time. An error is returned if the
// block time was not set.
func BlockTime(ctx Context) (time.Time, error) {
	t, ok := ctx.Value(contextKeyBlockTime).(time.Time)
	if !ok {
		return time.Time{}, errors.Wrap(errors.ErrHuman, "block time not present in the context")
	}
	return t, nil
}

// WithLogger sets the logger for this context.
func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs and returns another context like this,
// after passing all the keyvals to the Logger.
func WithLogInfo(ctx Context, keyvals ...interface{}) Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// GetLogger returns the currently set logger, or DefaultLogger if none was
// set.
func GetLogger(ctx Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok {
		return DefaultLogger
	}
	return val
}

// WithDeposit attaches the amount of native coins that was transferred to
// the called account together with the current invocation.
func WithDeposit(ctx Context, amount coin.Amount) Context {
	return context.WithValue(ctx, contextKeyDeposit, amount)
}

// GetDeposit returns the attached deposit. Zero is returned when nothing was
// attached.
func GetDeposit(ctx Context) coin.Amount {
	val, _ := ctx.Value(contextKeyDeposit).(coin.Amount)
	return val
}

// WithCurrentAccount sets the address of the account whose code is being
// executed.
func WithCurrentAccount(ctx Context, addr Address) Context {
	return context.WithValue(ctx, contextKeyCurrentAccount, addr)
}

// CurrentAccount returns the address of the account whose code is being
// executed.
func CurrentAccount(ctx Context) (Address, bool) {
	val, ok := ctx.Value(contextKeyCurrentAccount).(Address)
	return val, ok && len(val) != 0
}

// WithCallResults attaches the outcomes of the calls that preceded a
// continuation.
func WithCallResults(ctx Context, results []CallResult) Context {
	return context.WithValue(ctx, contextKeyCallResults, results)
}

// CallResults returns the outcomes of the calls that preceded the current
// continuation. Outside of a continuation nil is returned.
func CallResults(ctx Context) []CallResult {
	val, _ := ctx.Value(contextKeyCallResults).([]CallResult)
	return val
}
