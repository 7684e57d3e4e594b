package tipjartest

import (
	"context"
	"time"

	"github.com/iov-one/tipjar"
)

// ChainID is the chain id set by NewContext.
const ChainID = "tipjar-test"

// NewContext returns a context with the block values that the host sets for
// every invocation.
func NewContext(height int64) tipjar.Context {
	ctx := context.Background()
	ctx = tipjar.WithHeight(ctx, height)
	ctx = tipjar.WithChainID(ctx, ChainID)
	ctx = tipjar.WithBlockTime(ctx, time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(height)*time.Second))
	return ctx
}
