package app

import (
	"context"
	"testing"

	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/store"
	"github.com/iov-one/tipjar/tipjartest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter(t *testing.T) {
	r := NewRouter()

	good := &tipjartest.Handler{}
	bad := &tipjartest.Handler{DeliverErr: errors.ErrAmount, CheckErr: errors.ErrAmount}
	r.Handle("good/path", good)
	r.Handle("bad", bad)

	assert.Panics(t, func() { r.Handle("good/path", good) })
	assert.Panics(t, func() { r.Handle("l:7", good) })
	assert.Panics(t, func() { r.Handle("", good) })

	ctx := context.Background()
	db := store.MemStore()

	_, err := r.Check(ctx, db, &tipjartest.Tx{Msg: &tipjartest.Msg{RoutePath: "good/path"}})
	require.NoError(t, err)
	_, err = r.Deliver(ctx, db, &tipjartest.Tx{Msg: &tipjartest.Msg{RoutePath: "good/path"}})
	require.NoError(t, err)
	assert.Equal(t, 2, good.CallCount())

	_, err = r.Deliver(ctx, db, &tipjartest.Tx{Msg: &tipjartest.Msg{RoutePath: "bad"}})
	assert.True(t, errors.ErrAmount.Is(err))
	assert.Equal(t, 1, bad.DeliverCallCount())

	_, err = r.Deliver(ctx, db, &tipjartest.Tx{Msg: &tipjartest.Msg{RoutePath: "missing"}})
	assert.True(t, errors.ErrNotFound.Is(err))
	_, err = r.Check(ctx, db, &tipjartest.Tx{Msg: &tipjartest.Msg{RoutePath: "missing"}})
	assert.True(t, errors.ErrNotFound.Is(err))

	_, err = r.Deliver(ctx, db, &tipjartest.Tx{})
	assert.True(t, errors.ErrEmpty.Is(err))
	_, err = r.Deliver(ctx, db, &tipjartest.Tx{Err: errors.ErrInput})
	assert.True(t, errors.ErrInput.Is(err))

	assert.Equal(t, 2, good.CallCount())
}
