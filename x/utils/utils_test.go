package utils

import (
	"bytes"
	"context"
	"testing"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/store"
	"github.com/iov-one/tipjar/tipjartest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

type panicHandler struct{}

func (panicHandler) Deliver(tipjar.Context, tipjar.KVStore, tipjar.Tx) (*tipjar.DeliverResult, error) {
	panic("boom")
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	contract := tipjartest.NewCondition().Address()
	ctx := tipjar.WithLogger(context.Background(), log.NewTMLogger(log.NewSyncWriter(&buf)))
	ctx = tipjar.WithCurrentAccount(ctx, contract)
	db := store.MemStore()
	tx := &tipjartest.Tx{Msg: &tipjartest.Msg{RoutePath: "test/panic"}}

	_, err := NewRecovery().Deliver(ctx, db, tx, panicHandler{})
	require.Error(t, err)
	assert.True(t, errors.ErrPanic.Is(err))
	assert.Contains(t, err.Error(), "test/panic on "+contract.String())
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, buf.String(), "invocation panicked")
	assert.Contains(t, buf.String(), "path=test/panic")

	// No current account outside of a contract invocation.
	_, err = NewRecovery().Deliver(context.Background(), db, tx, panicHandler{})
	assert.True(t, errors.ErrPanic.Is(err))
	assert.Contains(t, err.Error(), "test/panic on none")

	// Without a panic the result of the handler is passed on.
	h := &tipjartest.Handler{}
	_, err = NewRecovery().Deliver(ctx, db, tx, h)
	assert.NoError(t, err)
	assert.Equal(t, 1, h.DeliverCallCount())
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	ctx := tipjar.WithLogger(context.Background(), log.NewTMLogger(log.NewSyncWriter(&buf)))
	db := store.MemStore()
	tx := &tipjartest.Tx{Msg: &tipjartest.Msg{RoutePath: "paysplit/transfer_payment"}}

	h := &tipjartest.Handler{DeliverErr: errors.Wrap(errors.ErrCallFailed, "receiver")}
	_, err := NewLogging().Deliver(ctx, db, tx, h)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "path=paysplit/transfer_payment")
	assert.Contains(t, buf.String(), "external call failed")
}

func TestActionTagger(t *testing.T) {
	contract := tipjartest.NewCondition().Address()
	ctx := tipjar.WithCurrentAccount(context.Background(), contract)
	tx := &tipjartest.Tx{Msg: &tipjartest.Msg{RoutePath: "cash/send"}}

	res, err := NewActionTagger().Deliver(ctx, store.MemStore(), tx, &tipjartest.Handler{})
	require.NoError(t, err)
	require.Len(t, res.Tags, 2)
	assert.Equal(t, "cash/send", string(res.Tags[0].Value))
	assert.Equal(t, contract.String(), string(res.Tags[1].Value))

	_, err = NewActionTagger().Deliver(ctx, store.MemStore(), tx, &tipjartest.Handler{DeliverErr: errors.ErrInput})
	assert.True(t, errors.ErrInput.Is(err))
}
