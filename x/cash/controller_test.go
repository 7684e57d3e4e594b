package cash

import (
	"testing"

	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/store"
	"github.com/iov-one/tipjar/tipjartest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()
	alice := tipjartest.NewCondition().Address()
	bob := tipjartest.NewCondition().Address()

	got, err := ctrl.Balance(db, alice)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	require.NoError(t, ctrl.IssueCoins(db, alice, coin.NewAmount(100)))
	require.NoError(t, ctrl.MoveCoins(db, alice, bob, coin.NewAmount(30)))

	got, err = ctrl.Balance(db, alice)
	require.NoError(t, err)
	assert.Equal(t, coin.NewAmount(70), got)
	got, err = ctrl.Balance(db, bob)
	require.NoError(t, err)
	assert.Equal(t, coin.NewAmount(30), got)

	err = ctrl.MoveCoins(db, alice, bob, coin.NewAmount(71))
	assert.True(t, errors.ErrAmount.Is(err))
	err = ctrl.MoveCoins(db, alice, bob, coin.Amount{})
	assert.True(t, errors.ErrAmount.Is(err))
	err = ctrl.MoveCoins(db, alice, nil, coin.NewAmount(1))
	assert.True(t, errors.ErrInput.Is(err))

	// Failed moves do not change anything.
	got, err = ctrl.Balance(db, alice)
	require.NoError(t, err)
	assert.Equal(t, coin.NewAmount(70), got)

	room, err := coin.MaxAmount().Sub(coin.NewAmount(30))
	require.NoError(t, err)
	require.NoError(t, ctrl.IssueCoins(db, bob, room))
	err = ctrl.IssueCoins(db, bob, coin.NewAmount(1))
	assert.True(t, errors.ErrOverflow.Is(err))
}
