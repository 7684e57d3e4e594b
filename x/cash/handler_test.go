package cash

import (
	"strings"
	"testing"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/store"
	"github.com/iov-one/tipjar/tipjartest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMsgValidate(t *testing.T) {
	alice := tipjartest.NewCondition().Address()
	bob := tipjartest.NewCondition().Address()

	cases := map[string]struct {
		msg     *SendMsg
		wantErr *errors.Error
	}{
		"valid": {
			msg: &SendMsg{Src: alice, Dest: bob, Amount: coin.NewAmount(1), Memo: "thanks"},
		},
		"missing source": {
			msg:     &SendMsg{Dest: bob, Amount: coin.NewAmount(1)},
			wantErr: errors.ErrInput,
		},
		"zero amount": {
			msg:     &SendMsg{Src: alice, Dest: bob},
			wantErr: errors.ErrAmount,
		},
		"memo too long": {
			msg:     &SendMsg{Src: alice, Dest: bob, Amount: coin.NewAmount(1), Memo: strings.Repeat("x", 129)},
			wantErr: errors.ErrInput,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.msg.Validate()
			assert.True(t, tc.wantErr.Is(err), "got %+v", err)
		})
	}
}

func TestSendHandler(t *testing.T) {
	aliceCond := tipjartest.NewCondition()
	alice := aliceCond.Address()
	bob := tipjartest.NewCondition().Address()

	ctrl := NewController()
	auth := &tipjartest.Auth{Signer: aliceCond}
	r := testRegistry{}
	RegisterRoutes(r, auth, ctrl)
	h := r["cash/send"]
	require.NotNil(t, h)

	db := store.MemStore()
	require.NoError(t, ctrl.IssueCoins(db, alice, coin.NewAmount(50)))
	ctx := tipjartest.NewContext(1)

	send := &tipjartest.Tx{Msg: &SendMsg{Src: alice, Dest: bob, Amount: coin.NewAmount(20)}}
	_, err := h.Check(ctx, db, send)
	require.NoError(t, err)
	_, err = h.Deliver(ctx, db, send)
	require.NoError(t, err)

	got, err := ctrl.Balance(db, bob)
	require.NoError(t, err)
	assert.Equal(t, coin.NewAmount(20), got)

	// Only the source can move its coins.
	steal := &tipjartest.Tx{Msg: &SendMsg{Src: bob, Dest: alice, Amount: coin.NewAmount(20)}}
	_, err = h.Deliver(ctx, db, steal)
	assert.True(t, errors.ErrUnauthorized.Is(err))
	_, err = h.Check(ctx, db, steal)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	tooMuch := &tipjartest.Tx{Msg: &SendMsg{Src: alice, Dest: bob, Amount: coin.NewAmount(31)}}
	_, err = h.Deliver(ctx, db, tooMuch)
	assert.True(t, errors.ErrAmount.Is(err))

	wrong := &tipjartest.Tx{Msg: &tipjartest.Msg{RoutePath: "cash/send"}}
	_, err = h.Deliver(ctx, db, wrong)
	assert.True(t, errors.ErrType.Is(err))
}

func TestQueryWallets(t *testing.T) {
	alice := tipjartest.NewCondition().Address()
	db := store.MemStore()
	require.NoError(t, NewController().IssueCoins(db, alice, coin.NewAmount(12)))

	qr := tipjar.NewQueryRouter()
	RegisterQuery(qr)
	h, mod := qr.Handler("/wallets")
	require.NotNil(t, h)
	res, err := h.Query(db, mod, alice)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.JSONEq(t, `{"balance": "12"}`, string(res[0].Value))
}

// testRegistry is a minimal registry collecting handlers by path.
type testRegistry map[string]tipjar.Handler

func (r testRegistry) Handle(path string, h tipjar.Handler) {
	r[path] = h
}
