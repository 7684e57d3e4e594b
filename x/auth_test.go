package x_test

import (
	"context"
	"testing"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/tipjartest"
	"github.com/iov-one/tipjar/x"
	"github.com/stretchr/testify/assert"
)

func TestChainAuth(t *testing.T) {
	a := tipjartest.NewCondition()
	b := tipjartest.NewCondition()
	c := tipjartest.NewCondition()

	ctx := context.Background()
	auth := x.ChainAuth(
		&tipjartest.Auth{Signers: []tipjar.Condition{a, b}},
		&tipjartest.Auth{Signer: c},
	)

	assert.Equal(t, []tipjar.Condition{a, b, c}, auth.GetConditions(ctx))
	assert.True(t, auth.HasAddress(ctx, c.Address()))
	assert.False(t, auth.HasAddress(ctx, tipjartest.NewCondition().Address()))
	assert.Equal(t, a, x.MainSigner(ctx, auth))
	assert.Equal(t, []tipjar.Address{a.Address(), b.Address(), c.Address()}, x.GetAddresses(ctx, auth))

	assert.True(t, x.HasAllConditions(ctx, auth, []tipjar.Condition{c, a}))
	assert.False(t, x.HasAllConditions(ctx, auth, []tipjar.Condition{a, tipjartest.NewCondition()}))
	assert.True(t, x.HasAllAddresses(ctx, auth, []tipjar.Address{b.Address()}))

	assert.Nil(t, x.MainSigner(ctx, x.ChainAuth()))
}
