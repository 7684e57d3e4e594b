package cash

import (
	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/errors"
)

// Controller is the functionality needed by cash.Handler and
// cash.DepositDecorator. BaseController should work plenty fine, but you can
// add other logic if so desired.
type Controller interface {
	Balance(tipjar.ReadOnlyKVStore, tipjar.Address) (coin.Amount, error)
	MoveCoins(store tipjar.KVStore, src, dest tipjar.Address, amount coin.Amount) error
	IssueCoins(store tipjar.KVStore, dest tipjar.Address, amount coin.Amount) error
}

// BaseController is a simple implementation of controller wallet must
// return something that supports AddCoins and Subtract.
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a base controller implementation.
func NewController() BaseController {
	return BaseController{bucket: NewBucket()}
}

// Balance returns the native balance of given account.
func (c BaseController) Balance(store tipjar.ReadOnlyKVStore, addr tipjar.Address) (coin.Amount, error) {
	return c.bucket.Balance(store, addr)
}

// MoveCoins moves the given amount from src to dest. If src doesn't have
// sufficient coins, it fails.
func (c BaseController) MoveCoins(store tipjar.KVStore, src, dest tipjar.Address, amount coin.Amount) error {
	if amount.IsZero() {
		return errors.Wrap(errors.ErrAmount, "zero transfer")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	have, err := c.bucket.Balance(store, src)
	if err != nil {
		return errors.Wrap(err, "source balance")
	}
	left, err := have.Sub(amount)
	if err != nil {
		return errors.Wrapf(errors.ErrAmount, "insufficient funds: have %s, want %s", have, amount)
	}
	if err := c.bucket.Save(store, src, left); err != nil {
		return errors.Wrap(err, "save source")
	}
	return c.IssueCoins(store, dest, amount)
}

// IssueCoins attempts to add the given amount of coins to the destination
// address. Fails if it overflows the wallet.
func (c BaseController) IssueCoins(store tipjar.KVStore, dest tipjar.Address, amount coin.Amount) error {
	have, err := c.bucket.Balance(store, dest)
	if err != nil {
		return errors.Wrap(err, "destination balance")
	}
	total, err := have.Add(amount)
	if err != nil {
		return errors.Wrap(err, "destination balance")
	}
	return c.bucket.Save(store, dest, total)
}
