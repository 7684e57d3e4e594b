package cash

import (
	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/orm"
)

const bucketName = "cash"

// Wallet holds the native balance of a single account.
type Wallet struct {
	Balance coin.Amount `json:"balance"`
}

var _ orm.Model = (*Wallet)(nil)

// Validate is a noop, every amount is a valid balance.
func (w *Wallet) Validate() error {
	return nil
}

// Bucket stores wallets keyed by the account address.
type Bucket struct {
	*orm.ModelBucket
}

// NewBucket returns a bucket for wallets.
func NewBucket() Bucket {
	return Bucket{orm.NewModelBucket(bucketName, &Wallet{})}
}

// Balance returns the balance of given account. Unknown accounts have a zero
// balance.
func (b Bucket) Balance(db tipjar.ReadOnlyKVStore, addr tipjar.Address) (coin.Amount, error) {
	var w Wallet
	switch err := b.One(db, addr, &w); {
	case err == nil:
		return w.Balance, nil
	case errors.ErrNotFound.Is(err):
		return coin.Amount{}, nil
	default:
		return coin.Amount{}, err
	}
}

// Save stores the balance of given account.
func (b Bucket) Save(db tipjar.KVStore, addr tipjar.Address, balance coin.Amount) error {
	if err := addr.Validate(); err != nil {
		return errors.Wrap(err, "wallet address")
	}
	_, err := b.Put(db, addr, &Wallet{Balance: balance})
	return err
}
