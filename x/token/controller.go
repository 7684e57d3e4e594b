package token

import (
	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/orm"
)

// Controller gives access to the token balances.
type Controller interface {
	Token(db tipjar.ReadOnlyKVStore, ledger tipjar.Address) (*Token, error)
	Balance(db tipjar.ReadOnlyKVStore, ticker string, holder tipjar.Address) (coin.Amount, error)
	Transfer(db tipjar.KVStore, ticker string, src, dest tipjar.Address, amount coin.Amount) error
	Issue(db tipjar.KVStore, ticker string, dest tipjar.Address, amount coin.Amount) error
}

// BaseController is the default Controller implementation.
type BaseController struct {
	tokens   *orm.ModelBucket
	balances *orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a base controller implementation.
func NewController() BaseController {
	return BaseController{
		tokens:   NewTokenBucket(),
		balances: NewBalanceBucket(),
	}
}

// Register stores a new token. It fails if the token already exists.
func (c BaseController) Register(db tipjar.KVStore, t *Token) error {
	ledger := LedgerAddress(t.Ticker)
	switch err := c.tokens.Has(db, ledger); {
	case err == nil:
		return errors.Wrapf(errors.ErrDuplicate, "token %s", t.Ticker)
	case !errors.ErrNotFound.Is(err):
		return err
	}
	_, err := c.tokens.Put(db, ledger, t)
	return err
}

// Token returns the token served by the ledger account with given address.
func (c BaseController) Token(db tipjar.ReadOnlyKVStore, ledger tipjar.Address) (*Token, error) {
	var t Token
	if err := c.tokens.One(db, ledger, &t); err != nil {
		return nil, errors.Wrap(err, "token")
	}
	return &t, nil
}

// Balance returns the amount of given token owned by holder.
func (c BaseController) Balance(db tipjar.ReadOnlyKVStore, ticker string, holder tipjar.Address) (coin.Amount, error) {
	var b Balance
	switch err := c.balances.One(db, BalanceKey(ticker, holder), &b); {
	case err == nil:
		return b.Amount, nil
	case errors.ErrNotFound.Is(err):
		return coin.Amount{}, nil
	default:
		return coin.Amount{}, err
	}
}

// Transfer moves the amount of token from src to dest. It fails if src does
// not own enough tokens.
func (c BaseController) Transfer(db tipjar.KVStore, ticker string, src, dest tipjar.Address, amount coin.Amount) error {
	if amount.IsZero() {
		return errors.Wrap(errors.ErrAmount, "zero transfer")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	have, err := c.Balance(db, ticker, src)
	if err != nil {
		return err
	}
	left, err := have.Sub(amount)
	if err != nil {
		return errors.Wrapf(errors.ErrAmount, "insufficient %s balance: have %s, want %s", ticker, have, amount)
	}
	if err := c.save(db, ticker, src, left); err != nil {
		return err
	}
	return c.Issue(db, ticker, dest, amount)
}

// Issue adds the amount of token to dest balance.
func (c BaseController) Issue(db tipjar.KVStore, ticker string, dest tipjar.Address, amount coin.Amount) error {
	have, err := c.Balance(db, ticker, dest)
	if err != nil {
		return err
	}
	total, err := have.Add(amount)
	if err != nil {
		return errors.Wrapf(err, "%s balance", ticker)
	}
	return c.save(db, ticker, dest, total)
}

func (c BaseController) save(db tipjar.KVStore, ticker string, holder tipjar.Address, amount coin.Amount) error {
	if err := holder.Validate(); err != nil {
		return errors.Wrap(err, "holder")
	}
	_, err := c.balances.Put(db, BalanceKey(ticker, holder), &Balance{Amount: amount})
	return err
}
