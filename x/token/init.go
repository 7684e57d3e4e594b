package token

import (
	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/errors"
)

const optKey = "token"

// GenesisToken is used to parse the json from genesis file.
type GenesisToken struct {
	Ticker   string           `json:"ticker"`
	Name     string           `json:"name"`
	Balances []GenesisBalance `json:"balances"`
}

// GenesisBalance is the initial token balance of an account.
type GenesisBalance struct {
	Address tipjar.Address `json:"address"`
	Amount  coin.Amount    `json:"amount"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ tipjar.Initializer = Initializer{}

// FromGenesis registers all tokens and their initial balances.
func (Initializer) FromGenesis(opts tipjar.Options, kv tipjar.KVStore) error {
	var tokens []GenesisToken
	if err := opts.ReadOptions(optKey, &tokens); err != nil {
		return err
	}
	ctrl := NewController()
	for _, t := range tokens {
		if err := ctrl.Register(kv, &Token{Ticker: t.Ticker, Name: t.Name}); err != nil {
			return errors.Wrapf(err, "token %q", t.Ticker)
		}
		for _, b := range t.Balances {
			if b.Amount.IsZero() {
				continue
			}
			if err := ctrl.Issue(kv, t.Ticker, b.Address, b.Amount); err != nil {
				return errors.Wrapf(err, "token %s balance", t.Ticker)
			}
		}
	}
	return nil
}
