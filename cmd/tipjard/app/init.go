package tipjard

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/app"
	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/x/cash"
	"github.com/iov-one/tipjar/x/paysplit"
	"github.com/iov-one/tipjar/x/token"
)

const (
	// DefaultChainID is used by the generated genesis.
	DefaultChainID = "tipjar-local"
	// DefaultFee is the fee numerator of the generated genesis, five
	// percent.
	DefaultFee = 500
	// DefaultTicker is the token registered by the generated genesis.
	DefaultTicker = "TIP"

	defaultBalance = 1000000
)

// ResolveAddress returns the address referenced by given value. A value
// starting with "@" is a reference: "@paysplit" is the contract account,
// "@token:<TICKER>" is a token ledger and any other "@<name>" is a named
// account. Other values are parsed as bech32 or hex addresses.
func ResolveAddress(ref string) (tipjar.Address, error) {
	if !strings.HasPrefix(ref, "@") {
		return tipjar.ParseAddress(ref)
	}
	name := ref[1:]
	switch {
	case name == "":
		return nil, errors.Wrap(errors.ErrInput, "empty account reference")
	case name == "paysplit":
		return paysplit.ContractAddress(), nil
	case strings.HasPrefix(name, "token:"):
		return token.LedgerAddress(strings.TrimPrefix(name, "token:")), nil
	default:
		return Account(name).Address(), nil
	}
}

// GenesisOptions describes the generated genesis.
type GenesisOptions struct {
	// Owner is the named account owning the contract.
	Owner string
	// Accounts are named accounts funded with native coins and tokens.
	Accounts []string
	FeeNumerator uint64
	Ticker       string
}

// DefaultGenesisOptions returns the options used by the init command.
func DefaultGenesisOptions() GenesisOptions {
	return GenesisOptions{
		Owner:        "owner",
		Accounts:     []string{"alice", "bob", "carol"},
		FeeNumerator: DefaultFee,
		Ticker:       DefaultTicker,
	}
}

// GenerateGenesis returns a genesis funding all named accounts and
// configuring the contract.
func GenerateGenesis(chainID string, now time.Time, o GenesisOptions) (app.Genesis, error) {
	balance := coin.NewAmount(defaultBalance)
	var (
		wallets  []cash.GenesisAccount
		balances []token.GenesisBalance
	)
	for _, name := range append([]string{o.Owner}, o.Accounts...) {
		addr := Account(name).Address()
		wallets = append(wallets, cash.GenesisAccount{Address: addr, Balance: balance})
		balances = append(balances, token.GenesisBalance{Address: addr, Amount: balance})
	}
	conf := map[string]interface{}{
		"paysplit": paysplit.Configuration{
			Owner:        Account(o.Owner).Address(),
			FeeNumerator: o.FeeNumerator,
		},
	}

	state := make(tipjar.Options)
	sections := map[string]interface{}{
		"cash":  wallets,
		"token": []token.GenesisToken{{Ticker: o.Ticker, Name: o.Ticker + " token", Balances: balances}},
		"conf":  conf,
	}
	for key, val := range sections {
		raw, err := json.Marshal(val)
		if err != nil {
			return app.Genesis{}, errors.Wrapf(errors.ErrInput, "serialize %q: %s", key, err)
		}
		state[key] = raw
	}

	gen := app.Genesis{
		ChainID:     chainID,
		GenesisTime: now.UTC(),
		AppState:    state,
	}
	return gen, gen.Validate()
}

// GenInitOptions generates the default genesis for the init command.
func GenInitOptions(chainID string, now time.Time) (app.Genesis, error) {
	return GenerateGenesis(chainID, now, DefaultGenesisOptions())
}
