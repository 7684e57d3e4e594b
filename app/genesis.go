package app

import (
	"encoding/json"
	"io/ioutil"
	"time"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/errors"
)

// Genesis file format. AppState holds the extension options, each extension
// reads its own key.
type Genesis struct {
	ChainID     string         `json:"chain_id"`
	GenesisTime time.Time      `json:"genesis_time"`
	AppState    tipjar.Options `json:"app_state"`
}

// Validate returns an error if the genesis cannot start a chain.
func (g Genesis) Validate() error {
	if !tipjar.IsValidChainID(g.ChainID) {
		return errors.Wrapf(errors.ErrInput, "invalid chain id %q", g.ChainID)
	}
	if g.GenesisTime.IsZero() {
		return errors.Wrap(errors.ErrEmpty, "genesis time")
	}
	return nil
}

// LoadGenesis reads a genesis file in JSON format.
func LoadGenesis(filePath string) (Genesis, error) {
	var gen Genesis
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "loading genesis file: %s", err)
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "unmarshaling genesis file: %s", err)
	}
	return gen, nil
}

// SaveGenesis writes the genesis in JSON format to the given file.
func SaveGenesis(filePath string, gen Genesis) error {
	raw, err := json.MarshalIndent(gen, "", "  ")
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "serialize genesis: %s", err)
	}
	if err := ioutil.WriteFile(filePath, raw, 0600); err != nil {
		return errors.Wrapf(errors.ErrInput, "write genesis file: %s", err)
	}
	return nil
}

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...tipjar.Initializer) tipjar.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []tipjar.Initializer
}

// FromGenesis will pass opts to all Initializers in the list, aborting at
// the first error.
func (c chainInitializer) FromGenesis(opts tipjar.Options, kv tipjar.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}
