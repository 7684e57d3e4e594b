package server

import (
	"path/filepath"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/app"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/store"
	"github.com/tendermint/tendermint/libs/log"
)

// dbName is the name of the leveldb database in the home directory.
const dbName = "tipjar"

// AppGenerator builds the application on top of given store.
type AppGenerator func(store tipjar.CommitKVStore, logger log.Logger) (*app.Chain, error)

// OpenChain opens the chain persisted in the home directory. A chain that
// was never initialized is initialized from the genesis file. The returned
// function releases the database.
func OpenChain(gen AppGenerator, logger log.Logger, home string) (*app.Chain, func(), error) {
	db, err := store.OpenLevelDB(dbName, home)
	if err != nil {
		return nil, nil, err
	}
	chain, err := gen(db, logger)
	if err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "create application")
	}
	if chain.ChainID() == "" {
		genesis, err := app.LoadGenesis(filepath.Join(home, GenesisFile))
		if err != nil {
			db.Close()
			return nil, nil, errors.Wrap(err, "chain not initialized, run init first")
		}
		if _, err := chain.InitChain(genesis); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	logger.Info("Opened chain", "chain_id", chain.ChainID(), "height", chain.Height())
	return chain, db.Close, nil
}
