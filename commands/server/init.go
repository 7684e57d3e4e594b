package server

import (
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/iov-one/tipjar/app"
	"github.com/iov-one/tipjar/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagChainID = "chain_id"
	flagForce   = "force"

	// GenesisFile is the name of the genesis file in the home directory.
	GenesisFile = "genesis.json"
)

// GenOptions builds the genesis of a new chain. The application decides
// what accounts and configuration the chain starts with.
type GenOptions func(chainID string, now time.Time) (app.Genesis, error)

func parseInitFlags(args []string) (string, bool, error) {
	var (
		chainID string
		force   bool
	)
	initFlags := flag.NewFlagSet("init", flag.ContinueOnError)
	initFlags.StringVar(&chainID, flagChainID, "tipjar-local", "identifier of the new chain")
	initFlags.BoolVar(&force, flagForce, false, "overwrite an existing genesis file")
	if err := initFlags.Parse(args); err != nil {
		return "", false, errors.Wrap(errors.ErrInput, err.Error())
	}
	return chainID, force, nil
}

// InitCmd writes a genesis file to the home directory.
func InitCmd(gen GenOptions, logger log.Logger, home string, args []string) error {
	chainID, force, err := parseInitFlags(args)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(home, 0755); err != nil {
		return errors.Wrapf(errors.ErrInput, "create home directory: %s", err)
	}

	genFile := filepath.Join(home, GenesisFile)
	if fileExists(genFile) && !force {
		return errors.Wrapf(errors.ErrDuplicate, "genesis file %s already exists", genFile)
	}
	genesis, err := gen(chainID, time.Now())
	if err != nil {
		return errors.Wrap(err, "generate genesis")
	}
	if err := app.SaveGenesis(genFile, genesis); err != nil {
		return err
	}
	logger.Info("Generated genesis file", "path", genFile, "chain_id", chainID)
	return nil
}

func fileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}
