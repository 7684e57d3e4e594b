package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/iov-one/tipjar"
	tipjard "github.com/iov-one/tipjar/cmd/tipjard/app"
	"github.com/iov-one/tipjar/commands/server"
	"github.com/iov-one/tipjar/errors"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	flagHome = "home"
	varHome  *string
)

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".tipjar")
	varHome = flag.String(flagHome, defaultHome, "directory to store files under")

	flag.CommandLine.Usage = helpMessage
}

func helpMessage() {
	fmt.Println("tipjard")
	fmt.Println("          Payment splitting contract node")
	fmt.Println("")
	fmt.Println("help      Print this message")
	fmt.Println("init      Write the genesis file [-chain_id ID] [-force]")
	fmt.Println("run       Execute a scenario file and print the appended events")
	fmt.Println("query     Query the committed state <path> [hex key]")
	fmt.Println("fee       Print the contract fee configuration")
	fmt.Println("version   Print the app version")
	fmt.Println(`
  -home string
        directory to store files under (default "$HOME/.tipjar")`)
}

func main() {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr)).
		With("module", "tipjard")

	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	rest := flag.Args()[1:]

	var err error
	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = server.InitCmd(tipjard.GenInitOptions, logger, *varHome, rest)
	case "run":
		err = runCmd(logger, *varHome, rest, os.Stdout)
	case "query":
		err = server.QueryCmd(tipjard.GenerateApp, logger, *varHome, rest, os.Stdout)
	case "fee":
		err = server.QueryCmd(tipjard.GenerateApp, logger, *varHome, []string{"/paysplit/fee"}, os.Stdout)
	case "version":
		fmt.Println(tipjar.Version())
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}

// runCmd executes a scenario file against the chain in the home directory
// and prints the report.
func runCmd(logger log.Logger, home string, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.Wrap(errors.ErrInput, "usage: run <scenario.yaml>")
	}
	scenario, err := tipjard.LoadScenario(args[0])
	if err != nil {
		return err
	}
	chain, closeDB, err := server.OpenChain(tipjard.GenerateApp, logger, home)
	if err != nil {
		return err
	}
	defer closeDB()

	report, err := tipjard.RunScenario(chain, scenario)
	if err != nil {
		return err
	}
	return server.PrintJSON(out, report)
}
