package server

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/iov-one/tipjar/errors"
	"github.com/tendermint/tendermint/libs/log"
)

type queryResult struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// QueryCmd runs a query against the committed state and prints the result
// as JSON. Arguments are the query path and an optional hex encoded key.
func QueryCmd(gen AppGenerator, logger log.Logger, home string, args []string, out io.Writer) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.Wrap(errors.ErrInput, "usage: query <path> [hex key]")
	}
	var data []byte
	if len(args) == 2 {
		raw, err := hex.DecodeString(args[1])
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "key: %s", err)
		}
		data = raw
	}

	chain, closeDB, err := OpenChain(gen, logger, home)
	if err != nil {
		return err
	}
	defer closeDB()

	models, err := chain.Query(args[0], data)
	if err != nil {
		return err
	}
	res := make([]queryResult, 0, len(models))
	for _, m := range models {
		val := json.RawMessage(m.Value)
		if !json.Valid(m.Value) {
			quoted, _ := json.Marshal(fmt.Sprintf("%X", m.Value))
			val = quoted
		}
		res = append(res, queryResult{Key: fmt.Sprintf("%X", m.Key), Value: val})
	}
	return PrintJSON(out, res)
}

// PrintJSON writes an indented JSON document.
func PrintJSON(out io.Writer, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "serialize output: %s", err)
	}
	_, err = fmt.Fprintln(out, string(raw))
	return err
}
