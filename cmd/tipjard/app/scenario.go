package tipjard

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/app"
	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/eventlog"
	"github.com/iov-one/tipjar/orm"
	"github.com/iov-one/tipjar/x/cash"
	"github.com/iov-one/tipjar/x/paysplit"
	"github.com/iov-one/tipjar/x/token"
	yaml "gopkg.in/yaml.v2"
)

// maxTicks limits the number of blocks a scenario can wait for the
// scheduled calls to finish.
const maxTicks = 1000

// messages lists all messages that can be sent in a transaction.
var messages = map[string]func() tipjar.Msg{
	cash.SendMsg{}.Path():                func() tipjar.Msg { return &cash.SendMsg{} },
	token.TransferMsg{}.Path():           func() tipjar.Msg { return &token.TransferMsg{} },
	token.TransferCallMsg{}.Path():       func() tipjar.Msg { return &token.TransferCallMsg{} },
	paysplit.TransferPaymentMsg{}.Path(): func() tipjar.Msg { return &paysplit.TransferPaymentMsg{} },
	paysplit.ChangeFeeMsg{}.Path():       func() tipjar.Msg { return &paysplit.ChangeFeeMsg{} },
	paysplit.WithdrawFundsMsg{}.Path():   func() tipjar.Msg { return &paysplit.WithdrawFundsMsg{} },
}

// Scenario is a list of transactions executed one after another.
type Scenario struct {
	Steps []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single transaction. Account references (see
// ResolveAddress) can be used for the contract and within the message.
//
//	- signer: alice
//	  contract: "@paysplit"
//	  deposit: "10000"
//	  path: paysplit/transfer_payment
//	  msg:
//	    receiver: "@bob"
//
// A "message" field given as a mapping is serialized into a JSON string,
// with all references resolved.
type ScenarioStep struct {
	// Signer is the name of the signing account.
	Signer   string                 `yaml:"signer"`
	Contract string                 `yaml:"contract"`
	Deposit  string                 `yaml:"deposit"`
	Path     string                 `yaml:"path"`
	Msg      map[string]interface{} `yaml:"msg"`
	// Ticks is the number of blocks to advance after this step.
	Ticks int `yaml:"ticks"`
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(filePath string) (*Scenario, error) {
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "read scenario: %s", err)
	}
	return ParseScenario(raw)
}

// ParseScenario decodes a YAML scenario.
func ParseScenario(raw []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.UnmarshalStrict(raw, &s); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "decode scenario: %s", err)
	}
	if len(s.Steps) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "no scenario steps")
	}
	return &s, nil
}

// Tx builds the unsigned transaction of this step.
func (s ScenarioStep) Tx() (*app.Tx, error) {
	newMsg, ok := messages[s.Path]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "unknown message path %q", s.Path)
	}
	if s.Signer == "" {
		return nil, errors.Wrap(errors.ErrEmpty, "signer")
	}
	tx := app.Tx{Msg: newMsg()}
	if s.Contract != "" {
		addr, err := ResolveAddress(s.Contract)
		if err != nil {
			return nil, errors.Wrap(err, "contract")
		}
		tx.Contract = addr
	}
	if s.Deposit != "" {
		amount, err := coin.ParseAmount(s.Deposit)
		if err != nil {
			return nil, errors.Wrap(err, "deposit")
		}
		tx.Deposit = amount
	}
	body, err := resolveRefs(s.Msg)
	if err != nil {
		return nil, err
	}
	// A structured message payload is passed on as a JSON string.
	if fields, ok := body.(map[string]interface{}); ok {
		if payload, ok := fields["message"].(map[string]interface{}); ok {
			raw, err := json.Marshal(payload)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrInput, "message payload: %s", err)
			}
			fields["message"] = string(raw)
		}
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "message: %s", err)
	}
	if err := json.Unmarshal(raw, tx.Msg); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "message %s: %s", s.Path, err)
	}
	return &tx, nil
}

// resolveRefs converts a YAML document into a JSON compatible one and
// replaces all account references with bech32 addresses.
func resolveRefs(v interface{}) (interface{}, error) {
	switch v := v.(type) {
	case string:
		if !strings.HasPrefix(v, "@") {
			return v, nil
		}
		addr, err := ResolveAddress(v)
		if err != nil {
			return nil, err
		}
		return addr.Bech32()
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			res, err := resolveRefs(val)
			if err != nil {
				return nil, errors.Wrap(err, k)
			}
			out[k] = res
		}
		return out, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			res, err := resolveRefs(val)
			if err != nil {
				return nil, errors.Wrapf(err, "%v", k)
			}
			out[fmt.Sprint(k)] = res
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			res, err := resolveRefs(val)
			if err != nil {
				return nil, err
			}
			out[i] = res
		}
		return out, nil
	default:
		return v, nil
	}
}

// StepResult is the outcome of a single scenario step.
type StepResult struct {
	Path string `json:"path"`
	Data string `json:"data,omitempty"`
	Err  string `json:"error,omitempty"`
}

// ReportEvent is an execution log entry appended during a scenario run.
type ReportEvent struct {
	ID      int64           `json:"id"`
	Height  int64           `json:"height"`
	Path    string          `json:"path"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Report is the outcome of a scenario run.
type Report struct {
	Steps  []StepResult  `json:"steps"`
	Events []ReportEvent `json:"events"`
	Height int64         `json:"height"`
}

// RunScenario signs and executes all steps and waits for all scheduled calls
// to finish. A failed step does not stop the scenario. The report lists the
// events appended to the execution log during the run.
func RunScenario(chain *app.Chain, s *Scenario) (*Report, error) {
	before, err := QueryEvents(chain, 0)
	if err != nil {
		return nil, err
	}
	var after int64
	if n := len(before); n > 0 {
		after = before[n-1].ID
	}

	wallet := NewWallet(chain)
	var report Report
	for i, step := range s.Steps {
		tx, err := step.Tx()
		if err != nil {
			return nil, errors.Wrapf(err, "step %d", i)
		}
		res := StepResult{Path: step.Path}
		switch out, err := wallet.Deliver(step.Signer, tx); {
		case err != nil:
			res.Err = err.Error()
		case len(out.Data) > 0:
			res.Data = fmt.Sprintf("%X", out.Data)
		}
		report.Steps = append(report.Steps, res)
		chain.Logger().Info("scenario step", "step", i, "path", step.Path, "error", res.Err)

		for n := 0; n < step.Ticks; n++ {
			if _, err := tickAndCommit(chain); err != nil {
				return nil, err
			}
		}
	}

	for n := 0; ; n++ {
		if n == maxTicks {
			return nil, errors.Wrapf(errors.ErrState, "scheduled calls not finished after %d blocks", maxTicks)
		}
		res, err := tickAndCommit(chain)
		if err != nil {
			return nil, err
		}
		if res.Pending == 0 {
			break
		}
	}

	report.Events, err = QueryEvents(chain, after)
	if err != nil {
		return nil, err
	}
	report.Height = chain.Height()
	return &report, nil
}

// QueryEvents returns all committed execution log entries with an ID
// greater than after.
func QueryEvents(chain *app.Chain, after int64) ([]ReportEvent, error) {
	models, err := chain.Query("/events?prefix", nil)
	if err != nil {
		return nil, errors.Wrap(err, "query events")
	}
	var events []ReportEvent
	for _, m := range models {
		id := orm.DecodeSequence(m.Key)
		if id <= after {
			continue
		}
		var e eventlog.Entry
		if err := json.Unmarshal(m.Value, &e); err != nil {
			return nil, errors.Wrapf(errors.ErrModel, "event %d: %s", id, err)
		}
		events = append(events, ReportEvent{
			ID:      id,
			Height:  e.Height,
			Path:    e.Path,
			Kind:    e.Kind,
			Payload: e.Payload,
		})
	}
	return events, nil
}

func tickAndCommit(chain *app.Chain) (tipjar.TickResult, error) {
	res, err := chain.Tick()
	if err != nil {
		return res, errors.Wrap(err, "tick")
	}
	if _, err := chain.Commit(); err != nil {
		return res, errors.Wrap(err, "commit")
	}
	return res, nil
}
