package paysplit

import (
	"encoding/json"
	"strings"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/errors"
)

// ContractCondition is the condition of the contract account. Calls
// scheduled by the contract are authenticated with it.
func ContractCondition() tipjar.Condition {
	return tipjar.NewCondition("paysplit", "contract", []byte("tipjar"))
}

// ContractAddress is the address of the contract account. Payments and
// token transfers are sent to it.
func ContractAddress() tipjar.Address {
	return ContractCondition().Address()
}

// Routing is the payload of a token transfer notification.
type Routing struct {
	Receiver tipjar.Address
	// Burner is optional. When missing, no burn share is taken.
	Burner tipjar.Address
}

// ParseRouting decodes the JSON routing payload of a token transfer. Both
// bech32 and hex addresses are accepted.
func ParseRouting(message string) (*Routing, error) {
	var raw struct {
		Receiver *string `json:"receiver"`
		Burner   *string `json:"burner"`
	}
	if err := json.Unmarshal([]byte(message), &raw); err != nil {
		return nil, errors.Field("message", errors.ErrInput, "malformed routing payload: %s", err)
	}

	var (
		r    Routing
		errs error
	)
	if raw.Receiver == nil || strings.TrimSpace(*raw.Receiver) == "" {
		errs = errors.Append(errs, errors.Field("receiver", errors.ErrInput, "missing"))
	} else if addr, err := tipjar.ParseAddress(*raw.Receiver); err != nil {
		errs = errors.Append(errs, errors.Field("receiver", errors.ErrInput, "%s", err))
	} else {
		r.Receiver = addr
	}
	if raw.Burner != nil {
		if addr, err := tipjar.ParseAddress(*raw.Burner); err != nil {
			errs = errors.Append(errs, errors.Field("burner", errors.ErrInput, "%s", err))
		} else {
			r.Burner = addr
		}
	}
	if errs != nil {
		return nil, errs
	}
	return &r, nil
}
