package tipjar

import (
	"encoding/json"

	"github.com/iov-one/tipjar/errors"
)

// Event is a structured record produced by a successful invocation. Events
// are written to the execution log and never to the state of an extension.
type Event struct {
	// Kind groups events of the same shape, for example "paysplit/transfer".
	Kind string
	// Payload is the JSON encoded body of the event.
	Payload []byte
}

// NewEvent serializes the body to JSON and returns an event of given kind.
func NewEvent(kind string, body interface{}) (Event, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return Event{}, errors.Wrapf(errors.ErrInput, "cannot serialize %q event: %s", kind, err)
	}
	return Event{Kind: kind, Payload: raw}, nil
}

// CallStatus is the outcome of a call made by a previous step of an
// asynchronous chain.
type CallStatus int

const (
	// CallNotReady means the call was not resolved yet. A continuation
	// must never observe it.
	CallNotReady CallStatus = iota
	// CallSuccessful means the call was executed and its changes
	// committed.
	CallSuccessful
	// CallFailed means the call returned an error and all of its changes
	// were discarded.
	CallFailed
)

func (s CallStatus) String() string {
	switch s {
	case CallNotReady:
		return "not_ready"
	case CallSuccessful:
		return "successful"
	case CallFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CallResult is the outcome of a single call, as seen by a continuation.
type CallResult struct {
	Status CallStatus
	// Data is the value returned by a successful call.
	Data []byte
}
