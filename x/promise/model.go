package promise

import (
	"encoding/binary"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/orm"
)

// Step is a single call of a chain.
type Step struct {
	Contract tipjar.Address `json:"contract"`
	Msg      tipjar.Msg     `json:"msg"`
}

// Promise is a chain of calls scheduled by a single account.
type Promise struct {
	Caller tipjar.Condition `json:"caller"`
	Steps  []Step           `json:"steps"`
	// Next is the index of the step to execute next. It is equal to the
	// number of steps once all of them were executed.
	Next int32 `json:"next"`
	// Outcome of the most recently executed step.
	LastStatus int32  `json:"last_status"`
	LastData   []byte `json:"last_data,omitempty"`
}

var _ orm.Model = (*Promise)(nil)

// Validate returns an error if the promise cannot be executed.
func (p *Promise) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Caller", p.Caller.Validate())
	if len(p.Steps) == 0 {
		errs = errors.AppendField(errs, "Steps", errors.ErrEmpty)
	}
	for i, s := range p.Steps {
		if err := s.Contract.Validate(); err != nil {
			errs = errors.Append(errs, errors.Field("Steps", err, "step %d contract", i))
		}
		if s.Msg == nil {
			errs = errors.Append(errs, errors.Field("Steps", errors.ErrEmpty, "step %d message", i))
		}
	}
	if p.Next < 0 || int(p.Next) > len(p.Steps) {
		errs = errors.AppendField(errs, "Next", errors.ErrState)
	}
	return errs
}

// Done returns true if all steps were executed.
func (p *Promise) Done() bool {
	return int(p.Next) >= len(p.Steps)
}

// LastResult returns the outcome of the most recently executed step.
func (p *Promise) LastResult() tipjar.CallResult {
	return tipjar.CallResult{
		Status: tipjar.CallStatus(p.LastStatus),
		Data:   p.LastData,
	}
}

// TaskResult is the outcome of a single executed step.
type TaskResult struct {
	RequestID  []byte `json:"request_id"`
	Step       int32  `json:"step"`
	Path       string `json:"path"`
	Successful bool   `json:"successful"`
	// Info is the error message of a failed step.
	Info   string `json:"info,omitempty"`
	Height int64  `json:"height"`
}

var _ orm.Model = (*TaskResult)(nil)

// Validate returns an error if the result is incomplete.
func (r *TaskResult) Validate() error {
	var errs error
	if len(r.RequestID) == 0 {
		errs = errors.AppendField(errs, "RequestID", errors.ErrEmpty)
	}
	if r.Step < 0 {
		errs = errors.AppendField(errs, "Step", errors.ErrInput)
	}
	return errs
}

// resultKey returns the key under which the outcome of given step is
// stored. All results of a request share the request ID prefix.
func resultKey(requestID []byte, step int32) []byte {
	key := make([]byte, len(requestID)+4)
	copy(key, requestID)
	binary.BigEndian.PutUint32(key[len(requestID):], uint32(step))
	return key
}

// NewPromiseBucket returns a bucket for storing promises.
func NewPromiseBucket() *orm.ModelBucket {
	return orm.NewModelBucket("promises", &Promise{})
}

// NewTaskResultBucket returns a bucket for storing step results.
func NewTaskResultBucket() *orm.ModelBucket {
	return orm.NewModelBucket("promise_results", &TaskResult{})
}

// Results returns the outcome of all executed steps of given request, in
// execution order.
func Results(db tipjar.ReadOnlyKVStore, requestID []byte) ([]TaskResult, error) {
	it, err := NewTaskResultBucket().PrefixScan(db, requestID, false)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var res []TaskResult
	for {
		var r TaskResult
		switch _, err := it.LoadNext(&r); {
		case errors.ErrIteratorDone.Is(err):
			return res, nil
		case err != nil:
			return nil, err
		default:
			res = append(res, r)
		}
	}
}

// RegisterQuery exposes promises as "/promises" and step results as
// "/promises/results".
func RegisterQuery(qr tipjar.QueryRouter) {
	NewPromiseBucket().Register("/promises", qr)
	NewTaskResultBucket().Register("/promises/results", qr)
}
