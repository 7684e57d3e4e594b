package tipjartest

import (
	"encoding/binary"

	"github.com/iov-one/tipjar"
)

// Scheduler is an in memory implementation of the tipjar.Scheduler. It
// records all scheduled requests and never executes them.
type Scheduler struct {
	// Err if set is returned by Schedule.
	Err       error
	Scheduled []Scheduled
}

// Scheduled is a single request recorded by the Scheduler mock.
type Scheduled struct {
	ID     []byte
	Caller tipjar.Condition
	Calls  []tipjar.Call
}

var _ tipjar.Scheduler = (*Scheduler)(nil)

func (s *Scheduler) Schedule(db tipjar.KVStore, caller tipjar.Condition, calls []tipjar.Call) ([]byte, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	id := make([]byte, 8)
	binary.BigEndian.PutUint64(id, uint64(len(s.Scheduled)+1))
	s.Scheduled = append(s.Scheduled, Scheduled{ID: id, Caller: caller, Calls: calls})
	return id, nil
}

// Last returns the most recently scheduled request.
func (s *Scheduler) Last() (Scheduled, bool) {
	if len(s.Scheduled) == 0 {
		return Scheduled{}, false
	}
	return s.Scheduled[len(s.Scheduled)-1], true
}
