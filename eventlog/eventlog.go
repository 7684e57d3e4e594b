/*
Package eventlog implements the append-only execution log.

Events returned by a successful invocation are appended to the log within
the same store as the invocation changes, so they are committed or
discarded together. Extensions never read the log, it exists for clients.
*/
package eventlog

import (
	"encoding/json"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/orm"
)

const bucketName = "events"

// Entry is a single event written to the log.
type Entry struct {
	// Height of the block in which the event was produced.
	Height int64
	// Path of the message whose handler produced the event.
	Path    string
	Kind    string
	Payload []byte
}

var _ orm.Model = (*Entry)(nil)

// Validate returns an error if the entry cannot be stored.
func (e *Entry) Validate() error {
	var errs error
	if e.Height < 0 {
		errs = errors.AppendField(errs, "Height", errors.ErrInput)
	}
	if e.Kind == "" {
		errs = errors.AppendField(errs, "Kind", errors.ErrEmpty)
	}
	if !json.Valid(e.Payload) {
		errs = errors.AppendField(errs, "Payload", errors.ErrInput)
	}
	return errs
}

type jsonEntry struct {
	Height  int64           `json:"height"`
	Path    string          `json:"path"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// MarshalJSON renders the payload as an embedded JSON document.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonEntry{
		Height:  e.Height,
		Path:    e.Path,
		Kind:    e.Kind,
		Payload: e.Payload,
	})
}

// UnmarshalJSON reads the format produced by MarshalJSON.
func (e *Entry) UnmarshalJSON(raw []byte) error {
	var je jsonEntry
	if err := json.Unmarshal(raw, &je); err != nil {
		return err
	}
	*e = Entry{
		Height:  je.Height,
		Path:    je.Path,
		Kind:    je.Kind,
		Payload: []byte(je.Payload),
	}
	return nil
}

// Record is an entry together with its position in the log.
type Record struct {
	ID int64
	Entry
}

// Log gives access to the execution log.
type Log struct {
	bucket *orm.ModelBucket
}

// NewLog returns the execution log accessor.
func NewLog() *Log {
	return &Log{bucket: orm.NewModelBucket(bucketName, &Entry{})}
}

// Append writes all events at the end of the log and returns the ID of the
// last one, or zero if there was nothing to write.
func (l *Log) Append(db tipjar.KVStore, height int64, path string, events []tipjar.Event) (int64, error) {
	var last int64
	for _, ev := range events {
		e := Entry{
			Height:  height,
			Path:    path,
			Kind:    ev.Kind,
			Payload: ev.Payload,
		}
		key, err := l.bucket.Put(db, nil, &e)
		if err != nil {
			return 0, errors.Wrapf(err, "append %q event", ev.Kind)
		}
		last = orm.DecodeSequence(key)
	}
	return last, nil
}

// List returns all records with an ID greater than after, in the order
// they were appended.
func (l *Log) List(db tipjar.ReadOnlyKVStore, after int64) ([]Record, error) {
	it, err := l.bucket.PrefixScan(db, nil, false)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var records []Record
	for {
		var e Entry
		switch key, err := it.LoadNext(&e); {
		case errors.ErrIteratorDone.Is(err):
			return records, nil
		case err != nil:
			return nil, errors.Wrap(err, "load entry")
		default:
			if id := orm.DecodeSequence(key); id > after {
				records = append(records, Record{ID: id, Entry: e})
			}
		}
	}
}

// RegisterQuery exposes the log under the "/events" path.
func RegisterQuery(qr tipjar.QueryRouter) {
	NewLog().bucket.Register("/events", qr)
}
