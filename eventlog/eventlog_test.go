package eventlog

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/store"
	"github.com/iov-one/tipjar/tipjartest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEvent(t testing.TB, kind string, body interface{}) tipjar.Event {
	t.Helper()
	ev, err := tipjar.NewEvent(kind, body)
	require.NoError(t, err)
	return ev
}

func TestLogAppendList(t *testing.T) {
	db := store.MemStore()
	l := NewLog()

	records, err := l.List(db, 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	last, err := l.Append(db, 3, "test/one", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)

	last, err = l.Append(db, 3, "test/one", []tipjar.Event{
		mustEvent(t, "first", map[string]int{"a": 1}),
		mustEvent(t, "second", map[string]int{"b": 2}),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), last)

	last, err = l.Append(db, 4, "test/two", []tipjar.Event{mustEvent(t, "third", "x")})
	require.NoError(t, err)
	assert.Equal(t, int64(3), last)

	records, err = l.List(db, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, "first", records[0].Kind)
	assert.Equal(t, "test/one", records[0].Path)
	assert.Equal(t, int64(3), records[0].Height)
	assert.JSONEq(t, `{"a": 1}`, string(records[0].Payload))
	assert.Equal(t, "third", records[2].Kind)
	assert.Equal(t, int64(4), records[2].Height)

	records, err = l.List(db, 2)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(3), records[0].ID)
}

func TestLogRejectsInvalidEntries(t *testing.T) {
	db := store.MemStore()
	l := NewLog()

	_, err := l.Append(db, 1, "test", []tipjar.Event{{Kind: "", Payload: []byte(`{}`)}})
	assert.True(t, errors.ErrEmpty.Is(err))
	_, err = l.Append(db, 1, "test", []tipjar.Event{{Kind: "bad", Payload: []byte(`{not json`)}})
	assert.True(t, errors.ErrInput.Is(err))
}

func TestQueryEvents(t *testing.T) {
	db := store.MemStore()
	_, err := NewLog().Append(db, 7, "test/path", []tipjar.Event{mustEvent(t, "kind", map[string]string{"k": "v"})})
	require.NoError(t, err)

	qr := tipjar.NewQueryRouter()
	RegisterQuery(qr)
	h, mod := qr.Handler("/events?prefix")
	require.NotNil(t, h)
	res, err := h.Query(db, mod, nil)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.JSONEq(t, `{"height": 7, "path": "test/path", "kind": "kind", "payload": {"k": "v"}}`, string(res[0].Value))

	var e Entry
	require.NoError(t, json.Unmarshal(res[0].Value, &e))
	assert.Equal(t, "kind", e.Kind)
	assert.JSONEq(t, `{"k": "v"}`, string(e.Payload))
}

func TestDecorator(t *testing.T) {
	db := store.MemStore()
	d := NewDecorator()
	ev := mustEvent(t, "done", map[string]bool{"ok": true})
	tx := &tipjartest.Tx{Msg: &tipjartest.Msg{RoutePath: "test/done"}}

	h := &tipjartest.Handler{DeliverResult: tipjar.DeliverResult{Events: []tipjar.Event{ev}}}
	res, err := d.Deliver(tipjartest.NewContext(9), db, tx, h)
	require.NoError(t, err)
	assert.Len(t, res.Events, 1)

	// Failed invocations never reach the log.
	failing := &tipjartest.Handler{
		DeliverResult: tipjar.DeliverResult{Events: []tipjar.Event{ev}},
		DeliverErr:    errors.ErrCallFailed,
	}
	_, err = d.Deliver(tipjartest.NewContext(10), db, tx, failing)
	assert.True(t, errors.ErrCallFailed.Is(err))

	_, err = d.Check(tipjartest.NewContext(11), db, tx, h)
	require.NoError(t, err)

	records, err := NewLog().List(db, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(9), records[0].Height)
	assert.Equal(t, "test/done", records[0].Path)
}
