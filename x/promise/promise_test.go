package promise

import (
	"strings"
	"testing"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/codec"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/store"
	"github.com/iov-one/tipjar/tipjartest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type callMsg struct {
	Name string
}

func (m *callMsg) Path() string    { return "test/call" }
func (m *callMsg) Validate() error { return nil }

func init() {
	codec.RegisterMsg(&callMsg{}, "test/call")
}

type recordedCall struct {
	name     string
	results  []tipjar.CallResult
	signers  []tipjar.Condition
	contract tipjar.Address
}

// recordingHandler writes the message name to the store and fails for
// names starting with "fail".
type recordingHandler struct {
	calls []recordedCall
}

func (h *recordingHandler) Check(tipjar.Context, tipjar.KVStore, tipjar.Tx) (*tipjar.CheckResult, error) {
	return &tipjar.CheckResult{}, nil
}

func (h *recordingHandler) Deliver(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	name := msg.(*callMsg).Name
	contract, _ := tipjar.CurrentAccount(ctx)
	h.calls = append(h.calls, recordedCall{
		name:     name,
		results:  tipjar.CallResults(ctx),
		signers:  Authenticator{}.GetConditions(ctx),
		contract: contract,
	})
	if err := db.Set([]byte("written:"+name), []byte(name)); err != nil {
		return nil, err
	}
	if strings.HasPrefix(name, "fail") {
		return nil, errors.Wrap(errors.ErrCallFailed, name)
	}
	ev, err := tipjar.NewEvent("test/called", name)
	if err != nil {
		return nil, err
	}
	return &tipjar.DeliverResult{Data: []byte(name), Events: []tipjar.Event{ev}}, nil
}

func (h *recordingHandler) names() []string {
	var names []string
	for _, c := range h.calls {
		names = append(names, c.name)
	}
	return names
}

func calls(contract tipjar.Address, names ...string) []tipjar.Call {
	var cs []tipjar.Call
	for _, n := range names {
		cs = append(cs, tipjar.Call{Contract: contract, Msg: &callMsg{Name: n}})
	}
	return cs
}

func mustTick(t testing.TB, tk *Ticker, height int64, db tipjar.CacheableKVStore) tipjar.TickResult {
	t.Helper()
	res, err := tk.tick(tipjartest.NewContext(height), db)
	require.NoError(t, err)
	return res
}

func TestScheduleValidation(t *testing.T) {
	db := store.MemStore()
	s := NewScheduler()
	caller := tipjartest.NewCondition()
	contract := tipjartest.NewCondition().Address()

	_, err := s.Schedule(db, caller, nil)
	assert.True(t, errors.ErrEmpty.Is(err))

	_, err = s.Schedule(db, tipjar.Condition("bad"), calls(contract, "a"))
	assert.True(t, errors.ErrInput.Is(err))

	_, err = s.Schedule(db, caller, []tipjar.Call{{Contract: contract}})
	assert.True(t, errors.ErrEmpty.Is(err))

	_, err = s.Schedule(db, caller, calls(nil, "a"))
	assert.True(t, errors.ErrInput.Is(err))

	keys, err := queuedKeys(db)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestChainExecution(t *testing.T) {
	db := store.MemStore()
	h := &recordingHandler{}
	s := NewScheduler()
	tk := NewTicker(h)

	caller := tipjartest.NewCondition()
	contract := tipjartest.NewCondition().Address()
	id, err := s.Schedule(db, caller, calls(contract, "first", "fail-second", "third"))
	require.NoError(t, err)

	res := mustTick(t, tk, 1, db)
	assert.Equal(t, 1, res.Executed)
	assert.Equal(t, 1, res.Pending)
	require.Len(t, res.Events, 1)
	assert.Equal(t, `"first"`, string(res.Events[0].Payload))
	assert.Equal(t, []string{"first"}, h.names())

	first := h.calls[0]
	assert.Empty(t, first.results)
	assert.Equal(t, []tipjar.Condition{caller}, first.signers)
	assert.Equal(t, contract, first.contract)

	res = mustTick(t, tk, 2, db)
	assert.Equal(t, 1, res.Executed)
	assert.Empty(t, res.Events)
	second := h.calls[1]
	assert.Equal(t, []tipjar.CallResult{{Status: tipjar.CallSuccessful, Data: []byte("first")}}, second.results)

	res = mustTick(t, tk, 3, db)
	assert.Equal(t, 1, res.Executed)
	assert.Equal(t, 0, res.Pending)
	third := h.calls[2]
	require.Len(t, third.results, 1)
	assert.Equal(t, tipjar.CallFailed, third.results[0].Status)

	// Nothing left to do.
	res = mustTick(t, tk, 4, db)
	assert.Equal(t, 0, res.Executed)
	assert.Len(t, h.calls, 3)

	// Changes of the failed call were discarded.
	val, err := db.Get([]byte("written:first"))
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), val)
	val, err = db.Get([]byte("written:fail-second"))
	require.NoError(t, err)
	assert.Nil(t, val)

	var p Promise
	require.NoError(t, NewPromiseBucket().One(db, id, &p))
	assert.True(t, p.Done())
	assert.Equal(t, tipjar.CallSuccessful, p.LastResult().Status)

	results, err := Results(db, id)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.True(t, results[0].Successful)
	assert.False(t, results[1].Successful)
	assert.Contains(t, results[1].Info, "fail-second")
	assert.Equal(t, int64(2), results[1].Height)
	assert.True(t, results[2].Successful)
	assert.Equal(t, "test/call", results[2].Path)
}

func TestChainsInterleave(t *testing.T) {
	db := store.MemStore()
	h := &recordingHandler{}
	s := NewScheduler()
	tk := NewTicker(h)
	contract := tipjartest.NewCondition().Address()

	_, err := s.Schedule(db, tipjartest.NewCondition(), calls(contract, "a1", "a2"))
	require.NoError(t, err)
	_, err = s.Schedule(db, tipjartest.NewCondition(), calls(contract, "b1"))
	require.NoError(t, err)

	res := mustTick(t, tk, 1, db)
	assert.Equal(t, 2, res.Executed)
	assert.Equal(t, 1, res.Pending)
	assert.Equal(t, []string{"a1", "b1"}, h.names())

	_, err = s.Schedule(db, tipjartest.NewCondition(), calls(contract, "c1"))
	require.NoError(t, err)

	res = mustTick(t, tk, 2, db)
	assert.Equal(t, 2, res.Executed)
	assert.Equal(t, []string{"a1", "b1", "a2", "c1"}, h.names())
}

func TestQueryPromises(t *testing.T) {
	db := store.MemStore()
	contract := tipjartest.NewCondition().Address()
	id, err := NewScheduler().Schedule(db, tipjartest.NewCondition(), calls(contract, "x"))
	require.NoError(t, err)
	mustTick(t, NewTicker(&recordingHandler{}), 1, db)

	qr := tipjar.NewQueryRouter()
	RegisterQuery(qr)

	h, mod := qr.Handler("/promises")
	require.NotNil(t, h)
	res, err := h.Query(db, mod, id)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Contains(t, string(res[0].Value), `"next":1`)

	h, mod = qr.Handler("/promises/results?prefix")
	require.NotNil(t, h)
	res, err = h.Query(db, mod, id)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Contains(t, string(res[0].Value), `"successful":true`)
}

func TestTickFailsOnBrokenQueue(t *testing.T) {
	db := store.MemStore()
	require.NoError(t, db.Set(queueKey([]byte{0, 0, 0, 0, 0, 0, 0, 9}), []byte("missing")))

	_, err := NewTicker(&recordingHandler{}).tick(tipjartest.NewContext(1), db)
	assert.True(t, errors.ErrNotFound.Is(err))

	var failed error
	orig := failTask
	failTask = func(err error) { failed = err }
	defer func() { failTask = orig }()
	NewTicker(&recordingHandler{}).Tick(tipjartest.NewContext(1), db)
	assert.True(t, errors.ErrNotFound.Is(failed))
}
