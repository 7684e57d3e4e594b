package promise

import (
	"fmt"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/orm"
	"github.com/tendermint/tendermint/libs/common"
)

var queuePrefix = []byte("_promise:queue:")

// NewScheduler returns a scheduler implementation that stores call chains
// for execution by the Ticker.
func NewScheduler() *Scheduler {
	return &Scheduler{
		promises: NewPromiseBucket(),
		queue:    orm.NewSequence("promise", "queue"),
	}
}

// Scheduler is the tipjar.Scheduler implementation.
type Scheduler struct {
	promises *orm.ModelBucket
	queue    orm.Sequence
}

var _ tipjar.Scheduler = (*Scheduler)(nil)

// Schedule implements tipjar.Scheduler interface.
//
// The first call is executed at the beginning of the next block. Returned
// request ID can be used to query the state of the chain.
func (s *Scheduler) Schedule(db tipjar.KVStore, caller tipjar.Condition, calls []tipjar.Call) ([]byte, error) {
	p := Promise{
		Caller: caller,
		Steps:  make([]Step, len(calls)),
	}
	for i, c := range calls {
		p.Steps[i] = Step{Contract: c.Contract, Msg: c.Msg}
	}
	id, err := s.promises.Put(db, nil, &p)
	if err != nil {
		return nil, errors.Wrap(err, "cannot store promise")
	}
	if err := enqueue(db, s.queue, id); err != nil {
		return nil, err
	}
	return id, nil
}

// enqueue appends the request at the end of the execution queue.
func enqueue(db tipjar.KVStore, seq orm.Sequence, requestID []byte) error {
	pos, err := seq.NextVal(db)
	if err != nil {
		return errors.Wrap(err, "queue sequence")
	}
	if err := db.Set(queueKey(pos), requestID); err != nil {
		return errors.Wrap(err, "cannot store in queue")
	}
	return nil
}

func queueKey(pos []byte) []byte {
	key := make([]byte, len(queuePrefix)+len(pos))
	copy(key, queuePrefix)
	copy(key[len(queuePrefix):], pos)
	return key
}

// NewTicker returns a runner instance that is using given handler to
// process queued calls.
func NewTicker(h tipjar.Handler) *Ticker {
	return &Ticker{
		hn:       h,
		promises: NewPromiseBucket(),
		results:  NewTaskResultBucket(),
		queue:    orm.NewSequence("promise", "queue"),
	}
}

// Ticker executes queued calls. It does this by implementing tipjar.Ticker
// interface.
type Ticker struct {
	hn       tipjar.Handler
	promises *orm.ModelBucket
	results  *orm.ModelBucket
	queue    orm.Sequence
}

var _ tipjar.Ticker = (*Ticker)(nil)

// Tick implements tipjar.Ticker interface.
//
// Tick processes all calls that were queued before it started, in the order
// they were queued. Calls queued while processing are left for the next
// tick.
func (t *Ticker) Tick(ctx tipjar.Context, db tipjar.CacheableKVStore) tipjar.TickResult {
	res, err := t.tick(ctx, db)
	if err != nil {
		// This is a hopeless state. This error is most likely due to a
		// database issues or some other instance specific problems.
		failTask(err)
	}
	return res
}

// failTask is a variable so that it can be overwritten for tests.
var failTask = func(err error) {
	panic(fmt.Sprintf(`

Asynchronous call failed.

This error is most likely due to a database issues or some other instance
specific problems. There is no way to continue operating as the state of
the queue is unknown.

%+v

	`, err))
}

// tick works like Tick except it returns an error. This makes it easier for
// the tests to check the result.
func (t *Ticker) tick(ctx tipjar.Context, db tipjar.CacheableKVStore) (tipjar.TickResult, error) {
	var res tipjar.TickResult

	queued, err := queuedKeys(db)
	if err != nil {
		return res, err
	}
	for _, key := range queued {
		tags, events, err := t.execute(ctx, db, key)
		if err != nil {
			return res, err
		}
		res.Executed++
		res.Tags = append(res.Tags, tags...)
		res.Events = append(res.Events, events...)
	}

	pending, err := queuedKeys(db)
	if err != nil {
		return res, err
	}
	res.Pending = len(pending)
	return res, nil
}

// execute runs the step of a promise referenced by given queue entry. All
// changes, including the bookkeeping, are applied atomically.
func (t *Ticker) execute(ctx tipjar.Context, db tipjar.CacheableKVStore, key []byte) ([]common.KVPair, []tipjar.Event, error) {
	cache := db.CacheWrap()

	requestID, err := cache.Get(key)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot read queue")
	}
	var p Promise
	if err := t.promises.One(cache, requestID, &p); err != nil {
		cache.Discard()
		return nil, nil, errors.Wrapf(err, "queued request %X", requestID)
	}
	if p.Done() {
		cache.Discard()
		return nil, nil, errors.Wrapf(errors.ErrState, "request %X already resolved", requestID)
	}

	step := p.Steps[p.Next]
	stepCtx := withAuth(ctx, []tipjar.Condition{p.Caller})
	stepCtx = tipjar.WithCurrentAccount(stepCtx, step.Contract)
	if p.Next > 0 {
		stepCtx = tipjar.WithCallResults(stepCtx, []tipjar.CallResult{p.LastResult()})
	}
	stepCtx = tipjar.WithLogInfo(stepCtx, "request", fmt.Sprintf("%X", requestID), "step", p.Next)

	height, _ := tipjar.GetHeight(ctx)
	result := TaskResult{
		RequestID:  requestID,
		Step:       p.Next,
		Path:       step.Msg.Path(),
		Successful: true,
		Height:     height,
	}

	var (
		tags   []common.KVPair
		events []tipjar.Event
	)
	// Each call is processed using its own cache instance so that a
	// failure discards only the call changes.
	exec := cache.CacheWrap()
	tx := &stepTx{msg: step.Msg, contract: step.Contract}
	if r, err := t.hn.Deliver(stepCtx, exec, tx); err != nil {
		exec.Discard()
		result.Successful = false
		result.Info = err.Error()
		p.LastStatus = int32(tipjar.CallFailed)
		p.LastData = nil
		tipjar.GetLogger(stepCtx).Info("scheduled call failed", "err", err)
	} else {
		if err := exec.Write(); err != nil {
			cache.Discard()
			return nil, nil, errors.Wrap(err, "cannot write call changes")
		}
		p.LastStatus = int32(tipjar.CallSuccessful)
		p.LastData = r.Data
		tags = append(tags, r.Tags...)
		events = append(events, r.Events...)
	}

	if _, err := t.results.Put(cache, resultKey(requestID, p.Next), &result); err != nil {
		cache.Discard()
		return nil, nil, errors.Wrap(err, "cannot store result")
	}
	p.Next++
	if _, err := t.promises.Put(cache, requestID, &p); err != nil {
		cache.Discard()
		return nil, nil, errors.Wrap(err, "cannot store promise")
	}
	if !p.Done() {
		if err := enqueue(cache, t.queue, requestID); err != nil {
			cache.Discard()
			return nil, nil, err
		}
	}
	// Remove the call from the queue as it was processed. Do it via
	// cache to keep it atomic.
	if err := cache.Delete(key); err != nil {
		cache.Discard()
		return nil, nil, errors.Wrap(err, "cannot delete from queue")
	}
	if err := cache.Write(); err != nil {
		return nil, nil, errors.Wrap(err, "cannot write cache")
	}

	tags = append(tags, common.KVPair{
		Key:   []byte("promise"),
		Value: requestID,
	})
	return tags, events, nil
}

// queuedKeys returns the keys of all queued calls, oldest first.
func queuedKeys(db tipjar.ReadOnlyKVStore) ([][]byte, error) {
	end := append([]byte(nil), queuePrefix...)
	end[len(end)-1]++
	it, err := db.Iterator(queuePrefix, end)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create iterator")
	}
	defer it.Close()

	var keys [][]byte
	for it.Valid() {
		keys = append(keys, append([]byte(nil), it.Key()...))
		switch err := it.Next(); {
		case errors.ErrIteratorDone.Is(err):
			return keys, nil
		case err != nil:
			return nil, errors.Wrap(err, "cannot get next item")
		}
	}
	return keys, nil
}

// stepTx is a tipjar.Tx implementation created for running scheduled
// calls. It is a thin wrapper over the message.
type stepTx struct {
	msg      tipjar.Msg
	contract tipjar.Address
}

var (
	_ tipjar.Tx         = (*stepTx)(nil)
	_ tipjar.ContractTx = (*stepTx)(nil)
)

// GetMsg implements tipjar.Tx interface.
func (tx *stepTx) GetMsg() (tipjar.Msg, error) {
	return tx.msg, nil
}

// GetContract implements tipjar.ContractTx interface.
func (tx *stepTx) GetContract() tipjar.Address {
	return tx.contract
}
