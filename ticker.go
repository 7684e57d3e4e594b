package tipjar

import "github.com/tendermint/tendermint/libs/common"

// Ticker is an interface used to call background tasks scheduled for
// execution.
type Ticker interface {
	// Tick is a method called at the beginning of the block. It should be
	// used to execute any scheduled tasks.
	//
	// Because beginning of the block does not allow for an error response
	// this method does not return one as well. It is the implementation
	// responsibility to handle all error situations. An instance specific
	// failure (ie database issues) terminates the process.
	Tick(ctx Context, store CacheableKVStore) TickResult
}

// TickResult represents the result of a single tick run.
type TickResult struct {
	// Executed is the number of scheduled calls processed.
	Executed int
	// Pending is the number of calls left in the queue after this tick.
	Pending int
	// Events were produced by the successfully executed calls.
	Events []Event
	// Tags contains a list of tags that were produced during a single tick
	// execution.
	Tags []common.KVPair
}

// Call is a single message addressed to an account, executed
// asynchronously.
type Call struct {
	Contract Address
	Msg      Msg
}

// Scheduler is an interface implemented to allow scheduling asynchronous
// message execution.
type Scheduler interface {
	// Schedule queues given calls to be executed one after another,
	// each one in a block following the resolution of the previous one.
	// Every call is authenticated with the caller condition. Every call
	// but the first receives the outcome of the previous one in the
	// context (see CallResults).
	// When successful, returns the request ID.
	Schedule(db KVStore, caller Condition, calls []Call) ([]byte, error)
}
