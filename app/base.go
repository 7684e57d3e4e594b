package app

import (
	"context"
	"sync"
	"time"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/codec"
	"github.com/iov-one/tipjar/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// DefaultBlockInterval is the block time increment used by Tick.
const DefaultBlockInterval = 5 * time.Second

const stateKey = "_app:state"

// Chain hosts the extensions. It owns the committed store, executes
// invocations one at a time and runs the ticker at the beginning of every
// block.
//
// Every invocation runs in its own cache wrap of the block state. Changes
// of a successful invocation are applied to the block state, changes of a
// failed one are discarded. Block state is persisted by Commit.
type Chain struct {
	mu sync.Mutex

	name     string
	logger   log.Logger
	store    tipjar.CommitKVStore
	pending  tipjar.KVCacheWrap
	handler  tipjar.Handler
	ticker   tipjar.Ticker
	init     tipjar.Initializer
	queries  tipjar.QueryRouter
	interval time.Duration

	state chainState
}

// chainState is persisted together with every commit.
type chainState struct {
	ChainID string
	Height  int64
	// BlockTime is the unix time in nanoseconds.
	BlockTime int64
}

// NewChain returns a host over given store. State persisted by a previous
// run is loaded from the store.
func NewChain(name string, store tipjar.CommitKVStore, handler tipjar.Handler, ticker tipjar.Ticker, queries tipjar.QueryRouter) (*Chain, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	c := &Chain{
		name:     name,
		logger:   tipjar.DefaultLogger,
		store:    store,
		pending:  store.CacheWrap(),
		handler:  handler,
		ticker:   ticker,
		queries:  queries,
		interval: DefaultBlockInterval,
	}
	raw, err := c.pending.Get([]byte(stateKey))
	if err != nil {
		return nil, errors.Wrap(err, "load chain state")
	}
	if raw != nil {
		if err := codec.Unmarshal(raw, &c.state); err != nil {
			return nil, errors.Wrap(err, "decode chain state")
		}
	}
	return c, nil
}

// WithInit is used to set the initializer run by InitChain.
func (c *Chain) WithInit(init tipjar.Initializer) *Chain {
	c.init = init
	return c
}

// WithLogger sets the logger on the host and all the invocation contexts.
func (c *Chain) WithLogger(logger log.Logger) *Chain {
	c.logger = logger.With("module", c.name)
	return c
}

// WithBlockInterval sets the block time increment used by Tick.
func (c *Chain) WithBlockInterval(d time.Duration) *Chain {
	c.interval = d
	return c
}

// Logger returns the application base logger.
func (c *Chain) Logger() log.Logger {
	return c.logger
}

// ChainID returns the chain id or an empty string if InitChain was never
// called.
func (c *Chain) ChainID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ChainID
}

// Height returns the height of the current block.
func (c *Chain) Height() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Height
}

// BlockTime returns the time of the current block.
func (c *Chain) BlockTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Unix(0, c.state.BlockTime).UTC()
}

// InitChain runs all initializers with the genesis application state and
// commits the result. A chain can be initialized only once.
func (c *Chain) InitChain(gen Genesis) (tipjar.CommitID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.ChainID != "" {
		return tipjar.CommitID{}, errors.Wrapf(errors.ErrState, "chain %q already initialized", c.state.ChainID)
	}
	if err := gen.Validate(); err != nil {
		return tipjar.CommitID{}, errors.Wrap(err, "genesis")
	}
	if c.init != nil {
		cache := c.pending.CacheWrap()
		if err := c.init.FromGenesis(gen.AppState, cache); err != nil {
			cache.Discard()
			return tipjar.CommitID{}, errors.Wrap(err, "initialize from genesis")
		}
		if err := cache.Write(); err != nil {
			return tipjar.CommitID{}, errors.Wrap(err, "write genesis state")
		}
	}
	c.state = chainState{
		ChainID:   gen.ChainID,
		BlockTime: gen.GenesisTime.UTC().UnixNano(),
	}
	c.logger.Info("chain initialized", "chain_id", gen.ChainID)
	return c.commit()
}

// BeginBlock starts a new block at given time and runs the ticker.
func (c *Chain) BeginBlock(now time.Time) (tipjar.TickResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.ChainID == "" {
		return tipjar.TickResult{}, errors.Wrap(errors.ErrState, "chain not initialized")
	}
	if !now.After(c.blockTime()) {
		return tipjar.TickResult{}, errors.Wrapf(errors.ErrInput, "block time %s is not after %s", now, c.blockTime())
	}
	c.state.Height++
	c.state.BlockTime = now.UTC().UnixNano()

	if c.ticker == nil {
		return tipjar.TickResult{}, nil
	}
	ctx := tipjar.WithLogInfo(c.blockContext(), "call", "begin_block")
	res := c.ticker.Tick(ctx, c.pending)
	if res.Executed > 0 {
		c.logger.Debug("ticker", "height", c.state.Height, "executed", res.Executed, "pending", res.Pending)
	}
	return res, nil
}

// Tick starts the next block, one block interval after the current one.
func (c *Chain) Tick() (tipjar.TickResult, error) {
	return c.BeginBlock(c.BlockTime().Add(c.interval))
}

// Deliver executes a single invocation in the current block.
func (c *Chain) Deliver(tx tipjar.Tx) (*tipjar.DeliverResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.ChainID == "" {
		return nil, errors.Wrap(errors.ErrState, "chain not initialized")
	}
	ctx := tipjar.WithLogInfo(c.txContext(tx), "call", "deliver_tx")
	cache := c.pending.CacheWrap()
	res, err := c.handler.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "write invocation changes")
	}
	return res, nil
}

// DeliverTx decodes and executes a serialized transaction.
func (c *Chain) DeliverTx(raw []byte) (*tipjar.DeliverResult, error) {
	tx, err := loadTx(raw)
	if err != nil {
		return nil, err
	}
	return c.Deliver(tx)
}

// Check runs the checks of an invocation without applying any change.
func (c *Chain) Check(tx tipjar.Tx) (*tipjar.CheckResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.ChainID == "" {
		return nil, errors.Wrap(errors.ErrState, "chain not initialized")
	}
	ctx := tipjar.WithLogInfo(c.txContext(tx), "call", "check_tx")
	cache := c.pending.CacheWrap()
	defer cache.Discard()
	return c.handler.Check(ctx, cache, tx)
}

// Commit persists the block state and returns the new version.
func (c *Chain) Commit() (tipjar.CommitID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commit()
}

func (c *Chain) commit() (tipjar.CommitID, error) {
	raw, err := codec.Marshal(&c.state)
	if err != nil {
		return tipjar.CommitID{}, errors.Wrap(err, "encode chain state")
	}
	if err := c.pending.Set([]byte(stateKey), raw); err != nil {
		return tipjar.CommitID{}, errors.Wrap(err, "save chain state")
	}
	if err := c.pending.Write(); err != nil {
		return tipjar.CommitID{}, errors.Wrap(err, "write block state")
	}
	id, err := c.store.Commit()
	if err != nil {
		return tipjar.CommitID{}, errors.Wrap(err, "commit")
	}
	c.pending = c.store.CacheWrap()
	c.logger.Debug("commit", "height", c.state.Height, "version", id.Version)
	return id, nil
}

// Query dispatches a query to the handler registered under given path. The
// query is executed against the committed state. Path can carry a modifier,
// for example "/wallets?prefix".
func (c *Chain) Query(path string, data []byte) ([]tipjar.Model, error) {
	h, mod := c.queries.Handler(path)
	if h == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "no query handler for path %q", path)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	view := c.store.CacheWrap()
	defer view.Discard()
	return h.Query(view, mod, data)
}

func (c *Chain) blockTime() time.Time {
	return time.Unix(0, c.state.BlockTime).UTC()
}

// blockContext returns a context with all the block values set.
func (c *Chain) blockContext() tipjar.Context {
	ctx := context.Background()
	ctx = tipjar.WithHeight(ctx, c.state.Height)
	ctx = tipjar.WithChainID(ctx, c.state.ChainID)
	ctx = tipjar.WithBlockTime(ctx, c.blockTime())
	ctx = tipjar.WithLogger(ctx, c.logger)
	return ctx
}

// txContext returns the block context extended with the account addressed
// by the transaction.
func (c *Chain) txContext(tx tipjar.Tx) tipjar.Context {
	ctx := c.blockContext()
	if ctr, ok := tx.(tipjar.ContractTx); ok {
		if contract := ctr.GetContract(); contract != nil {
			return tipjar.WithCurrentAccount(ctx, contract)
		}
	}
	return ctx
}

// loadTx calls the decoder, and capture any panics
func loadTx(raw []byte) (tx tipjar.Tx, err error) {
	defer errors.Recover(&err)
	return DecodeTx(raw)
}
