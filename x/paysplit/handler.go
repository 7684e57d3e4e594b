package paysplit

import (
	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/gconf"
	"github.com/iov-one/tipjar/x"
	"github.com/iov-one/tipjar/x/cash"
	"github.com/iov-one/tipjar/x/token"
)

// unusedAmount is returned to the token ledger after a notification. The
// contract always keeps the whole transferred amount.
var unusedAmount = []byte("0")

// RegisterRoutes registers all contract handlers. Transfers are scheduled
// with given scheduler and withdrawals are checked against the native
// balance of the contract.
func RegisterRoutes(r tipjar.Registry, auth x.Authenticator, scheduler tipjar.Scheduler, ctrl cash.Controller) {
	r.Handle(TransferPaymentMsg{}.Path(), NewTransferPaymentHandler(auth, scheduler))
	r.Handle(OnTokenTransferMsg{}.Path(), NewOnTokenTransferHandler(auth, scheduler))
	r.Handle(FinalizeMsg{}.Path(), NewFinalizeHandler(auth))
	r.Handle(ChangeFeeMsg{}.Path(), NewChangeFeeHandler(auth))
	r.Handle(WithdrawFundsMsg{}.Path(), NewWithdrawFundsHandler(auth, scheduler, ctrl))
}

// contractCalled returns an error unless the invocation is addressed to the
// contract account.
func contractCalled(ctx tipjar.Context) error {
	addr, ok := tipjar.CurrentAccount(ctx)
	if !ok || !addr.Equals(ContractAddress()) {
		return errors.Wrap(errors.ErrInput, "contract account not called")
	}
	return nil
}

// TransferPaymentHandler splits native payments.
type TransferPaymentHandler struct {
	auth      x.Authenticator
	scheduler tipjar.Scheduler
}

var _ tipjar.Handler = TransferPaymentHandler{}

// NewTransferPaymentHandler returns a handler for TransferPaymentMsg.
func NewTransferPaymentHandler(auth x.Authenticator, scheduler tipjar.Scheduler) TransferPaymentHandler {
	return TransferPaymentHandler{auth: auth, scheduler: scheduler}
}

func (h TransferPaymentHandler) Check(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.CheckResult, error) {
	if _, err := h.prepare(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tipjar.CheckResult{}, nil
}

// Deliver schedules the transfer of the recipient share followed by the
// finalizer. The fee stays with the contract. Returns the request ID.
func (h TransferPaymentHandler) Deliver(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.DeliverResult, error) {
	calls, err := h.prepare(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	id, err := h.scheduler.Schedule(db, ContractCondition(), calls)
	if err != nil {
		return nil, errors.Wrap(err, "schedule transfer")
	}
	tipjar.GetLogger(ctx).Info("payment dispatched", "request", id, "asset", NativeAsset)
	return &tipjar.DeliverResult{Data: id}, nil
}

func (h TransferPaymentHandler) prepare(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) ([]tipjar.Call, error) {
	var msg TransferPaymentMsg
	if err := tipjar.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := contractCalled(ctx); err != nil {
		return nil, err
	}
	sender := x.MainSigner(ctx, h.auth)
	if sender == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no sender")
	}
	conf, err := LoadConfiguration(db)
	if err != nil {
		return nil, err
	}
	gross := tipjar.GetDeposit(ctx)
	if gross.IsZero() {
		return nil, errors.Wrap(errors.ErrAmount, "no deposit attached")
	}
	split, err := SplitNative(gross, conf.FeeNumerator)
	if err != nil {
		return nil, err
	}
	if split.Recipient.IsZero() {
		return nil, errors.Wrapf(errors.ErrAmount, "payment of %s too small to split", gross)
	}

	contract := ContractAddress()
	return []tipjar.Call{
		{
			Contract: msg.Receiver,
			Msg:      &cash.SendMsg{Src: contract, Dest: msg.Receiver, Amount: split.Recipient},
		},
		{
			Contract: contract,
			Msg: &FinalizeMsg{
				Sender:      sender.Address(),
				Receiver:    msg.Receiver,
				Asset:       NativeAsset,
				FullAmount:  gross,
				Transferred: split.Recipient,
				Fee:         split.Fee,
				Burn:        split.Burn,
			},
		},
	}, nil
}

// OnTokenTransferHandler splits token payments notified by a token ledger.
type OnTokenTransferHandler struct {
	auth      x.Authenticator
	scheduler tipjar.Scheduler
}

var _ tipjar.Handler = OnTokenTransferHandler{}

// NewOnTokenTransferHandler returns a handler for OnTokenTransferMsg.
func NewOnTokenTransferHandler(auth x.Authenticator, scheduler tipjar.Scheduler) OnTokenTransferHandler {
	return OnTokenTransferHandler{auth: auth, scheduler: scheduler}
}

func (h OnTokenTransferHandler) Check(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.CheckResult, error) {
	if _, _, err := h.prepare(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tipjar.CheckResult{Data: unusedAmount}, nil
}

// Deliver schedules the token transfers of the recipient and burn shares
// followed by the finalizer. The returned data is the unused amount, always
// zero.
func (h OnTokenTransferHandler) Deliver(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.DeliverResult, error) {
	ticker, calls, err := h.prepare(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	id, err := h.scheduler.Schedule(db, ContractCondition(), calls)
	if err != nil {
		return nil, errors.Wrap(err, "schedule transfer")
	}
	tipjar.GetLogger(ctx).Info("payment dispatched", "request", id, "asset", ticker, "calls", len(calls))
	return &tipjar.DeliverResult{Data: unusedAmount}, nil
}

func (h OnTokenTransferHandler) prepare(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (string, []tipjar.Call, error) {
	var msg OnTokenTransferMsg
	if err := tipjar.LoadMsg(tx, &msg); err != nil {
		return "", nil, errors.Wrap(err, "load msg")
	}
	if err := contractCalled(ctx); err != nil {
		return "", nil, err
	}
	caller := x.MainSigner(ctx, h.auth)
	if caller == nil {
		return "", nil, errors.Wrap(errors.ErrUnauthorized, "no token ledger")
	}
	ticker, ok := token.TickerOf(caller)
	if !ok {
		return "", nil, errors.Wrap(errors.ErrUnauthorized, "only a token ledger can notify a transfer")
	}
	conf, err := LoadConfiguration(db)
	if err != nil {
		return "", nil, err
	}
	routing, err := ParseRouting(msg.Message)
	if err != nil {
		return "", nil, err
	}

	var split *SplitResult
	if len(routing.Burner) == 0 {
		split, err = SplitNative(msg.Amount, conf.FeeNumerator)
	} else {
		split, err = SplitToken(msg.Amount, conf.FeeNumerator)
	}
	if err != nil {
		return "", nil, err
	}
	if split.Recipient.IsZero() {
		return "", nil, errors.Wrapf(errors.ErrAmount, "payment of %s too small to split", msg.Amount)
	}

	ledger := token.LedgerAddress(ticker)
	calls := []tipjar.Call{
		{Contract: ledger, Msg: &token.TransferMsg{Dest: routing.Receiver, Amount: split.Recipient}},
	}
	if !split.Burn.IsZero() {
		calls = append(calls, tipjar.Call{
			Contract: ledger,
			Msg:      &token.TransferMsg{Dest: routing.Burner, Amount: split.Burn},
		})
	}
	calls = append(calls, tipjar.Call{
		Contract: ContractAddress(),
		Msg: &FinalizeMsg{
			Sender:      msg.Sender,
			Receiver:    routing.Receiver,
			Burner:      routing.Burner,
			Asset:       ticker,
			FullAmount:  msg.Amount,
			Transferred: split.Recipient,
			Fee:         split.Fee,
			Burn:        split.Burn,
		},
	})
	return ticker, calls, nil
}

// FinalizeHandler emits the settlement event once the last transfer of a
// payment succeeded.
type FinalizeHandler struct {
	auth x.Authenticator
}

var _ tipjar.Handler = FinalizeHandler{}

// NewFinalizeHandler returns a handler for FinalizeMsg.
func NewFinalizeHandler(auth x.Authenticator) FinalizeHandler {
	return FinalizeHandler{auth: auth}
}

func (h FinalizeHandler) Check(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &tipjar.CheckResult{}, nil
}

// Deliver inspects the outcome of the preceding call. Only a successful
// outcome produces the event. Nothing is compensated on failure.
func (h FinalizeHandler) Deliver(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	results := tipjar.CallResults(ctx)
	if len(results) != 1 {
		return nil, errors.Wrapf(errors.ErrProtocol, "too many results: want one, got %d", len(results))
	}
	switch status := results[0].Status; status {
	case tipjar.CallSuccessful:
	case tipjar.CallFailed:
		tipjar.GetLogger(ctx).Info("payment aborted", "asset", msg.Asset, "receiver", msg.Receiver)
		return nil, errors.Wrap(errors.ErrCallFailed, "transfer failed")
	default:
		return nil, errors.Wrapf(errors.ErrProtocol, "unexpected call outcome %s", status)
	}

	conf, err := LoadConfiguration(db)
	if err != nil {
		return nil, err
	}
	ev, err := NewSettlementEvent(conf.EventStandard(), msg).LogEvent()
	if err != nil {
		return nil, err
	}
	tipjar.GetLogger(ctx).Info("payment settled", "asset", msg.Asset, "receiver", msg.Receiver, "amount", msg.FullAmount)
	return &tipjar.DeliverResult{Data: ev.Payload, Events: []tipjar.Event{ev}}, nil
}

func (h FinalizeHandler) validate(ctx tipjar.Context, tx tipjar.Tx) (*FinalizeMsg, error) {
	var msg FinalizeMsg
	if err := tipjar.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	caller := x.MainSigner(ctx, h.auth)
	if caller == nil || !caller.Equals(ContractCondition()) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "finalize is private")
	}
	return &msg, nil
}

// ownerCall returns the configuration if the invocation is signed by the
// contract owner with exactly one unit of deposit attached.
func ownerCall(ctx tipjar.Context, db tipjar.KVStore, auth x.Authenticator) (*Configuration, error) {
	if err := contractCalled(ctx); err != nil {
		return nil, err
	}
	conf, err := LoadConfiguration(db)
	if err != nil {
		return nil, err
	}
	if !auth.HasAddress(ctx, conf.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature missing")
	}
	if deposit := tipjar.GetDeposit(ctx); !deposit.Equals(coin.NewAmount(1)) {
		return nil, errors.Wrapf(errors.ErrAmount, "requires a deposit of exactly one unit, got %s", deposit)
	}
	return conf, nil
}

// ChangeFeeHandler changes the fee numerator.
type ChangeFeeHandler struct {
	auth x.Authenticator
}

var _ tipjar.Handler = ChangeFeeHandler{}

// NewChangeFeeHandler returns a handler for ChangeFeeMsg.
func NewChangeFeeHandler(auth x.Authenticator) ChangeFeeHandler {
	return ChangeFeeHandler{auth: auth}
}

func (h ChangeFeeHandler) Check(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tipjar.CheckResult{}, nil
}

func (h ChangeFeeHandler) Deliver(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	old := conf.FeeNumerator
	conf.FeeNumerator = msg.FeeNumerator
	if err := gconf.Save(db, confPkg, conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}
	tipjar.GetLogger(ctx).Info("fee changed", "old", old, "new", msg.FeeNumerator)
	return &tipjar.DeliverResult{}, nil
}

func (h ChangeFeeHandler) validate(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*ChangeFeeMsg, *Configuration, error) {
	var msg ChangeFeeMsg
	if err := tipjar.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := ownerCall(ctx, db, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, conf, nil
}

// WithdrawFundsHandler sends the collected native coins to the owner.
type WithdrawFundsHandler struct {
	auth      x.Authenticator
	scheduler tipjar.Scheduler
	ctrl      cash.Controller
}

var _ tipjar.Handler = WithdrawFundsHandler{}

// NewWithdrawFundsHandler returns a handler for WithdrawFundsMsg.
func NewWithdrawFundsHandler(auth x.Authenticator, scheduler tipjar.Scheduler, ctrl cash.Controller) WithdrawFundsHandler {
	return WithdrawFundsHandler{
		auth:      auth,
		scheduler: scheduler,
		ctrl:      ctrl,
	}
}

func (h WithdrawFundsHandler) Check(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tipjar.CheckResult{}, nil
}

// Deliver schedules the native transfer to the owner and returns the
// request ID.
func (h WithdrawFundsHandler) Deliver(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	calls := []tipjar.Call{
		{
			Contract: conf.Owner,
			Msg:      &cash.SendMsg{Src: ContractAddress(), Dest: conf.Owner, Amount: msg.Amount},
		},
	}
	id, err := h.scheduler.Schedule(db, ContractCondition(), calls)
	if err != nil {
		return nil, errors.Wrap(err, "schedule withdrawal")
	}
	tipjar.GetLogger(ctx).Info("funds withdrawn", "request", id, "amount", msg.Amount)
	return &tipjar.DeliverResult{Data: id}, nil
}

func (h WithdrawFundsHandler) validate(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*WithdrawFundsMsg, *Configuration, error) {
	var msg WithdrawFundsMsg
	if err := tipjar.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := ownerCall(ctx, db, h.auth)
	if err != nil {
		return nil, nil, err
	}
	balance, err := h.ctrl.Balance(db, ContractAddress())
	if err != nil {
		return nil, nil, err
	}
	if balance.LessThan(msg.Amount) {
		return nil, nil, errors.Wrapf(errors.ErrAmount, "contract holds %s", balance)
	}
	return &msg, conf, nil
}
