package token

import (
	"strings"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/x"
)

// NotifyFunc builds the message delivered to the receiver of a
// TransferCallMsg. The receiver must return the amount it did not use as a
// decimal string.
type NotifyFunc func(sender tipjar.Address, amount coin.Amount, message string) tipjar.Msg

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r tipjar.Registry, auth x.Authenticator, ctrl Controller, scheduler tipjar.Scheduler, notify NotifyFunc) {
	r.Handle(TransferMsg{}.Path(), NewTransferHandler(auth, ctrl))
	r.Handle(TransferCallMsg{}.Path(), NewTransferCallHandler(auth, ctrl, scheduler, notify))
	r.Handle(ResolveTransferMsg{}.Path(), NewResolveTransferHandler(auth, ctrl))
}

// RegisterQuery registers tokens as "/tokens" and balances as
// "/tokens/balance". Balances are queried by BalanceKey, or with the prefix
// modifier by "<ticker>:".
func RegisterQuery(qr tipjar.QueryRouter) {
	NewTokenBucket().Register("/tokens", qr)
	NewBalanceBucket().Register("/tokens/balance", qr)
}

// calledToken returns the token whose ledger is the called account.
func calledToken(ctx tipjar.Context, db tipjar.ReadOnlyKVStore, ctrl Controller) (*Token, error) {
	ledger, ok := tipjar.CurrentAccount(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrInput, "no token ledger called")
	}
	return ctrl.Token(db, ledger)
}

// payer returns the account that is calling the ledger.
func payer(ctx tipjar.Context, auth x.Authenticator) (tipjar.Condition, error) {
	signer := x.MainSigner(ctx, auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no calling account")
	}
	return signer, nil
}

// TransferHandler moves tokens between accounts.
type TransferHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ tipjar.Handler = TransferHandler{}

// NewTransferHandler returns a handler for TransferMsg.
func NewTransferHandler(auth x.Authenticator, ctrl Controller) TransferHandler {
	return TransferHandler{auth: auth, ctrl: ctrl}
}

func (h TransferHandler) Check(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tipjar.CheckResult{}, nil
}

func (h TransferHandler) Deliver(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.DeliverResult, error) {
	msg, tok, from, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Transfer(db, tok.Ticker, from.Address(), msg.Dest, msg.Amount); err != nil {
		return nil, err
	}
	tipjar.GetLogger(ctx).Debug("token transfer", "token", tok.Ticker, "dest", msg.Dest, "amount", msg.Amount)
	return &tipjar.DeliverResult{}, nil
}

func (h TransferHandler) validate(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*TransferMsg, *Token, tipjar.Condition, error) {
	var msg TransferMsg
	if err := tipjar.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	tok, err := calledToken(ctx, db, h.ctrl)
	if err != nil {
		return nil, nil, nil, err
	}
	from, err := payer(ctx, h.auth)
	if err != nil {
		return nil, nil, nil, err
	}
	return &msg, tok, from, nil
}

// TransferCallHandler moves tokens and notifies the receiver.
type TransferCallHandler struct {
	auth      x.Authenticator
	ctrl      Controller
	scheduler tipjar.Scheduler
	notify    NotifyFunc
}

var _ tipjar.Handler = TransferCallHandler{}

// NewTransferCallHandler returns a handler for TransferCallMsg.
func NewTransferCallHandler(auth x.Authenticator, ctrl Controller, scheduler tipjar.Scheduler, notify NotifyFunc) TransferCallHandler {
	return TransferCallHandler{
		auth:      auth,
		ctrl:      ctrl,
		scheduler: scheduler,
		notify:    notify,
	}
}

func (h TransferCallHandler) Check(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tipjar.CheckResult{}, nil
}

// Deliver moves the tokens to the receiver and schedules the notification
// of the receiver followed by the refund resolution. The request ID is
// returned as data.
func (h TransferCallHandler) Deliver(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.DeliverResult, error) {
	msg, tok, from, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	sender := from.Address()
	if err := h.ctrl.Transfer(db, tok.Ticker, sender, msg.Dest, msg.Amount); err != nil {
		return nil, err
	}
	calls := []tipjar.Call{
		{Contract: msg.Dest, Msg: h.notify(sender, msg.Amount, msg.Message)},
		{Contract: LedgerAddress(tok.Ticker), Msg: &ResolveTransferMsg{Sender: sender, Receiver: msg.Dest, Amount: msg.Amount}},
	}
	id, err := h.scheduler.Schedule(db, LedgerCondition(tok.Ticker), calls)
	if err != nil {
		return nil, errors.Wrap(err, "schedule notification")
	}
	tipjar.GetLogger(ctx).Info("token transfer call", "token", tok.Ticker, "dest", msg.Dest, "amount", msg.Amount, "request", id)
	return &tipjar.DeliverResult{Data: id}, nil
}

func (h TransferCallHandler) validate(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*TransferCallMsg, *Token, tipjar.Condition, error) {
	if h.notify == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrHuman, "no notification configured")
	}
	var msg TransferCallMsg
	if err := tipjar.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	tok, err := calledToken(ctx, db, h.ctrl)
	if err != nil {
		return nil, nil, nil, err
	}
	from, err := payer(ctx, h.auth)
	if err != nil {
		return nil, nil, nil, err
	}
	return &msg, tok, from, nil
}

// ResolveTransferHandler refunds the unused part of a transfer call.
type ResolveTransferHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ tipjar.Handler = ResolveTransferHandler{}

// NewResolveTransferHandler returns a handler for ResolveTransferMsg.
func NewResolveTransferHandler(auth x.Authenticator, ctrl Controller) ResolveTransferHandler {
	return ResolveTransferHandler{auth: auth, ctrl: ctrl}
}

func (h ResolveTransferHandler) Check(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tipjar.CheckResult{}, nil
}

// Deliver refunds the unused amount, limited by the receiver balance. The
// amount used by the receiver is returned as data.
func (h ResolveTransferHandler) Deliver(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*tipjar.DeliverResult, error) {
	msg, tok, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	results := tipjar.CallResults(ctx)
	if len(results) != 1 {
		return nil, errors.Wrapf(errors.ErrProtocol, "want one call result, got %d", len(results))
	}
	unused := Unused(results[0], msg.Amount)

	refund := coin.Amount{}
	if !unused.IsZero() {
		balance, err := h.ctrl.Balance(db, tok.Ticker, msg.Receiver)
		if err != nil {
			return nil, err
		}
		refund = unused
		if balance.LessThan(refund) {
			refund = balance
		}
	}
	if !refund.IsZero() {
		if err := h.ctrl.Transfer(db, tok.Ticker, msg.Receiver, msg.Sender, refund); err != nil {
			return nil, errors.Wrap(err, "refund")
		}
		tipjar.GetLogger(ctx).Info("token refund", "token", tok.Ticker, "sender", msg.Sender, "amount", refund)
	}
	used, err := msg.Amount.Sub(refund)
	if err != nil {
		return nil, err
	}
	return &tipjar.DeliverResult{Data: []byte(used.String())}, nil
}

func (h ResolveTransferHandler) validate(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx) (*ResolveTransferMsg, *Token, error) {
	var msg ResolveTransferMsg
	if err := tipjar.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	tok, err := calledToken(ctx, db, h.ctrl)
	if err != nil {
		return nil, nil, err
	}
	caller, err := payer(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	if !caller.Equals(LedgerCondition(tok.Ticker)) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "only the ledger can resolve a transfer")
	}
	return &msg, tok, nil
}

// Unused returns the part of amount that the receiver of a transfer call
// did not use. A failed or malformed notification did not use anything.
func Unused(res tipjar.CallResult, amount coin.Amount) coin.Amount {
	if res.Status != tipjar.CallSuccessful {
		return amount
	}
	unused, err := coin.ParseAmount(strings.Trim(string(res.Data), `"`))
	if err != nil || amount.LessThan(unused) {
		return amount
	}
	return unused
}
