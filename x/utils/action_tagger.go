package utils

import (
	"github.com/iov-one/tipjar"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	// ActionKey is used by ActionTagger as the key of the message path tag.
	ActionKey = "action"
	// ContractKey is used by ActionTagger as the key of the called
	// account tag.
	ContractKey = "contract"
)

// ActionTagger will inspect the message being executed and add a tag
// `action = msg.Path()` together with the bech32 address of the called
// account, so clients have a standard way to search the execution history.
type ActionTagger struct{}

var _ tipjar.Decorator = ActionTagger{}

// NewActionTagger creates a ActionTagger decorator
func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

// Check just passes the request along
func (ActionTagger) Check(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx, next tipjar.Checker) (*tipjar.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver appends tags on the result if there is a success.
func (ActionTagger) Deliver(ctx tipjar.Context, db tipjar.KVStore, tx tipjar.Tx, next tipjar.Deliverer) (*tipjar.DeliverResult, error) {
	// if we error in reporting, let's do so early before dispatching
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}

	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags, common.KVPair{
		Key:   []byte(ActionKey),
		Value: []byte(msg.Path()),
	})
	if addr, ok := tipjar.CurrentAccount(ctx); ok {
		res.Tags = append(res.Tags, common.KVPair{
			Key:   []byte(ContractKey),
			Value: []byte(addr.String()),
		})
	}
	return res, nil
}
