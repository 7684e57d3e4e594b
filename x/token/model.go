package token

import (
	"regexp"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/orm"
)

var isTicker = regexp.MustCompile(`^[A-Z0-9]{3,8}$`).MatchString

const (
	conditionExt  = "token"
	conditionType = "ledger"
)

// LedgerCondition returns the condition of the ledger account of given
// token. Scheduled calls made by the ledger are authenticated with it.
func LedgerCondition(ticker string) tipjar.Condition {
	return tipjar.NewCondition(conditionExt, conditionType, []byte(ticker))
}

// LedgerAddress returns the address of the ledger account of given token.
func LedgerAddress(ticker string) tipjar.Address {
	return LedgerCondition(ticker).Address()
}

// TickerOf returns the ticker of the token whose ledger is represented by
// given condition.
func TickerOf(c tipjar.Condition) (string, bool) {
	ext, typ, data, err := c.Parse()
	if err != nil || ext != conditionExt || typ != conditionType || !isTicker(string(data)) {
		return "", false
	}
	return string(data), true
}

// Token describes a registered token.
type Token struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

var _ orm.Model = (*Token)(nil)

// Validate returns an error if the token cannot be registered.
func (t *Token) Validate() error {
	var errs error
	if !isTicker(t.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.ErrInput)
	}
	if len(t.Name) > 64 {
		errs = errors.AppendField(errs, "Name", errors.ErrInput)
	}
	return errs
}

// NewTokenBucket returns a bucket of tokens keyed by their ledger address.
func NewTokenBucket() *orm.ModelBucket {
	return orm.NewModelBucket("tokens", &Token{})
}

// Balance holds the amount of a single token owned by an account.
type Balance struct {
	Amount coin.Amount `json:"amount"`
}

var _ orm.Model = (*Balance)(nil)

// Validate is a noop, every amount is a valid balance.
func (b *Balance) Validate() error {
	return nil
}

// NewBalanceBucket returns a bucket of balances keyed by BalanceKey.
func NewBalanceBucket() *orm.ModelBucket {
	return orm.NewModelBucket("token_balances", &Balance{})
}

// BalanceKey returns the key of the holder balance of given token. All
// balances of a token share the "<ticker>:" prefix.
func BalanceKey(ticker string, holder tipjar.Address) []byte {
	key := make([]byte, 0, len(ticker)+1+len(holder))
	key = append(key, ticker...)
	key = append(key, ':')
	return append(key, holder...)
}
