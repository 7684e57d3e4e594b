package tipjard

import (
	"encoding/json"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/app"
	"github.com/iov-one/tipjar/crypto"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/x/sigs"
	"golang.org/x/crypto/blake2b"
)

// AccountKey returns the private key of a named account. Keys are derived
// from the name, so they only suit local chains.
func AccountKey(name string) *crypto.PrivateKey {
	seed := blake2b.Sum256([]byte("tipjar/account/" + name))
	return crypto.PrivKeyEd25519FromSeed(seed[:])
}

// Account returns the condition of a named account. Named accounts are used
// by the scenario files and the generated genesis.
func Account(name string) tipjar.Condition {
	return AccountKey(name).PublicKey().Condition()
}

// Wallet signs transactions of named accounts and keeps track of their
// sequences.
type Wallet struct {
	chain *app.Chain
	seqs  map[string]int64
}

// NewWallet returns a wallet delivering to given chain.
func NewWallet(chain *app.Chain) *Wallet {
	return &Wallet{chain: chain, seqs: make(map[string]int64)}
}

// Sequence returns the next sequence of the named account. Unknown accounts
// are looked up in the committed state.
func (w *Wallet) Sequence(name string) (int64, error) {
	if seq, ok := w.seqs[name]; ok {
		return seq, nil
	}
	res, err := w.chain.Query("/auth", AccountKey(name).PublicKey().Address())
	if err != nil {
		return 0, errors.Wrap(err, "query sequence")
	}
	var seq int64
	if len(res) > 0 {
		var user sigs.UserData
		if err := json.Unmarshal(res[0].Value, &user); err != nil {
			return 0, errors.Wrapf(errors.ErrModel, "account %q: %s", name, err)
		}
		seq = user.Sequence
	}
	w.seqs[name] = seq
	return seq, nil
}

// Sign adds the signature of the named account to the transaction.
func (w *Wallet) Sign(name string, tx *app.Tx) error {
	seq, err := w.Sequence(name)
	if err != nil {
		return err
	}
	return tx.Sign(AccountKey(name), w.chain.ChainID(), seq)
}

// Deliver signs the transaction as the named account and delivers it. Only
// a successful transaction consumes the sequence.
func (w *Wallet) Deliver(name string, tx *app.Tx) (*tipjar.DeliverResult, error) {
	if err := w.Sign(name, tx); err != nil {
		return nil, errors.Wrap(err, "sign")
	}
	res, err := w.chain.Deliver(tx)
	if err != nil {
		return nil, err
	}
	w.seqs[name]++
	return res, nil
}
