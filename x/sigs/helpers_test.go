package sigs

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/crypto"
)

// StdTx is a signed transaction used in the tests of this package.
type StdTx struct {
	Payload    []byte
	Signatures []*StdSignature
}

var _ SignedTx = (*StdTx)(nil)

func (tx *StdTx) GetMsg() (tipjar.Msg, error)   { return nil, nil }
func (tx *StdTx) GetSignatures() []*StdSignature { return tx.Signatures }

func (tx *StdTx) GetSignBytes() ([]byte, error) {
	return json.Marshal(tx.Payload)
}

func mustSign(t testing.TB, key crypto.Signer, tx SignedTx, chainID string, seq int64) *StdSignature {
	sig, err := SignTx(key, tx, chainID, seq)
	if err != nil {
		t.Fatalf("cannot sign: %s", err)
	}
	return sig
}
