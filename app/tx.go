package app

import (
	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/codec"
	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/crypto"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/x/sigs"
)

// Tx is the transaction format accepted by the host. It carries the
// signatures of the submitters, the account being called, an optional native
// deposit and the message.
type Tx struct {
	Signatures []*sigs.StdSignature
	Contract   tipjar.Address
	Deposit    coin.Amount
	Msg        tipjar.Msg
}

var (
	_ sigs.SignedTx     = (*Tx)(nil)
	_ tipjar.DepositTx  = (*Tx)(nil)
	_ tipjar.ContractTx = (*Tx)(nil)
)

// GetMsg returns the message carried by the transaction.
func (tx *Tx) GetMsg() (tipjar.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "no message")
	}
	return tx.Msg, nil
}

func (tx *Tx) GetSignatures() []*sigs.StdSignature { return tx.Signatures }
func (tx *Tx) GetContract() tipjar.Address         { return tx.Contract }
func (tx *Tx) GetDeposit() coin.Amount             { return tx.Deposit }

// GetSignBytes returns the bytes covered by the signatures: the
// transaction serialized without its signatures.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	unsigned := *tx
	unsigned.Signatures = nil
	return unsigned.Marshal()
}

// Sign appends the signature of given key. The sequence must be the next
// unused sequence of the key.
func (tx *Tx) Sign(key crypto.Signer, chainID string, seq int64) error {
	sig, err := sigs.SignTx(key, tx, chainID, seq)
	if err != nil {
		return err
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}

// Marshal returns the binary representation of the transaction.
func (tx *Tx) Marshal() ([]byte, error) {
	return codec.Marshal(tx)
}

// DecodeTx is the tipjar.TxDecoder of the Tx format.
func DecodeTx(raw []byte) (tipjar.Tx, error) {
	if len(raw) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "transaction")
	}
	var tx Tx
	if err := codec.Unmarshal(raw, &tx); err != nil {
		return nil, errors.Wrap(err, "decode transaction")
	}
	return &tx, nil
}

var _ tipjar.TxDecoder = DecodeTx
