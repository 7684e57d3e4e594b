package sigs

import (
	"testing"

	"github.com/iov-one/tipjar/crypto"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSignBytes(t *testing.T) {
	a, err := BuildSignBytes([]byte("foo"), "tipjar-local", 1)
	require.NoError(t, err)
	b, err := BuildSignBytes([]byte("foo"), "tipjar-local", 2)
	require.NoError(t, err)
	c, err := BuildSignBytes([]byte("foo"), "tipjar-other", 1)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)

	_, err = BuildSignBytes([]byte("foo"), "tipjar-local", -1)
	assert.True(t, ErrInvalidSequence.Is(err))
	_, err = BuildSignBytes([]byte("foo"), "", 1)
	assert.True(t, errors.ErrInput.Is(err))
}

func TestVerifyTxSignatures(t *testing.T) {
	const chainID = "tipjar-local"
	alice := crypto.GenPrivKeyEd25519()
	bob := crypto.GenPrivKeyEd25519()

	db := store.MemStore()

	tx := &StdTx{Payload: []byte("pay bob")}
	tx.Signatures = []*StdSignature{mustSign(t, alice, tx, chainID, 0)}

	signers, err := VerifyTxSignatures(db, tx, chainID)
	require.NoError(t, err)
	require.Len(t, signers, 1)
	assert.True(t, alice.PublicKey().Condition().Equals(signers[0]))

	user, err := NewBucket().GetOrCreate(db, alice.PublicKey())
	require.NoError(t, err)
	assert.EqualValues(t, 1, user.Sequence)

	// The same signature cannot be used twice.
	_, err = VerifyTxSignatures(db, tx, chainID)
	assert.True(t, ErrInvalidSequence.Is(err), "unexpected error: %v", err)

	// Signature made for another chain.
	other := &StdTx{Payload: []byte("pay bob")}
	other.Signatures = []*StdSignature{mustSign(t, alice, other, "tipjar-other", 1)}
	_, err = VerifyTxSignatures(db, other, chainID)
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %v", err)

	// The payload was changed after signing.
	changed := &StdTx{Payload: []byte("pay mallory")}
	changed.Signatures = []*StdSignature{mustSign(t, alice, tx, chainID, 1)}
	_, err = VerifyTxSignatures(db, changed, chainID)
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %v", err)

	// Bob's key declared but signed by alice.
	stolen := &StdTx{Payload: []byte("pay alice")}
	sig := mustSign(t, alice, stolen, chainID, 0)
	sig.Pubkey = bob.PublicKey()
	stolen.Signatures = []*StdSignature{sig}
	_, err = VerifyTxSignatures(db, stolen, chainID)
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %v", err)

	// Both keys sign, sequences are kept per key.
	both := &StdTx{Payload: []byte("split")}
	both.Signatures = []*StdSignature{
		mustSign(t, alice, both, chainID, 1),
		mustSign(t, bob, both, chainID, 0),
	}
	signers, err = VerifyTxSignatures(db, both, chainID)
	require.NoError(t, err)
	require.Len(t, signers, 2)
	assert.True(t, bob.PublicKey().Condition().Equals(signers[1]))
}

func TestStdSignatureValidate(t *testing.T) {
	key := crypto.GenPrivKeyEd25519()
	sig, err := key.Sign([]byte("msg"))
	require.NoError(t, err)

	cases := map[string]struct {
		sig     StdSignature
		wantErr *errors.Error
	}{
		"valid": {
			sig: StdSignature{Pubkey: key.PublicKey(), Signature: sig},
		},
		"negative sequence": {
			sig:     StdSignature{Sequence: -1, Pubkey: key.PublicKey(), Signature: sig},
			wantErr: ErrInvalidSequence,
		},
		"missing key": {
			sig:     StdSignature{Signature: sig},
			wantErr: errors.ErrUnauthorized,
		},
		"missing signature": {
			sig:     StdSignature{Pubkey: key.PublicKey()},
			wantErr: errors.ErrUnauthorized,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.sig.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %v", err)
			}
		})
	}
}

func TestCheckAndIncrementSequence(t *testing.T) {
	u := UserData{Pubkey: crypto.GenPrivKeyEd25519().PublicKey(), Sequence: 5}
	assert.True(t, ErrInvalidSequence.Is(u.CheckAndIncrementSequence(4)))
	require.NoError(t, u.CheckAndIncrementSequence(5))
	assert.EqualValues(t, 6, u.Sequence)

	u.Sequence = maxSequenceValue
	assert.True(t, errors.ErrOverflow.Is(u.CheckAndIncrementSequence(maxSequenceValue)))
}
