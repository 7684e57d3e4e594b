package tipjard

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/app"
	"github.com/iov-one/tipjar/coin"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/orm"
	"github.com/iov-one/tipjar/store"
	"github.com/iov-one/tipjar/x/paysplit"
	"github.com/iov-one/tipjar/x/promise"
	"github.com/iov-one/tipjar/x/sigs"
	"github.com/iov-one/tipjar/x/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

var genesisTime = time.Date(2021, 10, 1, 0, 0, 0, 0, time.UTC)

func newTestChain(t *testing.T) *app.Chain {
	t.Helper()
	gen, err := GenerateGenesis(DefaultChainID, genesisTime, DefaultGenesisOptions())
	require.NoError(t, err)
	return newTestChainFrom(t, gen)
}

func newTestChainFrom(t *testing.T, gen app.Genesis) *app.Chain {
	t.Helper()
	chain, err := Application("tipjar", store.NewMemCommitStore(), log.NewNopLogger())
	require.NoError(t, err)
	_, err = chain.InitChain(gen)
	require.NoError(t, err)
	return chain
}

// settle ticks until no scheduled call is left and commits the result.
func settle(t *testing.T, chain *app.Chain) {
	t.Helper()
	for i := 0; ; i++ {
		require.True(t, i < 20, "scheduled calls not finished")
		res, err := chain.Tick()
		require.NoError(t, err)
		if res.Pending == 0 {
			break
		}
	}
	_, err := chain.Commit()
	require.NoError(t, err)
}

func bech(t *testing.T, addr tipjar.Address) string {
	t.Helper()
	s, err := addr.Bech32()
	require.NoError(t, err)
	return s
}

func nativeBalance(t *testing.T, chain *app.Chain, addr tipjar.Address) string {
	t.Helper()
	res, err := chain.Query("/wallets", addr)
	require.NoError(t, err)
	if len(res) == 0 {
		return "0"
	}
	var w struct {
		Balance coin.Amount `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(res[0].Value, &w))
	return w.Balance.String()
}

func tokenBalance(t *testing.T, chain *app.Chain, ticker string, addr tipjar.Address) string {
	t.Helper()
	res, err := chain.Query("/tokens/balance", token.BalanceKey(ticker, addr))
	require.NoError(t, err)
	if len(res) == 0 {
		return "0"
	}
	var b token.Balance
	require.NoError(t, json.Unmarshal(res[0].Value, &b))
	return b.Amount.String()
}

func settlementEvents(t *testing.T, chain *app.Chain) []paysplit.SettlementEvent {
	t.Helper()
	records, err := QueryEvents(chain, 0)
	require.NoError(t, err)
	var events []paysplit.SettlementEvent
	for _, r := range records {
		if r.Kind != paysplit.EventKind {
			continue
		}
		var ev paysplit.SettlementEvent
		require.NoError(t, json.Unmarshal(r.Payload, &ev))
		events = append(events, ev)
	}
	return events
}

func TestNativePaymentScenario(t *testing.T) {
	chain := newTestChain(t)
	alice := Account("alice").Address()
	bob := Account("bob").Address()

	s, err := ParseScenario([]byte(`
steps:
  - signer: alice
    contract: "@paysplit"
    deposit: "10000"
    path: paysplit/transfer_payment
    msg:
      receiver: "@bob"
`))
	require.NoError(t, err)

	report, err := RunScenario(chain, s)
	require.NoError(t, err)
	require.Len(t, report.Steps, 1)
	assert.Empty(t, report.Steps[0].Err)
	assert.Equal(t, int64(2), report.Height)

	assert.Equal(t, "990000", nativeBalance(t, chain, alice))
	assert.Equal(t, "1009500", nativeBalance(t, chain, bob))
	assert.Equal(t, "500", nativeBalance(t, chain, paysplit.ContractAddress()))

	require.Len(t, report.Events, 1)
	assert.Equal(t, paysplit.EventKind, report.Events[0].Kind)
	assert.Equal(t, int64(2), report.Events[0].Height)
	assert.JSONEq(t, fmt.Sprintf(`{
		"standard": "tipjar",
		"version": "1.0.0",
		"event": "transfer",
		"data": {
			"sender": %q,
			"receiver": %q,
			"burner": "none",
			"token": "NATIVE",
			"full_amount": "10000",
			"transferred_amount": "9500",
			"fee_amount": "500",
			"burn_amount": "0"
		}
	}`, bech(t, alice), bech(t, bob)), string(report.Events[0].Payload))
}

func TestTokenPayment(t *testing.T) {
	chain := newTestChain(t)
	alice := Account("alice").Address()
	bob := Account("bob").Address()
	carol := Account("carol").Address()
	contract := paysplit.ContractAddress()

	message := fmt.Sprintf(`{"receiver": %q, "burner": %q}`, bech(t, bob), bech(t, carol))
	s := &Scenario{Steps: []ScenarioStep{
		{
			Signer:   "alice",
			Contract: "@token:TIP",
			Path:     "token/transfer_call",
			Msg: map[string]interface{}{
				"dest":    "@paysplit",
				"amount":  "10000",
				"message": message,
			},
		},
	}}
	report, err := RunScenario(chain, s)
	require.NoError(t, err)
	assert.Empty(t, report.Steps[0].Err)

	assert.Equal(t, "990000", tokenBalance(t, chain, "TIP", alice))
	assert.Equal(t, "1009000", tokenBalance(t, chain, "TIP", bob))
	assert.Equal(t, "1000500", tokenBalance(t, chain, "TIP", carol))
	assert.Equal(t, "500", tokenBalance(t, chain, "TIP", contract))

	events := settlementEvents(t, chain)
	require.Len(t, events, 1)
	data := events[0].Data
	assert.Equal(t, bech(t, alice), data.Sender)
	assert.Equal(t, bech(t, bob), data.Receiver)
	assert.Equal(t, bech(t, carol), data.Burner)
	assert.Equal(t, "TIP", data.Token)
	assert.Equal(t, "10000", data.FullAmount.String())
	assert.Equal(t, "9000", data.TransferredAmount.String())
	assert.Equal(t, "500", data.FeeAmount.String())
	assert.Equal(t, "500", data.BurnAmount.String())
}

func TestMalformedRoutingIsRefunded(t *testing.T) {
	chain := newTestChain(t)
	alice := Account("alice").Address()

	s := &Scenario{Steps: []ScenarioStep{
		{
			Signer:   "alice",
			Contract: "@token:TIP",
			Path:     "token/transfer_call",
			Msg: map[string]interface{}{
				"dest":    "@paysplit",
				"amount":  "10000",
				"message": `{"burner": "nobody"}`,
			},
		},
	}}
	report, err := RunScenario(chain, s)
	require.NoError(t, err)
	assert.Empty(t, report.Steps[0].Err)

	// The notification failed, nothing was scheduled by the contract and
	// the ledger returned the whole amount.
	assert.Equal(t, "1000000", tokenBalance(t, chain, "TIP", alice))
	assert.Equal(t, "0", tokenBalance(t, chain, "TIP", paysplit.ContractAddress()))
	assert.Empty(t, settlementEvents(t, chain))
}

// A failure of the last transfer aborts the settlement, while the transfer
// that already happened stays in place.
func TestFailedLastTransfer(t *testing.T) {
	alice := Account("alice").Address()
	bob := Account("bob").Address()
	dave := Account("dave").Address()
	contract := paysplit.ContractAddress()

	// The burner holds so many tokens that receiving the burn share
	// overflows its balance.
	gen, err := GenerateGenesis(DefaultChainID, genesisTime, DefaultGenesisOptions())
	require.NoError(t, err)
	var tokens []token.GenesisToken
	require.NoError(t, json.Unmarshal(gen.AppState["token"], &tokens))
	daveHas, err := coin.MaxAmount().Sub(coin.NewAmount(100))
	require.NoError(t, err)
	tokens[0].Balances = append(tokens[0].Balances, token.GenesisBalance{Address: dave, Amount: daveHas})
	gen.AppState["token"], err = json.Marshal(tokens)
	require.NoError(t, err)
	chain := newTestChainFrom(t, gen)

	message := fmt.Sprintf(`{"receiver": %q, "burner": %q}`, bech(t, bob), bech(t, dave))
	_, err = NewWallet(chain).Deliver("alice", &app.Tx{
		Contract: token.LedgerAddress("TIP"),
		Msg:      &token.TransferCallMsg{Dest: contract, Amount: coin.NewAmount(10000), Message: message},
	})
	require.NoError(t, err)
	settle(t, chain)

	assert.Equal(t, "990000", tokenBalance(t, chain, "TIP", alice))
	assert.Equal(t, "1009000", tokenBalance(t, chain, "TIP", bob))
	assert.Equal(t, daveHas.String(), tokenBalance(t, chain, "TIP", dave))
	// Fee and the burn share that could not be delivered.
	assert.Equal(t, "1000", tokenBalance(t, chain, "TIP", contract))
	assert.Empty(t, settlementEvents(t, chain))

	// The contract chain was scheduled second.
	res, err := chain.Query("/promises/results?prefix", orm.EncodeSequence(2))
	require.NoError(t, err)
	require.Len(t, res, 3)
	var results []promise.TaskResult
	for _, m := range res {
		var r promise.TaskResult
		require.NoError(t, json.Unmarshal(m.Value, &r))
		results = append(results, r)
	}
	assert.True(t, results[0].Successful)
	assert.False(t, results[1].Successful)
	assert.Equal(t, "paysplit/finalize", results[2].Path)
	assert.False(t, results[2].Successful)
	assert.Contains(t, results[2].Info, "transfer failed")
}

// Only the token ledger can notify the contract and only the owner can
// administer it, no matter what a transaction claims.
func TestForgedAuthorizationIsRejected(t *testing.T) {
	chain := newTestChain(t)
	wallet := NewWallet(chain)
	bob := Account("bob").Address()
	carol := Account("carol").Address()
	contract := paysplit.ContractAddress()

	// Collect a token fee in the contract.
	_, err := wallet.Deliver("alice", &app.Tx{
		Contract: token.LedgerAddress("TIP"),
		Msg: &token.TransferCallMsg{
			Dest:    contract,
			Amount:  coin.NewAmount(10000),
			Message: fmt.Sprintf(`{"receiver": %q}`, bech(t, bob)),
		},
	})
	require.NoError(t, err)
	settle(t, chain)
	require.Equal(t, "500", tokenBalance(t, chain, "TIP", contract))

	notify := &paysplit.OnTokenTransferMsg{
		Sender:  carol,
		Amount:  coin.NewAmount(10000),
		Message: fmt.Sprintf(`{"receiver": %q}`, bech(t, carol)),
	}
	_, err = chain.Deliver(&app.Tx{Contract: contract, Msg: notify})
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %v", err)
	_, err = wallet.Deliver("carol", &app.Tx{Contract: contract, Msg: notify})
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %v", err)

	finalize := &paysplit.FinalizeMsg{
		Sender:      carol,
		Receiver:    carol,
		Asset:       "TIP",
		FullAmount:  coin.NewAmount(10000),
		Transferred: coin.NewAmount(9500),
		Fee:         coin.NewAmount(500),
	}
	_, err = wallet.Deliver("carol", &app.Tx{Contract: contract, Msg: finalize})
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %v", err)

	changeFee := func() *app.Tx {
		return &app.Tx{
			Contract: contract,
			Deposit:  coin.NewAmount(1),
			Msg:      &paysplit.ChangeFeeMsg{FeeNumerator: 9999},
		}
	}
	_, err = wallet.Deliver("carol", changeFee())
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %v", err)

	// The owner key presented with a signature made by another key.
	stolen := changeFee()
	seq, err := wallet.Sequence("carol")
	require.NoError(t, err)
	require.NoError(t, stolen.Sign(AccountKey("carol"), chain.ChainID(), seq))
	stolen.Signatures[0].Pubkey = AccountKey("owner").PublicKey()
	_, err = chain.Deliver(stolen)
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %v", err)

	settle(t, chain)
	assert.Equal(t, "500", tokenBalance(t, chain, "TIP", contract))
	assert.Equal(t, "1000000", tokenBalance(t, chain, "TIP", carol))
	assert.Equal(t, "1000000", nativeBalance(t, chain, carol))
	assert.Len(t, settlementEvents(t, chain), 1)

	res, err := chain.Query("/paysplit/fee", nil)
	require.NoError(t, err)
	require.Len(t, res, 1)
	var fee paysplit.FeeInfo
	require.NoError(t, json.Unmarshal(res[0].Value, &fee))
	assert.Equal(t, uint64(DefaultFee), fee.FeeNumerator)
}

func TestReplayedTransactionIsRejected(t *testing.T) {
	chain := newTestChain(t)
	bob := Account("bob").Address()

	tx := &app.Tx{
		Contract: paysplit.ContractAddress(),
		Deposit:  coin.NewAmount(10000),
		Msg:      &paysplit.TransferPaymentMsg{Receiver: bob},
	}
	_, err := NewWallet(chain).Deliver("alice", tx)
	require.NoError(t, err)
	raw, err := tx.Marshal()
	require.NoError(t, err)

	_, err = chain.Deliver(tx)
	assert.True(t, sigs.ErrInvalidSequence.Is(err), "unexpected error: %v", err)
	_, err = chain.DeliverTx(raw)
	assert.True(t, sigs.ErrInvalidSequence.Is(err), "unexpected error: %v", err)

	settle(t, chain)
	assert.Equal(t, "990000", nativeBalance(t, chain, Account("alice").Address()))
	assert.Equal(t, "1009500", nativeBalance(t, chain, bob))

	seq, err := NewWallet(chain).Sequence("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
}

func TestOwnerAdministration(t *testing.T) {
	chain := newTestChain(t)
	owner := Account("owner").Address()

	s, err := ParseScenario([]byte(`
steps:
  - signer: alice
    contract: "@paysplit"
    deposit: "1"
    path: paysplit/change_fee
    msg:
      fee_numerator: 100
  - signer: owner
    contract: "@paysplit"
    deposit: "1"
    path: paysplit/change_fee
    msg:
      fee_numerator: 100
  - signer: alice
    contract: "@paysplit"
    deposit: "20000"
    path: paysplit/transfer_payment
    msg:
      receiver: "@bob"
  - signer: owner
    contract: "@paysplit"
    deposit: "1"
    path: paysplit/withdraw_funds
    msg:
      amount: "200"
`))
	require.NoError(t, err)
	report, err := RunScenario(chain, s)
	require.NoError(t, err)
	require.Len(t, report.Steps, 4)
	assert.Contains(t, report.Steps[0].Err, "owner signature missing")
	assert.Empty(t, report.Steps[1].Err)
	assert.Empty(t, report.Steps[2].Err)
	assert.Empty(t, report.Steps[3].Err)

	res, err := chain.Query("/paysplit/fee", nil)
	require.NoError(t, err)
	require.Len(t, res, 1)
	var fee paysplit.FeeInfo
	require.NoError(t, json.Unmarshal(res[0].Value, &fee))
	assert.Equal(t, uint64(100), fee.FeeNumerator)

	// The owner paid two deposits of one unit and withdrew the whole fee.
	assert.Equal(t, "1000198", nativeBalance(t, chain, owner))
	// Two deposits of one unit remain with the contract.
	assert.Equal(t, "2", nativeBalance(t, chain, paysplit.ContractAddress()))
	assert.Equal(t, "1019800", nativeBalance(t, chain, Account("bob").Address()))
}

func TestChainInitializedOnce(t *testing.T) {
	chain := newTestChain(t)
	gen, err := GenerateGenesis(DefaultChainID, genesisTime, DefaultGenesisOptions())
	require.NoError(t, err)
	_, err = chain.InitChain(gen)
	assert.True(t, errors.ErrState.Is(err))
}

func TestGenesisRequiresContractConfiguration(t *testing.T) {
	chain, err := Application("tipjar", store.NewMemCommitStore(), log.NewNopLogger())
	require.NoError(t, err)
	gen, err := GenerateGenesis(DefaultChainID, genesisTime, DefaultGenesisOptions())
	require.NoError(t, err)
	delete(gen.AppState, "conf")
	_, err = chain.InitChain(gen)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestScenarioStepTx(t *testing.T) {
	step := ScenarioStep{
		Signer:   "alice",
		Contract: "@token:TIP",
		Path:     "token/transfer",
		Msg:      map[string]interface{}{"dest": "@bob", "amount": "5", "memo": "hi"},
	}
	tx, err := step.Tx()
	require.NoError(t, err)
	assert.Empty(t, tx.Signatures)
	assert.Equal(t, token.LedgerAddress("TIP"), tx.Contract)
	assert.Equal(t, &token.TransferMsg{Dest: Account("bob").Address(), Amount: coin.NewAmount(5), Memo: "hi"}, tx.Msg)

	_, err = ScenarioStep{Signer: "alice", Path: "paysplit/finalize"}.Tx()
	assert.True(t, errors.ErrInput.Is(err))

	_, err = ParseScenario([]byte(`steps: []`))
	assert.True(t, errors.ErrEmpty.Is(err))

	_, err = ParseScenario([]byte(`steps: [{signer: alice, unknown: 1}]`))
	assert.True(t, errors.ErrInput.Is(err))
}

func TestStructuredMessagePayload(t *testing.T) {
	s, err := ParseScenario([]byte(`
steps:
  - signer: alice
    contract: "@token:TIP"
    path: token/transfer_call
    msg:
      dest: "@paysplit"
      amount: "100"
      message:
        receiver: "@bob"
`))
	require.NoError(t, err)
	tx, err := s.Steps[0].Tx()
	require.NoError(t, err)
	msg, ok := tx.Msg.(*token.TransferCallMsg)
	require.True(t, ok)
	assert.Equal(t, paysplit.ContractAddress(), msg.Dest)

	routing, err := paysplit.ParseRouting(msg.Message)
	require.NoError(t, err)
	assert.Equal(t, Account("bob").Address(), routing.Receiver)
	assert.Nil(t, routing.Burner)
}
