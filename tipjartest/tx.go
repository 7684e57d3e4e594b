package tipjartest

import (
	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/coin"
)

// Tx is a transaction mock. It implements all optional transaction
// interfaces.
type Tx struct {
	Msg      tipjar.Msg
	Contract tipjar.Address
	Deposit  coin.Amount
	// Err if set is returned by GetMsg.
	Err error
}

var (
	_ tipjar.DepositTx  = (*Tx)(nil)
	_ tipjar.ContractTx = (*Tx)(nil)
)

func (tx *Tx) GetMsg() (tipjar.Msg, error) { return tx.Msg, tx.Err }
func (tx *Tx) GetContract() tipjar.Address { return tx.Contract }
func (tx *Tx) GetDeposit() coin.Amount     { return tx.Deposit }

// Msg is a message mock.
type Msg struct {
	// RoutePath returned by the path method, consumed by the router.
	RoutePath string
	// Err if set is returned by Validate.
	Err error
}

var _ tipjar.Msg = (*Msg)(nil)

func (m *Msg) Path() string    { return m.RoutePath }
func (m *Msg) Validate() error { return m.Err }
