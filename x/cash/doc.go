/*
Package cash implements the native ledger.

Every account holds a single balance of the native asset. Coins move between
accounts with SendMsg, or are attached to a call as a deposit. The deposit
is moved from the signer to the called account by the DepositDecorator
before the handler runs, and the handler can read the attached amount with
tipjar.GetDeposit.
*/
package cash
