/*
Package paysplit implements the fee splitting payment contract.

A payment is received either as a native deposit attached to a
TransferPaymentMsg or as a token transfer notified by a token ledger with
OnTokenTransferMsg. The gross amount is split into a recipient share, a fee
kept by the contract and optionally a burn share. The shares are forwarded
with scheduled calls and the last call of every chain is followed by a
FinalizeMsg continuation. The finalizer emits a SettlementEvent only if the
call preceding it succeeded.

The fee schedule is kept in the gconf store and can be changed only by the
contract owner.
*/
package paysplit
