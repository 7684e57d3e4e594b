/*
Package token implements a fungible token ledger.

Every token registered at genesis is a separate account. Its address is
derived from the "token/ledger/<ticker>" condition, and messages addressed to
that account operate on the balances of that token. The account calling the
ledger pays for a transfer.

TransferCallMsg moves the tokens and notifies the receiver with a message
built by the NotifyFunc given to the handler. The value returned by the
receiver is the amount it did not use, which is refunded to the sender by
ResolveTransferMsg in the following block.
*/
package token
