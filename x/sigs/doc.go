/*
Package sigs provides the authentication middleware that verifies
transaction signatures.

Every signature carries the public key of the signer and a sequence number.
The sequence of each signer is stored and must grow by one with every
accepted transaction, so a signed transaction cannot be replayed. The
conditions of all valid signatures are exposed to the handlers through the
Authenticate implementation.
*/
package sigs
