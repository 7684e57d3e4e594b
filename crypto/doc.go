/*
Package crypto provides the ed25519 keys used to sign transactions.

A public key is turned into a condition with the "sigs" extension, which is
the only way an account controlled by a user can be authenticated. Contract
and ledger accounts use conditions of their own extensions and therefore can
never be produced by a signature.
*/
package crypto
