/*
Package promise implements asynchronous call chains.

A chain is an ordered list of calls scheduled by an account. The first call
is executed at the beginning of the next block, every following call in the
block after its predecessor was resolved. Each call is authenticated with the
condition of the scheduling account and sees the outcome of the preceding
call through tipjar.CallResults. A failed call does not stop the chain, the
following call decides what to do with the failure.
*/
package promise
