/*
Package coin implements the value type used by all ledgers.

An Amount is an unsigned 128 bit quantity expressed in the smallest unit of
an asset. All arithmetic is checked: a result that does not fit in 128 bits
fails with errors.ErrOverflow instead of wrapping. Multiplication uses a 256
bit intermediate so that scaling by a fraction never overflows for valid
inputs.

Amounts serialize as decimal strings both in JSON and in the binary codec so
that values above 2^53 survive JavaScript clients.
*/
package coin
