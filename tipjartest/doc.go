// Package tipjartest provides test doubles and helpers for writing tests of
// the tipjar extensions.
package tipjartest
