package sigs

import "github.com/iov-one/tipjar/errors"

// ErrInvalidSequence is returned when a signature sequence does not match the
// stored sequence of the signer.
var ErrInvalidSequence = errors.Register(120, "invalid sequence number")
