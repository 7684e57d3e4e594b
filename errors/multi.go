package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If no errors or only nil values are given, nil is returned.
// If only a single non-nil error is given, it is returned as is.
func Append(errs ...error) error {
	var flat []error
	for _, err := range errs {
		if errIsNil(err) {
			continue
		}
		// Flatten so that nested multi errors do not create a tree.
		if m, ok := err.(*multiErr); ok {
			flat = append(flat, m.errs...)
			continue
		}
		flat = append(flat, err)
	}

	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	default:
		return &multiErr{errs: flat}
	}
}

// unpacker is implemented by errors that group more than one error.
type unpacker interface {
	Unpack() []error
}

type multiErr struct {
	errs []error
}

var _ unpacker = (*multiErr)(nil)

func (m *multiErr) Unpack() []error {
	return m.errs
}

func (m *multiErr) Error() string {
	points := make([]string, len(m.errs))
	for i, err := range m.errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(m.errs), strings.Join(points, "\n\t"))
}

// ABCICode returns the code of the first error, consistent with a fail-fast
// approach.
func (m *multiErr) ABCICode() uint32 {
	return abciCode(m.errs[0])
}
