/*
Package errors implements the coded error set used by all tipjar extensions.

The idea is to reuse as many root errors from this package as possible and
define custom package errors only when absolutely necessary. Every error
returned by a handler should wrap one of the registered root errors so that
the host can categorize it and expose a stable code to the caller.

If you want to register a custom error use Register(code, description).
For reusing errors use ErrXyz.New and ErrXyz.Newf or Wrap(ErrXyz, "...").

Stacktraces are attached at the innermost wrap. Once you have an error, use
fmt formatting to get more context:
	%s is just the error message
	%+v is the full stack trace
*/
package errors
