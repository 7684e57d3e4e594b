/*
Package tipjar defines the interfaces used throughout the application, such
as: storage, messages, handlers, conditions and the execution context.

Every extension under x/ is built from these blocks. A message is routed to a
handler by its path, handlers are wrapped by decorators, and handlers that
need to continue their work later schedule calls that a Ticker resolves in a
following block.
*/
package tipjar
