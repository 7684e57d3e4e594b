/*
Package x contains helpers shared by all extensions and the extensions
themselves, each one in its own subpackage.

An extension never reads authentication data from the context directly. It
accepts an Authenticator in its constructor so that the application decides
which sources of authentication (transaction signer, scheduled call caller)
are trusted.
*/
package x
