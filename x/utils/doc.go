// Package utils contains decorators that every application stack uses:
// panic recovery, invocation logging and result tagging.
package utils
