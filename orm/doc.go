/*
Package orm provides an easy to use db wrapper.

Break state space into prefixed sections called buckets. Each bucket
contains only one type of model, serialized with the shared codec, and may
own sequences to generate keys.
*/
package orm
