package store

import "github.com/iov-one/tipjar"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = tipjar.ReadOnlyKVStore
	SetDeleter       = tipjar.SetDeleter
	KVStore          = tipjar.KVStore
	Batch            = tipjar.Batch
	Iterator         = tipjar.Iterator
	CacheableKVStore = tipjar.CacheableKVStore
	KVCacheWrap      = tipjar.KVCacheWrap
	CommitKVStore    = tipjar.CommitKVStore
	CommitID         = tipjar.CommitID
	Model            = tipjar.Model
)
