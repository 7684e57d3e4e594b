package store

import (
	"encoding/binary"
	"hash"

	"github.com/iov-one/tipjar/errors"
	dbm "github.com/tendermint/tendermint/libs/db"
	"golang.org/x/crypto/blake2b"
)

// commitKey holds the version and the state digest of the last commit.
var commitKey = []byte("_commit:latest")

// CommitStore persists state in a tendermint database. Writes are collected
// in cache wraps and flushed atomically on Write, Commit bumps the version
// and folds all writes since the previous commit into the state digest.
type CommitStore struct {
	db      dbm.DB
	latest  CommitID
	changes hash.Hash
}

var _ CommitKVStore = (*CommitStore)(nil)

// NewCommitStore returns a store backed by given database. Call
// LoadLatestVersion before use to restore the last committed version.
func NewCommitStore(db dbm.DB) *CommitStore {
	return &CommitStore{
		db:      db,
		changes: newDigest(),
	}
}

// NewMemCommitStore returns a commit store backed by an in-memory database.
func NewMemCommitStore() *CommitStore {
	return NewCommitStore(dbm.NewMemDB())
}

// OpenLevelDB returns a commit store persisted with goleveldb in given
// directory, with the latest version loaded.
func OpenLevelDB(name, dir string) (*CommitStore, error) {
	db, err := openDB(name, dir)
	if err != nil {
		return nil, err
	}
	s := NewCommitStore(db)
	if err := s.LoadLatestVersion(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func openDB(name, dir string) (db dbm.DB, err error) {
	// goleveldb backend panics when the directory cannot be opened.
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(errors.ErrDatabase, "cannot open %s in %s: %v", name, dir, r)
		}
	}()
	return dbm.NewDB(name, dbm.GoLevelDBBackend, dir), nil
}

// Close releases the database.
func (s *CommitStore) Close() {
	s.db.Close()
}

// Get returns the value at last written state.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	return s.adapter().Get(key)
}

// CacheWrap returns a scratch pad that writes atomically to the database.
func (s *CommitStore) CacheWrap() KVCacheWrap {
	a := s.adapter()
	return NewBTreeCacheWrap(a, a.NewBatch(), nil)
}

// Commit marks all writes done so far as a new version.
func (s *CommitStore) Commit() (CommitID, error) {
	next := CommitID{
		Version: s.latest.Version + 1,
		Hash:    foldDigest(s.latest.Hash, s.changes.Sum(nil)),
	}
	raw := make([]byte, 8, 8+len(next.Hash))
	binary.BigEndian.PutUint64(raw, uint64(next.Version))
	raw = append(raw, next.Hash...)
	s.db.SetSync(commitKey, raw)

	s.latest = next
	s.changes = newDigest()
	return next, nil
}

// LoadLatestVersion loads the latest persisted version.
func (s *CommitStore) LoadLatestVersion() error {
	raw := s.db.Get(commitKey)
	if raw == nil {
		s.latest = CommitID{}
		return nil
	}
	if len(raw) < 8 {
		return errors.Wrap(errors.ErrDatabase, "corrupted commit info")
	}
	s.latest = CommitID{
		Version: int64(binary.BigEndian.Uint64(raw[:8])),
		Hash:    append([]byte(nil), raw[8:]...),
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk.
func (s *CommitStore) LatestVersion() (CommitID, error) {
	return s.latest, nil
}

func (s *CommitStore) adapter() *dbAdapter {
	return &dbAdapter{db: s.db, owner: s}
}

func newDigest() hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		// Only fails for keys longer than 64 bytes.
		panic(err)
	}
	return h
}

func foldDigest(prev, changes []byte) []byte {
	h := newDigest()
	h.Write(prev)
	h.Write(changes)
	return h.Sum(nil)
}

// dbAdapter exposes a tendermint database as a KVStore.
type dbAdapter struct {
	db    dbm.DB
	owner *CommitStore
}

var _ KVStore = (*dbAdapter)(nil)

func (a *dbAdapter) Get(key []byte) ([]byte, error) {
	return a.db.Get(key), nil
}

func (a *dbAdapter) Has(key []byte) (bool, error) {
	return a.db.Has(key), nil
}

func (a *dbAdapter) Set(key, value []byte) error {
	a.record(setKind, key, value)
	a.db.Set(key, value)
	return nil
}

func (a *dbAdapter) Delete(key []byte) error {
	a.record(delKind, key, nil)
	a.db.Delete(key)
	return nil
}

func (a *dbAdapter) Iterator(start, end []byte) (Iterator, error) {
	return &dbIterator{it: a.db.Iterator(start, end)}, nil
}

func (a *dbAdapter) ReverseIterator(start, end []byte) (Iterator, error) {
	return &dbIterator{it: a.db.ReverseIterator(start, end)}, nil
}

func (a *dbAdapter) NewBatch() Batch {
	return &dbBatch{adapter: a, b: a.db.NewBatch()}
}

func (a *dbAdapter) record(kind opKind, key, value []byte) {
	var head [9]byte
	head[0] = byte(kind)
	binary.BigEndian.PutUint32(head[1:5], uint32(len(key)))
	binary.BigEndian.PutUint32(head[5:9], uint32(len(value)))
	h := a.owner.changes
	h.Write(head[:])
	h.Write(key)
	h.Write(value)
}

// dbBatch writes all collected operations in a single atomic database
// batch.
type dbBatch struct {
	adapter *dbAdapter
	b       dbm.Batch
}

func (b *dbBatch) Set(key, value []byte) error {
	b.adapter.record(setKind, key, value)
	b.b.Set(key, value)
	return nil
}

func (b *dbBatch) Delete(key []byte) error {
	b.adapter.record(delKind, key, nil)
	b.b.Delete(key)
	return nil
}

func (b *dbBatch) Write() error {
	b.b.Write()
	return nil
}

// dbIterator adapts a tendermint iterator.
type dbIterator struct {
	it dbm.Iterator
}

func (i *dbIterator) Valid() bool {
	return i.it.Valid()
}

func (i *dbIterator) Next() error {
	if !i.it.Valid() {
		return errors.ErrIteratorDone
	}
	i.it.Next()
	return nil
}

func (i *dbIterator) Key() []byte {
	return i.it.Key()
}

func (i *dbIterator) Value() []byte {
	return i.it.Value()
}

func (i *dbIterator) Close() {
	i.it.Close()
}
