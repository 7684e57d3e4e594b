package orm

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"

	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/codec"
	"github.com/iov-one/tipjar/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,16}$`).MatchString

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	Validate() error
}

// ModelBucket stores models of a single type under a common key prefix.
type ModelBucket struct {
	name   string
	prefix []byte
	model  reflect.Type
	seq    Sequence
}

var _ tipjar.QueryHandler = (*ModelBucket)(nil)

// NewModelBucket returns a bucket storing models of the same type as given
// example, which must be a pointer to a struct.
func NewModelBucket(name string, example Model) *ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("illegal bucket: %s", name))
	}
	tp := reflect.TypeOf(example)
	if tp.Kind() != reflect.Ptr {
		panic(fmt.Sprintf("model must be a pointer, got %T", example))
	}
	return &ModelBucket{
		name:   name,
		prefix: append([]byte(name), ':'),
		model:  tp.Elem(),
		seq:    NewSequence(name, "id"),
	}
}

// Name returns the bucket name.
func (b *ModelBucket) Name() string {
	return b.name
}

// DBKey is the full key we store in the db, including prefix. A new slice
// is always allocated so that consecutive calls do not share memory.
func (b *ModelBucket) DBKey(key []byte) []byte {
	out := make([]byte, len(b.prefix)+len(key))
	copy(out, b.prefix)
	copy(out[len(b.prefix):], key)
	return out
}

// One query the database for a single model instance. Result is loaded into
// given destination model. ErrNotFound is returned if the entity does not
// exist, ErrType if given model type cannot hold the stored entity.
func (b *ModelBucket) One(db tipjar.ReadOnlyKVStore, key []byte, dest Model) error {
	if err := b.checkType(dest); err != nil {
		return err
	}
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "db get")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", b.name, key)
	}
	if err := codec.Unmarshal(raw, dest); err != nil {
		return errors.Wrapf(err, "%s %X", b.name, key)
	}
	return nil
}

// Has returns nil if an entity with given key exists, ErrNotFound
// otherwise.
func (b *ModelBucket) Has(db tipjar.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "db has")
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", b.name, key)
	}
	return nil
}

// Put validates and saves given model. If key is nil, the next value of the
// bucket sequence is used. The key under which the model was stored is
// returned.
func (b *ModelBucket) Put(db tipjar.KVStore, key []byte, m Model) ([]byte, error) {
	if err := b.checkType(m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}
	if key == nil {
		next, err := b.seq.NextVal(db)
		if err != nil {
			return nil, errors.Wrap(err, "sequence")
		}
		key = next
	}
	raw, err := codec.Marshal(m)
	if err != nil {
		return nil, err
	}
	if err := db.Set(b.DBKey(key), raw); err != nil {
		return nil, errors.Wrap(err, "db set")
	}
	return key, nil
}

// Delete removes an entity with given primary key from the database. It
// returns ErrNotFound if an entity with given key does not exist.
func (b *ModelBucket) Delete(db tipjar.KVStore, key []byte) error {
	if err := b.Has(db, key); err != nil {
		return err
	}
	if err := db.Delete(b.DBKey(key)); err != nil {
		return errors.Wrap(err, "db delete")
	}
	return nil
}

// PrefixScan returns an iterator over all models which key starts with
// given prefix. A nil prefix iterates the whole bucket.
func (b *ModelBucket) PrefixScan(db tipjar.ReadOnlyKVStore, prefix []byte, reverse bool) (*ModelIterator, error) {
	start, end := prefixRange(b.DBKey(prefix))
	var (
		it  tipjar.Iterator
		err error
	)
	if reverse {
		it, err = db.ReverseIterator(start, end)
	} else {
		it, err = db.Iterator(start, end)
	}
	if err != nil {
		return nil, errors.Wrap(err, "db iterator")
	}
	return &ModelIterator{it: it, prefix: len(b.prefix)}, nil
}

// Register exposes the bucket content under given query path, defaulting
// to "/<bucket name>".
func (b *ModelBucket) Register(path string, r tipjar.QueryRouter) {
	if path == "" {
		path = "/" + b.name
	}
	r.Register(path, b)
}

// Query returns models encoded as JSON. The key modifier returns a single
// model, the prefix modifier all models with a key starting with data.
func (b *ModelBucket) Query(db tipjar.ReadOnlyKVStore, mod string, data []byte) ([]tipjar.Model, error) {
	switch mod {
	case tipjar.KeyQueryMod:
		dest := b.newModel()
		switch err := b.One(db, data, dest); {
		case errors.ErrNotFound.Is(err):
			return nil, nil
		case err != nil:
			return nil, err
		}
		raw, err := json.Marshal(dest)
		if err != nil {
			return nil, errors.Wrap(errors.ErrModel, err.Error())
		}
		return []tipjar.Model{tipjar.Pair(data, raw)}, nil
	case tipjar.PrefixQueryMod:
		it, err := b.PrefixScan(db, data, false)
		if err != nil {
			return nil, err
		}
		defer it.Close()
		var res []tipjar.Model
		for {
			dest := b.newModel()
			key, err := it.LoadNext(dest)
			if errors.ErrIteratorDone.Is(err) {
				return res, nil
			}
			if err != nil {
				return nil, err
			}
			raw, err := json.Marshal(dest)
			if err != nil {
				return nil, errors.Wrap(errors.ErrModel, err.Error())
			}
			res = append(res, tipjar.Pair(key, raw))
		}
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query modifier %q", mod)
	}
}

func (b *ModelBucket) newModel() Model {
	return reflect.New(b.model).Interface().(Model)
}

func (b *ModelBucket) checkType(m Model) error {
	if reflect.TypeOf(m) != reflect.PtrTo(b.model) {
		return errors.Wrapf(errors.ErrType, "%T cannot be stored in %s bucket", m, b.name)
	}
	return nil
}

// prefixRange turns a prefix into a start/end range. The end is nil when
// the prefix consists of 0xFF bytes only.
func prefixRange(prefix []byte) ([]byte, []byte) {
	start := append([]byte(nil), prefix...)
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xFF {
			end[i]++
			return start, end[:i+1]
		}
	}
	return start, nil
}

// ModelIterator loads models from a bucket scan.
type ModelIterator struct {
	it     tipjar.Iterator
	prefix int
}

// LoadNext loads the next model into dest and returns its key, without the
// bucket prefix. ErrIteratorDone is returned when there are no more models.
func (m *ModelIterator) LoadNext(dest Model) ([]byte, error) {
	if !m.it.Valid() {
		return nil, errors.ErrIteratorDone
	}
	key := append([]byte(nil), m.it.Key()[m.prefix:]...)
	if err := codec.Unmarshal(m.it.Value(), dest); err != nil {
		return nil, errors.Wrapf(err, "key %X", key)
	}
	if err := m.it.Next(); err != nil {
		return nil, errors.Wrap(err, "next")
	}
	return key, nil
}

// Close releases the underlying iterator.
func (m *ModelIterator) Close() {
	m.it.Close()
}
