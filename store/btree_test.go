package store

import (
	"testing"

	"github.com/iov-one/tipjar/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertGetHas(t testing.TB, kv ReadOnlyKVStore, key, want []byte) {
	t.Helper()
	got, err := kv.Get(key)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	has, err := kv.Has(key)
	require.NoError(t, err)
	assert.Equal(t, want != nil, has)
}

func TestBTreeCacheGetSet(t *testing.T) {
	base := MemStore()

	k, v := []byte("french"), []byte("fry")
	assertGetHas(t, base, k, nil)
	require.NoError(t, base.Set(k, v))
	assertGetHas(t, base, k, v)

	// writing to a cache is only visible in the cache
	cache := base.CacheWrap()
	assertGetHas(t, cache, k, v)
	k2, v2 := []byte("LA"), []byte("Dodgers")
	require.NoError(t, cache.Set(k2, v2))
	assertGetHas(t, cache, k2, v2)
	assertGetHas(t, base, k2, nil)

	require.NoError(t, cache.Write())
	assertGetHas(t, base, k2, v2)

	// a discarded cache leaves no trace
	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	require.NoError(t, c2.Set(k3, v3))
	c2.Discard()
	assertGetHas(t, base, k3, nil)

	// deletes propagate on write
	c3 := base.CacheWrap()
	require.NoError(t, c3.Delete(k))
	assertGetHas(t, c3, k, nil)
	assertGetHas(t, base, k, v)
	require.NoError(t, c3.Write())
	assertGetHas(t, base, k, nil)
	assertGetHas(t, base, k2, v2)
}

func TestBTreeCacheConflicts(t *testing.T) {
	parent := MemStore().CacheWrap()
	require.NoError(t, parent.Set([]byte("a"), []byte("1")))
	require.NoError(t, parent.Set([]byte("b"), []byte("2")))

	child := parent.CacheWrap()
	require.NoError(t, child.Set([]byte("a"), []byte("11")))
	require.NoError(t, child.Set([]byte("c"), []byte("7")))
	require.NoError(t, child.Delete([]byte("b")))

	assertGetHas(t, parent, []byte("a"), []byte("1"))
	assertGetHas(t, parent, []byte("b"), []byte("2"))
	assertGetHas(t, parent, []byte("c"), nil)

	assertGetHas(t, child, []byte("a"), []byte("11"))
	assertGetHas(t, child, []byte("b"), nil)
	assertGetHas(t, child, []byte("c"), []byte("7"))

	require.NoError(t, child.Write())
	assertGetHas(t, parent, []byte("a"), []byte("11"))
	assertGetHas(t, parent, []byte("b"), nil)
	assertGetHas(t, parent, []byte("c"), []byte("7"))
}

func collect(t testing.TB, it Iterator) []Model {
	t.Helper()
	defer it.Close()
	var res []Model
	for it.Valid() {
		res = append(res, pair(string(it.Key()), string(it.Value())))
		require.NoError(t, it.Next())
	}
	assert.True(t, errors.ErrIteratorDone.Is(it.Next()))
	return res
}

func pair(k, v string) Model {
	return Model{Key: []byte(k), Value: []byte(v)}
}

func TestBTreeCacheIterator(t *testing.T) {
	base := MemStore()
	for _, m := range []Model{pair("a", "1"), pair("b", "2"), pair("d", "4"), pair("f", "6")} {
		require.NoError(t, base.Set(m.Key, m.Value))
	}
	cache := base.CacheWrap()
	require.NoError(t, cache.Set([]byte("c"), []byte("3")))
	require.NoError(t, cache.Set([]byte("d"), []byte("44")))
	require.NoError(t, cache.Delete([]byte("b")))
	require.NoError(t, cache.Delete([]byte("f")))
	require.NoError(t, cache.Set([]byte("g"), []byte("7")))

	cases := map[string]struct {
		reverse    bool
		start, end []byte
		want       []Model
	}{
		"all ascending": {
			want: []Model{pair("a", "1"), pair("c", "3"), pair("d", "44"), pair("g", "7")},
		},
		"all descending": {
			reverse: true,
			want:    []Model{pair("g", "7"), pair("d", "44"), pair("c", "3"), pair("a", "1")},
		},
		"bounded ascending": {
			start: []byte("b"),
			end:   []byte("g"),
			want:  []Model{pair("c", "3"), pair("d", "44")},
		},
		"bounded descending": {
			reverse: true,
			start:   []byte("a"),
			end:     []byte("d"),
			want:    []Model{pair("c", "3"), pair("a", "1")},
		},
		"only deleted in range": {
			start: []byte("e"),
			end:   []byte("g"),
			want:  nil,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var (
				it  Iterator
				err error
			)
			if tc.reverse {
				it, err = cache.ReverseIterator(tc.start, tc.end)
			} else {
				it, err = cache.Iterator(tc.start, tc.end)
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, collect(t, it))
		})
	}
}

func TestSliceIterator(t *testing.T) {
	models := []Model{pair("a", "1"), pair("b", "2")}
	assert.Equal(t, models, collect(t, NewSliceIterator(models)))

	trash := NewSliceIterator(models)
	assert.True(t, trash.Valid())
	trash.Close()
	assert.False(t, trash.Valid())
}
