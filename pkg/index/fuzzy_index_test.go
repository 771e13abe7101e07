package index

import (
	"sort"
	"testing"

	"github.com/lintang-b-s/tm-search/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestIndex(t *testing.T, dir string) *FuzzyIndex {
	fi, err := NewFuzzyIndex(dir, "test", zap.NewNop())
	require.NoError(t, err)
	return fi
}

func TestPostingKey(t *testing.T) {
	key := PostingKey(42, "1700000000001")
	fp, id, err := DecodePostingKey(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), fp)
	assert.Equal(t, "1700000000001", id)

	_, _, err = DecodePostingKey([]byte{1, 2})
	assert.Error(t, err)
}

func TestFuzzyIndexAddLookup(t *testing.T) {
	fi := newTestIndex(t, t.TempDir())
	defer fi.Close()

	require.NoError(t, fi.Add("en", 7, "b"))
	require.NoError(t, fi.Add("en", 7, "a"))
	require.NoError(t, fi.Add("en", 7, "a"))
	require.NoError(t, fi.Add("en", 8, "c"))
	require.NoError(t, fi.Add("fr", 7, "z"))

	t.Run("uncommitted postings are visible", func(t *testing.T) {
		ids, err := fi.Lookup("en", 7)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids)
	})

	require.NoError(t, fi.Commit())

	t.Run("range lookup only returns the exact fingerprint", func(t *testing.T) {
		ids, err := fi.Lookup("en", 8)
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, ids)

		ids, err = fi.Lookup("en", 9)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("languages are separate", func(t *testing.T) {
		ids, err := fi.Lookup("fr", 7)
		require.NoError(t, err)
		assert.Equal(t, []string{"z"}, ids)

		ids, err = fi.Lookup("de", 7)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	langs := fi.Languages()
	sort.Strings(langs)
	assert.Equal(t, []string{"en", "fr"}, langs)
}

func TestFuzzyIndexRollback(t *testing.T) {
	fi := newTestIndex(t, t.TempDir())
	defer fi.Close()

	require.NoError(t, fi.AddAll("en", []uint64{1, 2}, "kept"))
	require.NoError(t, fi.Commit())
	require.NoError(t, fi.AddAll("en", []uint64{1, 3}, "dropped"))
	require.NoError(t, fi.Rollback())

	ids, err := fi.Lookup("en", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, ids)

	ids, err = fi.Lookup("en", 3)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFuzzyIndexPersistence(t *testing.T) {
	dir := t.TempDir()
	fi := newTestIndex(t, dir)
	require.NoError(t, fi.AddAll("en", []uint64{10, 11}, "unit-1"))
	require.NoError(t, fi.Close())
	require.NoError(t, fi.Close())

	_, err := fi.Lookup("en", 10)
	assert.ErrorIs(t, err, util.ErrClosed)

	reopened := newTestIndex(t, dir)
	defer reopened.Close()
	ids, err := reopened.Lookup("en", 11)
	require.NoError(t, err)
	assert.Equal(t, []string{"unit-1"}, ids)
}
