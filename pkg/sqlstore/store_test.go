package sqlstore

import (
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/tm-search/pkg/datastructure"
	"github.com/lintang-b-s/tm-search/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func forEachDriver(t *testing.T, fn func(t *testing.T, driver Driver)) {
	for _, driver := range []Driver{DriverSQLite, DriverSQLite3} {
		t.Run(driver.Name, func(t *testing.T) {
			fn(t, driver)
		})
	}
}

func openTestStore(t *testing.T, driver Driver, path string) *Store {
	s, err := Open(driver, path, "test", zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestPutGetVariant(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver Driver) {
		s := openTestStore(t, driver, filepath.Join(t.TempDir(), "tm.db"))
		defer s.Close()

		require.NoError(t, s.PutVariant(datastructure.NewVariant("1", "en", "<b>Hello</b> world", "Hello world")))
		require.NoError(t, s.PutVariant(datastructure.NewVariant("1", "fr", "Bonjour le monde", "Bonjour le monde")))

		v, err := s.GetVariant("1", "en")
		require.NoError(t, err)
		assert.Equal(t, "Hello world", v.PureText)
		assert.Equal(t, "<b>Hello</b> world", v.Segment)
		assert.Equal(t, 11, v.TextLength)

		t.Run("re-store replaces the variant", func(t *testing.T) {
			require.NoError(t, s.PutVariant(datastructure.NewVariant("1", "en", "Hi", "Hi")))
			v, err := s.GetVariant("1", "en")
			require.NoError(t, err)
			assert.Equal(t, "Hi", v.PureText)
			assert.Equal(t, 2, v.TextLength)

			variants, err := s.GetVariants("1")
			require.NoError(t, err)
			assert.Len(t, variants, 2)
		})

		t.Run("missing variant is not found", func(t *testing.T) {
			_, err := s.GetVariant("1", "de")
			assert.ErrorIs(t, err, util.ErrNotFound)
			_, err = s.GetVariant("2", "en")
			assert.ErrorIs(t, err, util.ErrNotFound)
		})

		t.Run("delete removes every language", func(t *testing.T) {
			require.NoError(t, s.DeleteVariants("1"))
			variants, err := s.GetVariants("1")
			require.NoError(t, err)
			assert.Empty(t, variants)
		})
	})
}

func TestLanguagesAndScan(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver Driver) {
		s := openTestStore(t, driver, filepath.Join(t.TempDir(), "tm.db"))
		defer s.Close()

		for _, id := range []string{"3", "1", "2"} {
			require.NoError(t, s.PutVariant(datastructure.NewVariant(id, "en", "text "+id, "text "+id)))
		}
		require.NoError(t, s.PutVariant(datastructure.NewVariant("1", "fr", "texte", "texte")))

		langs, err := s.Languages()
		require.NoError(t, err)
		assert.Equal(t, []string{"en", "fr"}, langs)

		tests := []struct {
			name  string
			limit int
			want  []string
		}{
			{name: "full scan keeps insertion order", limit: 10, want: []string{"3", "1", "2"}},
			{name: "stops when fn returns false", limit: 2, want: []string{"3", "1"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got := []string{}
				err := s.ScanLanguage("en", func(v datastructure.Variant) bool {
					got = append(got, v.UnitID)
					return len(got) < tt.limit
				})
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		}
	})
}

func TestReopenAndClose(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver Driver) {
		path := filepath.Join(t.TempDir(), "tm.db")
		s := openTestStore(t, driver, path)
		require.NoError(t, s.PutVariant(datastructure.NewVariant("1", "en", "kept", "kept")))
		require.NoError(t, s.Close())
		require.NoError(t, s.Close())

		_, err := s.GetVariant("1", "en")
		assert.ErrorIs(t, err, util.ErrClosed)

		reopened := openTestStore(t, driver, path)
		defer reopened.Close()
		v, err := reopened.GetVariant("1", "en")
		require.NoError(t, err)
		assert.Equal(t, "kept", v.PureText)
	})
}

func TestOpenBadPath(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver Driver) {
		_, err := Open(driver, filepath.Join(t.TempDir(), "missing", "dir", "tm.db"), "broken", zap.NewNop())
		assert.ErrorIs(t, err, util.ErrStorageCorruption)
		assert.Contains(t, err.Error(), "broken")
	})
}
