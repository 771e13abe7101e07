package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lintang-b-s/tm-search/pkg/datastructure"
	"github.com/lintang-b-s/tm-search/pkg/sqlstore"
	"github.com/lintang-b-s/tm-search/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func forEachDriver(t *testing.T, fn func(t *testing.T, driver sqlstore.Driver)) {
	for _, driver := range []sqlstore.Driver{sqlstore.DriverSQLite, sqlstore.DriverSQLite3} {
		t.Run(driver.Name, func(t *testing.T) {
			fn(t, driver)
		})
	}
}

func newTestEngine(t *testing.T, driver sqlstore.Driver, workdir string) *LocalEngine {
	e, err := NewLocalEngine(LocalConfig{
		Driver:         driver,
		WorkDir:        workdir,
		Memory:         "mem",
		CommitInterval: 2,
		User:           "tester",
	}, zap.NewNop())
	require.NoError(t, err)
	return e
}

func unit(id string, texts map[string]string) *datastructure.TranslationUnit {
	tu := datastructure.NewTranslationUnit(id)
	for lang, text := range texts {
		tu.AddVariant(datastructure.Variant{Lang: lang, PureText: text})
	}
	return tu
}

func TestStoreAndSearch(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver sqlstore.Driver) {
		e := newTestEngine(t, driver, t.TempDir())
		defer e.Close()

		id, err := e.StoreUnit(unit("", map[string]string{"en": "The printer is out of paper", "fr": "L'imprimante n'a plus de papier"}))
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		t.Run("exact search scores 100", func(t *testing.T) {
			matches, err := e.SearchTranslation("The printer is out of paper", "en", "fr", 100, true)
			require.NoError(t, err)
			require.Len(t, matches, 1)
			assert.Equal(t, 100, matches[0].Similarity)
			assert.Equal(t, id, matches[0].Source.UnitID)
			assert.Equal(t, "L'imprimante n'a plus de papier", matches[0].Target.PureText)
			assert.Equal(t, "mem", matches[0].Origin)
		})

		t.Run("language codes are normalized", func(t *testing.T) {
			matches, err := e.SearchTranslation("The printer is out of paper", "EN", "FR", 100, true)
			require.NoError(t, err)
			assert.Len(t, matches, 1)
		})

		t.Run("fuzzy search", func(t *testing.T) {
			matches, err := e.SearchTranslation("The printer is out of toner", "en", "fr", 70, true)
			require.NoError(t, err)
			require.Len(t, matches, 1)
			assert.Less(t, matches[0].Similarity, 100)
		})

		t.Run("languages contain only stored ones", func(t *testing.T) {
			langs, err := e.GetAllLanguages()
			require.NoError(t, err)
			assert.Equal(t, []string{"en", "fr"}, langs)
			assert.NotContains(t, langs, "de")
		})
	})
}

func TestStoreUnitContract(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver sqlstore.Driver) {
		e := newTestEngine(t, driver, t.TempDir())
		defer e.Close()
		created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		e.now = func() time.Time { return created }

		first := unit("42", map[string]string{"en": "Hello", "fr": "Bonjour", "de": "   "})
		first.SetProperty("domain", "greeting")
		first.AddNote("first")
		_, err := e.StoreUnit(first)
		require.NoError(t, err)

		tu, err := e.GetUnit("42")
		require.NoError(t, err)
		assert.Equal(t, []string{"en", "fr"}, tu.Languages)
		assert.Len(t, tu.Variants, 2)
		assert.Equal(t, "20240102T030405Z", tu.Property(datastructure.PROP_CREATION_DATE))
		assert.Equal(t, "tester", tu.Property(datastructure.PROP_CREATION_ID))
		assert.False(t, tu.HasProperty(datastructure.PROP_CHANGE_DATE))
		assert.Equal(t, "Hello", tu.Variants["en"].Segment)

		e.now = func() time.Time { return created.Add(time.Hour) }
		second := unit("42", map[string]string{"en": "Hello there", "es": "Hola"})
		second.SetProperty("domain", "chat")
		second.SetProperty(datastructure.PROP_CREATION_DATE, "19990101T000000Z")
		second.AddNote("second")
		second.AddNote("first")
		_, err = e.StoreUnit(second)
		require.NoError(t, err)

		tu, err = e.GetUnit("42")
		require.NoError(t, err)
		assert.Equal(t, []string{"en", "es", "fr"}, tu.Languages)
		assert.Equal(t, "Hello there", tu.Variants["en"].PureText)
		assert.Equal(t, 11, tu.Variants["en"].TextLength)
		assert.Equal(t, "Bonjour", tu.Variants["fr"].PureText)
		assert.Equal(t, "chat", tu.Property("domain"))
		assert.Equal(t, "20240102T030405Z", tu.Property(datastructure.PROP_CREATION_DATE))
		assert.Equal(t, "20240102T040405Z", tu.Property(datastructure.PROP_CHANGE_DATE))
		assert.Equal(t, "tester", tu.Property(datastructure.PROP_CHANGE_ID))
		assert.Equal(t, []string{"first", "second"}, tu.Notes)

		t.Run("re-stored variant is re-indexed", func(t *testing.T) {
			matches, err := e.SearchTranslation("Hello there", "en", "es", 100, true)
			require.NoError(t, err)
			require.Len(t, matches, 1)
			assert.Equal(t, "Hola", matches[0].Target.PureText)
		})

		t.Run("generated ids are unique", func(t *testing.T) {
			a, err := e.StoreUnit(unit("", map[string]string{"en": "one"}))
			require.NoError(t, err)
			b, err := e.StoreUnit(unit("", map[string]string{"en": "two"}))
			require.NoError(t, err)
			assert.NotEqual(t, a, b)
		})
	})
}

func TestRemoveUnit(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver sqlstore.Driver) {
		e := newTestEngine(t, driver, t.TempDir())
		defer e.Close()

		_, err := e.StoreUnit(unit("1", map[string]string{"en": "Restart the computer", "fr": "Redémarrez l'ordinateur"}))
		require.NoError(t, err)
		_, err = e.StoreUnit(unit("2", map[string]string{"en": "Restart the computer now"}))
		require.NoError(t, err)

		require.NoError(t, e.RemoveUnit("1"))
		require.NoError(t, e.RemoveUnit("does-not-exist"))

		_, err = e.GetUnit("1")
		assert.ErrorIs(t, err, util.ErrNotFound)

		units, err := e.SearchAll("Restart the computer", "en", 60, true)
		require.NoError(t, err)
		require.Len(t, units, 1)
		assert.Equal(t, "2", units[0].ID)
	})
}

func TestConcordanceAndBatch(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver sqlstore.Driver) {
		e := newTestEngine(t, driver, t.TempDir())
		defer e.Close()

		texts := []string{"Open the File menu", "Close the file", "Save all files", "Print preview"}
		for i, text := range texts {
			_, err := e.StoreUnit(unit(string(rune('a'+i)), map[string]string{"en": text, "fr": "fr " + text}))
			require.NoError(t, err)
		}

		units, err := e.ConcordanceSearch("file", "en", 10, false, true)
		require.NoError(t, err)
		ids := []string{}
		for _, tu := range units {
			ids = append(ids, tu.ID)
		}
		assert.Equal(t, []string{"b", "c"}, ids)

		units, err = e.ConcordanceSearch("FILE", "en", 2, false, false)
		require.NoError(t, err)
		assert.Len(t, units, 2)

		segments := []datastructure.Segment{
			{ID: "1", SrcLang: "en", TgtLang: "fr", Text: "Print preview"},
			{ID: "2", SrcLang: "en", TgtLang: "fr", Text: "zzz"},
			{ID: "3", SrcLang: "en", TgtLang: "fr", Text: "Close the file"},
		}
		out, err := e.BatchTranslate(segments)
		require.NoError(t, err)
		require.Len(t, out, 3)
		assert.Equal(t, "1", out[0].ID)
		assert.Equal(t, "fr Print preview", out[0].Matches[0].Target.PureText)
		assert.Empty(t, out[1].Matches)
		assert.Equal(t, "fr Close the file", out[2].Matches[0].Target.PureText)
	})
}

const importTMX = `<?xml version="1.0" encoding="UTF-8"?>
<tmx version="1.4">
  <header srclang="en"/>
  <body>
    <tu tuid="t1"><prop type="x-subject">ui</prop>
      <tuv xml:lang="en"><seg>Cancel</seg></tuv><tuv xml:lang="fr"><seg>Annuler</seg></tuv><tuv xml:lang="de"><seg>Abbrechen</seg></tuv>
    </tu>
    <tu tuid="t2">
      <tuv xml:lang="en"><seg>Delete <ph x="1">%s</ph></seg></tuv><tuv xml:lang="de"><seg>Löschen <ph x="1">%s</ph></seg></tuv>
    </tu>
    <tu tuid="t3">
      <tuv xml:lang="en"><seg>Only English</seg></tuv>
    </tu>
  </body>
</tmx>`

func TestImportExport(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver sqlstore.Driver) {
		dir := t.TempDir()
		e := newTestEngine(t, driver, dir)
		defer e.Close()

		in := filepath.Join(dir, "in.tmx")
		require.NoError(t, os.WriteFile(in, []byte(importTMX), 0600))

		progress := []int{}
		count, err := e.ImportTMX(in, ImportOptions{Project: "p1", Customer: "acme", Subject: "legal",
			Progress: func(n int) { progress = append(progress, n) }})
		require.NoError(t, err)
		assert.Equal(t, 3, count)
		assert.Equal(t, []int{2, 3}, progress)

		tu, err := e.GetUnit("t2")
		require.NoError(t, err)
		assert.Equal(t, "Delete ", tu.Variants["en"].PureText)
		assert.Contains(t, tu.Variants["en"].Segment, "<ph")

		projects, err := e.GetAllProjects()
		require.NoError(t, err)
		assert.Equal(t, []string{"p1"}, projects)
		clients, err := e.GetAllClients()
		require.NoError(t, err)
		assert.Equal(t, []string{"acme"}, clients)
		subjects, err := e.GetAllSubjects()
		require.NoError(t, err)
		assert.Equal(t, []string{"legal", "ui"}, subjects)

		t.Run("stored unit outside an import gets no context", func(t *testing.T) {
			_, err := e.StoreUnit(unit("plain", map[string]string{"en": "x"}))
			require.NoError(t, err)
			tu, err := e.GetUnit("plain")
			require.NoError(t, err)
			assert.False(t, tu.HasProperty(datastructure.PROP_PROJECT))
		})

		out := filepath.Join(dir, "out.tmx")
		require.NoError(t, e.ExportTMX(out, []string{"fr"}, "en"))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		doc := string(data)
		assert.Contains(t, doc, `srclang="en"`)
		assert.Contains(t, doc, `tuid="t1"`)
		assert.NotContains(t, doc, `tuid="t2"`)
		assert.NotContains(t, doc, `tuid="t3"`)
		assert.NotContains(t, doc, "Abbrechen")
		assert.Equal(t, 1, strings.Count(doc, "<tu "))

		require.NoError(t, e.ExportTMX(out, nil, "en"))
		data, err = os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(string(data), "<tu "))

		t.Run("units without the source language are skipped", func(t *testing.T) {
			_, err := e.StoreUnit(unit("no-source", map[string]string{"fr": "Bonjour", "de": "Hallo"}))
			require.NoError(t, err)

			require.NoError(t, e.ExportTMX(out, []string{"fr", "de"}, "en"))
			data, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.NotContains(t, string(data), `tuid="no-source"`)

			require.NoError(t, e.ExportTMX(out, []string{"fr", "de"}, ""))
			data, err = os.ReadFile(out)
			require.NoError(t, err)
			assert.Contains(t, string(data), `tuid="no-source"`)
		})
	})
}

func TestCloseAndReopen(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver sqlstore.Driver) {
		dir := t.TempDir()
		e := newTestEngine(t, driver, dir)
		_, err := e.StoreUnit(unit("1", map[string]string{"en": "Persistent text", "fr": "Texte persistant"}))
		require.NoError(t, err)
		require.NoError(t, e.Close())

		assert.ErrorIs(t, e.Close(), util.ErrClosed)
		_, err = e.GetUnit("1")
		assert.ErrorIs(t, err, util.ErrClosed)
		_, err = e.StoreUnit(unit("2", map[string]string{"en": "x"}))
		assert.ErrorIs(t, err, util.ErrClosed)

		reopened := newTestEngine(t, driver, dir)
		defer reopened.Close()
		matches, err := reopened.SearchTranslation("Persistent text", "en", "fr", 100, true)
		require.NoError(t, err)
		require.Len(t, matches, 1)
	})
}

func TestRollback(t *testing.T) {
	e := newTestEngine(t, sqlstore.DriverSQLite, t.TempDir())
	defer e.Close()

	_, err := e.StoreUnit(unit("kept", map[string]string{"en": "kept"}))
	require.NoError(t, err)
	require.NoError(t, e.Commit())
	_, err = e.StoreUnit(unit("dropped", map[string]string{"en": "dropped"}))
	require.NoError(t, err)
	require.NoError(t, e.Rollback())

	_, err = e.GetUnit("kept")
	assert.NoError(t, err)
	_, err = e.GetUnit("dropped")
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestRollbackRestoresVariants(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver sqlstore.Driver) {
		e := newTestEngine(t, driver, t.TempDir())
		defer e.Close()

		_, err := e.StoreUnit(unit("edited", map[string]string{"en": "printer offline"}))
		require.NoError(t, err)
		_, err = e.StoreUnit(unit("removed", map[string]string{"en": "printer ready"}))
		require.NoError(t, err)
		require.NoError(t, e.Commit())

		_, err = e.StoreUnit(unit("dropped", map[string]string{"en": "printer jammed", "de": "Drucker blockiert"}))
		require.NoError(t, err)
		_, err = e.StoreUnit(unit("edited", map[string]string{"en": "printer online"}))
		require.NoError(t, err)
		require.NoError(t, e.RemoveUnit("removed"))
		require.NoError(t, e.Rollback())

		langs, err := e.GetAllLanguages()
		require.NoError(t, err)
		assert.Equal(t, []string{"en"}, langs)

		edited, err := e.GetUnit("edited")
		require.NoError(t, err)
		assert.Equal(t, "printer offline", edited.Variants["en"].PureText)
		removed, err := e.GetUnit("removed")
		require.NoError(t, err)
		assert.Equal(t, "printer ready", removed.Variants["en"].PureText)

		units, err := e.ConcordanceSearch("printer", "en", 2, false, false)
		require.NoError(t, err)
		ids := []string{}
		for _, tu := range units {
			ids = append(ids, tu.ID)
		}
		assert.ElementsMatch(t, []string{"edited", "removed"}, ids)

		_, err = e.StoreUnit(unit("late", map[string]string{"en": "printer error"}))
		require.NoError(t, err)
		require.NoError(t, e.Commit())
		require.NoError(t, e.Rollback())
		_, err = e.GetUnit("late")
		assert.NoError(t, err)
	})
}

func TestNewLocalEngineConfiguration(t *testing.T) {
	tests := []struct {
		name string
		cfg  LocalConfig
	}{
		{name: "missing workdir", cfg: LocalConfig{Driver: sqlstore.DriverSQLite, Memory: "m"}},
		{name: "missing memory", cfg: LocalConfig{Driver: sqlstore.DriverSQLite, WorkDir: t.TempDir()}},
		{name: "missing driver", cfg: LocalConfig{WorkDir: t.TempDir(), Memory: "m"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLocalEngine(tt.cfg, zap.NewNop())
			assert.ErrorIs(t, err, util.ErrConfiguration)
		})
	}
}
