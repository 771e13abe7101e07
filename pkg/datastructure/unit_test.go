package datastructure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddLanguage(t *testing.T) {
	tu := NewTranslationUnit("1")
	for _, lang := range []string{"fr", "en", "de", "en", "fr"} {
		tu.AddLanguage(lang)
	}
	assert.Equal(t, []string{"de", "en", "fr"}, tu.Languages)
	assert.True(t, tu.HasLanguage("en"))
	assert.False(t, tu.HasLanguage("es"))
}

func TestNewVariant(t *testing.T) {
	v := NewVariant("1", "ru", "<seg>привет</seg>", "привет")
	assert.Equal(t, 6, v.TextLength)
}

func TestCreationDate(t *testing.T) {
	tu := NewTranslationUnit("1")
	_, ok := tu.CreationDate()
	assert.False(t, ok)

	tu.SetProperty(PROP_CREATION_DATE, "not a date")
	_, ok = tu.CreationDate()
	assert.False(t, ok)

	when := time.Date(2024, 3, 9, 13, 45, 0, 0, time.UTC)
	tu.SetProperty(PROP_CREATION_DATE, FormatTMXDate(when))
	got, ok := tu.CreationDate()
	assert.True(t, ok)
	assert.Equal(t, when, got)
	assert.Equal(t, "20240309T134500Z", tu.Property(PROP_CREATION_DATE))
}

func TestAddNote(t *testing.T) {
	tu := NewTranslationUnit("1")
	tu.AddNote("checked")
	tu.AddNote("checked")
	tu.AddNote("legal")
	assert.Equal(t, []string{"checked", "legal"}, tu.Notes)
}
