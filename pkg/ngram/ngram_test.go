package ngram

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sorted(fps []uint64) []uint64 {
	out := append([]uint64{}, fps...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestTokenize(t *testing.T) {
	cases := []struct {
		text     string
		expected []string
	}{
		{text: "Hello, World!", expected: []string{"hello", "world"}},
		{text: "send an e-mail (today)", expected: []string{"send", "an", "e-mail", "today"}},
		{text: "  \t ", expected: []string{}},
		{text: "¿Dónde está?", expected: []string{"dónde", "está"}},
	}

	for _, c := range cases {
		t.Run(c.text, func(t *testing.T) {
			tokens := Tokenize(c.text)
			if len(c.expected) == 0 {
				assert.Empty(t, tokens)
				return
			}
			assert.Equal(t, c.expected, tokens)
		})
	}
}

func TestChunks(t *testing.T) {
	cases := []struct {
		token    string
		expected []string
	}{
		{token: "translation", expected: []string{"tra", "nsl", "ati", "on"}},
		{token: "abc", expected: []string{"abc"}},
		{token: "ab", expected: []string{"ab"}},
		{token: "привет", expected: []string{"при", "вет"}},
	}

	for _, c := range cases {
		t.Run(c.token, func(t *testing.T) {
			assert.Equal(t, c.expected, Chunks(c.token))
		})
	}
}

func TestGenerate(t *testing.T) {
	t.Run("empty input yields no fingerprints", func(t *testing.T) {
		assert.Empty(t, Generate(""))
		assert.Empty(t, Generate(" ,.;"))
	})

	t.Run("deterministic", func(t *testing.T) {
		text := "The quick brown fox jumps over the lazy dog"
		assert.Equal(t, sorted(Generate(text)), sorted(Generate(text)))
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, sorted(Generate("Open The File")), sorted(Generate("open the file")))
	})

	t.Run("order independent", func(t *testing.T) {
		assert.Equal(t, sorted(Generate("open file")), sorted(Generate("file open")))
	})

	t.Run("deduplicated", func(t *testing.T) {
		fps := Generate("the the the")
		assert.Len(t, fps, 1)
		assert.Equal(t, Fingerprint("the"), fps[0])
	})

	t.Run("fingerprint is stable", func(t *testing.T) {
		assert.Equal(t, Fingerprint("tra"), Fingerprint("tra"))
		assert.NotEqual(t, Fingerprint("tra"), Fingerprint("nsl"))
	})
}
