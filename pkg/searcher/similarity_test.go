package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		x    string
		y    string
		want int
	}{
		{name: "both empty", x: "", y: "", want: 0},
		{name: "whitespace only", x: "   ", y: "\t", want: 0},
		{name: "identical", x: "hello world", y: "hello world", want: 100},
		{name: "identical after trim", x: "  hello world ", y: "hello world", want: 100},
		{name: "one side empty", x: "hello", y: "", want: 2},
		{name: "disjoint", x: "abc", y: "xyz", want: 2},
		// only fragments above 2% of the longer length count; single runes of a 60 rune text do not
		{name: "below fragment threshold", x: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", y: "ab", want: 2},
		{name: "prefix", x: "hello world", y: "hello", want: 45},
		// "abcd" then "fgh" are extracted from "abcdefgh": 7 of 8 runes, one extra fragment
		{name: "two fragments", x: "abcdefgh", y: "abcdXfgh", want: 85},
		{name: "multibyte runes", x: "привет мир", y: "привет мир", want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Similarity(tt.x, tt.y))
		})
	}
}

func TestSimilarityArgumentOrder(t *testing.T) {
	assert.Equal(t, Similarity("the cat sat", "the cat"), Similarity("the cat", "the cat sat"))
}

func TestSimilarityRandomProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("abcde fghij")
	randomText := func() string {
		n := rng.Intn(40)
		out := make([]rune, n)
		for i := range out {
			out[i] = alphabet[rng.Intn(len(alphabet))]
		}
		return string(out)
	}

	for i := 0; i < 300; i++ {
		x, y := randomText(), randomText()
		score := Similarity(x, y)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
		assert.Equal(t, score, Similarity(x, y))
		if len(x) > 0 && x[0] != ' ' && x[len(x)-1] != ' ' {
			assert.Equal(t, 100, Similarity(x, x))
		}
	}
}
