package ngram

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	NGRAM_SIZE = 3
)

// SEPARATORS splits tokens. hyphen is kept inside tokens so "e-mail" stays one word.
const SEPARATORS = " \t\n\r\f\v\u00A0\u2007\u202F\u3000" +
	".,;:!?¿¡\"'`´‘’“”«»‹›()[]{}<>/\\|@#$%^&*+=~_" +
	"…、。，．：；！？"

func isSeparator(r rune) bool {
	return strings.ContainsRune(SEPARATORS, r)
}

// Tokenize lower-cases text and splits it on SEPARATORS.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), isSeparator)
}

// Chunks cuts a token into consecutive NGRAM_SIZE rune chunks, the last one may be shorter.
func Chunks(token string) []string {
	runes := []rune(token)
	chunks := make([]string, 0, len(runes)/NGRAM_SIZE+1)
	for i := 0; i < len(runes); i += NGRAM_SIZE {
		end := min(i+NGRAM_SIZE, len(runes))
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}

// Fingerprint is the persisted hash of one chunk. every backend writes the same value so it must never change.
func Fingerprint(chunk string) uint64 {
	return xxhash.Sum64String(chunk)
}

// Generate returns the deduplicated fingerprints of text. empty text gives an empty slice,
// which means "no candidates" and never "match everything".
func Generate(text string) []uint64 {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return []uint64{}
	}

	seen := make(map[uint64]struct{}, len(tokens)*2)
	fingerprints := make([]uint64, 0, len(tokens)*2)
	for _, token := range tokens {
		for _, chunk := range Chunks(token) {
			fp := Fingerprint(chunk)
			if _, ok := seen[fp]; ok {
				continue
			}
			seen[fp] = struct{}{}
			fingerprints = append(fingerprints, fp)
		}
	}
	return fingerprints
}
