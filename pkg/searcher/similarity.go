package searcher

import (
	"strings"
)

// Similarity scores two plain texts from 0 to 100. common fragments are extracted longest
// first from the longer text; each fragment after the first costs FRAGMENT_PENALTY.
func Similarity(x, y string) int {
	a := []rune(strings.TrimSpace(x))
	b := []rune(strings.TrimSpace(y))
	if len(b) > len(a) {
		a, b = b, a
	}
	longest := len(a)
	if longest == 0 {
		return 0
	}

	threshold := longest * MIN_FRAGMENT_PERCENT / 100
	extractions := -1
	for {
		ai, bi, n := longestCommonSubstring(a, b)
		if n == 0 || n <= threshold {
			break
		}
		a = cut(a, ai, n)
		b = cut(b, bi, n)
		extractions++
	}

	// extractions is -1 when nothing was shared, which lifts the score to FRAGMENT_PENALTY.
	score := 100*(longest-len(a))/longest - extractions*FRAGMENT_PENALTY
	if score < 0 {
		return 0
	}
	return score
}

// longestCommonSubstring returns the start of the first longest common run in a and b and its length.
func longestCommonSubstring(a, b []rune) (int, int, int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	bestLen, bestEnd := 0, 0
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > bestLen {
					bestLen, bestEnd = curr[j], i
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	if bestLen == 0 {
		return 0, 0, 0
	}
	// the fragment is removed at its first occurrence on each side
	frag := a[bestEnd-bestLen : bestEnd]
	return indexRunes(a, frag), indexRunes(b, frag), bestLen
}

func indexRunes(s, sub []rune) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		match := true
		for j := range sub {
			if s[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func cut(s []rune, at, n int) []rune {
	out := make([]rune, 0, len(s)-n)
	out = append(out, s[:at]...)
	return append(out, s[at+n:]...)
}
