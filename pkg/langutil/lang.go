package langutil

import (
	"strings"

	"golang.org/x/text/language"
)

// Normalize returns the canonical BCP 47 form of code ("EN_us" -> "en-US").
// codes that do not parse are only trimmed and lower-cased so they still work as keys.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return strings.ToLower(code)
	}
	return tag.String()
}

// NormalizeAll normalizes every code and drops empty and duplicate entries.
func NormalizeAll(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		n := Normalize(c)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
