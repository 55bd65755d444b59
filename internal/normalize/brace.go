package normalize

import (
	"regexp"
	"strings"
)

// braceBlockRe matches a {usage} block.
var braceBlockRe = regexp.MustCompile(`\{[^}]+\}`)

// Brace handles sources that pack several usages into one string, each
// introduced by a {...} block. Every block starts a new glossary item and
// ", (" starts a new line within an item.
type Brace struct{}

func (b Brace) Normalize(raw []string) []string {
	return b.NormalizeHeadword("", raw)
}

func (Brace) NormalizeHeadword(term string, raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		text := stripHeadword(strings.TrimSpace(item), term)
		text = strings.ReplaceAll(text, ", (", "\n(")

		start := 0
		for _, loc := range braceBlockRe.FindAllStringIndex(text, -1) {
			if loc[0] > start {
				out = appendTrimmed(out, text[start:loc[0]])
			}
			start = loc[0]
		}
		out = appendTrimmed(out, text[start:])
	}
	return out
}

func appendTrimmed(out []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		out = append(out, s)
	}
	return out
}
