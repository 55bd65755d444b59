package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// enumPrefixRe matches a leading sense number: "1. ", "2) ", "(3)", "①".
	enumPrefixRe = regexp.MustCompile(`^(?:\(\d{1,3}\)\s*|\d{1,3}[.)](?:\s+|$)|[\x{2460}-\x{2473}]\s*)`)

	// senseMarkerRe matches a sense number inside a string that opened with one.
	senseMarkerRe = regexp.MustCompile(`\s+(?:\(\d{1,3}\)\s*|\d{1,3}[.)]\s+|[\x{2460}-\x{2473}]\s*)`)

	// posPrefixRe matches a leading lowercase part-of-speech abbreviation.
	posPrefixRe = regexp.MustCompile(`^(?:n|v|adj|adv|prep|conj|pron|interj)\.(?:\s+|$)`)

	senseSeparators = []string{";", "；"}
)

var posAbbrevs = map[string]bool{
	"n.": true, "v.": true, "adj.": true, "adv.": true,
	"prep.": true, "conj.": true, "pron.": true, "interj.": true,
}

// usageLabels are register labels that carry no meaning on their own.
var usageLabels = map[string]bool{
	"informal": true, "formal": true, "colloquial": true, "colloq": true,
	"slang": true, "archaic": true, "obsolete": true, "dated": true,
	"rare": true, "literary": true, "vulgar": true, "figurative": true,
	"fig": true, "humorous": true, "derogatory": true, "offensive": true,
	"dialect": true, "dialectal": true, "regional": true, "technical": true,
	"poetic": true, "euphemistic": true, "pejorative": true, "ironic": true,
}

// Default is the conservative strategy. It collapses whitespace, splits on
// semicolons and on numbered senses, removes leading sense numbers and POS
// abbreviations, and drops segments that are only POS abbreviations plus usage
// labels. Applying it twice gives the same result as applying it once.
type Default struct{}

func (Default) Normalize(raw []string) []string {
	return normalizeDefault("", raw)
}

func (Default) NormalizeHeadword(term string, raw []string) []string {
	return normalizeDefault(term, raw)
}

func normalizeDefault(term string, raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		text := collapseSpace(item)
		if text == "" {
			continue
		}

		for _, piece := range splitSenses(text) {
			for _, seg := range splitAny(piece, senseSeparators) {
				seg = collapseSpace(seg)
				if seg == "" || isLabelOnly(seg) {
					continue
				}
				seg = cleanSegment(seg, term)
				if seg == "" || isLabelOnly(seg) {
					continue
				}
				out = append(out, seg)
			}
		}
	}
	return out
}

// splitSenses splits "1. foo 2. bar" into its numbered senses. Text that does
// not open with a sense number is returned whole.
func splitSenses(text string) []string {
	if !enumPrefixRe.MatchString(text) {
		return []string{text}
	}
	return senseMarkerRe.Split(text, -1)
}

// cleanSegment strips artifacts until nothing changes.
func cleanSegment(s, term string) string {
	for {
		prev := s
		s = collapseSpace(s)
		s = stripHeadword(s, term)
		s = enumPrefixRe.ReplaceAllString(s, "")
		s = posPrefixRe.ReplaceAllString(s, "")
		s = strings.TrimSpace(s)
		if s == prev {
			return s
		}
	}
}

// stripHeadword removes term from the start of s when it stands as a whole word.
func stripHeadword(s, term string) string {
	if term == "" || len(s) < len(term) || !strings.EqualFold(s[:len(term)], term) {
		return s
	}
	rest := s[len(term):]
	if r, _ := utf8.DecodeRuneInString(rest); rest != "" && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
		return s
	}
	return strings.TrimLeft(rest, " .:-")
}

// isLabelOnly reports whether s holds nothing but sense numbers, POS
// abbreviations and usage labels, with at least one POS abbreviation.
func isLabelOnly(s string) bool {
	hasPOS := false
	for _, tok := range strings.Fields(s) {
		switch {
		case posAbbrevs[tok]:
			hasPOS = true
		case enumPrefixRe.MatchString(tok):
		case usageLabels[strings.TrimSuffix(strings.Trim(tok, "()[]"), ".")]:
		default:
			return false
		}
	}
	return hasPOS
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func splitAny(s string, seps []string) []string {
	parts := []string{s}
	for _, sep := range seps {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}
	return parts
}
