package normalize

import (
	"regexp"
	"strings"
)

var (
	// jpMarkerRe matches converter artifacts such as `1` or `4`.
	jpMarkerRe = regexp.MustCompile("`\\d+`")

	// jpPOSRe matches a line holding only a JMdict-style POS code.
	jpPOSRe = regexp.MustCompile(`(?i)^(?:n|pn|adv|exp|aux|adj(?:-[a-z]+)?|v(?:1|5[a-z]?|s|i|t))$`)
)

// Japanese handles monolingual Japanese sources whose definitions are
// multi-line blocks. Line structure is kept; POS lines render as 〘pos〙.
type Japanese struct{}

func (j Japanese) Normalize(raw []string) []string {
	return j.NormalizeHeadword("", raw)
}

func (Japanese) NormalizeHeadword(term string, raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		item = jpMarkerRe.ReplaceAllString(item, "")

		var lines []string
		for _, line := range strings.Split(item, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || (term != "" && line == term) {
				continue
			}
			if jpPOSRe.MatchString(line) {
				line = "〘" + strings.ToLower(line) + "〙"
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			out = append(out, strings.Join(lines, "\n"))
		}
	}
	return out
}
