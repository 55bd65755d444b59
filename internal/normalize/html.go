package normalize

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockAtoms end the current glossary item when they open or close.
var blockAtoms = map[atom.Atom]bool{
	atom.Br: true, atom.P: true, atom.Div: true, atom.Li: true,
	atom.Ul: true, atom.Ol: true, atom.Tr: true, atom.Dd: true, atom.Dt: true,
}

// HTML extracts text from definitions exported as HTML fragments, then applies
// Default. Block-level boundaries become separate glossary items.
type HTML struct{}

func (h HTML) Normalize(raw []string) []string {
	return h.NormalizeHeadword("", raw)
}

func (HTML) NormalizeHeadword(term string, raw []string) []string {
	var items []string
	for _, s := range raw {
		items = append(items, htmlText(s)...)
	}
	return normalizeDefault(term, items)
}

// htmlText returns the text content of an HTML fragment, one element per block.
func htmlText(fragment string) []string {
	z := html.NewTokenizer(strings.NewReader(fragment))

	var (
		items   []string
		current strings.Builder
		skip    int
	)
	flush := func() {
		if t := strings.TrimSpace(current.String()); t != "" {
			items = append(items, t)
		}
		current.Reset()
	}

	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				// Unparseable tail: keep it as text.
				current.Write(z.Raw())
			}
			flush()
			return items
		case html.TextToken:
			if skip == 0 {
				current.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch {
			case tok.DataAtom == atom.Script || tok.DataAtom == atom.Style:
				if tok.Type == html.StartTagToken {
					skip++
				}
			case blockAtoms[tok.DataAtom]:
				flush()
			}
		case html.EndTagToken:
			tok := z.Token()
			switch {
			case tok.DataAtom == atom.Script || tok.DataAtom == atom.Style:
				if skip > 0 {
					skip--
				}
			case blockAtoms[tok.DataAtom]:
				flush()
			}
		}
	}
}
