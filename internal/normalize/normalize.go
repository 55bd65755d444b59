// Package normalize turns raw definition strings from a definition-authority
// dictionary into clean glossary items. Strategies are pure functions selected
// by name at configuration time.
package normalize

import (
	"fmt"
	"slices"
	"strings"

	"github.com/heartmarshall/yomitan-merge/internal/domain"
)

// Normalizer converts raw definitions into displayable glossary items.
// Implementations must be deterministic and free of shared state.
type Normalizer interface {
	Normalize(raw []string) []string
}

// HeadwordNormalizer is implemented by strategies that also use the headword,
// e.g. to drop a repeated headword at the start of a definition.
type HeadwordNormalizer interface {
	Normalizer
	NormalizeHeadword(term string, raw []string) []string
}

// Func adapts a plain function to Normalizer.
type Func func(raw []string) []string

func (f Func) Normalize(raw []string) []string { return f(raw) }

// Apply runs n for the given headword, using NormalizeHeadword when n supports it.
func Apply(n Normalizer, term string, raw []string) []string {
	if hn, ok := n.(HeadwordNormalizer); ok {
		return hn.NormalizeHeadword(term, raw)
	}
	return n.Normalize(raw)
}

// DefaultName is the strategy used when none is configured.
const DefaultName = "default"

var registry = map[string]Normalizer{
	DefaultName:   Default{},
	"html":        HTML{},
	"jp":          Japanese{},
	"brace":       Brace{},
	"passthrough": Func(Passthrough),
}

// Lookup returns the strategy registered under name.
func Lookup(name string) (Normalizer, error) {
	n, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: unknown normalizer %q (known: %s)",
			domain.ErrInvalidConfig, name, strings.Join(Names(), ", "))
	}
	return n, nil
}

// Names lists registered strategies in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Passthrough trims every item and drops empty ones.
func Passthrough(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
