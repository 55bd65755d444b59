package merge

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"

	"github.com/heartmarshall/yomitan-merge/internal/domain"
)

// Kind classifies a structure-authority entry.
type Kind int

const (
	KindUnknown Kind = iota
	KindLemma
	KindNonLemma
)

func (k Kind) String() string {
	switch k {
	case KindLemma:
		return "lemma"
	case KindNonLemma:
		return "non-lemma"
	default:
		return "unknown"
	}
}

// Resolver decides whether an entry is a lemma or a non-lemma and, for
// non-lemmas, names the governing lemma term.
type Resolver interface {
	Classify(e domain.TermEntry) (Kind, string)
}

// NonLemmaTag is the definitionTags value marking a non-lemma entry.
const NonLemmaTag = "non-lemma"

// RedirectResolver reads the redirect stored in the entry itself: entries
// tagged "non-lemma" carry a deinflection glossary ["lemma", ["rule", ...]].
type RedirectResolver struct{}

func (RedirectResolver) Classify(e domain.TermEntry) (Kind, string) {
	if e.DefinitionTags != NonLemmaTag {
		return KindLemma, ""
	}
	if len(e.Glossary) == 0 {
		return KindUnknown, ""
	}

	var redirect []json.RawMessage
	if err := json.Unmarshal(e.Glossary[0], &redirect); err != nil || len(redirect) == 0 {
		return KindUnknown, ""
	}
	var lemma string
	if err := json.Unmarshal(redirect[0], &lemma); err != nil || lemma == "" {
		return KindUnknown, ""
	}
	return KindNonLemma, lemma
}

// MapResolver uses an explicit non-lemma → lemma table. Terms in the table are
// non-lemmas; every other term is a lemma.
type MapResolver struct {
	lemmas map[string]string
}

// NewMapResolver copies m.
func NewMapResolver(m map[string]string) *MapResolver {
	return &MapResolver{lemmas: maps.Clone(m)}
}

// LoadMapResolver reads a JSON object {"walked": "walk", ...}.
func LoadMapResolver(path string) (*MapResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lemma map: %w", err)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("lemma map %s: %w", path, err)
	}
	return NewMapResolver(m), nil
}

func (r *MapResolver) Classify(e domain.TermEntry) (Kind, string) {
	lemma, ok := r.lemmas[e.Term]
	if !ok {
		return KindLemma, ""
	}
	if lemma == "" {
		return KindUnknown, ""
	}
	return KindNonLemma, lemma
}

// Resolver names accepted in configuration.
const (
	ResolverRedirect = "redirect"
	ResolverMap      = "map"
)

// NewResolver builds the resolver selected by name. mapPath is used by "map".
func NewResolver(name, mapPath string) (Resolver, error) {
	switch name {
	case "", ResolverRedirect:
		return RedirectResolver{}, nil
	case ResolverMap:
		if mapPath == "" {
			return nil, fmt.Errorf("%w: resolver %q needs a lemma map path", domain.ErrInvalidConfig, name)
		}
		return LoadMapResolver(mapPath)
	default:
		return nil, fmt.Errorf("%w: unknown resolver %q", domain.ErrInvalidConfig, name)
	}
}
