// Package merge combines a structure-authority dictionary with the glossaries
// of a definition-authority dictionary.
package merge

import "github.com/heartmarshall/yomitan-merge/internal/domain"

// DefinitionIndex maps a term to the raw glossary of the first
// definition-authority entry with that term. It is read-only once built.
type DefinitionIndex struct {
	defs       map[string][]string
	duplicates int
}

// BuildIndex indexes entries in order. Later entries with an already indexed
// term are discarded. Readings are ignored.
func BuildIndex(entries []domain.TermEntry) *DefinitionIndex {
	idx := &DefinitionIndex{defs: make(map[string][]string, len(entries))}
	for i := range entries {
		e := &entries[i]
		if _, seen := idx.defs[e.Term]; seen {
			idx.duplicates++
			continue
		}
		idx.defs[e.Term] = e.GlossaryStrings()
	}
	return idx
}

// Lookup returns the raw definitions for term. The slice is a copy.
func (idx *DefinitionIndex) Lookup(term string) ([]string, bool) {
	defs, ok := idx.defs[term]
	if !ok {
		return nil, false
	}
	return append([]string(nil), defs...), true
}

// Len returns the number of indexed terms.
func (idx *DefinitionIndex) Len() int { return len(idx.defs) }

// Duplicates returns how many entries were discarded as repeated terms.
func (idx *DefinitionIndex) Duplicates() int { return idx.duplicates }
