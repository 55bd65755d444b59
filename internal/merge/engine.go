package merge

import (
	"github.com/heartmarshall/yomitan-merge/internal/domain"
	"github.com/heartmarshall/yomitan-merge/internal/normalize"
)

// Stats counts the filtering decisions of one merge.
type Stats struct {
	LemmasKept       int
	LemmasDropped    int
	NonLemmasKept    int
	NonLemmasDropped int
	Unclassified     int
}

// Result is the outcome of Merge.
type Result struct {
	// Entries are the output records in structure-authority order.
	Entries []domain.TermEntry
	// Matched holds every lemma term that received a glossary.
	Matched map[string]bool
	Stats   Stats
}

// Merge substitutes glossaries from idx into the lemma entries of structure
// and keeps the non-lemma entries whose lemma was matched. Fields other than
// the glossary are never modified.
//
// The first pass classifies every entry and settles which lemma terms match;
// the second emits surviving entries in their original order, so a non-lemma
// may precede its lemma in the input.
func Merge(structure []domain.TermEntry, idx *DefinitionIndex, norm normalize.Normalizer, res Resolver) (Result, error) {
	kinds := make([]Kind, len(structure))
	lemmaOf := make([]string, len(structure))
	glossaries := make(map[string][]string)
	matched := make(map[string]bool)

	for i := range structure {
		e := &structure[i]
		if e.Term == "" {
			return Result{}, &domain.MalformedRecordError{Index: i, Reason: "term is empty"}
		}

		kinds[i], lemmaOf[i] = res.Classify(*e)
		if kinds[i] != KindLemma {
			continue
		}
		if _, done := glossaries[e.Term]; done {
			continue
		}

		raw, ok := idx.Lookup(e.Term)
		if !ok {
			glossaries[e.Term] = nil
			continue
		}
		defs := normalize.Apply(norm, e.Term, raw)
		glossaries[e.Term] = defs
		if len(defs) > 0 {
			matched[e.Term] = true
		}
	}

	result := Result{
		Entries: make([]domain.TermEntry, 0, len(structure)),
		Matched: matched,
	}
	for i := range structure {
		e := &structure[i]
		switch kinds[i] {
		case KindLemma:
			if !matched[e.Term] {
				result.Stats.LemmasDropped++
				continue
			}
			result.Entries = append(result.Entries, e.WithGlossary(glossaries[e.Term]))
			result.Stats.LemmasKept++
		case KindNonLemma:
			if !matched[lemmaOf[i]] {
				result.Stats.NonLemmasDropped++
				continue
			}
			result.Entries = append(result.Entries, *e)
			result.Stats.NonLemmasKept++
		default:
			result.Stats.Unclassified++
		}
	}

	return result, nil
}
