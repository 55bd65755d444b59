package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// termFieldCount is the number of positional fields in a Yomitan term bank record.
const termFieldCount = 8

// TermEntry is one record of a term bank:
//
//	[term, reading, definitionTags, rules, score, glossary, sequence, termTags]
type TermEntry struct {
	Term           string
	Reading        string
	DefinitionTags string
	Rules          string
	Score          json.Number
	Glossary       []json.RawMessage
	Sequence       int64
	TermTags       string
}

// WithGlossary returns a copy of e whose glossary is replaced by the given strings.
// Every other field is carried over unchanged.
func (e TermEntry) WithGlossary(defs []string) TermEntry {
	out := e
	out.Glossary = make([]json.RawMessage, 0, len(defs))
	for _, d := range defs {
		out.Glossary = append(out.Glossary, rawString(d))
	}
	return out
}

// GlossaryStrings returns the glossary as text. String items yield their value;
// structured items yield their compact JSON.
func (e TermEntry) GlossaryStrings() []string {
	out := make([]string, 0, len(e.Glossary))
	for _, item := range e.Glossary {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, item); err != nil {
			out = append(out, string(item))
			continue
		}
		out = append(out, buf.String())
	}
	return out
}

// MarshalJSON encodes the entry as its positional array.
func (e TermEntry) MarshalJSON() ([]byte, error) {
	score := e.Score
	if score == "" {
		score = "0"
	}
	glossary := e.Glossary
	if glossary == nil {
		glossary = []json.RawMessage{}
	}
	return MarshalNoEscape([]any{
		e.Term,
		e.Reading,
		e.DefinitionTags,
		e.Rules,
		score,
		glossary,
		e.Sequence,
		e.TermTags,
	})
}

// UnmarshalJSON decodes a positional array. Errors are *MalformedRecordError
// without Source and Index; DecodeTermBank fills those in.
func (e *TermEntry) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return &MalformedRecordError{Reason: "record is not a JSON array"}
	}
	if len(fields) != termFieldCount {
		return &MalformedRecordError{Reason: fmt.Sprintf("expected %d fields, got %d", termFieldCount, len(fields))}
	}

	var out TermEntry
	if err := decodeTerm(fields[0], &out.Term); err != nil {
		return err
	}

	bad := func(field, want string) error {
		return &MalformedRecordError{Term: out.Term, Reason: field + " must be " + want}
	}

	strs := []struct {
		name string
		raw  json.RawMessage
		dst  *string
	}{
		{"reading", fields[1], &out.Reading},
		{"definitionTags", fields[2], &out.DefinitionTags},
		{"rules", fields[3], &out.Rules},
		{"termTags", fields[7], &out.TermTags},
	}
	for _, f := range strs {
		if err := json.Unmarshal(f.raw, f.dst); err != nil || isNull(f.raw) {
			return bad(f.name, "a string")
		}
	}

	if !isNumberLiteral(fields[4]) {
		return bad("score", "a number")
	}
	if err := json.Unmarshal(fields[4], &out.Score); err != nil {
		return bad("score", "a number")
	}
	if err := json.Unmarshal(fields[5], &out.Glossary); err != nil || isNull(fields[5]) {
		return bad("glossary", "an array")
	}
	if err := json.Unmarshal(fields[6], &out.Sequence); err != nil || isNull(fields[6]) {
		return bad("sequence", "an integer")
	}

	*e = out
	return nil
}

// decodeDefinition reads only the term and glossary of a record. The other
// fields must be present but may hold any JSON value.
func decodeDefinition(data []byte, e *TermEntry) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return &MalformedRecordError{Reason: "record is not a JSON array"}
	}
	if len(fields) != termFieldCount {
		return &MalformedRecordError{Reason: fmt.Sprintf("expected %d fields, got %d", termFieldCount, len(fields))}
	}

	var out TermEntry
	if err := json.Unmarshal(fields[0], &out.Term); err != nil || isNull(fields[0]) {
		return &MalformedRecordError{Reason: "term must be a string"}
	}
	if err := json.Unmarshal(fields[5], &out.Glossary); err != nil || isNull(fields[5]) {
		return &MalformedRecordError{Term: out.Term, Reason: "glossary must be an array"}
	}

	*e = out
	return nil
}

func decodeTerm(raw json.RawMessage, dst *string) error {
	if err := json.Unmarshal(raw, dst); err != nil || isNull(raw) {
		return &MalformedRecordError{Reason: "term must be a string"}
	}
	if *dst == "" {
		return &MalformedRecordError{Reason: "term is empty"}
	}
	return nil
}

// DecodeTermBank decodes a term bank document. source names the document in errors.
func DecodeTermBank(source string, data []byte) ([]TermEntry, error) {
	return decodeBank(source, data, func(rec []byte, e *TermEntry) error {
		return e.UnmarshalJSON(rec)
	})
}

// DecodeDefinitionBank decodes a term bank whose entries only lend their
// glossaries. Records need eight fields, a string term and an array glossary;
// every other field is ignored and left zero.
func DecodeDefinitionBank(source string, data []byte) ([]TermEntry, error) {
	return decodeBank(source, data, decodeDefinition)
}

func decodeBank(source string, data []byte, decode func([]byte, *TermEntry) error) ([]TermEntry, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%s: term bank is not a JSON array: %w", source, err)
	}

	entries := make([]TermEntry, len(records))
	for i, rec := range records {
		if err := decode(rec, &entries[i]); err != nil {
			var mre *MalformedRecordError
			if errors.As(err, &mre) {
				mre.Source = source
				mre.Index = i
				return nil, mre
			}
			return nil, &MalformedRecordError{Source: source, Index: i, Reason: err.Error()}
		}
	}
	return entries, nil
}

// MarshalNoEscape is json.Marshal without HTML escaping.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func rawString(s string) json.RawMessage {
	b, err := MarshalNoEscape(s)
	if err != nil {
		// Strings always encode.
		panic(err)
	}
	return b
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// isNumberLiteral rejects quoted numbers, which json.Number would otherwise accept.
func isNumberLiteral(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return false
	}
	c := t[0]
	return c == '-' || (c >= '0' && c <= '9')
}
