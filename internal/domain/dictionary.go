package domain

import (
	"encoding/json"
	"fmt"
)

// TagBank is a tag_bank_*.json document. Rows are never interpreted; they are
// written back byte for byte.
type TagBank struct {
	Name string
	Rows json.RawMessage
}

// IndexMetadata holds the top-level attributes of index.json.
type IndexMetadata map[string]json.RawMessage

// DecodeIndexMetadata parses an index.json document.
func DecodeIndexMetadata(source string, data []byte) (IndexMetadata, error) {
	var meta IndexMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: index is not a JSON object: %w", source, err)
	}
	if meta == nil {
		return nil, fmt.Errorf("%s: index is not a JSON object", source)
	}
	return meta, nil
}

// String returns the value of a string attribute, or "" when absent or not a string.
func (m IndexMetadata) String(key string) string {
	raw, ok := m[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Set stores v under key.
func (m IndexMetadata) Set(key string, v any) error {
	b, err := MarshalNoEscape(v)
	if err != nil {
		return fmt.Errorf("index metadata %q: %w", key, err)
	}
	m[key] = b
	return nil
}

// DictionarySet is everything loaded from one Yomitan dictionary directory.
type DictionarySet struct {
	Dir      string
	Index    IndexMetadata
	TagBanks []TagBank
	Entries  []TermEntry
}
