// Package chunk splits merged entries into bounded term banks and builds the
// merged index metadata.
package chunk

import (
	"fmt"
	"time"

	"github.com/heartmarshall/yomitan-merge/internal/domain"
)

// DefaultSize is the number of entries per term bank when none is configured.
const DefaultSize = 10000

// Chunk is one term bank worth of entries. IDs start at 1.
type Chunk struct {
	ID      int
	Entries []domain.TermEntry
}

// FileName returns the term bank file name for c.
func (c Chunk) FileName() string {
	return fmt.Sprintf("term_bank_%d.json", c.ID)
}

// Partition splits entries into consecutive chunks of at most size entries.
// Concatenating the chunks in ID order gives back entries.
func Partition(entries []domain.TermEntry, size int) ([]Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("partition: %w (got %d)", domain.ErrInvalidChunkSize, size)
	}

	n := len(entries) / size
	if len(entries)%size != 0 {
		n++
	}

	chunks := make([]Chunk, 0, n)
	for i := 0; i < len(entries); i += size {
		end := i + min(size, len(entries)-i)
		chunks = append(chunks, Chunk{ID: len(chunks) + 1, Entries: entries[i:end:end]})
	}
	return chunks, nil
}

// revisionLayout renders the build date as YYYY.MM.DD.
const revisionLayout = "2006.01.02"

// MetadataOptions controls MergeMetadata.
type MetadataOptions struct {
	// Title replaces the title attribute when non-empty.
	Title string
	// Now supplies the build date; time.Now when nil.
	Now func() time.Time
}

// MergeMetadata builds index.json for the merged dictionary. The attribute set
// is the structure authority's; each value is taken from the definition
// authority when it has the attribute, else from the structure authority.
// "sequenced" is forced to true and "revision" to the build date. A title
// override is applied last.
func MergeMetadata(structure, definition domain.IndexMetadata, opts MetadataOptions) (domain.IndexMetadata, error) {
	out := make(domain.IndexMetadata, len(structure)+2)
	for key, val := range structure {
		if dv, ok := definition[key]; ok {
			val = dv
		}
		out[key] = val
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	if err := out.Set("sequenced", true); err != nil {
		return nil, err
	}
	if err := out.Set("revision", now().Format(revisionLayout)); err != nil {
		return nil, err
	}
	if opts.Title != "" {
		if err := out.Set("title", opts.Title); err != nil {
			return nil, err
		}
	}
	return out, nil
}
