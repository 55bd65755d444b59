package yomitan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/heartmarshall/yomitan-merge/internal/chunk"
	"github.com/heartmarshall/yomitan-merge/internal/domain"
)

// Output is a merged dictionary ready to be written.
type Output struct {
	Index    domain.IndexMetadata
	TagBanks []domain.TagBank
	Chunks   []chunk.Chunk
}

// Write replaces the files in dir with out. Subdirectories are left alone.
// It returns the names of the files written.
func Write(dir string, out Output) ([]string, error) {
	if err := prepareDir(dir); err != nil {
		return nil, err
	}

	var written []string
	put := func(name string, data []byte) error {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, name)
		return nil
	}

	index, err := encodeIndented(out.Index)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", IndexFile, err)
	}
	if err := put(IndexFile, index); err != nil {
		return nil, err
	}

	for _, tb := range out.TagBanks {
		if err := put(tb.Name, tb.Rows); err != nil {
			return nil, err
		}
	}

	for _, c := range out.Chunks {
		data, err := encodeIndented(c.Entries)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", c.FileName(), err)
		}
		if err := put(c.FileName(), data); err != nil {
			return nil, err
		}
	}

	return written, nil
}

// prepareDir creates dir or removes the regular files already in it.
func prepareDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	items, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read output dir: %w", err)
	}
	for _, it := range items {
		if !it.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, it.Name())); err != nil {
			return fmt.Errorf("clean output dir: %w", err)
		}
	}
	return nil
}

func encodeIndented(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
