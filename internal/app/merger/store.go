// Package merger orchestrates a dictionary merge run: it loads both source
// dictionaries, merges them and packages the result for import.
package merger

import (
	"context"

	"github.com/heartmarshall/yomitan-merge/internal/domain"
	"github.com/heartmarshall/yomitan-merge/internal/yomitan"
)

// DictionaryStore is the file-system contract consumed by the pipeline.
// Implemented by FSStore.
type DictionaryStore interface {
	// Load reads a dictionary whose records are written back, checking every field.
	Load(ctx context.Context, dir string) (*domain.DictionarySet, error)
	// LoadDefinitions reads a dictionary that only supplies terms and glossaries.
	LoadDefinitions(ctx context.Context, dir string) (*domain.DictionarySet, error)
	Write(dir string, out yomitan.Output) ([]string, error)
	Validate(dir string) error
	Archive(dir, zipPath string) error
}

// FSStore reads and writes dictionary directories on the local file system.
type FSStore struct {
	Workers int
}

// NewFSStore creates an FSStore decoding term banks with the given number of workers.
func NewFSStore(workers int) *FSStore {
	return &FSStore{Workers: workers}
}

func (s *FSStore) Load(ctx context.Context, dir string) (*domain.DictionarySet, error) {
	return yomitan.Load(ctx, dir, s.Workers)
}

func (s *FSStore) LoadDefinitions(ctx context.Context, dir string) (*domain.DictionarySet, error) {
	return yomitan.LoadDefinitions(ctx, dir, s.Workers)
}

func (s *FSStore) Write(dir string, out yomitan.Output) ([]string, error) {
	return yomitan.Write(dir, out)
}

func (s *FSStore) Validate(dir string) error {
	return yomitan.Validate(dir)
}

func (s *FSStore) Archive(dir, zipPath string) error {
	return yomitan.Archive(dir, zipPath)
}
