package config

import (
	"errors"
	"fmt"

	"github.com/heartmarshall/yomitan-merge/internal/domain"
	"github.com/heartmarshall/yomitan-merge/internal/merge"
	"github.com/heartmarshall/yomitan-merge/internal/normalize"
)

// Validate performs business-rule validation on the final configuration.
// Every problem is reported; errors wrap domain.ErrInvalidConfig, and a bad
// chunk size also wraps domain.ErrInvalidChunkSize.
func (c *Config) Validate() error {
	if err := c.Merge.validate(); err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	return nil
}

func (m *MergeConfig) validate() error {
	var errs []error

	if m.StructurePath == "" {
		errs = append(errs, invalid("structure_path is required"))
	}
	if m.DefinitionPath == "" {
		errs = append(errs, invalid("definition_path is required"))
	}
	if m.OutputPath == "" {
		errs = append(errs, invalid("output_path is required"))
	}
	if m.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: chunk_size %w (got %d)",
			domain.ErrInvalidConfig, domain.ErrInvalidChunkSize, m.ChunkSize))
	}
	if m.LoadWorkers <= 0 {
		errs = append(errs, invalid(fmt.Sprintf("load_workers must be > 0 (got %d)", m.LoadWorkers)))
	}
	if _, err := normalize.Lookup(m.Normalizer); err != nil {
		errs = append(errs, err)
	}
	switch m.Resolver {
	case merge.ResolverRedirect:
	case merge.ResolverMap:
		if m.LemmaMapPath == "" {
			errs = append(errs, invalid("resolver \"map\" needs lemma_map_path"))
		}
	default:
		errs = append(errs, invalid(fmt.Sprintf("unknown resolver %q", m.Resolver)))
	}

	return errors.Join(errs...)
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, msg)
}
