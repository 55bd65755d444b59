package yomitan

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/heartmarshall/yomitan-merge/internal/domain"
)

// Validate checks that dir can be imported: index.json exists, there is at
// least one term bank, and every JSON file parses. Failures wrap
// domain.ErrPackagingValidation.
func Validate(dir string) error {
	if _, err := os.Stat(filepath.Join(dir, IndexFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &domain.PackagingError{File: IndexFile, Reason: "missing from output directory"}
		}
		return &domain.PackagingError{File: IndexFile, Reason: err.Error()}
	}

	banks, err := filepath.Glob(filepath.Join(dir, termBankGlob))
	if err != nil {
		return &domain.PackagingError{Reason: err.Error()}
	}
	if len(banks) == 0 {
		return &domain.PackagingError{Reason: "no " + termBankGlob + " files in output directory"}
	}

	items, err := os.ReadDir(dir)
	if err != nil {
		return &domain.PackagingError{Reason: err.Error()}
	}
	for _, it := range items {
		if !it.Type().IsRegular() || !strings.HasSuffix(it.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, it.Name()))
		if err != nil {
			return &domain.PackagingError{File: it.Name(), Reason: err.Error()}
		}
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return &domain.PackagingError{File: it.Name(), Reason: fmt.Sprintf("invalid JSON (%v)", err)}
		}
	}
	return nil
}
