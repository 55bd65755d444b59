// Package yomitan reads and writes Yomitan dictionary directories: index.json,
// tag_bank_*.json and term_bank_*.json.
package yomitan

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/yomitan-merge/internal/domain"
)

const (
	IndexFile     = "index.json"
	termBankGlob  = "term_bank_*.json"
	tagBankGlob   = "tag_bank_*.json"
	defaultWorker = 4
)

var (
	ErrNotDirectory = errors.New("not a directory")
	ErrMissingIndex = errors.New("missing " + IndexFile)
	ErrNoTermBanks  = errors.New("no " + termBankGlob + " files")
)

var bankNumberRe = regexp.MustCompile(`_(\d+)\.json$`)

type bankDecoder func(source string, data []byte) ([]domain.TermEntry, error)

// Load reads the dictionary in dir. Term banks are decoded concurrently by up
// to workers goroutines; entries keep bank order, then record order.
// Every record field is checked, so the entries can be written back unchanged.
func Load(ctx context.Context, dir string, workers int) (*domain.DictionarySet, error) {
	return load(ctx, dir, workers, domain.DecodeTermBank)
}

// LoadDefinitions is Load for a dictionary that only supplies glossaries:
// records are decoded with domain.DecodeDefinitionBank.
func LoadDefinitions(ctx context.Context, dir string, workers int) (*domain.DictionarySet, error) {
	return load(ctx, dir, workers, domain.DecodeDefinitionBank)
}

func load(ctx context.Context, dir string, workers int, decode bankDecoder) (*domain.DictionarySet, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("load %s: %w", dir, ErrNotDirectory)
	}

	indexPath := filepath.Join(dir, IndexFile)
	indexData, err := os.ReadFile(indexPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", dir, ErrMissingIndex)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}
	index, err := domain.DecodeIndexMetadata(indexPath, indexData)
	if err != nil {
		return nil, err
	}

	tagPaths, err := bankFiles(dir, tagBankGlob)
	if err != nil {
		return nil, err
	}
	tagBanks := make([]domain.TagBank, 0, len(tagPaths))
	for _, p := range tagPaths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read tag bank: %w", err)
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("tag bank %s: invalid JSON", p)
		}
		tagBanks = append(tagBanks, domain.TagBank{Name: filepath.Base(p), Rows: data})
	}

	termPaths, err := bankFiles(dir, termBankGlob)
	if err != nil {
		return nil, err
	}
	if len(termPaths) == 0 {
		return nil, fmt.Errorf("load %s: %w", dir, ErrNoTermBanks)
	}

	entries, err := loadTermBanks(ctx, termPaths, workers, decode)
	if err != nil {
		return nil, err
	}

	return &domain.DictionarySet{
		Dir:      dir,
		Index:    index,
		TagBanks: tagBanks,
		Entries:  entries,
	}, nil
}

func loadTermBanks(ctx context.Context, paths []string, workers int, decode bankDecoder) ([]domain.TermEntry, error) {
	if workers <= 0 {
		workers = defaultWorker
	}

	banks := make([][]domain.TermEntry, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("read term bank: %w", err)
			}
			entries, err := decode(p, data)
			if err != nil {
				return err
			}
			banks[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, b := range banks {
		total += len(b)
	}
	entries := make([]domain.TermEntry, 0, total)
	for _, b := range banks {
		entries = append(entries, b...)
	}
	return entries, nil
}

// bankFiles lists files matching pattern in dir, ordered by bank number so
// that term_bank_10 follows term_bank_9.
func bankFiles(dir, pattern string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	slices.SortFunc(paths, func(a, b string) int {
		return cmp.Or(cmp.Compare(bankNumber(a), bankNumber(b)), strings.Compare(a, b))
	})
	return paths, nil
}

func bankNumber(path string) int {
	m := bankNumberRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return n
}
