package merger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/yomitan-merge/internal/chunk"
	"github.com/heartmarshall/yomitan-merge/internal/config"
	"github.com/heartmarshall/yomitan-merge/internal/domain"
	"github.com/heartmarshall/yomitan-merge/internal/merge"
	"github.com/heartmarshall/yomitan-merge/internal/normalize"
	"github.com/heartmarshall/yomitan-merge/internal/yomitan"
	"github.com/heartmarshall/yomitan-merge/pkg/ctxutil"
)

// Phase names in execution order.
const (
	PhaseLoad      = "load"
	PhaseIndex     = "index"
	PhaseMerge     = "merge"
	PhasePartition = "partition"
	PhaseWrite     = "write"
	PhaseValidate  = "validate"
	PhaseArchive   = "archive"
)

// AllPhases defines the canonical execution order.
var AllPhases = []string{PhaseLoad, PhaseIndex, PhaseMerge, PhasePartition, PhaseWrite, PhaseValidate, PhaseArchive}

// PhaseResult holds the outcome of a single pipeline phase.
type PhaseResult struct {
	Processed int
	Skipped   int
	Duration  time.Duration
	Err       error
}

// Summary describes a completed run.
type Summary struct {
	RunID       string
	IndexSize   int
	Duplicates  int
	Stats       merge.Stats
	Chunks      int
	Files       []string
	ArchivePath string // empty when no archive was produced
}

// Pipeline orchestrates a merge run. A Pipeline is single-use.
type Pipeline struct {
	log     *slog.Logger
	store   DictionaryStore
	cfg     config.MergeConfig
	now     func() time.Time
	runID   string
	results map[string]PhaseResult
	summary Summary

	structure  *domain.DictionarySet
	definition *domain.DictionarySet
	index      *merge.DefinitionIndex
	merged     merge.Result
	chunks     []chunk.Chunk
	metadata   domain.IndexMetadata
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, store DictionaryStore, cfg config.MergeConfig) *Pipeline {
	return &Pipeline{
		log:     log,
		store:   store,
		cfg:     cfg,
		now:     time.Now,
		results: make(map[string]PhaseResult, len(AllPhases)),
	}
}

// RunID returns the identifier attached to this run's log records.
// Empty until Run is called.
func (p *Pipeline) RunID() string { return p.runID }

// Results returns phase results after Run completes. Phases that never ran are absent.
func (p *Pipeline) Results() map[string]PhaseResult {
	return p.results
}

// Summary returns the run summary after Run completes.
func (p *Pipeline) Summary() Summary {
	return p.summary
}

// Run executes all phases in order and stops at the first failure.
// Nothing is written to the output directory unless load, index, merge and
// partition all succeed.
//
// The run ID comes from ctx (see ctxutil.WithRunID) or is generated; every
// record logged by the run carries it as run_id.
func (p *Pipeline) Run(ctx context.Context) error {
	ctx, id := ctxutil.EnsureRunID(ctx)
	p.runID = id.String()
	p.summary.RunID = p.runID
	p.log = p.log.With(slog.String("run_id", p.runID))

	norm, err := normalize.Lookup(p.cfg.Normalizer)
	if err != nil {
		return err
	}
	res, err := merge.NewResolver(p.cfg.Resolver, p.cfg.LemmaMapPath)
	if err != nil {
		return err
	}

	p.log.Info("merge started",
		slog.String("structure", p.cfg.StructurePath),
		slog.String("definition", p.cfg.DefinitionPath),
		slog.String("output", p.cfg.OutputPath),
		slog.String("normalizer", p.cfg.Normalizer),
		slog.String("resolver", p.cfg.Resolver),
		slog.Int("chunk_size", p.cfg.ChunkSize),
	)

	start := time.Now()
	for _, phase := range AllPhases {
		if err := ctx.Err(); err != nil {
			return err
		}

		var fn func(context.Context) PhaseResult
		switch phase {
		case PhaseLoad:
			fn = p.runLoad
		case PhaseIndex:
			fn = p.runIndex
		case PhaseMerge:
			fn = func(context.Context) PhaseResult { return p.runMerge(norm, res) }
		case PhasePartition:
			fn = p.runPartition
		case PhaseWrite:
			fn = p.runWrite
		case PhaseValidate:
			fn = p.runValidate
		case PhaseArchive:
			fn = p.runArchive
		}

		if err := p.runPhase(ctx, phase, fn); err != nil {
			return fmt.Errorf("%s: %w", phase, err)
		}
	}

	p.log.Info("merge completed",
		slog.Int("entries", len(p.merged.Entries)),
		slog.Int("chunks", p.summary.Chunks),
		slog.String("archive", p.summary.ArchivePath),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (p *Pipeline) runPhase(ctx context.Context, phase string, fn func(context.Context) PhaseResult) error {
	start := time.Now()
	p.log.Debug("starting phase", slog.String("phase", phase))

	result := fn(ctx)
	result.Duration = time.Since(start)
	p.results[phase] = result

	if result.Err != nil {
		p.log.Error("phase failed",
			slog.String("phase", phase),
			slog.String("error", result.Err.Error()),
			slog.Duration("duration", result.Duration),
		)
		return result.Err
	}

	p.log.Info("phase completed",
		slog.String("phase", phase),
		slog.Int("processed", result.Processed),
		slog.Int("skipped", result.Skipped),
		slog.Duration("duration", result.Duration),
	)
	return nil
}

// runLoad reads both source dictionaries concurrently.
func (p *Pipeline) runLoad(ctx context.Context) PhaseResult {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		set, err := p.store.Load(gctx, p.cfg.StructurePath)
		if err != nil {
			return fmt.Errorf("structure dictionary: %w", err)
		}
		p.structure = set
		return nil
	})
	g.Go(func() error {
		set, err := p.store.LoadDefinitions(gctx, p.cfg.DefinitionPath)
		if err != nil {
			return fmt.Errorf("definition dictionary: %w", err)
		}
		p.definition = set
		return nil
	})
	if err := g.Wait(); err != nil {
		return PhaseResult{Err: err}
	}

	p.log.Info("dictionaries loaded",
		slog.Int("structure_entries", len(p.structure.Entries)),
		slog.Int("structure_tag_banks", len(p.structure.TagBanks)),
		slog.Int("definition_entries", len(p.definition.Entries)),
	)
	return PhaseResult{Processed: len(p.structure.Entries) + len(p.definition.Entries)}
}

func (p *Pipeline) runIndex(context.Context) PhaseResult {
	p.index = merge.BuildIndex(p.definition.Entries)
	p.summary.IndexSize = p.index.Len()
	p.summary.Duplicates = p.index.Duplicates()
	return PhaseResult{Processed: p.index.Len(), Skipped: p.index.Duplicates()}
}

func (p *Pipeline) runMerge(norm normalize.Normalizer, res merge.Resolver) PhaseResult {
	merged, err := merge.Merge(p.structure.Entries, p.index, norm, res)
	if err != nil {
		return PhaseResult{Err: err}
	}
	p.merged = merged
	p.summary.Stats = merged.Stats

	s := merged.Stats
	p.log.Info("merge stats",
		slog.Int("lemmas_kept", s.LemmasKept),
		slog.Int("lemmas_dropped", s.LemmasDropped),
		slog.Int("non_lemmas_kept", s.NonLemmasKept),
		slog.Int("non_lemmas_dropped", s.NonLemmasDropped),
		slog.Int("unclassified", s.Unclassified),
	)
	return PhaseResult{
		Processed: len(merged.Entries),
		Skipped:   s.LemmasDropped + s.NonLemmasDropped + s.Unclassified,
	}
}

func (p *Pipeline) runPartition(context.Context) PhaseResult {
	chunks, err := chunk.Partition(p.merged.Entries, p.cfg.ChunkSize)
	if err != nil {
		return PhaseResult{Err: err}
	}
	meta, err := chunk.MergeMetadata(p.structure.Index, p.definition.Index, chunk.MetadataOptions{
		Title: p.cfg.Title,
		Now:   p.now,
	})
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("index metadata: %w", err)}
	}
	p.chunks = chunks
	p.metadata = meta
	p.summary.Chunks = len(chunks)
	return PhaseResult{Processed: len(chunks)}
}

func (p *Pipeline) runWrite(context.Context) PhaseResult {
	files, err := p.store.Write(p.cfg.OutputPath, yomitan.Output{
		Index:    p.metadata,
		TagBanks: p.structure.TagBanks,
		Chunks:   p.chunks,
	})
	if err != nil {
		return PhaseResult{Err: err}
	}
	p.summary.Files = files
	return PhaseResult{Processed: len(files)}
}

func (p *Pipeline) runValidate(context.Context) PhaseResult {
	if err := p.store.Validate(p.cfg.OutputPath); err != nil {
		return PhaseResult{Err: err}
	}
	return PhaseResult{Processed: len(p.summary.Files)}
}

func (p *Pipeline) runArchive(context.Context) PhaseResult {
	if !p.cfg.EmitArchive() {
		return PhaseResult{Skipped: 1}
	}
	zipPath := yomitan.ArchivePath(p.cfg.OutputPath)
	if err := p.store.Archive(p.cfg.OutputPath, zipPath); err != nil {
		return PhaseResult{Err: err}
	}
	p.summary.ArchivePath = zipPath
	p.log.Info("archive written", slog.String("path", zipPath))
	return PhaseResult{Processed: 1}
}
