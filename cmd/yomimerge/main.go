// Command yomimerge merges two Yomitan dictionaries: entry structure and
// deinflection redirects come from the first, glossaries from the second.
// The result is written as a Yomitan dictionary directory and, unless
// disabled, a zip archive next to it.
//
// Usage:
//
//	yomimerge [flags] <structure-dir> <definition-dir> <output-dir>
//
// Flags:
//
//	--chunk-size   entries per term bank (default 10000)
//	--title        title for the merged dictionary
//	--no-zip       skip the zip archive
//	--normalizer   definition normalization strategy
//	--resolver     lemma resolution strategy: redirect or map
//	--lemma-map    JSON file mapping non-lemma terms to lemmas (map resolver)
//	--config       path to YAML config file
//	--version      print version and exit
//
// Paths and settings may also come from the config file or MERGE_* environment
// variables; flags win. Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/heartmarshall/yomitan-merge/internal/app"
	"github.com/heartmarshall/yomitan-merge/internal/app/merger"
	"github.com/heartmarshall/yomitan-merge/internal/config"
	"github.com/heartmarshall/yomitan-merge/internal/normalize"
	"github.com/heartmarshall/yomitan-merge/pkg/ctxutil"
)

// Compile-time interface assertion.
var _ merger.DictionaryStore = (*merger.FSStore)(nil)

func main() {
	// A missing .env is not an error.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("yomimerge", flag.ContinueOnError)
	fs.SetOutput(stderr)
	chunkSizeFlag := fs.Int("chunk-size", 0, "entries per term bank (default 10000)")
	titleFlag := fs.String("title", "", "title for the merged dictionary")
	noZipFlag := fs.Bool("no-zip", false, "skip the zip archive")
	normalizerFlag := fs.String("normalizer", "", "normalization strategy: "+strings.Join(normalize.Names(), ", "))
	resolverFlag := fs.String("resolver", "", "lemma resolution strategy: redirect or map")
	lemmaMapFlag := fs.String("lemma-map", "", "JSON file mapping non-lemma terms to lemmas")
	configFlag := fs.String("config", "", "path to YAML config file")
	versionFlag := fs.Bool("version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: yomimerge [flags] <structure-dir> <definition-dir> <output-dir>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if *versionFlag {
		fmt.Fprintln(stdout, app.BuildVersion())
		return 0
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}

	// CLI flags override config.
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["chunk-size"] {
		cfg.Merge.ChunkSize = *chunkSizeFlag
	}
	if set["title"] {
		cfg.Merge.Title = *titleFlag
	}
	if *noZipFlag {
		cfg.Merge.NoArchive = true
	}
	if set["normalizer"] {
		cfg.Merge.Normalizer = *normalizerFlag
	}
	if set["resolver"] {
		cfg.Merge.Resolver = *resolverFlag
	}
	if set["lemma-map"] {
		cfg.Merge.LemmaMapPath = *lemmaMapFlag
	}

	switch fs.NArg() {
	case 0:
	case 3:
		cfg.Merge.StructurePath = fs.Arg(0)
		cfg.Merge.DefinitionPath = fs.Arg(1)
		cfg.Merge.OutputPath = fs.Arg(2)
	default:
		fs.Usage()
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return 1
	}

	logger := app.NewLogger(cfg.Log)
	ctx, runID := ctxutil.EnsureRunID(ctx)
	logger.Info("starting",
		slog.String("version", app.BuildVersion()),
		slog.String("run_id", runID.String()),
	)

	if err := checkPaths(cfg.Merge); err != nil {
		logger.Error("check paths", slog.String("error", err.Error()))
		return 1
	}

	pipeline := merger.NewPipeline(logger, merger.NewFSStore(cfg.Merge.LoadWorkers), cfg.Merge)
	if err := pipeline.Run(ctx); err != nil {
		logger.Error("merge failed", slog.String("error", err.Error()))
		return 1
	}

	s := pipeline.Summary()
	fmt.Fprintf(stdout, "merged %d entries into %d term banks in %s\n",
		s.Stats.LemmasKept+s.Stats.NonLemmasKept, s.Chunks, cfg.Merge.OutputPath)
	if s.ArchivePath != "" {
		fmt.Fprintf(stdout, "archive: %s\n", s.ArchivePath)
	}
	return 0
}

// checkPaths requires both inputs to be directories and the output to be a
// directory or not exist yet.
func checkPaths(cfg config.MergeConfig) error {
	for _, p := range []string{cfg.StructurePath, cfg.DefinitionPath} {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("input %s: %w", p, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("input %s: not a directory", p)
		}
	}

	info, err := os.Stat(cfg.OutputPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("output %s: %w", cfg.OutputPath, err)
	case !info.IsDir():
		return fmt.Errorf("output %s: not a directory", cfg.OutputPath)
	}
	return nil
}
