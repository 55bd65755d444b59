package yomitan

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/yomitan-merge/internal/chunk"
	"github.com/heartmarshall/yomitan-merge/internal/domain"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func terms(entries []domain.TermEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Term
	}
	return out
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	items, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, it := range items {
		names = append(names, it.Name())
	}
	sort.Strings(names)
	return names
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestLoad_OrdersBanksNumerically(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"index.json":      `{"title":"Src","format":3}`,
		"tag_bank_1.json": `[["v","partOfSpeech",0,"verb",0]]`,
	}
	// Eleven banks so that lexical order would put 10 and 11 before 2.
	for i := 1; i <= 11; i++ {
		files["term_bank_"+strconv.Itoa(i)+".json"] = `[["t` + strconv.Itoa(i) + `a","","","",0,["x"],` + strconv.Itoa(i) + `,""],["t` + strconv.Itoa(i) + `b","","","",0,["y"],` + strconv.Itoa(i) + `,""]]`
	}
	writeFiles(t, dir, files)

	for _, workers := range []int{0, 1, 3, 16} {
		set, err := Load(context.Background(), dir, workers)
		require.NoError(t, err)

		got := terms(set.Entries)
		require.Len(t, got, 22)
		for i := 1; i <= 11; i++ {
			assert.Equal(t, "t"+strconv.Itoa(i)+"a", got[(i-1)*2], "workers=%d", workers)
			assert.Equal(t, "t"+strconv.Itoa(i)+"b", got[(i-1)*2+1], "workers=%d", workers)
		}
		assert.Equal(t, "Src", set.Index.String("title"))
		require.Len(t, set.TagBanks, 1)
		assert.Equal(t, "tag_bank_1.json", set.TagBanks[0].Name)
		assert.JSONEq(t, files["tag_bank_1.json"], string(set.TagBanks[0].Rows))
	}
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing dir", func(t *testing.T) {
		_, err := Load(ctx, filepath.Join(t.TempDir(), "nope"), 1)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("file not dir", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "f.json")
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))
		_, err := Load(ctx, path, 1)
		assert.True(t, errors.Is(err, ErrNotDirectory))
	})

	t.Run("missing index", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"term_bank_1.json": `[]`})
		_, err := Load(ctx, dir, 1)
		assert.True(t, errors.Is(err, ErrMissingIndex))
	})

	t.Run("no term banks", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"index.json": `{}`})
		_, err := Load(ctx, dir, 1)
		assert.True(t, errors.Is(err, ErrNoTermBanks))
	})

	t.Run("bad index", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"index.json": `[`, "term_bank_1.json": `[]`})
		_, err := Load(ctx, dir, 1)
		assert.Error(t, err)
	})

	t.Run("bad tag bank", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"index.json": `{}`, "tag_bank_1.json": `[`, "term_bank_1.json": `[]`})
		_, err := Load(ctx, dir, 1)
		assert.Error(t, err)
	})

	t.Run("malformed record", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"index.json":       `{}`,
			"term_bank_1.json": `[["ok","","","",0,[],1,""]]`,
			"term_bank_2.json": `[["ok","","","",0,[],1,""],["short","",""]]`,
		})
		_, err := Load(ctx, dir, 2)

		var mre *domain.MalformedRecordError
		require.True(t, errors.As(err, &mre), "got %v", err)
		assert.Equal(t, 1, mre.Index)
		assert.True(t, strings.HasSuffix(mre.Source, "term_bank_2.json"))
	})

	t.Run("cancelled", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"index.json": `{}`, "term_bank_1.json": `[]`})
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Load(cctx, dir, 1)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestLoadDefinitions_IgnoresUnreadFields(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"index.json": `{"title":"Definitions"}`,
		"term_bank_1.json": `[
			["run",null,"",null,"5",["to move fast"],1.0,""],
			["walk","","","",0,["to move slowly"],2,null]
		]`,
	})

	set, err := LoadDefinitions(context.Background(), dir, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"run", "walk"}, terms(set.Entries))
	assert.Equal(t, []string{"to move fast"}, set.Entries[0].GlossaryStrings())

	_, err = Load(context.Background(), dir, 2)
	assert.ErrorIs(t, err, domain.ErrMalformedRecord)
}

func TestLoadDefinitions_RequiresTermAndGlossary(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"index.json":       `{}`,
		"term_bank_1.json": `[["run","","","",0,["x"],1,""]]`,
		"term_bank_2.json": `[["walk","","","",0,null,1,""]]`,
	})

	_, err := LoadDefinitions(context.Background(), dir, 1)

	var mre *domain.MalformedRecordError
	require.True(t, errors.As(err, &mre), "got %v", err)
	assert.Equal(t, 0, mre.Index)
	assert.True(t, strings.HasSuffix(mre.Source, "term_bank_2.json"))
}

// ---------------------------------------------------------------------------
// Write / Validate / Archive
// ---------------------------------------------------------------------------

func sampleOutput(t *testing.T) Output {
	t.Helper()
	entries, err := domain.DecodeTermBank("in", []byte(`[
		["a","","","",0,["<b>x</b> & y"],1,""],
		["b","","","",0,["z"],2,""],
		["c","","non-lemma","",0,[["a",["past"]]],1,""]
	]`))
	require.NoError(t, err)
	chunks, err := chunk.Partition(entries, 2)
	require.NoError(t, err)

	index := domain.IndexMetadata{}
	require.NoError(t, index.Set("title", "Merged"))
	return Output{
		Index:    index,
		TagBanks: []domain.TagBank{{Name: "tag_bank_1.json", Rows: []byte(`[["v","pos",0,"verb",0]]`)}},
		Chunks:   chunks,
	}
}

func TestWrite_ProducesLoadableDictionary(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	writeFiles(t, dir, map[string]string{"stale.json": `{}`, "term_bank_9.json": `[]`})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "keep"), 0o755))

	written, err := Write(dir, sampleOutput(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"index.json", "tag_bank_1.json", "term_bank_1.json", "term_bank_2.json"}, written)
	assert.Equal(t, []string{"index.json", "keep", "tag_bank_1.json", "term_bank_1.json", "term_bank_2.json"}, listDir(t, dir))

	raw, err := os.ReadFile(filepath.Join(dir, "term_bank_1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<b>x</b> & y", "output must not be HTML-escaped")

	tags, err := os.ReadFile(filepath.Join(dir, "tag_bank_1.json"))
	require.NoError(t, err)
	assert.Equal(t, `[["v","pos",0,"verb",0]]`, string(tags), "tag banks are copied byte for byte")

	require.NoError(t, Validate(dir))

	set, err := Load(context.Background(), dir, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, terms(set.Entries))
	assert.Equal(t, "Merged", set.Index.String("title"))
	want, err := domain.MarshalNoEscape(sampleOutput(t).Chunks[1].Entries[0])
	require.NoError(t, err)
	got, err := domain.MarshalNoEscape(set.Entries[2])
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		wantFile string
	}{
		{"missing index", map[string]string{"term_bank_1.json": `[]`}, "index.json"},
		{"no term banks", map[string]string{"index.json": `{}`}, ""},
		{"broken json", map[string]string{"index.json": `{}`, "term_bank_1.json": `[]`, "tag_bank_1.json": `[1,`}, "tag_bank_1.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files)

			err := Validate(dir)
			require.True(t, errors.Is(err, domain.ErrPackagingValidation), "got %v", err)
			var pe *domain.PackagingError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.wantFile, pe.File)
		})
	}

	t.Run("valid", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"index.json": `{}`, "term_bank_1.json": `[]`, "notes.txt": "not json"})
		assert.NoError(t, Validate(dir))
	})
}

func TestArchive(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "merged")
	_, err := Write(dir, sampleOutput(t))
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	zipPath := ArchivePath(dir)
	assert.Equal(t, filepath.Join(root, "merged.zip"), zipPath)
	require.NoError(t, Archive(dir, zipPath))

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
		assert.Equal(t, zip.Deflate, f.Method)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"index.json", "tag_bank_1.json", "term_bank_1.json", "term_bank_2.json"}, names)
}

func TestArchivePath(t *testing.T) {
	assert.Equal(t, "out.zip", ArchivePath("out"))
	assert.Equal(t, "out.zip", ArchivePath("out/"))
	assert.Equal(t, filepath.Join("a", "dict.zip"), ArchivePath(filepath.Join("a", "dict.v1")))

	wd, err := os.Getwd()
	require.NoError(t, err)
	want := strings.TrimSuffix(wd, filepath.Ext(wd)) + ".zip"
	assert.Equal(t, want, ArchivePath("."))
	assert.Equal(t, want, ArchivePath("./"))

	parent := filepath.Dir(wd)
	assert.Equal(t, strings.TrimSuffix(parent, filepath.Ext(parent))+".zip", ArchivePath(".."))
}
