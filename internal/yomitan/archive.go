package yomitan

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ArchivePath returns the zip path for an output directory: its extension,
// if any, is replaced by ".zip". A directory named only by "." or ".." is
// resolved first, so the archive is named after the real directory.
func ArchivePath(dir string) string {
	dir = filepath.Clean(dir)
	if base := filepath.Base(dir); base == "." || base == ".." {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
	}
	return strings.TrimSuffix(dir, filepath.Ext(dir)) + ".zip"
}

// Archive zips the regular files of dir, flat, into zipPath.
func Archive(dir, zipPath string) (err error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("archive: read dir: %w", err)
	}

	f, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("archive: close: %w", cerr)
		}
	}()

	zw := zip.NewWriter(f)
	for _, it := range items {
		if !it.Type().IsRegular() {
			continue
		}
		if err := addFile(zw, filepath.Join(dir, it.Name()), it.Name()); err != nil {
			return fmt.Errorf("archive: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive: finish: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
