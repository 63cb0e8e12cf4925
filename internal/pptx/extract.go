package pptx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const copyBufferSize = 8 * 1024

// NextCandidate returns the file name to try on the given attempt.
// Attempt 1 (or lower) is the base name itself; attempt k inserts "(k)"
// before the last extension, or appends it when there is none.
func NextCandidate(base string, attempt int) string {
	if attempt <= 1 {
		return base
	}
	counter := "(" + strconv.Itoa(attempt) + ")"
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return base[:i] + counter + base[i:]
	}
	return base + counter
}

// ChooseTarget picks the path an entry named base is written to inside dir.
// With overwrite the base name is always used; otherwise the first candidate
// for which exists returns false wins.
func ChooseTarget(dir, base string, overwrite bool, exists func(string) bool) string {
	target := filepath.Join(dir, base)
	if overwrite {
		return target
	}
	for attempt := 2; exists(target); attempt++ {
		target = filepath.Join(dir, NextCandidate(base, attempt))
	}
	return target
}

func fileExists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}

// Writer copies archive entries to disk.
type Writer struct {
	// Exists reports whether a path is taken. Defaults to an os.Lstat check.
	Exists func(string) bool
}

// Extract writes the entry beside the source archive, in dir, and returns the
// absolute path written. Errors wrap ErrExtractWrite.
func (w *Writer) Extract(f *zip.File, dir string, overwrite bool) (string, error) {
	exists := w.Exists
	if exists == nil {
		exists = fileExists
	}
	base, err := entryBase(f.Name)
	if err != nil {
		return base, fmt.Errorf("%w: %w", ErrExtractWrite, err)
	}
	target := ChooseTarget(dir, base, overwrite, exists)
	if abs, err := filepath.Abs(target); err == nil {
		target = abs
	}

	if err := copyEntry(f, target); err != nil {
		return target, fmt.Errorf("%w: %s: %w", ErrExtractWrite, base, err)
	}
	return target, nil
}

// entryBase returns the last element of an entry name. Both slash kinds
// separate elements, so the result never leaves the target directory.
func entryBase(name string) (string, error) {
	base := name[strings.LastIndexAny(name, `/\`)+1:]
	switch {
	case base == "", base == ".", base == "..":
		return base, fmt.Errorf("unusable entry name %q", name)
	case strings.ContainsRune(base, ':') || filepath.VolumeName(base) != "":
		return base, fmt.Errorf("entry name %q carries a volume", name)
	}
	return base, nil
}

func copyEntry(f *zip.File, target string) (err error) {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(target)
		}
	}()

	buf := make([]byte, copyBufferSize)
	_, err = io.CopyBuffer(out, rc, buf)
	return err
}
