package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNextCandidate(t *testing.T) {
	tests := []struct {
		base    string
		attempt int
		want    string
	}{
		{"oleObject1.xlsx", 1, "oleObject1.xlsx"},
		{"oleObject1.xlsx", 2, "oleObject1(2).xlsx"},
		{"oleObject1.xlsx", 3, "oleObject1(3).xlsx"},
		{"archive.tar.gz", 2, "archive.tar(2).gz"},
		{"README", 2, "README(2)"},
		{".hidden", 4, ".hidden(4)"},
		{"image.png", 0, "image.png"},
	}
	for _, tt := range tests {
		if got := NextCandidate(tt.base, tt.attempt); got != tt.want {
			t.Errorf("NextCandidate(%q, %d) = %q, want %q", tt.base, tt.attempt, got, tt.want)
		}
	}
}

func TestChooseTarget(t *testing.T) {
	dir := filepath.FromSlash("/decks")
	taken := map[string]bool{
		filepath.Join(dir, "image1.png"):    true,
		filepath.Join(dir, "image1(2).png"): true,
	}
	exists := func(p string) bool { return taken[p] }

	if got, want := ChooseTarget(dir, "image1.png", false, exists), filepath.Join(dir, "image1(3).png"); got != want {
		t.Errorf("ChooseTarget() = %q, want %q", got, want)
	}
	if got, want := ChooseTarget(dir, "image1.png", true, exists), filepath.Join(dir, "image1.png"); got != want {
		t.Errorf("ChooseTarget(overwrite) = %q, want %q", got, want)
	}
	if got, want := ChooseTarget(dir, "image2.png", false, exists), filepath.Join(dir, "image2.png"); got != want {
		t.Errorf("ChooseTarget(free) = %q, want %q", got, want)
	}
}

func zipEntry(t *testing.T, name string, content []byte) *zip.File {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	w.Write(content)
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		t.Fatal(err)
	}
	return zr.File[0]
}

func TestWriterExtract(t *testing.T) {
	dir := t.TempDir()
	content := bytes.Repeat([]byte("slide data "), 2000)
	f := zipEntry(t, "ppt/embeddings/oleObject1.xlsx", content)

	w := &Writer{}
	first, err := w.Extract(f, dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if first != filepath.Join(dir, "oleObject1.xlsx") {
		t.Errorf("first = %q", first)
	}
	got, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Error("extracted content differs from entry")
	}

	second, err := w.Extract(f, dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if second != filepath.Join(dir, "oleObject1(2).xlsx") {
		t.Errorf("second = %q", second)
	}
}

func TestWriterExtractFailure(t *testing.T) {
	f := zipEntry(t, "ppt/media/image1.png", []byte("png"))
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	_, err := (&Writer{}).Extract(f, missing, false)
	if !errors.Is(err, ErrExtractWrite) {
		t.Fatalf("err = %v, want ErrExtractWrite", err)
	}
	if SeverityOf(err) != SeverityExtractWrite {
		t.Errorf("severity = %v", SeverityOf(err))
	}
}

func TestWriterExtractStaysInDir(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		entry string
		want  string
	}{
		{`ppt/embeddings/..\..\evil.xlsx`, "evil.xlsx"},
		{"ppt/embeddings/../../up.docx", "up.docx"},
		{`ppt\embeddings\win.pdf`, "win.pdf"},
	}
	for _, tt := range tests {
		written, err := (&Writer{}).Extract(zipEntry(t, tt.entry, []byte("x")), dir, false)
		if err != nil {
			t.Fatalf("Extract(%q): %v", tt.entry, err)
		}
		if filepath.Dir(written) != dir || filepath.Base(written) != tt.want {
			t.Errorf("Extract(%q) wrote %q, want %s in %s", tt.entry, written, tt.want, dir)
		}
	}
}

func TestWriterExtractRejectsUnusableNames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ppt/embeddings/..", `ppt/embeddings\.`, "ppt/embeddings/", "ppt/embeddings/C:evil.xlsx"} {
		_, err := (&Writer{}).Extract(zipEntry(t, name, []byte("x")), dir, false)
		if !errors.Is(err, ErrExtractWrite) {
			t.Errorf("Extract(%q) err = %v, want ErrExtractWrite", name, err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("unexpected files written: %v", entries)
	}
}
