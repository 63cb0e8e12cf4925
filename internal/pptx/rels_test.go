package pptx

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
)

const relsHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`

func relsDoc(body string) string {
	return relsHeader + body + `</Relationships>`
}

func TestFindExternalTargets(t *testing.T) {
	doc := relsDoc(`
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/oleObject" Target="file:///C:/docs/a.txt" TargetMode="External"/>
<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com/x.docx" TargetMode="External"/>
<Relationship Id="rId4" Target="file:///C:/docs/internal.txt" TargetMode="Internal"/>
<Relationship Id="rId5" TargetMode="External"/>`)

	got, err := FindExternalTargets(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d targets, want 2: %+v", len(got), got)
	}

	if want := filepath.FromSlash("C:/docs/a.txt"); got[0].Path != want || !got[0].Resolved {
		t.Errorf("target[0] = %+v, want path %q resolved", got[0], want)
	}
	if got[0].Raw != "file:///C:/docs/a.txt" {
		t.Errorf("target[0].Raw = %q", got[0].Raw)
	}
	if got[1].Path != "https://example.com/x.docx" || got[1].Resolved {
		t.Errorf("target[1] = %+v, want raw URL unresolved", got[1])
	}
}

func TestFindExternalTargetsIgnoresMissingMode(t *testing.T) {
	doc := relsDoc(`<Relationship Id="rId1" Target="file:///C:/docs/a.txt"/>`)
	got, err := FindExternalTargets(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %+v, want no targets", got)
	}
}

func TestFindExternalTargetsNoRelationships(t *testing.T) {
	got, err := FindExternalTargets(strings.NewReader(relsDoc("")))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %+v, want no targets", got)
	}
}

func TestRelsReaderStopsEarly(t *testing.T) {
	doc := relsDoc(`
<Relationship Id="rId1" Target="a.docx" TargetMode="External"/>
<Relationship Id="rId2" Target="b.docx" TargetMode="External"/>
<broken`)
	rr := NewRelsReader(strings.NewReader(doc))
	if !rr.Next() {
		t.Fatalf("Next() = false, err = %v", rr.Err())
	}
	if !strings.HasSuffix(rr.Target().Path, "a.docx") {
		t.Errorf("first target = %q", rr.Target().Path)
	}
	if err := rr.Err(); err != nil {
		t.Errorf("Err() before end = %v", err)
	}
}

func TestRelsReaderMalformed(t *testing.T) {
	doc := relsHeader + `<Relationship Id="rId1" Target="a.docx" TargetMode="External"/><Relationship`

	rr := NewRelsReader(strings.NewReader(doc))
	n := 0
	for rr.Next() {
		n++
	}
	if n != 1 {
		t.Errorf("got %d targets before failure, want 1", n)
	}
	if !errors.Is(rr.Err(), ErrDescriptorFormat) {
		t.Fatalf("Err() = %v, want ErrDescriptorFormat", rr.Err())
	}
	if rr.Next() {
		t.Error("Next() after failure must return false")
	}
	if SeverityOf(rr.Err()) != SeverityDescriptorFormat {
		t.Errorf("severity = %v", SeverityOf(rr.Err()))
	}
}

func TestRelsReaderUnknownCharset(t *testing.T) {
	doc := `<?xml version="1.0" encoding="x-no-such-charset"?><Relationships/>`
	_, err := FindExternalTargets(strings.NewReader(doc))
	if !errors.Is(err, ErrDescriptorFormat) {
		t.Fatalf("err = %v, want ErrDescriptorFormat", err)
	}
}

func TestRelsReaderLatin1(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><Relationships>" +
		"<Relationship Target=\"file:///C:/docs/r\xe9sum\xe9.docx\" TargetMode=\"External\"/></Relationships>"
	got, err := FindExternalTargets(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Path != filepath.FromSlash("C:/docs/résumé.docx") {
		t.Errorf("got %+v", got)
	}
}

func TestRelsReaderReadError(t *testing.T) {
	boom := errors.New("boom")
	r := io.MultiReader(strings.NewReader(relsHeader), iotest.ErrReader(boom))

	_, err := FindExternalTargets(r)
	if !errors.Is(err, ErrDescriptorRead) {
		t.Fatalf("err = %v, want ErrDescriptorRead", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped cause", err)
	}
}

func TestResolveTarget(t *testing.T) {
	rooted, err := filepath.Abs("/srv/share/plan.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	relative, err := filepath.Abs("notes/todo.txt")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		raw      string
		want     string
		resolved bool
	}{
		{"file:///C:/docs/a.txt", filepath.FromSlash("C:/docs/a.txt"), true},
		{"file:///C:/docs/../a.txt", filepath.FromSlash("C:/a.txt"), true},
		{`C:\docs\b.xlsx`, filepath.FromSlash("C:/docs/b.xlsx"), true},
		{"file:///srv/share/plan.xlsx", rooted, true},
		{"notes/./todo.txt", relative, true},
		{"https://example.com/a.pdf", "https://example.com/a.pdf", false},
		{"mailto:someone@example.com", "mailto:someone@example.com", false},
		{"bad\x00name.txt", "bad\x00name.txt", false},
	}
	for _, tt := range tests {
		got := ResolveTarget(tt.raw)
		if got.Path != tt.want || got.Resolved != tt.resolved {
			t.Errorf("ResolveTarget(%q) = %+v, want %q resolved=%v", tt.raw, got, tt.want, tt.resolved)
		}
		if got.Raw != tt.raw {
			t.Errorf("ResolveTarget(%q).Raw = %q", tt.raw, got.Raw)
		}
	}
}
