package manifest

import (
	"bytes"
	"errors"
	"testing"
)

func TestTextSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewTextSink(&buf)
	s.Link(Link{Source: "deck.pptx", Target: "/data/budget.xlsx", Resolved: true})
	s.Extraction(Extraction{Source: "deck.pptx", Path: "/data/image1.png", Category: CategoryMedia})
	s.Extraction(Extraction{Source: "deck.pptx", Path: "/data/oleObject1.docx", Category: CategoryEmbedded})

	want := "deck.pptx;/data/budget.xlsx\n" +
		"deck.pptx;/data/image1.png;(media)\n" +
		"deck.pptx;/data/oleObject1.docx;(embedded)\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

type failingSink struct{ calls int }

func (f *failingSink) Link(Link) error             { f.calls++; return errors.New("link failed") }
func (f *failingSink) Extraction(Extraction) error { f.calls++; return errors.New("extraction failed") }

func TestMultiSinkReachesEverySink(t *testing.T) {
	var buf bytes.Buffer
	bad := &failingSink{}
	m := MultiSink{bad, NewTextSink(&buf), Discard}

	if err := m.Link(Link{Source: "a.pptx", Target: "b"}); err == nil || err.Error() != "link failed" {
		t.Errorf("Link() error = %v", err)
	}
	if err := m.Extraction(Extraction{Source: "a.pptx", Path: "c", Category: CategoryMedia}); err == nil {
		t.Error("Extraction() error = nil")
	}
	if bad.calls != 2 {
		t.Errorf("failing sink calls = %d", bad.calls)
	}
	if got := buf.String(); got != "a.pptx;b\na.pptx;c;(media)\n" {
		t.Errorf("text sink output = %q", got)
	}
}
