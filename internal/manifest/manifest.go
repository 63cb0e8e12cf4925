// Package manifest defines the records produced while inspecting
// presentations and the sinks that receive them.
package manifest

import (
	"fmt"
	"io"
	"sync"
)

// Category tags the rule that caused a part to be extracted.
type Category string

const (
	CategoryEmbedded Category = "embedded"
	CategoryMedia    Category = "media"
)

// Link is an external reference found in a slide's relationship descriptor.
type Link struct {
	Source   string `json:"source" yaml:"source"`
	Target   string `json:"target" yaml:"target"`
	Raw      string `json:"raw,omitempty" yaml:"raw,omitempty"`
	Resolved bool   `json:"resolved" yaml:"resolved"`
	Entry    string `json:"entry" yaml:"entry"`
}

// Extraction is a part copied out of the archive.
type Extraction struct {
	Source   string   `json:"source" yaml:"source"`
	Path     string   `json:"path" yaml:"path"`
	Category Category `json:"category" yaml:"category"`
	Entry    string   `json:"entry" yaml:"entry"`
}

// Sink receives manifest records in the order they are found.
type Sink interface {
	Link(Link) error
	Extraction(Extraction) error
}

// TextSink writes the semicolon-delimited manifest:
//
//	<source>;<target>
//	<source>;<written path>;(embedded|media)
type TextSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

func (s *TextSink) Link(l Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "%s;%s\n", l.Source, l.Target)
	return err
}

func (s *TextSink) Extraction(e Extraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "%s;%s;(%s)\n", e.Source, e.Path, e.Category)
	return err
}

// MultiSink forwards every record to all sinks, returning the first error.
type MultiSink []Sink

func (m MultiSink) Link(l Link) error {
	var first error
	for _, s := range m {
		if err := s.Link(l); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m MultiSink) Extraction(e Extraction) error {
	var first error
	for _, s := range m {
		if err := s.Extraction(e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Discard drops every record.
var Discard Sink = discard{}

type discard struct{}

func (discard) Link(Link) error             { return nil }
func (discard) Extraction(Extraction) error { return nil }
