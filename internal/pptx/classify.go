package pptx

import (
	"archive/zip"
	"regexp"
	"strings"
)

// Classification is the set of roles an archive entry plays.
// The zero value means the entry is irrelevant.
type Classification uint8

const (
	EmbeddedCandidate Classification = 1 << iota
	MediaCandidate
	RelationshipDescriptor
)

const Irrelevant Classification = 0

func (c Classification) Has(k Classification) bool { return c&k != 0 }

func (c Classification) String() string {
	if c == Irrelevant {
		return "irrelevant"
	}
	var parts []string
	if c.Has(EmbeddedCandidate) {
		parts = append(parts, "embedded")
	}
	if c.Has(MediaCandidate) {
		parts = append(parts, "media")
	}
	if c.Has(RelationshipDescriptor) {
		parts = append(parts, "relationships")
	}
	return strings.Join(parts, "+")
}

// rule matches entry names against a fixed OOXML location.
type rule struct {
	kind     Classification
	pattern  *regexp.Regexp
	foldCase bool
}

func (r rule) match(name string) bool {
	if r.foldCase {
		name = strings.ToLower(name)
	}
	return r.pattern.MatchString(name)
}

// Classifier decides what to do with each archive entry.
type Classifier struct {
	rules []rule
}

var slideRelsPattern = regexp.MustCompile(`^ppt/slides/_rels/slide\d+\.xml\.rels$`)

// NewClassifier compiles the rule table for the given registry.
func NewClassifier(reg *Registry) *Classifier {
	if reg == nil {
		reg = DefaultRegistry
	}
	return &Classifier{rules: []rule{
		{
			kind:     EmbeddedCandidate,
			pattern:  regexp.MustCompile(`^ppt/embeddings/.*\.(` + reg.ExtractablePattern() + `)$`),
			foldCase: true,
		},
		{
			kind:     MediaCandidate,
			pattern:  regexp.MustCompile(`^ppt/media/.*\.(` + reg.MediaPattern() + `)$`),
			foldCase: true,
		},
		{
			kind:    RelationshipDescriptor,
			pattern: slideRelsPattern,
		},
	}}
}

// Classify evaluates every rule; all matching roles are returned.
func (c *Classifier) Classify(name string) Classification {
	var out Classification
	for _, r := range c.rules {
		if r.match(name) {
			out |= r.kind
		}
	}
	return out
}

// ClassifyEntry is Classify for a zip entry. Directories are never extracted.
func (c *Classifier) ClassifyEntry(f *zip.File) Classification {
	cls := c.Classify(f.Name)
	if f.FileInfo().IsDir() {
		cls &^= EmbeddedCandidate | MediaCandidate
	}
	return cls
}
