package pptx

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Registry holds the extension sets used to pick extractable parts.
// Extensions are stored lowercase without the leading dot.
type Registry struct {
	media       map[string]struct{}
	extractable map[string]struct{}
}

var (
	mediaExtensions = []string{"png", "bmp", "dib", "wmf", "emf", "jpg"}

	documentExtensions = []string{
		"xlsx", "xls",
		"docx", "doc",
		"pptx", "ppt",
		"pdf", "txt", "csv", "ini",
		"tiff", "tif", "wav",
	}
)

// DefaultRegistry is the registry used when a Processor has none.
var DefaultRegistry = MustRegistry(mediaExtensions, documentExtensions)

// NewRegistry builds a registry from the media set and the additional
// extractable extensions. Media extensions are always extractable too.
func NewRegistry(media, extra []string) (*Registry, error) {
	r := &Registry{
		media:       make(map[string]struct{}, len(media)),
		extractable: make(map[string]struct{}, len(media)+len(extra)),
	}
	for _, ext := range media {
		ext = normalizeExt(ext)
		if ext == "" {
			return nil, fmt.Errorf("empty media extension")
		}
		r.media[ext] = struct{}{}
		r.extractable[ext] = struct{}{}
	}
	for _, ext := range extra {
		ext = normalizeExt(ext)
		if ext == "" {
			return nil, fmt.Errorf("empty extractable extension")
		}
		r.extractable[ext] = struct{}{}
	}
	for ext := range r.media {
		if _, ok := r.extractable[ext]; !ok {
			return nil, fmt.Errorf("media extension %q is not extractable", ext)
		}
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry(media, extra []string) *Registry {
	r, err := NewRegistry(media, extra)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) IsMedia(ext string) bool {
	_, ok := r.media[normalizeExt(ext)]
	return ok
}

func (r *Registry) IsExtractable(ext string) bool {
	_, ok := r.extractable[normalizeExt(ext)]
	return ok
}

// MediaPattern returns a regexp alternation of the media extensions.
func (r *Registry) MediaPattern() string {
	return alternation(r.media)
}

// ExtractablePattern returns a regexp alternation of all extractable extensions.
func (r *Registry) ExtractablePattern() string {
	return alternation(r.extractable)
}

func alternation(set map[string]struct{}) string {
	exts := make([]string, 0, len(set))
	for ext := range set {
		exts = append(exts, regexp.QuoteMeta(ext))
	}
	sort.Strings(exts)
	return strings.Join(exts, "|")
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
