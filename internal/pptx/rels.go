package pptx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
)

// ExternalTarget is a relationship that points outside the archive.
type ExternalTarget struct {
	// Raw is the Target attribute as written in the descriptor.
	Raw string
	// Path is the normalized absolute path, or Raw when Resolved is false.
	Path     string
	Resolved bool
}

// RelsReader pulls external targets out of a relationship descriptor.
// It makes a single pass over the underlying stream:
//
//	rr := NewRelsReader(rc)
//	for rr.Next() {
//		t := rr.Target()
//	}
//	if err := rr.Err(); err != nil { ... }
//
// Callers may stop calling Next at any time and close the stream.
type RelsReader struct {
	dec  *xml.Decoder
	src  *readTracker
	cur  ExternalTarget
	err  error
	done bool
}

// readTracker remembers the first non-EOF error of the underlying reader so
// read failures can be told apart from malformed XML.
type readTracker struct {
	r   io.Reader
	err error
}

func (t *readTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}

func NewRelsReader(r io.Reader) *RelsReader {
	src := &readTracker{r: r}
	dec := xml.NewDecoder(src)
	dec.CharsetReader = charset.NewReaderLabel
	return &RelsReader{dec: dec, src: src}
}

// Next advances to the next external relationship. It returns false at the
// end of the document or on the first error.
func (rr *RelsReader) Next() bool {
	if rr.done {
		return false
	}
	for {
		tok, err := rr.dec.Token()
		if err == io.EOF {
			rr.done = true
			return false
		}
		if err != nil {
			rr.fail(err)
			return false
		}
		el, ok := tok.(xml.StartElement)
		if !ok || el.Name.Local != "Relationship" {
			continue
		}
		target, ok := externalTarget(el)
		if !ok {
			continue
		}
		rr.cur = ResolveTarget(target)
		return true
	}
}

func (rr *RelsReader) Target() ExternalTarget { return rr.cur }

// Err reports the error that stopped iteration, wrapping ErrDescriptorRead
// or ErrDescriptorFormat.
func (rr *RelsReader) Err() error { return rr.err }

func (rr *RelsReader) fail(err error) {
	rr.done = true
	if rr.src.err != nil {
		rr.err = fmt.Errorf("%w: %w", ErrDescriptorRead, rr.src.err)
		return
	}
	var syntax *xml.SyntaxError
	if errors.As(err, &syntax) {
		rr.err = fmt.Errorf("%w: line %d: %s", ErrDescriptorFormat, syntax.Line, syntax.Msg)
		return
	}
	rr.err = fmt.Errorf("%w: %w", ErrDescriptorFormat, err)
}

// FindExternalTargets drains r and returns every external target in document order.
func FindExternalTargets(r io.Reader) ([]ExternalTarget, error) {
	var out []ExternalTarget
	rr := NewRelsReader(r)
	for rr.Next() {
		out = append(out, rr.Target())
	}
	return out, rr.Err()
}

func externalTarget(el xml.StartElement) (string, bool) {
	var mode, target string
	var hasMode, hasTarget bool
	for _, a := range el.Attr {
		if a.Name.Space != "" {
			continue
		}
		switch a.Name.Local {
		case "TargetMode":
			mode, hasMode = a.Value, true
		case "Target":
			target, hasTarget = a.Value, true
		}
	}
	if !hasMode || !hasTarget || mode != "External" {
		return "", false
	}
	return target, true
}

var (
	urlScheme = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]+:`)
	drivePath = regexp.MustCompile(`^[A-Za-z]:[/\\]`)
)

// ResolveTarget turns a relationship target into a filesystem path.
// A leading "file:///" is stripped; targets that are not paths (URLs,
// strings containing NUL) come back unchanged with Resolved=false.
func ResolveTarget(raw string) ExternalTarget {
	t := ExternalTarget{Raw: raw, Path: raw}
	p := raw
	if rest, ok := strings.CutPrefix(raw, "file:///"); ok {
		// file:///C:/x names a drive path. file:///home/x names the rooted
		// /home/x, not home/x below the working directory.
		p = rest
		if !drivePath.MatchString(rest) {
			p = "/" + rest
		}
	}
	if strings.ContainsRune(p, 0) || urlScheme.MatchString(p) {
		return t
	}
	if drivePath.MatchString(p) && filepath.VolumeName(p) == "" {
		// Windows drive path on a host without volumes.
		t.Path = path.Clean(strings.ReplaceAll(p, `\`, "/"))
		t.Resolved = true
		return t
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return t
	}
	t.Path = abs
	t.Resolved = true
	return t
}
