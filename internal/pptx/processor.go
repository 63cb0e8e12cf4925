// Package pptx inspects PowerPoint 2007+ containers: it reports external
// documents linked from slides and copies embedded parts out of the archive.
package pptx

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnemet/pptxtract/internal/manifest"
)

// Options selects what the processor extracts besides the link manifest.
type Options struct {
	ExtractEmbeddings bool `mapstructure:"embeddings" yaml:"embeddings"`
	ExtractMedia      bool `mapstructure:"media" yaml:"media"`
	Overwrite         bool `mapstructure:"overwrite" yaml:"overwrite"`
}

// Config configures a Processor.
type Config struct {
	Options

	// Registry defaults to DefaultRegistry.
	Registry *Registry
	// Sink receives manifest records. Defaults to manifest.Discard.
	Sink manifest.Sink
	// Diag receives one human-readable line per failure. Defaults to os.Stderr.
	Diag io.Writer
	// Logger for debug tracing. Defaults to slog.Default().
	Logger *slog.Logger
	// OnExtract is called with every path written by extraction.
	OnExtract func(path string)
}

func (c *Config) defaults() {
	if c.Registry == nil {
		c.Registry = DefaultRegistry
	}
	if c.Sink == nil {
		c.Sink = manifest.Discard
	}
	if c.Diag == nil {
		c.Diag = os.Stderr
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Processor inspects one presentation at a time.
type Processor struct {
	cfg        Config
	classifier *Classifier
	writer     *Writer
	logger     *slog.Logger
}

func New(cfg Config) *Processor {
	cfg.defaults()
	return &Processor{
		cfg:        cfg,
		classifier: NewClassifier(cfg.Registry),
		writer:     &Writer{},
		logger:     cfg.Logger,
	}
}

// FileResult is the outcome of processing one input.
type FileResult struct {
	// Input is the raw string the file was requested with.
	Input string `yaml:"input"`
	// Source is the input with surrounding whitespace and quotes removed;
	// it is the first field of every manifest line.
	Source string `yaml:"source"`
	// Path is the absolute, cleaned path of the archive.
	Path        string                `yaml:"path,omitempty"`
	Severity    Severity              `yaml:"severity"`
	Problems    []Problem             `yaml:"problems,omitempty"`
	Links       []manifest.Link       `yaml:"links,omitempty"`
	Extractions []manifest.Extraction `yaml:"extractions,omitempty"`
}

// CleanInput trims whitespace and one pair of surrounding double quotes.
func CleanInput(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return s
}

// Process inspects the presentation named by raw. Failures never abort
// processing of other files; they are recorded in the result.
func (p *Processor) Process(raw string) FileResult {
	source := CleanInput(raw)
	res := FileResult{Input: raw, Source: source}

	switch {
	case strings.HasSuffix(source, ".ppt"):
		p.fail(&res, "", fmt.Errorf("%w: %s", ErrLegacyInput, source),
			"Only *.pptx files are supported! Please convert *.ppt files into *.pptx using MS PowerPoint.")
		return res
	case !strings.HasSuffix(source, ".pptx"):
		p.fail(&res, "", fmt.Errorf("%w: %s", ErrUnsupportedInput, source),
			"Only *.pptx files are supported!")
		return res
	}

	abs, err := filepath.Abs(source)
	if err != nil {
		abs = filepath.Clean(source)
	}
	res.Path = abs

	// Insecure entry names are tolerated; extraction only uses their last element.
	zr, err := zip.OpenReader(abs)
	if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && zr != nil) {
		p.fail(&res, "", fmt.Errorf("%w: %s: %w", ErrArchiveOpen, abs, err),
			"Failed to extract embedded/linked files from given OOXML/PPTX file: "+source)
		return res
	}
	defer zr.Close()

	p.logger.Debug("archive opened", "source", source, "entries", len(zr.File))
	dir := filepath.Dir(abs)
	for _, f := range zr.File {
		p.processEntry(&res, f, dir)
	}
	p.logger.Debug("archive done", "source", source, "severity", res.Severity,
		"links", len(res.Links), "extractions", len(res.Extractions))
	return res
}

func (p *Processor) processEntry(res *FileResult, f *zip.File, dir string) {
	cls := p.classifier.ClassifyEntry(f)
	if cls == Irrelevant {
		return
	}
	p.logger.Debug("entry matched", "source", res.Source, "entry", f.Name, "class", cls.String())

	if cls.Has(EmbeddedCandidate) && p.cfg.ExtractEmbeddings {
		p.extract(res, f, dir, manifest.CategoryEmbedded)
	}
	if cls.Has(MediaCandidate) && p.cfg.ExtractMedia {
		p.extract(res, f, dir, manifest.CategoryMedia)
	}
	if cls.Has(RelationshipDescriptor) {
		p.readRelationships(res, f)
	}
}

func (p *Processor) extract(res *FileResult, f *zip.File, dir string, cat manifest.Category) {
	written, err := p.writer.Extract(f, dir, p.cfg.Overwrite)
	if err != nil {
		p.fail(res, f.Name, err,
			fmt.Sprintf("Failed to extract %s file: %s", cat, filepath.Base(written)))
		return
	}
	if p.cfg.OnExtract != nil {
		p.cfg.OnExtract(written)
	}
	rec := manifest.Extraction{Source: res.Source, Path: written, Category: cat, Entry: f.Name}
	res.Extractions = append(res.Extractions, rec)
	if err := p.cfg.Sink.Extraction(rec); err != nil {
		p.logger.Warn("manifest sink failed", "source", res.Source, "error", err)
	}
}

func (p *Processor) readRelationships(res *FileResult, f *zip.File) {
	rc, err := f.Open()
	if err != nil {
		p.fail(res, f.Name, fmt.Errorf("%w: %s: %w", ErrDescriptorRead, f.Name, err),
			"Failed to read OOXML file: "+f.Name)
		return
	}
	defer rc.Close()

	rr := NewRelsReader(rc)
	for rr.Next() {
		t := rr.Target()
		rec := manifest.Link{
			Source:   res.Source,
			Target:   t.Path,
			Raw:      t.Raw,
			Resolved: t.Resolved,
			Entry:    f.Name,
		}
		res.Links = append(res.Links, rec)
		if err := p.cfg.Sink.Link(rec); err != nil {
			p.logger.Warn("manifest sink failed", "source", res.Source, "error", err)
		}
	}
	if err := rr.Err(); err != nil {
		msg := "Unsupported OOXML/PPTX file format found: " + f.Name
		if errors.Is(err, ErrDescriptorRead) {
			msg = "Failed to read OOXML file: " + f.Name
		}
		p.fail(res, f.Name, err, msg)
	}
}

func (p *Processor) fail(res *FileResult, entry string, err error, msg string) {
	sev := SeverityOf(err)
	res.Severity = res.Severity.Max(sev)
	res.Problems = append(res.Problems, Problem{Severity: sev, Entry: entry, Message: msg, Err: err})
	fmt.Fprintln(p.cfg.Diag, msg)
	p.logger.Debug("problem recorded", "source", res.Source, "entry", entry, "severity", int(sev), "error", err)
}
