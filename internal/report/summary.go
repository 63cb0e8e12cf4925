// Package report renders the outcome of a run for auditors: a YAML summary
// for tooling and a Markdown or HTML report for people.
package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gnemet/pptxtract/internal/pptx"
)

// Summary is the YAML document written with --summary.
type Summary struct {
	RunID       string     `yaml:"run_id"`
	GeneratedAt string     `yaml:"generated_at"`
	StartedAt   string     `yaml:"started_at"`
	Severity    int        `yaml:"severity"`
	TotalFiles  int        `yaml:"total_files"`
	Failed      int        `yaml:"failed"`
	Links       int        `yaml:"links"`
	Extractions int        `yaml:"extractions"`
	Files       []FileInfo `yaml:"files"`
}

type FileInfo struct {
	Source      string        `yaml:"source"`
	Path        string        `yaml:"path,omitempty"`
	Severity    int           `yaml:"severity"`
	Problems    []ProblemInfo `yaml:"problems,omitempty"`
	Links       []string      `yaml:"links,omitempty"`
	Extractions []string      `yaml:"extractions,omitempty"`
}

type ProblemInfo struct {
	Severity int    `yaml:"severity"`
	Category string `yaml:"category"`
	Entry    string `yaml:"entry,omitempty"`
	Message  string `yaml:"message"`
}

// NewSummary collects the results of run.
func NewSummary(run *pptx.Run, now time.Time) Summary {
	s := Summary{
		RunID:       run.ID,
		GeneratedAt: now.Format(time.RFC3339),
		StartedAt:   run.Started.Format(time.RFC3339),
		Severity:    int(run.Severity()),
		TotalFiles:  len(run.Results),
	}
	for _, res := range run.Results {
		fi := FileInfo{
			Source:   res.Source,
			Path:     res.Path,
			Severity: int(res.Severity),
		}
		if res.Severity != pptx.SeverityOK {
			s.Failed++
		}
		for _, p := range res.Problems {
			fi.Problems = append(fi.Problems, ProblemInfo{
				Severity: int(p.Severity),
				Category: p.Severity.String(),
				Entry:    p.Entry,
				Message:  p.Message,
			})
		}
		for _, l := range res.Links {
			fi.Links = append(fi.Links, l.Target)
		}
		for _, e := range res.Extractions {
			fi.Extractions = append(fi.Extractions, fmt.Sprintf("%s (%s)", e.Path, e.Category))
		}
		s.Links += len(res.Links)
		s.Extractions += len(res.Extractions)
		s.Files = append(s.Files, fi)
	}
	return s
}

// WriteYAML encodes the summary.
func (s Summary) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	return enc.Close()
}

// SaveYAML writes the summary to path.
func (s Summary) SaveYAML(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating summary file: %w", err)
	}
	if err := s.WriteYAML(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
