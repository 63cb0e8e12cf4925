package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/russross/blackfriday/v2"
)

// Markdown renders the summary as an audit report.
func (s Summary) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Presentation audit\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", s.RunID)
	fmt.Fprintf(&b, "- Started: %s\n", s.StartedAt)
	fmt.Fprintf(&b, "- Files: %d (%d with problems)\n", s.TotalFiles, s.Failed)
	fmt.Fprintf(&b, "- External links: %d\n", s.Links)
	fmt.Fprintf(&b, "- Extracted parts: %d\n", s.Extractions)
	fmt.Fprintf(&b, "- Exit severity: %d\n", s.Severity)

	for _, f := range s.Files {
		fmt.Fprintf(&b, "\n## %s\n\n", escape(f.Source))
		if f.Path != "" && f.Path != f.Source {
			fmt.Fprintf(&b, "Path: `%s`\n\n", f.Path)
		}
		fmt.Fprintf(&b, "Severity: %d\n", f.Severity)

		if len(f.Links) > 0 {
			b.WriteString("\n### External links\n\n| # | Target |\n|---|---|\n")
			for i, l := range f.Links {
				fmt.Fprintf(&b, "| %d | %s |\n", i+1, cell(l))
			}
		}
		if len(f.Extractions) > 0 {
			b.WriteString("\n### Extracted parts\n\n| # | File |\n|---|---|\n")
			for i, e := range f.Extractions {
				fmt.Fprintf(&b, "| %d | %s |\n", i+1, cell(e))
			}
		}
		if len(f.Problems) > 0 {
			b.WriteString("\n### Problems\n\n| Severity | Category | Entry | Message |\n|---|---|---|---|\n")
			for _, p := range f.Problems {
				fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", p.Severity, p.Category, cell(p.Entry), cell(p.Message))
			}
		}
	}
	return b.String()
}

// HTML renders the Markdown report to a standalone HTML page.
func (s Summary) HTML() []byte {
	body := blackfriday.Run([]byte(s.Markdown()),
		blackfriday.WithExtensions(blackfriday.CommonExtensions),
		blackfriday.WithRenderer(blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
			Flags: blackfriday.CommonHTMLFlags | blackfriday.CompletePage,
			Title: "Presentation audit " + s.RunID,
		})),
	)
	return body
}

// Save writes the report; .html and .htm targets get HTML, anything else Markdown.
func (s Summary) Save(path string) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		data = s.HTML()
	default:
		data = []byte(s.Markdown())
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error saving report: %w", err)
	}
	return nil
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	return escape(s)
}

var mdEscaper = strings.NewReplacer("*", `\*`, "_", `\_`, "`", "\\`", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return mdEscaper.Replace(s)
}
