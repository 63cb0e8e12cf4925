package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/gnemet/pptxtract/internal/manifest"
	"github.com/gnemet/pptxtract/internal/pptx"
)

const (
	KindLink       = "link"
	KindExtraction = "extraction"
)

type Run struct {
	ID         string       `json:"id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt sql.NullTime `json:"finished_at"`
	Severity   int          `json:"severity"`
}

type File struct {
	ID       int    `json:"id"`
	RunID    string `json:"run_id"`
	Source   string `json:"source"`
	Path     string `json:"path"`
	Severity int    `json:"severity"`
	Problems string `json:"problems"`
}

type Record struct {
	ID        int       `json:"id"`
	RunID     string    `json:"run_id"`
	Source    string    `json:"source"`
	Entry     string    `json:"entry"`
	Kind      string    `json:"kind"`
	Target    string    `json:"target"`
	Category  string    `json:"category"`
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Store) SaveRun(r *Run) error {
	_, err := s.DB.Exec(s.rebind("INSERT INTO pptx_runs (id, started_at, severity) VALUES (?, ?, ?)"),
		r.ID, r.StartedAt.UTC(), r.Severity)
	return err
}

func (s *Store) FinishRun(id string, finishedAt time.Time, severity int) error {
	_, err := s.DB.Exec(s.rebind("UPDATE pptx_runs SET finished_at = ?, severity = ? WHERE id = ?"),
		finishedAt.UTC(), severity, id)
	return err
}

func (s *Store) SaveFile(f *File) (int, error) {
	query := `
		INSERT INTO pptx_files (run_id, source, path, severity, problems)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`
	var id int
	err := s.DB.QueryRow(s.rebind(query), f.RunID, f.Source, f.Path, f.Severity, f.Problems).Scan(&id)
	return id, err
}

func (s *Store) SaveRecord(r *Record) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO pptx_records (run_id, source, entry, kind, target, category, resolved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.DB.Exec(s.rebind(query), r.RunID, r.Source, r.Entry, r.Kind, r.Target, r.Category, r.Resolved, r.CreatedAt.UTC())
	return err
}

// SaveResult stores the per-file outcome of a processed input. Manifest
// records reach the store through a RecordSink while the file is processed.
func (s *Store) SaveResult(runID string, res pptx.FileResult) error {
	msgs := make([]string, 0, len(res.Problems))
	for _, p := range res.Problems {
		msgs = append(msgs, p.Message)
	}
	_, err := s.SaveFile(&File{
		RunID:    runID,
		Source:   res.Source,
		Path:     res.Path,
		Severity: int(res.Severity),
		Problems: strings.Join(msgs, "\n"),
	})
	return err
}

// RecordSink persists manifest records as they are produced.
type RecordSink struct {
	store *Store
	runID string
}

func (s *Store) NewRecordSink(runID string) *RecordSink {
	return &RecordSink{store: s, runID: runID}
}

func (rs *RecordSink) Link(l manifest.Link) error {
	return rs.store.SaveRecord(&Record{
		RunID:    rs.runID,
		Source:   l.Source,
		Entry:    l.Entry,
		Kind:     KindLink,
		Target:   l.Target,
		Resolved: l.Resolved,
	})
}

func (rs *RecordSink) Extraction(e manifest.Extraction) error {
	return rs.store.SaveRecord(&Record{
		RunID:    rs.runID,
		Source:   e.Source,
		Entry:    e.Entry,
		Kind:     KindExtraction,
		Target:   e.Path,
		Category: string(e.Category),
		Resolved: true,
	})
}
