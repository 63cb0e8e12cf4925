package pptx

import (
	"time"

	"github.com/google/uuid"
)

// Run processes a list of inputs, each identical raw string at most once,
// and keeps the worst severity seen.
type Run struct {
	ID      string
	Started time.Time
	Results []FileResult

	proc     *Processor
	seen     map[string]struct{}
	severity Severity
}

func (p *Processor) NewRun() *Run {
	return p.NewRunWithID(uuid.NewString())
}

// NewRunWithID starts a run under an id chosen by the caller, for sinks that
// must know the id before the first record arrives.
func (p *Processor) NewRunWithID(id string) *Run {
	return &Run{
		ID:      id,
		Started: time.Now(),
		proc:    p,
		seen:    make(map[string]struct{}),
	}
}

// Process handles one raw input. Deduplication compares the raw string
// exactly, before trimming or path normalization. The second return value
// is false when the input was already processed in this run.
func (r *Run) Process(raw string) (FileResult, bool) {
	if _, ok := r.seen[raw]; ok {
		r.proc.logger.Debug("input already processed", "input", raw)
		return FileResult{}, false
	}
	r.seen[raw] = struct{}{}
	res := r.proc.Process(raw)
	r.severity = r.severity.Max(res.Severity)
	r.Results = append(r.Results, res)
	return res, true
}

// ProcessAll handles inputs in order and returns the run severity.
func (r *Run) ProcessAll(inputs []string) Severity {
	for _, in := range inputs {
		r.Process(in)
	}
	return r.severity
}

// Forget allows raw to be processed again, used when a watched file changes.
func (r *Run) Forget(raw string) {
	delete(r.seen, raw)
}

// Severity is the maximum severity over every processed file.
func (r *Run) Severity() Severity { return r.severity }
