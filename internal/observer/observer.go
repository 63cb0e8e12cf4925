package observer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnemet/pptxtract/internal/pptx"
)

// Observer watches a directory and inspects every presentation that appears
// or changes in it. Files written by extraction are never inspected.
type Observer struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	written map[string]struct{}
	timers  map[string]*time.Timer

	// OnResult is called after each processed file.
	OnResult func(pptx.FileResult)
}

func NewObserver(dir string, debounce time.Duration, logger *slog.Logger) (*Observer, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{
		dir:      abs,
		debounce: debounce,
		logger:   logger,
		written:  make(map[string]struct{}),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// MarkWritten records a file produced by extraction so its events are ignored.
// It is meant to be used as pptx.Config.OnExtract.
func (o *Observer) MarkWritten(path string) {
	o.mu.Lock()
	o.written[filepath.Clean(path)] = struct{}{}
	o.mu.Unlock()
}

func (o *Observer) isWritten(path string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.written[filepath.Clean(path)]
	return ok
}

func (o *Observer) log(msg string, args ...any) {
	o.logger.Info(msg, append([]any{"dir", o.dir}, args...)...)
}

// Start scans the directory, then processes changes until ctx is done.
// All processing happens on the calling goroutine.
func (o *Observer) Start(ctx context.Context, run *pptx.Run) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	info, err := os.Stat(o.dir)
	if err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch directory: %s is not a directory", o.dir)
	}

	if err := watcher.Add(o.dir); err != nil {
		return err
	}
	o.log("observer started")

	// Initial scan
	o.scanDirectory(run)

	ready := make(chan string, 16)
	done := make(chan struct{})
	defer close(done)
	defer o.stopTimers()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !isPresentation(event.Name) || o.isWritten(event.Name) {
				continue
			}
			o.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			o.schedule(event.Name, ready, done)

		case path := <-ready:
			o.process(run, path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			o.logger.Warn("watcher error", "error", err)

		case <-ctx.Done():
			o.log("observer stopped")
			return nil
		}
	}
}

// schedule (re)starts the quiet period for path; when it expires the path is
// handed back to the processing loop.
func (o *Observer) schedule(path string, ready chan<- string, done <-chan struct{}) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if t, ok := o.timers[path]; ok {
		t.Stop()
	}
	o.timers[path] = time.AfterFunc(o.debounce, func() {
		o.mu.Lock()
		delete(o.timers, path)
		o.mu.Unlock()
		handOff(path, ready, done)
	})
}

// handOff delivers path to the processing loop, giving up once the loop has
// returned.
func handOff(path string, ready chan<- string, done <-chan struct{}) bool {
	select {
	case ready <- path:
		return true
	case <-done:
		return false
	}
}

func (o *Observer) stopTimers() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for path, t := range o.timers {
		t.Stop()
		delete(o.timers, path)
	}
}

func (o *Observer) scanDirectory(run *pptx.Run) {
	files, err := os.ReadDir(o.dir)
	if err != nil {
		o.logger.Warn("failed to scan directory", "dir", o.dir, "error", err)
		return
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		if !f.IsDir() && isPresentation(f.Name()) {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		o.process(run, filepath.Join(o.dir, name))
	}
}

func (o *Observer) process(run *pptx.Run, path string) {
	if o.isWritten(path) {
		return
	}
	o.log("processing file", "file", filepath.Base(path))
	run.Forget(path)
	res, _ := run.Process(path)
	if o.OnResult != nil {
		o.OnResult(res)
	}
}

func isPresentation(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".pptx") && !strings.HasPrefix(base, "~$")
}
