package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/gnemet/pptxtract/internal/config"
	"github.com/gnemet/pptxtract/internal/database"
	"github.com/gnemet/pptxtract/internal/manifest"
	"github.com/gnemet/pptxtract/internal/observer"
	"github.com/gnemet/pptxtract/internal/pptx"
	"github.com/gnemet/pptxtract/internal/report"
)

const version = "0.0.15"

// exitUsage matches the status of a command line without any FILE.
const exitUsage = 2

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "pptxtract",
		Usage:     "list linked documents and extract embedded files from PowerPoint 2007+ presentations",
		UsageText: "pptxtract [options] FILE...",
		Version:   version,
		// Allows -xio as well as -x -i -o.
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "extract-embeddings",
				Aliases: []string{"x"},
				Usage:   "extract embedded files such as *.docx, *.xlsx or other *.pptx files",
			},
			&cli.BoolFlag{
				Name:    "extract-images",
				Aliases: []string{"i"},
				Usage:   "extract image files such as *.png, *.wmf or *.emf as well",
			},
			&cli.BoolFlag{
				Name:    "overwrite",
				Aliases: []string{"o"},
				Usage:   "overwrite existing files when extracting",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "configuration file (default " + config.DefaultConfigFile + ")",
			},
			&cli.StringFlag{
				Name:  "summary",
				Usage: "write a YAML run summary to `FILE`",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "write an audit report to `FILE` (.md, or .html/.htm)",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "persist the run to `DSN` (postgres:// URL or SQLite path)",
			},
			&cli.StringFlag{
				Name:  "watch",
				Usage: "keep watching `DIR` for new or changed presentations",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, cfg)

	logger := newLogger(c.App.ErrWriter, cfg.Log.Level)
	slog.SetDefault(logger)

	otherInputs := c.Args().Present() || cfg.Watch.Dir != ""
	inputs := gatherInputs(openStdin(c.App.ErrWriter, otherInputs), c.Args().Slice())
	if len(inputs) == 0 && cfg.Watch.Dir == "" {
		cli.ShowAppHelp(c)
		return cli.Exit("Missing required parameter: FILE", exitUsage)
	}

	var obs *observer.Observer
	if cfg.Watch.Dir != "" {
		obs, err = observer.NewObserver(cfg.Watch.Dir, cfg.Watch.Debounce, logger)
		if err != nil {
			return err
		}
	}

	runID := uuid.NewString()
	sinks := manifest.MultiSink{manifest.NewTextSink(c.App.Writer)}
	store := openStore(cfg.Store, runID, logger)
	if store != nil {
		defer store.Close()
		sinks = append(sinks, store.NewRecordSink(runID))
	}

	pcfg := pptx.Config{
		Options: cfg.Extract,
		Sink:    sinks,
		Diag:    c.App.ErrWriter,
		Logger:  logger,
	}
	if obs != nil {
		pcfg.OnExtract = obs.MarkWritten
	}
	run := pptx.New(pcfg).NewRunWithID(runID)
	logger.Debug("run started", "run", run.ID, "inputs", len(inputs))

	persist := func(res pptx.FileResult) {
		if store == nil {
			return
		}
		if err := store.SaveResult(run.ID, res); err != nil {
			logger.Warn("failed to store result", "source", res.Source, "error", err)
		}
	}

	for _, in := range inputs {
		if res, ok := run.Process(in); ok {
			persist(res)
		}
	}

	if obs != nil {
		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()
		obs.OnResult = persist
		if err := obs.Start(ctx, run); err != nil {
			logger.Error("watch mode failed", "dir", cfg.Watch.Dir, "error", err)
		}
	}

	finish(cfg, run, store, logger)

	if sev := run.Severity(); sev != pptx.SeverityOK {
		return cli.Exit("", int(sev))
	}
	return nil
}

// applyFlags lets explicitly set flags win over configuration.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("extract-embeddings") {
		cfg.Extract.ExtractEmbeddings = c.Bool("extract-embeddings")
	}
	if c.IsSet("extract-images") {
		cfg.Extract.ExtractMedia = c.Bool("extract-images")
	}
	if c.IsSet("overwrite") {
		cfg.Extract.Overwrite = c.Bool("overwrite")
	}
	if c.IsSet("summary") {
		cfg.Output.Summary = c.String("summary")
	}
	if c.IsSet("report") {
		cfg.Output.Report = c.String("report")
	}
	if c.IsSet("store") {
		cfg.Store.DSN = c.String("store")
	}
	if c.IsSet("watch") {
		cfg.Watch.Dir = c.String("watch")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

var openStdin = func(errw io.Writer, otherInputs bool) io.Reader {
	return pipedInput(os.Stdin, errw, otherInputs)
}

// pipedInput returns f when its lines should be read as inputs. A terminal is
// never read. With other inputs at hand, a pipe is only read when it already
// has data or is closed, so an idle pipe left open by the caller cannot stall
// the run; without them it is read to EOF.
func pipedInput(f *os.File, errw io.Writer, otherInputs bool) io.Reader {
	fi, err := f.Stat()
	if err != nil {
		fmt.Fprintln(errw, "Error while reading from stdin.")
		return nil
	}
	switch {
	case fi.Mode()&os.ModeCharDevice != 0:
		return nil
	case fi.Mode().IsRegular(), !otherInputs:
		return f
	case inputPending(f):
		return f
	default:
		slog.Debug("stdin has no pending input, ignoring it")
		return nil
	}
}

// gatherInputs puts the trimmed, non-empty lines of stdin before args.
func gatherInputs(stdin io.Reader, args []string) []string {
	var inputs []string
	if stdin != nil {
		sc := bufio.NewScanner(stdin)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				inputs = append(inputs, line)
			}
		}
		if err := sc.Err(); err != nil {
			slog.Warn("Error while reading from stdin.", "error", err)
		}
	}
	return append(inputs, args...)
}

func openStore(sc config.StoreConfig, runID string, logger *slog.Logger) *database.Store {
	if !sc.Enabled() {
		return nil
	}
	store, err := database.NewConnection(sc.DSN)
	if err != nil {
		logger.Warn("store disabled", "driver", database.Driver(sc.DSN), "error", err)
		return nil
	}
	if err := store.SaveRun(&database.Run{ID: runID, StartedAt: time.Now()}); err != nil {
		logger.Warn("store disabled", "error", err)
		store.Close()
		return nil
	}
	return store
}

func finish(cfg *config.Config, run *pptx.Run, store *database.Store, logger *slog.Logger) {
	now := time.Now()
	if store != nil {
		if err := store.FinishRun(run.ID, now, int(run.Severity())); err != nil {
			logger.Warn("failed to finish stored run", "run", run.ID, "error", err)
		}
	}
	if cfg.Output.Summary == "" && cfg.Output.Report == "" {
		return
	}

	summary := report.NewSummary(run, now)
	if path := cfg.Output.Summary; path != "" {
		if err := summary.SaveYAML(path); err != nil {
			logger.Error("failed to write summary", "path", path, "error", err)
		}
	}
	if path := cfg.Output.Report; path != "" {
		if err := summary.Save(path); err != nil {
			logger.Error("failed to write report", "path", path, "error", err)
		}
	}
}
