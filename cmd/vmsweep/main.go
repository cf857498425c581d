package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/vmsweep/internal/cache"
	"github.com/panbanda/vmsweep/internal/logging"
	"github.com/panbanda/vmsweep/internal/output"
	"github.com/panbanda/vmsweep/internal/review"
	"github.com/panbanda/vmsweep/pkg/analyzer"
	"github.com/panbanda/vmsweep/pkg/analyzer/patch"
	"github.com/panbanda/vmsweep/pkg/config"
	"github.com/panbanda/vmsweep/pkg/models"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// getPath returns the project path argument, defaulting to ".".
func getPath(c *cli.Context) string {
	if c.Args().Len() > 0 {
		return c.Args().First()
	}
	return "."
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "vmsweep",
		Usage:     "Find unused ZK ViewModels and ViewModel methods",
		Version:   version,
		ArgsUsage: "[project]",
		Description: `vmsweep indexes the ViewModel classes of a ZK web project, collects every
reference made to them from ZUL templates and Java code, and reports the
ViewModels and methods nothing uses.

With --interactive each unused method is presented for approval; approved
methods are written as unified-diff patches that remove them. Decisions are
cached per project so a later run only asks about new findings.`,
		Flags:  analyzeFlags(),
		Action: runAnalyzeCmd,
		Commands: []*cli.Command{
			initCmd(),
			configCmd(),
			mcpCmd(),
			watchCmd(),
		},
	}
}

func analyzeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to config file (TOML, YAML, or JSON)",
			EnvVars: []string{"VMSWEEP_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: markdown, text, json, yaml, toon",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write output to file",
		},
		&cli.StringFlag{
			Name:  "report-file",
			Usage: "Where to save the Markdown report (empty string disables it)",
		},
		&cli.BoolFlag{
			Name:    "interactive",
			Aliases: []string{"i"},
			Usage:   "Review each unused method and emit patches for approved ones",
		},
		&cli.BoolFlag{
			Name:  "reset-cache",
			Usage: "Forget cached review decisions before starting",
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "Do not read or write cached review decisions",
		},
		&cli.BoolFlag{
			Name:  "patch",
			Usage: "Emit removal patches for every unused method without asking",
		},
		&cli.StringFlag{
			Name:  "patch-dir",
			Usage: "Directory for generated patch files",
		},
		&cli.BoolFlag{
			Name:  "no-partial-match",
			Usage: "Do not follow includes whose path is only known at runtime",
		},
		&cli.StringFlag{
			Name:  "ignore-file",
			Usage: "File listing annotation prefixes that keep a method alive",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log skipped files, unresolved constants and includes",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Hide progress bars",
		},
	}
}

// loadConfig reads the --config file, or searches root for one, then applies
// command-line overrides.
func loadConfig(c *cli.Context, root string) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		cfg = loaded
	} else {
		loaded, path, err := config.LoadOrDefault(root)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		cfg = loaded
	}

	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.IsSet("report-file") {
		cfg.Output.ReportFile = c.String("report-file")
	}
	if c.IsSet("patch-dir") {
		cfg.Output.PatchDir = c.String("patch-dir")
	}
	if c.Bool("no-partial-match") {
		cfg.Analysis.PartialMatch = false
	}
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	if c.Bool("verbose") {
		cfg.Output.Verbose = true
	}
	if c.IsSet("ignore-file") {
		cfg.Analysis.IgnoreFile = c.String("ignore-file")
	}
	return cfg, nil
}

func newLogger(c *cli.Context, cfg *config.Config) *logging.Logger {
	level := logging.LevelInfo
	if cfg.Output.Verbose {
		level = logging.LevelDebug
	}
	return logging.New(level, c.App.ErrWriter)
}

func runAnalyzeCmd(c *cli.Context) error {
	root := getPath(c)
	cfg, err := loadConfig(c, root)
	if err != nil {
		return err
	}
	log := newLogger(c, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := analyzer.New(
		analyzer.WithConfig(cfg),
		analyzer.WithLogger(log),
		analyzer.WithQuiet(c.Bool("quiet")),
	)
	res, err := a.Analyze(ctx, root)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report := res.Report()
	if path := cfg.Output.ReportFile; path != "" {
		if err := os.WriteFile(path, []byte(report.Markdown()), 0o644); err != nil {
			log.Warn("report not saved", logging.F("file", path), logging.F("err", err))
		} else {
			log.Debug("report saved", logging.F("file", path))
		}
	}

	if err := writeReport(c, cfg, report); err != nil {
		return err
	}
	log.Info(res.Summary())

	if c.Bool("reset-cache") || c.Bool("interactive") {
		store := openStore(cfg, res.Root, log)
		if c.Bool("reset-cache") {
			if err := store.Reset(); err != nil {
				log.Warn("decision cache not reset", logging.F("err", err))
			} else {
				log.Info("decision cache cleared")
			}
		}
		if c.Bool("interactive") {
			return reviewAndPatch(c, cfg, res, store, log)
		}
	}

	if c.Bool("patch") {
		emitPatches(c, cfg, res.Root, res.Analysis.UnusedMethods, log)
	}
	return nil
}

func writeReport(c *cli.Context, cfg *config.Config, r output.Renderable) error {
	format := output.ParseFormat(cfg.Output.Format)
	var formatter *output.Formatter
	if path := c.String("output"); path != "" {
		f, err := output.NewFormatter(format, path, false)
		if err != nil {
			return err
		}
		formatter = f
	} else {
		formatter = output.NewWriterFormatter(format, c.App.Writer, cfg.Output.Color)
	}
	defer formatter.Close()
	return formatter.Output(r)
}

// openStore opens the project's decision cache. A cache that cannot be opened
// degrades to an in-memory store for this session.
func openStore(cfg *config.Config, root string, log *logging.Logger) *cache.Store {
	dir := cfg.Cache.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	store, err := cache.Open(dir, root, cfg.Cache.Enabled)
	if err != nil {
		log.Warn("decision cache unavailable, decisions will not be kept", logging.F("dir", dir), logging.F("err", err))
		store, _ = cache.Open("", root, false)
	}
	return store
}

func reviewAndPatch(c *cli.Context, cfg *config.Config, res *analyzer.Result, store *cache.Store, log *logging.Logger) error {
	candidates := res.Analysis.UnusedMethods
	if len(candidates) == 0 {
		log.Info("nothing to review")
		return nil
	}

	session := review.NewSession(c.App.Reader, c.App.Writer, store,
		review.WithStoreErrorHandler(func(key string, err error) {
			log.Warn("decision not cached", logging.F("method", key), logging.F("err", err))
		}))
	result, err := session.Review(candidates)
	cancelled := errors.Is(err, review.ErrCancelled)
	if err != nil && !cancelled {
		return err
	}
	if err := store.Persist(); err != nil {
		log.Warn("decision cache not compacted", logging.F("file", store.Path()), logging.F("err", err))
	}
	if cancelled {
		log.Info("review cancelled", logging.F("approved", len(result.Approved)))
	}
	log.Info("review finished",
		logging.F("approved", len(result.Approved)),
		logging.F("rejected", result.Rejected),
		logging.F("from_cache", result.FromCache))

	emitPatches(c, cfg, res.Root, result.Approved, log)
	return nil
}

// emitPatches writes one patch per source file. Failures are warnings.
func emitPatches(c *cli.Context, cfg *config.Config, root string, methods []models.DeadMethod, log *logging.Logger) {
	if len(methods) == 0 {
		return
	}
	patches, failed := patch.New(patch.WithRoot(root)).Emit(methods)
	for file, err := range failed {
		log.Warn("patch not generated", logging.F("file", file), logging.F("err", err))
	}
	for _, p := range patches {
		for _, s := range p.Skipped {
			log.Warn("method not located", logging.F("method", s.Method.Key()), logging.F("err", s.Err))
		}
	}

	written, err := patch.Write(cfg.Output.PatchDir, patches)
	if err != nil {
		log.Warn("patches not written", logging.F("dir", cfg.Output.PatchDir), logging.F("err", err))
	}
	for _, path := range written {
		fmt.Fprintln(c.App.ErrWriter, color.GreenString("Wrote %s", path))
	}
}
