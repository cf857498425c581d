// Package analyzer runs the full ViewModel liveness pipeline over a project:
// indexing, template scanning, Java call resolution, propagation and
// classification.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/panbanda/vmsweep/internal/fileproc"
	"github.com/panbanda/vmsweep/internal/logging"
	"github.com/panbanda/vmsweep/internal/progress"
	"github.com/panbanda/vmsweep/pkg/analyzer/inherit"
	"github.com/panbanda/vmsweep/pkg/analyzer/invocation"
	"github.com/panbanda/vmsweep/pkg/analyzer/liveness"
	"github.com/panbanda/vmsweep/pkg/analyzer/source"
	"github.com/panbanda/vmsweep/pkg/analyzer/template"
	"github.com/panbanda/vmsweep/pkg/config"
	"github.com/panbanda/vmsweep/pkg/models"
	"github.com/panbanda/vmsweep/pkg/parser"
	"github.com/panbanda/vmsweep/pkg/scanner"
)

// Analyzer finds unused ViewModels and methods.
type Analyzer struct {
	config     *config.Config
	log        *logging.Logger
	quiet      bool
	ignoreFile string
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithConfig sets the configuration. A nil config means defaults.
func WithConfig(cfg *config.Config) Option {
	return func(a *Analyzer) {
		if cfg != nil {
			a.config = cfg
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *logging.Logger) Option {
	return func(a *Analyzer) {
		a.log = log
	}
}

// WithQuiet suppresses progress bars.
func WithQuiet(quiet bool) Option {
	return func(a *Analyzer) {
		a.quiet = quiet
	}
}

// WithIgnoreFile overrides analysis.ignore_file.
func WithIgnoreFile(path string) Option {
	return func(a *Analyzer) {
		a.ignoreFile = path
	}
}

// New creates an analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{config: config.DefaultConfig()}
	for _, opt := range opts {
		opt(a)
	}
	if a.ignoreFile == "" {
		a.ignoreFile = a.config.Analysis.IgnoreFile
	}
	return a
}

// Stats describes what each phase saw.
type Stats struct {
	JavaFiles        int
	JavaSkipped      int
	Constants        int
	Templates        template.Stats
	Invocations      invocation.Stats
	UnmatchedIDs     int
	PropagationSteps int
}

// Result is a finished analysis.
type Result struct {
	Root     string
	Project  *scanner.Project
	Index    *source.Index
	Usage    *models.UsageIndex
	Ignore   *liveness.IgnoreList
	Analysis *models.DeadCodeAnalysis
	Cycles   [][]string
	Stats    Stats
}

// Registry returns the analyzed ViewModels.
func (r *Result) Registry() *models.Registry {
	return r.Index.Registry
}

// Report returns the renderable findings.
func (r *Result) Report() *liveness.Report {
	return liveness.NewReport(r.Analysis, r.Root)
}

// parsed is what one worker extracts from one Java file.
type parsed struct {
	index *source.FileIndex
	sites *invocation.FileSites
}

// Analyze runs every phase over the project at root. Only an unreadable root
// or cancellation is an error; per-file problems are logged and skipped.
func (a *Analyzer) Analyze(ctx context.Context, root string) (*Result, error) {
	project, err := scanner.NewScanner(a.config).ScanProject(root)
	if err != nil {
		return nil, err
	}
	res := &Result{Root: project.Root, Project: project}
	a.log.Debug("project scanned",
		logging.F("java", len(project.JavaFiles)),
		logging.F("template_roots", len(project.Templates)),
		logging.F("templates", len(project.TemplateFiles())))

	ignore := a.ignoreList(project.Root)
	res.Ignore = ignore

	files, err := a.indexSources(ctx, project, res)
	if err != nil {
		return nil, err
	}

	// Constants are complete once Build has seen every file.
	res.Index = source.Build(a.indexes(files))
	res.Stats.Constants = res.Index.Constants.Len()
	for _, u := range res.Index.Unresolved {
		a.log.Debug("command constant not resolved",
			logging.F("ref", u.Ref), logging.F("method", u.ViewModel+"#"+u.Method), logging.F("file", u.File))
	}
	for _, d := range res.Index.Duplicates {
		a.log.Warn("duplicate ViewModel ignored",
			logging.F("fqn", d.FQN), logging.F("file", d.File), logging.F("kept", d.Kept))
	}
	reg := res.Index.Registry

	if res.Cycles = inherit.Cycles(reg); len(res.Cycles) > 0 {
		for _, c := range res.Cycles {
			a.log.Warn("cyclic ViewModel hierarchy", logging.F("classes", c))
		}
	}

	usage, tstats, err := a.scanTemplates(ctx, project)
	if err != nil {
		return nil, err
	}
	res.Usage = usage
	res.Stats.Templates = tstats

	// The whole usage index exists before any climbing starts.
	res.Stats.UnmatchedIDs = inherit.Attribute(reg, usage)
	inherit.Reconcile(reg)

	edges, istats := invocation.Resolve(reg, a.sites(files))
	res.Stats.Invocations = istats
	if !a.config.Analysis.SelfCalls {
		edges = nil
	}
	res.Stats.PropagationSteps = propagate(reg, edges, ignore)

	res.Analysis = liveness.Classify(reg, ignore)
	s := &res.Analysis.Summary
	s.JavaFilesAnalyzed = res.Stats.JavaFiles
	s.JavaFilesSkipped = res.Stats.JavaSkipped
	s.TemplateFilesScanned = len(project.TemplateFiles())

	a.log.Debug("analysis complete",
		logging.F("view_models", s.TotalViewModels),
		logging.F("unused_view_models", s.UnusedViewModels),
		logging.F("unused_methods", s.UnusedMethods))
	return res, nil
}

// propagate alternates self-call application and inheritance reconciliation
// until neither changes a flag. Both only ever set flags, so this ends.
func propagate(reg *models.Registry, edges []invocation.SelfCall, keep models.AnnotationMatcher) int {
	steps := 1
	inherit.Reconcile(reg)
	for {
		changed := invocation.ApplySelfCalls(edges, keep)
		if inherit.Reconcile(reg) {
			changed = true
		}
		if !changed {
			return steps
		}
		steps++
	}
}

func (a *Analyzer) indexSources(ctx context.Context, project *scanner.Project, res *Result) ([]parsed, error) {
	cfg := a.config.Analysis
	ix := source.New(
		source.WithSuffix(cfg.ViewModelSuffix),
		source.WithLifecycle(cfg.LifecycleAnnotations),
	)

	tracker := progress.NewTracker("Indexing Java sources", len(project.JavaFiles), progress.Quiet(a.quiet))
	files, errs, err := fileproc.MapFiles(ctx, project.JavaFiles, fileproc.Options{
		Workers:    cfg.Workers,
		OnProgress: tracker.Tick,
		OnError: func(path string, err error) {
			a.log.Debug("skipping unparsable source", logging.F("file", path), logging.F("err", err))
		},
	}, func(p *parser.Parser, path string) (parsed, error) {
		result, err := p.ParseFile(path)
		if err != nil {
			return parsed{}, err
		}
		defer result.Close()

		idx := ix.IndexFile(result)
		return parsed{index: idx, sites: invocation.Collect(result, idx.Imports)}, nil
	})
	if err != nil {
		tracker.FinishError(err)
		return nil, err
	}
	res.Stats.JavaSkipped = errs.Len()
	res.Stats.JavaFiles = len(files)
	tracker.FinishSkipped(res.Stats.JavaSkipped, "parse errors")
	return files, nil
}

func (a *Analyzer) indexes(files []parsed) []*source.FileIndex {
	out := make([]*source.FileIndex, len(files))
	for i, f := range files {
		out[i] = f.index
	}
	return out
}

func (a *Analyzer) sites(files []parsed) []*invocation.FileSites {
	out := make([]*invocation.FileSites, len(files))
	for i, f := range files {
		out[i] = f.sites
	}
	return out
}

func (a *Analyzer) scanTemplates(ctx context.Context, project *scanner.Project) (*models.UsageIndex, template.Stats, error) {
	tracker := progress.NewTracker("Scanning templates", len(project.TemplateFiles()), progress.Quiet(a.quiet))
	ts := template.New(project.Templates,
		template.WithPartialMatch(a.config.Analysis.PartialMatch),
		template.WithFallbackAlias(a.config.Templates.FallbackAlias),
		template.WithProgress(tracker.Tick),
		template.WithErrorHandler(func(path string, err error) {
			a.log.Debug("template problem", logging.F("file", path), logging.F("err", err))
		}),
	)

	usage, err := ts.Scan(ctx)
	if err != nil {
		tracker.FinishError(err)
		return nil, template.Stats{}, err
	}
	stats := ts.Stats()
	tracker.FinishSkipped(stats.ParseErrors, "parse errors")
	return usage, stats, nil
}

// ignoreList combines lifecycle hooks, configured keep annotations and the
// ignore file. A missing ignore file is not an error.
func (a *Analyzer) ignoreList(root string) *liveness.IgnoreList {
	prefixes := append([]string(nil), a.config.Analysis.LifecycleAnnotations...)
	prefixes = append(prefixes, a.config.Analysis.IgnoreAnnotations...)

	if path := a.ignoreFile; path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		extra, err := liveness.LoadIgnoreFile(path)
		switch {
		case err == nil:
			a.log.Debug("ignore file loaded", logging.F("file", path), logging.F("entries", len(extra)))
			prefixes = append(prefixes, extra...)
		case errors.Is(err, os.ErrNotExist):
		default:
			a.log.Warn("ignore file unreadable", logging.F("file", path), logging.F("err", err))
		}
	}
	return liveness.NewIgnoreList(prefixes...)
}

// Summary is a one-line description of a result for the operator.
func (r *Result) Summary() string {
	s := r.Analysis.Summary
	return fmt.Sprintf("%d ViewModels, %d methods: %d unused ViewModels, %d unused methods (%d Java files, %d skipped, %d templates)",
		s.TotalViewModels, s.TotalMethods, s.UnusedViewModels, s.UnusedMethods,
		s.JavaFilesAnalyzed, s.JavaFilesSkipped, s.TemplateFilesScanned)
}
