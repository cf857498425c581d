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

	"github.com/panbanda/vmsweep/internal/logging"
	"github.com/panbanda/vmsweep/pkg/analyzer"
	"github.com/panbanda/vmsweep/pkg/watch"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Re-run the analysis whenever Java sources or templates change",
		ArgsUsage: "[project]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				EnvVars: []string{"VMSWEEP_CONFIG"},
			},
			&cli.DurationFlag{
				Name:  "debounce",
				Value: watch.DefaultDebounce,
				Usage: "Quiet period before re-analyzing",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log each changed file",
			},
		},
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	root, err := filepath.Abs(getPath(c))
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	cfg, err := loadConfig(c, root)
	if err != nil {
		return err
	}
	log := newLogger(c, cfg)

	watcher, err := watch.NewWatcher(root, cfg, c.Duration("debounce"), log)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := analyzer.New(analyzer.WithConfig(cfg), analyzer.WithLogger(log), analyzer.WithQuiet(true))
	rerun := func(changed []string) {
		for _, path := range changed {
			log.Debug("changed", logging.F("file", path))
		}
		reportOnce(ctx, c, a, root, log)
	}
	watcher.SetCallback(rerun)

	reportOnce(ctx, c, a, root, log)
	if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// reportOnce analyzes root and prints the summary line plus the findings.
func reportOnce(ctx context.Context, c *cli.Context, a *analyzer.Analyzer, root string, log *logging.Logger) {
	res, err := a.Analyze(ctx, root)
	if err != nil {
		if ctx.Err() == nil {
			log.Error("analysis failed", logging.F("err", err))
		}
		return
	}
	out := c.App.Writer
	found := res.Analysis
	if found.Empty() {
		fmt.Fprintln(out, color.GreenString("%s", res.Summary()))
		return
	}
	fmt.Fprintln(out, color.YellowString("%s", res.Summary()))
	for _, vm := range found.UnusedViewModels {
		fmt.Fprintf(out, "  unused class   %s\n", vm.FQN)
	}
	for _, m := range found.UnusedMethods {
		fmt.Fprintf(out, "  unused method  %s (line %d)\n", m.Key(), m.Line)
	}
}
