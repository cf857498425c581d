// Package progress draws per-phase progress bars on the diagnostic stream.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar for one analysis phase.
type Tracker struct {
	bar   *progressbar.ProgressBar
	out   io.Writer
	label string
}

type settings struct {
	out   io.Writer
	quiet bool
}

// Option is a functional option for configuring a Tracker.
type Option func(*settings)

// WithWriter draws the bar on w instead of stderr.
func WithWriter(w io.Writer) Option {
	return func(s *settings) {
		s.out = w
	}
}

// Quiet discards all drawing. Machine-readable output formats use it so
// stderr stays clean.
func Quiet(quiet bool) Option {
	return func(s *settings) {
		s.quiet = quiet
	}
}

func resolve(opts []Option) settings {
	s := settings{out: os.Stderr}
	for _, opt := range opts {
		opt(&s)
	}
	if s.quiet {
		s.out = io.Discard
	}
	return s
}

// NewSpinner creates a spinner for a phase whose file count is not known yet,
// such as walking the project tree.
func NewSpinner(label string, opts ...Option) *Tracker {
	s := resolve(opts)
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &Tracker{bar: bar, out: s.out, label: label}
}

// NewTracker creates a bar counting total files, e.g. Java sources being
// indexed or templates being scanned.
func NewTracker(label string, total int, opts ...Option) *Tracker {
	s := resolve(opts)
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, out: s.out, label: label}
}

// Tick advances the bar by one file. Safe for concurrent use.
func (t *Tracker) Tick() {
	_ = t.bar.Add(1)
}

// FinishSuccess clears the bar.
func (t *Tracker) FinishSuccess() {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}

// FinishSkipped clears the bar and notes how many files were skipped.
func (t *Tracker) FinishSkipped(skipped int, reason string) {
	t.FinishSuccess()
	if skipped > 0 {
		fmt.Fprintf(t.out, "  %s: %d skipped (%s)\n", t.label, skipped, reason)
	}
}

// FinishError clears the bar and prints the error.
func (t *Tracker) FinishError(err error) {
	t.FinishSuccess()
	fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
}
