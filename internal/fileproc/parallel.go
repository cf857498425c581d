// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/panbanda/vmsweep/pkg/parser"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// Len returns the number of collected errors.
func (e *ProcessingErrors) Len() int {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors)
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
	}
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x suits the mix of file I/O and CGO parsing.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// ErrorFunc is called when a file processing error occurs.
type ErrorFunc func(path string, err error)

// Options configures a parallel run. The zero value uses 2x NumCPU workers
// and no callbacks.
type Options struct {
	Workers    int
	OnProgress ProgressFunc
	OnError    ErrorFunc
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// MapFiles runs fn over files in parallel. Each worker owns one tree-sitter
// parser for its whole lifetime. Results keep the order of files; a file
// whose fn fails is reported through OnError and the returned
// ProcessingErrors, and is absent from the results. Files not yet started
// when ctx is cancelled are skipped and ctx.Err() is returned.
func MapFiles[T any](ctx context.Context, files []string, opts Options, fn func(*parser.Parser, string) (T, error)) ([]T, *ProcessingErrors, error) {
	if len(files) == 0 {
		return nil, nil, ctx.Err()
	}

	workers := opts.workers()
	parsers := make(chan *parser.Parser, workers)
	for i := 0; i < workers; i++ {
		parsers <- parser.New()
	}
	defer func() {
		close(parsers)
		for p := range parsers {
			p.Close()
		}
	}()

	slots := make([]T, len(files))
	ok := make([]bool, len(files))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(workers)
	for i, path := range files {
		if ctx.Err() != nil {
			break
		}
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			psr := <-parsers
			defer func() { parsers <- psr }()

			result, err := fn(psr, path)
			if err != nil {
				errs.Add(path, err)
				if opts.OnError != nil {
					opts.OnError(path, err)
				}
			} else {
				slots[i] = result
				ok[i] = true
			}
			if opts.OnProgress != nil {
				opts.OnProgress()
			}
		})
	}
	p.Wait()

	results := make([]T, 0, len(files))
	for i := range slots {
		if ok[i] {
			results = append(results, slots[i])
		}
	}
	if errs.Len() == 0 {
		errs = nil
	}
	return results, errs, ctx.Err()
}
