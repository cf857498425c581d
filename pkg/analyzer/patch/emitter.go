package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/panbanda/vmsweep/pkg/models"
	"github.com/pmezard/go-difflib/difflib"
)

// Skipped is a method that could not be located in its file.
type Skipped struct {
	Method models.DeadMethod
	Err    error
}

// Patch is the unified diff removing methods from one source file.
type Patch struct {
	File    string // source file
	Label   string // path shown in the diff headers
	Diff    string
	Removed []string // method keys
	Skipped []Skipped
}

// Emitter builds patches for approved methods.
type Emitter struct {
	root    string
	context int
}

// Option is a functional option for configuring Emitter.
type Option func(*Emitter)

// WithRoot makes diff header paths relative to root.
func WithRoot(root string) Option {
	return func(e *Emitter) {
		e.root = root
	}
}

// WithContext sets the number of context lines around each hunk.
func WithContext(lines int) Option {
	return func(e *Emitter) {
		if lines >= 0 {
			e.context = lines
		}
	}
}

// New creates an emitter.
func New(opts ...Option) *Emitter {
	e := &Emitter{context: 3}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit groups methods by file and builds one patch per file, in file order.
// A file that cannot be read is returned as an error for that file only;
// the remaining files are still processed.
func (e *Emitter) Emit(methods []models.DeadMethod) ([]*Patch, map[string]error) {
	byFile := make(map[string][]models.DeadMethod)
	for _, m := range methods {
		byFile[m.File] = append(byFile[m.File], m)
	}
	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	var patches []*Patch
	failed := make(map[string]error)
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			failed[f] = fmt.Errorf("read source: %w", err)
			continue
		}
		p, err := e.Build(f, string(content), byFile[f])
		if err != nil {
			failed[f] = err
			continue
		}
		if p != nil {
			patches = append(patches, p)
		}
	}
	return patches, failed
}

// Build computes the patch removing methods from content. It returns nil
// when no method could be located.
func (e *Emitter) Build(file, content string, methods []models.DeadMethod) (*Patch, error) {
	lines := splitLines(content)

	p := &Patch{File: file, Label: e.label(file)}

	var ranges []Range
	for _, m := range methods {
		decls := m.Declarations
		if len(decls) == 0 {
			decls = []models.Declaration{{Line: m.Line, BlockStartLine: m.BlockStartLine}}
		}
		var found []Range
		var failure error
		for _, d := range decls {
			r, err := MethodRange(lines, d.BlockStartLine, d.Line)
			if err != nil {
				failure = err
				break
			}
			found = append(found, r)
		}
		if failure == nil {
			for _, r := range found {
				for _, existing := range ranges {
					if r.Overlaps(existing) {
						failure = fmt.Errorf("lines %d-%d overlap another removal", r.Start, r.End)
						break
					}
				}
			}
		}
		if failure != nil {
			p.Skipped = append(p.Skipped, Skipped{Method: m, Err: failure})
			continue
		}
		ranges = append(ranges, found...)
		p.Removed = append(p.Removed, m.Key())
	}
	if len(ranges) == 0 {
		return nil, nil
	}

	// Highest block first, so deleting one range never shifts another.
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start > ranges[j].Start })
	after := removeRanges(lines, ranges)

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        lines,
		B:        after,
		FromFile: "a/" + p.Label,
		ToFile:   "b/" + p.Label,
		Context:  e.context,
	})
	if err != nil {
		return nil, fmt.Errorf("diff %s: %w", file, err)
	}
	p.Diff = diff
	return p, nil
}

// splitLines splits content keeping line endings. A missing final newline
// is added so the last line diffs cleanly.
func splitLines(content string) []string {
	lines := strings.SplitAfter(content, "\n")
	if n := len(lines); lines[n-1] == "" {
		lines = lines[:n-1]
	} else {
		lines[n-1] += "\n"
	}
	return lines
}

func (e *Emitter) label(file string) string {
	if e.root != "" {
		if rel, err := filepath.Rel(e.root, file); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(filepath.Base(file))
}

// Write saves each patch to dir as <source file name>.patch. Colliding names
// get a numeric suffix. It returns the written paths.
func Write(dir string, patches []*Patch) ([]string, error) {
	if len(patches) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create patch directory: %w", err)
	}

	used := make(map[string]int)
	var written []string
	for _, p := range patches {
		name := filepath.Base(p.File)
		used[name]++
		if n := used[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		path := filepath.Join(dir, name+".patch")
		if err := os.WriteFile(path, []byte(p.Diff), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
