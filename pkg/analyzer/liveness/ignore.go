// Package liveness classifies ViewModels and methods as used or unused and
// renders the findings.
package liveness

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/panbanda/vmsweep/pkg/models"
)

// IgnoreList holds annotation prefixes that keep a method alive regardless of
// call sites: lifecycle hooks and user-declared keep annotations. It is built
// once per run and read-only afterwards.
type IgnoreList struct {
	prefixes []string
}

// NewIgnoreList builds a list from prefixes. A missing leading '@' is added,
// blanks and duplicates are dropped.
func NewIgnoreList(prefixes ...string) *IgnoreList {
	seen := make(map[string]bool)
	l := &IgnoreList{}
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "@") {
			p = "@" + p
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		l.prefixes = append(l.prefixes, p)
	}
	sort.Strings(l.prefixes)
	return l
}

// Prefixes returns the configured prefixes, sorted.
func (l *IgnoreList) Prefixes() []string {
	return append([]string(nil), l.prefixes...)
}

// Matches reports whether a keeps its method alive.
func (l *IgnoreList) Matches(a models.Annotation) bool {
	if a.Kind == models.AnnotationLifecycle {
		return true
	}
	for _, p := range l.prefixes {
		if a.HasPrefix(p) {
			return true
		}
	}
	return false
}

// ParseIgnoreList reads one annotation prefix per line. Blank lines and
// lines starting with '#' are skipped.
func ParseIgnoreList(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ignore list: %w", err)
	}
	return out, nil
}

// LoadIgnoreFile reads an ignore-list file. A missing file yields an error
// matching os.ErrNotExist.
func LoadIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseIgnoreList(f)
}
