// Package patch turns approved unused methods into unified diffs that delete
// them from their source files.
package patch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnbalanced is returned when a method's braces never close.
var ErrUnbalanced = errors.New("method body braces never balance")

// Range is an inclusive, 1-based line range.
type Range struct {
	Start int
	End   int
}

// Overlaps reports whether r and o share a line.
func (r Range) Overlaps(o Range) bool {
	return r.Start <= o.End && o.Start <= r.End
}

// MethodRange finds the lines a method occupies. The range starts at
// blockStart (its first annotation) and ends on the line where the brace
// count, counted from the declaration line, first returns to zero after
// going positive. A ';' before any brace ends a body-less declaration.
// Braces inside string or comment literals are counted like any other, so
// source with unbalanced braces in literals yields a wrong range.
func MethodRange(lines []string, blockStart, declLine int) (Range, error) {
	if blockStart <= 0 || blockStart > declLine {
		blockStart = declLine
	}
	if declLine <= 0 || declLine > len(lines) {
		return Range{}, fmt.Errorf("declaration line %d outside file of %d lines", declLine, len(lines))
	}

	depth := 0
	opened := false
	for i := declLine - 1; i < len(lines); i++ {
		for _, r := range lines[i] {
			switch r {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			case ';':
				if !opened {
					return Range{Start: blockStart, End: i + 1}, nil
				}
			}
		}
		if opened && depth <= 0 {
			return Range{Start: blockStart, End: i + 1}, nil
		}
	}
	return Range{}, ErrUnbalanced
}

// removeRanges deletes ranges from lines, highest first so earlier ranges
// keep their line numbers. When the removed block sits between two blank
// lines, the trailing blank is dropped too.
func removeRanges(lines []string, ranges []Range) []string {
	out := append([]string(nil), lines...)
	for _, r := range ranges {
		start, end := r.Start-1, r.End
		if start > 0 && end < len(out) && isBlank(out[start-1]) && isBlank(out[end]) {
			end++
		}
		out = append(out[:start], out[end:]...)
	}
	return out
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
