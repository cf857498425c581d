package liveness

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/panbanda/vmsweep/internal/output"
	"github.com/panbanda/vmsweep/pkg/models"
)

const (
	reportTitle   = "Unused ViewModel Methods Report"
	unusedVMTitle = "Completely Unused ViewModels"
	unusedMTitle  = "Unused Methods in Active ViewModels"
	nothingFound  = "Congratulations! No unused ViewModel classes or methods were found."
)

// Report renders a classification. Paths are shown relative to Root.
type Report struct {
	Analysis *models.DeadCodeAnalysis
	Root     string
}

// NewReport creates a report for analysis.
func NewReport(analysis *models.DeadCodeAnalysis, root string) *Report {
	return &Report{Analysis: analysis, Root: root}
}

func (r *Report) rel(path string) string {
	if r.Root == "" {
		return path
	}
	if rel, err := filepath.Rel(r.Root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

// RenderMarkdown writes the report document.
func (r *Report) RenderMarkdown(w io.Writer) error {
	a := r.Analysis
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n", reportTitle)

	if len(a.UnusedViewModels) > 0 {
		fmt.Fprintf(&b, "\n## %s\n\n", unusedVMTitle)
		for _, vm := range a.UnusedViewModels {
			fmt.Fprintf(&b, "- **%s** (at `%s`)\n", vm.FQN, r.rel(vm.File))
		}
	}

	if len(a.UnusedMethods) > 0 {
		fmt.Fprintf(&b, "\n## %s\n\n", unusedMTitle)
		order, groups := a.MethodsByViewModel()
		for _, fqn := range order {
			fmt.Fprintf(&b, "\n### ViewModel: `%s`\n", fqn)
			for _, m := range groups[fqn] {
				fmt.Fprintf(&b, "- Method: `%s` (line %d)\n", m.Name, m.Line)
			}
		}
	}

	if a.Empty() {
		fmt.Fprintf(&b, "\n%s\n", nothingFound)
	}

	_, err := w.Write(b.Bytes())
	return err
}

// Markdown returns the report document as a string.
func (r *Report) Markdown() string {
	var b bytes.Buffer
	_ = r.RenderMarkdown(&b)
	return b.String()
}

// RenderText writes the findings as tables.
func (r *Report) RenderText(w io.Writer, colored bool) error {
	a := r.Analysis
	report := &output.Report{Title: reportTitle}

	if a.Empty() {
		report.Sections = append(report.Sections, &output.Section{Content: nothingFound})
	}

	if len(a.UnusedViewModels) > 0 {
		rows := make([][]string, 0, len(a.UnusedViewModels))
		for _, vm := range a.UnusedViewModels {
			rows = append(rows, []string{vm.FQN, r.rel(vm.File), strconv.Itoa(vm.Methods)})
		}
		report.Sections = append(report.Sections, output.NewTable(unusedVMTitle,
			[]string{"ViewModel", "File", "Methods"}, rows, nil, nil))
	}

	if len(a.UnusedMethods) > 0 {
		rows := make([][]string, 0, len(a.UnusedMethods))
		for _, m := range a.UnusedMethods {
			rows = append(rows, []string{m.ViewModel, m.Name, strconv.Itoa(m.Line)})
		}
		report.Sections = append(report.Sections, output.NewTable(unusedMTitle,
			[]string{"ViewModel", "Method", "Line"}, rows, nil, nil))
	}

	s := a.Summary
	report.Sections = append(report.Sections, output.NewTable("Summary",
		[]string{"Metric", "Value"},
		[][]string{
			{"ViewModels", strconv.Itoa(s.TotalViewModels)},
			{"Methods", strconv.Itoa(s.TotalMethods)},
			{"Unused ViewModels", strconv.Itoa(s.UnusedViewModels)},
			{"Unused methods", strconv.Itoa(s.UnusedMethods)},
			{"Java files analyzed", strconv.Itoa(s.JavaFilesAnalyzed)},
			{"Java files skipped", strconv.Itoa(s.JavaFilesSkipped)},
			{"Templates scanned", strconv.Itoa(s.TemplateFilesScanned)},
		}, nil, nil))

	return report.RenderText(w, colored)
}

// RenderData returns the analysis for structured encoders.
func (r *Report) RenderData() any {
	return r.Analysis
}
