package mcpserver

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/vmsweep/internal/logging"
	"github.com/panbanda/vmsweep/internal/output"
	"github.com/panbanda/vmsweep/pkg/analyzer"
	"github.com/panbanda/vmsweep/pkg/config"
	"github.com/panbanda/vmsweep/pkg/models"
)

// AnalyzeInput is the base input for all tools.
type AnalyzeInput struct {
	Path   string `json:"path,omitempty" jsonschema:"Project root to analyze. Defaults to the current directory."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml, or markdown."`
}

// FindUnusedInput adds analysis switches.
type FindUnusedInput struct {
	AnalyzeInput
	PartialMatch *bool  `json:"partial_match,omitempty" jsonschema:"Follow includes whose path is only known at runtime by file name suffix. Default true."`
	IgnoreFile   string `json:"ignore_file,omitempty" jsonschema:"File listing annotation prefixes that keep a method alive."`
}

// ExplainInput names the ViewModel to explain.
type ExplainInput struct {
	AnalyzeInput
	ViewModel string `json:"view_model" jsonschema:"Fully qualified ViewModel class name."`
}

func getPath(input AnalyzeInput) string {
	if input.Path == "" {
		return "."
	}
	return input.Path
}

func getFormat(input AnalyzeInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "yaml", "yml":
		return output.FormatYAML
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(r output.Renderable, format output.Format) (string, error) {
	var b bytes.Buffer
	if format == output.FormatMarkdown {
		if err := r.RenderMarkdown(&b); err != nil {
			return "", err
		}
		return b.String(), nil
	}
	if err := output.Encode(&b, format, r.RenderData()); err != nil {
		return "", err
	}
	return b.String(), nil
}

func toolResult(r output.Renderable, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(r, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func analyze(ctx context.Context, root string, adjust func(*config.Config), opts ...analyzer.Option) (*analyzer.Result, error) {
	cfg, path, err := config.LoadOrDefault(root)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if adjust != nil {
		adjust(cfg)
	}
	opts = append([]analyzer.Option{
		analyzer.WithConfig(cfg),
		analyzer.WithQuiet(true),
		analyzer.WithLogger(logging.Discard()),
	}, opts...)
	return analyzer.New(opts...).Analyze(ctx, root)
}

func handleFindUnused(ctx context.Context, req *mcp.CallToolRequest, input FindUnusedInput) (*mcp.CallToolResult, any, error) {
	res, err := analyze(ctx, getPath(input.AnalyzeInput), func(cfg *config.Config) {
		if input.PartialMatch != nil {
			cfg.Analysis.PartialMatch = *input.PartialMatch
		}
		if input.IgnoreFile != "" {
			cfg.Analysis.IgnoreFile = input.IgnoreFile
		}
	})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(res.Report(), getFormat(input.AnalyzeInput))
}

func handleExplain(ctx context.Context, req *mcp.CallToolRequest, input ExplainInput) (*mcp.CallToolResult, any, error) {
	if input.ViewModel == "" {
		return toolError("view_model is required")
	}
	res, err := analyze(ctx, getPath(input.AnalyzeInput), nil)
	if err != nil {
		return toolError(err.Error())
	}
	vm := res.Registry().Get(input.ViewModel)
	if vm == nil {
		return toolError(fmt.Sprintf("no ViewModel named %s", input.ViewModel))
	}
	return toolResult(newExplanation(vm, res), getFormat(input.AnalyzeInput))
}

// explanation is the usage evidence for one ViewModel.
type explanation struct {
	FQN            string              `json:"fqn" yaml:"fqn" toon:"fqn"`
	File           string              `json:"file" yaml:"file" toon:"file"`
	Parent         string              `json:"parent,omitempty" yaml:"parent,omitempty" toon:"parent"`
	Used           bool                `json:"used" yaml:"used" toon:"used"`
	UsedInJava     bool                `json:"used_in_java" yaml:"used_in_java" toon:"used_in_java"`
	UsedInTemplate bool                `json:"used_in_template" yaml:"used_in_template" toon:"used_in_template"`
	Methods        []methodExplanation `json:"methods" yaml:"methods" toon:"methods"`
}

type methodExplanation struct {
	Name           string   `json:"name" yaml:"name" toon:"name"`
	Line           int      `json:"line" yaml:"line" toon:"line"`
	CommandNames   []string `json:"command_names,omitempty" yaml:"command_names,omitempty" toon:"command_names"`
	Annotations    []string `json:"annotations,omitempty" yaml:"annotations,omitempty" toon:"annotations"`
	Used           bool     `json:"used" yaml:"used" toon:"used"`
	UsedInJava     bool     `json:"used_in_java" yaml:"used_in_java" toon:"used_in_java"`
	UsedInTemplate bool     `json:"used_in_template" yaml:"used_in_template" toon:"used_in_template"`
}

func newExplanation(vm *models.ViewModel, res *analyzer.Result) *explanation {
	e := &explanation{
		FQN:            vm.FQN,
		File:           vm.File,
		Parent:         vm.Parent,
		Used:           vm.IsUsed(res.Ignore),
		UsedInJava:     vm.UsedInJava,
		UsedInTemplate: vm.UsedInTemplate,
		Methods:        []methodExplanation{},
	}
	for _, m := range vm.Methods() {
		e.Methods = append(e.Methods, methodExplanation{
			Name:           m.Name,
			Line:           m.Line,
			CommandNames:   m.CommandNames,
			Annotations:    m.AnnotationTexts(),
			Used:           m.IsUsed(res.Ignore),
			UsedInJava:     m.UsedInJava,
			UsedInTemplate: m.UsedInTemplate,
		})
	}
	return e
}

func (e *explanation) RenderData() any { return e }

func (e *explanation) RenderText(w io.Writer, colored bool) error {
	return e.RenderMarkdown(w)
}

// RenderMarkdown writes a heading and one line per method.
func (e *explanation) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "## %s\n\n", e.FQN)
	fmt.Fprintf(w, "- file: `%s`\n", e.File)
	if e.Parent != "" {
		fmt.Fprintf(w, "- extends: `%s`\n", e.Parent)
	}
	fmt.Fprintf(w, "- used: %t (java: %t, template: %t)\n\n", e.Used, e.UsedInJava, e.UsedInTemplate)
	for _, m := range e.Methods {
		fmt.Fprintf(w, "- `%s` (line %d): used=%t java=%t template=%t\n",
			m.Name, m.Line, m.Used, m.UsedInJava, m.UsedInTemplate)
	}
	return nil
}
