package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"path"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

// prompt is one embedded markdown prompt. The file name without extension is
// the prompt name; an optional YAML frontmatter block carries the description.
type prompt struct {
	Name        string
	Description string `yaml:"description"`
	Body        string
}

// loadPrompts reads every embedded prompt, sorted by name. Unreadable files
// are skipped.
func loadPrompts() []prompt {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil
	}
	var out []prompt
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".md" {
			continue
		}
		content, err := promptFiles.ReadFile(path.Join("prompts", entry.Name()))
		if err != nil {
			continue
		}
		description, body := parseFrontmatter(content)
		out = append(out, prompt{
			Name:        strings.TrimSuffix(entry.Name(), ".md"),
			Description: description,
			Body:        body,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Server) registerPrompts() {
	for _, p := range loadPrompts() {
		s.server.AddPrompt(&mcp.Prompt{Name: p.Name, Description: p.Description}, p.handler())
	}
}

// parseFrontmatter splits "---\n<yaml>\n---\n<body>". Content without a
// well-formed block is returned whole as the body.
func parseFrontmatter(content []byte) (description string, body string) {
	const fence = "---\n"
	if !bytes.HasPrefix(content, []byte(fence)) {
		return "", string(content)
	}
	rest := content[len(fence):]
	end := bytes.Index(rest, []byte("\n"+fence))
	if end < 0 {
		return "", string(content)
	}

	var meta prompt
	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return "", string(content)
	}
	body = strings.TrimPrefix(string(rest[end+1+len(fence):]), "\n")
	return meta.Description, body
}

func (p prompt) handler() mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return &mcp.GetPromptResult{
			Description: p.Description,
			Messages: []*mcp.PromptMessage{
				{Role: "user", Content: &mcp.TextContent{Text: p.Body}},
			},
		}, nil
	}
}
