package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/vmsweep/internal/output"
	"github.com/panbanda/vmsweep/internal/testutil"
)

func TestServerCreation(t *testing.T) {
	server := NewServer("1.0.0-test")
	require.NotNil(t, server)
	assert.NotNil(t, server.server)
	assert.NotNil(t, NewServer(""))
}

func TestToolDescriptions(t *testing.T) {
	for name, fn := range map[string]func() string{
		"find_unused": describeFindUnused,
		"explain":     describeExplain,
	} {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			assert.Contains(t, desc, "USE WHEN:")
			assert.Contains(t, desc, "INTERPRETING RESULTS:")
			assert.Contains(t, desc, "METRICS RETURNED:")
		})
	}
}

func TestGetFormat(t *testing.T) {
	tests := map[string]output.Format{
		"":         output.FormatTOON,
		"toon":     output.FormatTOON,
		"json":     output.FormatJSON,
		"yml":      output.FormatYAML,
		"md":       output.FormatMarkdown,
		"markdown": output.FormatMarkdown,
		"bogus":    output.FormatTOON,
	}
	for in, want := range tests {
		assert.Equal(t, want, getFormat(AnalyzeInput{Format: in}), in)
	}
	assert.Equal(t, ".", getPath(AnalyzeInput{}))
}

func TestParseFrontmatter(t *testing.T) {
	desc, body := parseFrontmatter([]byte("---\ndescription: hello\n---\nbody text\n"))
	assert.Equal(t, "hello", desc)
	assert.Equal(t, "body text\n", body)

	desc, body = parseFrontmatter([]byte("no frontmatter"))
	assert.Empty(t, desc)
	assert.Equal(t, "no frontmatter", body)
}

func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("1.2.3")
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "io.github.panbanda/vmsweep", m.Name)
	assert.Equal(t, "1.2.3", m.Version)
	require.Len(t, m.Packages, 1)
	assert.Equal(t, "ghcr.io/panbanda/vmsweep:1.2.3", m.Packages[0].Identifier)
	assert.Equal(t, "stdio", m.Packages[0].Transport.Type)
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestHandleFindUnused(t *testing.T) {
	root := testutil.SampleProject(t)

	res, _, err := handleFindUnused(context.Background(), nil, FindUnusedInput{
		AnalyzeInput: AnalyzeInput{Path: root, Format: "json"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got struct {
		UnusedViewModels []struct {
			FQN string `json:"fqn"`
		} `json:"unused_view_models"`
		UnusedMethods []struct {
			ViewModel string `json:"view_model"`
			Name      string `json:"name"`
		} `json:"unused_methods"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	require.Len(t, got.UnusedViewModels, 1)
	assert.Equal(t, "com.example.CompletelyUnusedViewModel", got.UnusedViewModels[0].FQN)
	assert.Len(t, got.UnusedMethods, 6)
}

func TestHandleFindUnused_PartialMatchOff(t *testing.T) {
	off := false
	res, _, err := handleFindUnused(context.Background(), nil, FindUnusedInput{
		AnalyzeInput: AnalyzeInput{Path: testutil.SampleProject(t), Format: "markdown"},
		PartialMatch: &off,
	})
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "- Method: `commandInDynamicA`")
}

func TestHandleFindUnused_BadRoot(t *testing.T) {
	res, _, err := handleFindUnused(context.Background(), nil, FindUnusedInput{
		AnalyzeInput: AnalyzeInput{Path: t.TempDir() + "/missing"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.True(t, strings.HasPrefix(text(t, res), "Error: "))
}

func TestHandleExplain(t *testing.T) {
	root := testutil.SampleProject(t)

	res, _, err := handleExplain(context.Background(), nil, ExplainInput{
		AnalyzeInput: AnalyzeInput{Path: root, Format: "markdown"},
		ViewModel:    "com.example.OrderViewModel",
	})
	require.NoError(t, err)
	out := text(t, res)
	assert.Contains(t, out, "## com.example.OrderViewModel")
	assert.Contains(t, out, "- extends: `com.example.BaseViewModel`")
	assert.Contains(t, out, "`unusedMethod` (line")
	assert.Contains(t, out, "used=false java=false template=false")

	res, _, err = handleExplain(context.Background(), nil, ExplainInput{
		AnalyzeInput: AnalyzeInput{Path: root},
		ViewModel:    "com.example.Nope",
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, _, err = handleExplain(context.Background(), nil, ExplainInput{AnalyzeInput: AnalyzeInput{Path: root}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_InMemory(t *testing.T) {
	ctx := context.Background()
	server := NewServer("test")

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"find_unused_viewmodels", "explain_viewmodel"}, names)

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "find_unused_viewmodels",
		Arguments: map[string]any{"path": testutil.SampleProject(t), "format": "toon"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "CompletelyUnusedViewModel")
}

func TestLoadPrompts(t *testing.T) {
	prompts := loadPrompts()
	require.NotEmpty(t, prompts)
	assert.Equal(t, "triage-unused-viewmodels", prompts[0].Name)
	assert.NotEmpty(t, prompts[0].Description)
	assert.Contains(t, prompts[0].Body, "find_unused_viewmodels")
	assert.False(t, strings.HasPrefix(prompts[0].Body, "---"))
}
