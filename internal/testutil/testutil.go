// Package testutil provides helpers for writing fixture trees in tests.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/panbanda/vmsweep/pkg/parser"
)

// WriteFile writes content to a file in the real filesystem.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// ReadFile reads content from a file.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error: %v", path, err)
	}
	return string(data)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CreateFileTree creates multiple files from a map of path -> content.
func CreateFileTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		WriteFile(t, path, content)
	}
}

// ListFiles returns the slash paths of all files under root, relative to
// root and sorted.
func ListFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WalkDir(%s) error: %v", root, err)
	}
	sort.Strings(files)
	return files
}

// ParseJava parses Java source held in memory. The tree is released when the
// test ends.
func ParseJava(t *testing.T, path, source string) *parser.ParseResult {
	t.Helper()
	p := parser.New()
	defer p.Close()

	result, err := p.Parse([]byte(source), parser.LangJava, path)
	if err != nil {
		t.Fatalf("Parse(%s) error: %v", path, err)
	}
	t.Cleanup(result.Close)
	return result
}

// SampleProject writes SampleFiles under a fresh temporary directory and
// returns its path.
func SampleProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	CreateFileTree(t, root, SampleFiles)
	return root
}
