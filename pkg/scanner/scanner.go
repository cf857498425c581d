package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/vmsweep/pkg/config"
	"github.com/panbanda/vmsweep/pkg/parser"
)

// ErrNoProject is returned when the project root cannot be read.
var ErrNoProject = errors.New("project root is not a readable directory")

// webappSuffix is the conventional template root inside a module.
var webappSuffix = filepath.Join("src", "main", "webapp")

// TemplateRoot is a directory that absolute include paths resolve against.
type TemplateRoot struct {
	Dir   string
	Files []string
}

// Project is the result of scanning a project root.
type Project struct {
	Root      string
	JavaFiles []string
	Templates []TemplateRoot
}

// TemplateFiles returns every template file across all roots.
func (p *Project) TemplateFiles() []string {
	var out []string
	for _, r := range p.Templates {
		out = append(out, r.Files...)
	}
	return out
}

// Scanner finds Java sources and templates in a project.
type Scanner struct {
	config   *config.Config
	matchers []gitignore.Matcher
	dirs     gitignore.Matcher
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns loads exclusion patterns from both config and .gitignore files.
func (s *Scanner) loadExcludePatterns(root string) {
	s.matchers = nil
	s.dirs = nil
	var patterns []gitignore.Pattern

	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}

	var dirPatterns []gitignore.Pattern
	for _, dir := range s.config.Exclude.Dirs {
		dirPatterns = append(dirPatterns, gitignore.ParsePattern(dir+"/", nil))
	}
	if len(dirPatterns) > 0 {
		s.dirs = gitignore.NewMatcher(dirPatterns)
	}

	// .gitignore files are only honored when the project is the repository
	// root, otherwise their paths would not line up with ours.
	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(root); gitRoot == root {
			if gitPatterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	if len(patterns) > 0 {
		s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	}
}

// isExcluded checks if a path matches any exclusion pattern.
func (s *Scanner) isExcluded(relPath string, isDir bool) bool {
	pathParts := strings.Split(relPath, string(filepath.Separator))

	// Excluded directory names are build outputs, but the same names are
	// legal Java packages.
	if s.dirs != nil && !inJavaSourceTree(pathParts) && s.dirs.Match(pathParts, isDir) {
		return true
	}
	for _, m := range s.matchers {
		if m.Match(pathParts, isDir) {
			return true
		}
	}
	return false
}

// inJavaSourceTree reports whether the last element of parts lies below a
// src/<set>/java directory.
func inJavaSourceTree(parts []string) bool {
	for i := 0; i+2 < len(parts)-1; i++ {
		if parts[i] == "src" && parts[i+2] == "java" {
			return true
		}
	}
	return false
}

// ScanProject walks root and collects Java sources, template roots and
// template files. Unreadable subdirectories are skipped; only an unreadable
// root is an error.
func (s *Scanner) ScanProject(root string) (*Project, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoProject, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoProject, root)
	}
	if _, err := os.ReadDir(absRoot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoProject, err)
	}

	s.loadExcludePatterns(absRoot)

	project := &Project{Root: absRoot}
	var discoveredRoots []string
	var templates []string

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == absRoot {
			return nil
		}

		relPath, _ := filepath.Rel(absRoot, path)

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
		}

		if d.IsDir() {
			if s.isExcluded(relPath, true) {
				return filepath.SkipDir
			}
			if strings.HasSuffix(path, string(filepath.Separator)+webappSuffix) {
				discoveredRoots = append(discoveredRoots, path)
			}
			return nil
		}

		if s.isExcluded(relPath, false) {
			return nil
		}

		switch {
		case parser.DetectLanguage(path) == parser.LangJava:
			project.JavaFiles = append(project.JavaFiles, path)
		case s.config.IsTemplate(path):
			templates = append(templates, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	roots := discoveredRoots
	if len(s.config.Templates.Roots) > 0 {
		roots = roots[:0:0]
		for _, r := range s.config.Templates.Roots {
			if !filepath.IsAbs(r) {
				r = filepath.Join(absRoot, r)
			}
			roots = append(roots, filepath.Clean(r))
		}
	}
	project.Templates = groupTemplates(roots, templates)

	sort.Strings(project.JavaFiles)
	return project, nil
}

// groupTemplates assigns each template file to the deepest root containing it.
// Files outside every root are not scanned.
func groupTemplates(roots, files []string) []TemplateRoot {
	sort.Strings(roots)
	grouped := make([]TemplateRoot, len(roots))
	for i, r := range roots {
		grouped[i].Dir = r
	}
	for _, f := range files {
		best := -1
		for i, r := range roots {
			if isWithinRoot(f, r) && (best < 0 || len(r) > len(roots[best])) {
				best = i
			}
		}
		if best >= 0 {
			grouped[best].Files = append(grouped[best].Files, f)
		}
	}
	for i := range grouped {
		sort.Strings(grouped[i].Files)
	}
	return grouped
}

// isWithinRoot checks if a path is contained within the root directory.
// Returns false if the path escapes via symlinks or relative paths.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	if !strings.HasPrefix(absPath, root+string(filepath.Separator)) && absPath != root {
		return false
	}

	return true
}
