package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml"
)

// Config holds all configuration options for vmsweep.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis" json:"analysis" yaml:"analysis" toon:"analysis"`

	// Template discovery and scanning
	Templates TemplateConfig `koanf:"templates" toml:"templates" json:"templates" yaml:"templates" toon:"templates"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude" json:"exclude" yaml:"exclude" toon:"exclude"`

	// Decision cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache" json:"cache" yaml:"cache" toon:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output" json:"output" yaml:"output" toon:"output"`
}

// AnalysisConfig controls how usage is resolved.
type AnalysisConfig struct {
	ViewModelSuffix      string   `koanf:"viewmodel_suffix" toml:"viewmodel_suffix" json:"viewmodel_suffix" yaml:"viewmodel_suffix" toon:"viewmodel_suffix"`
	PartialMatch         bool     `koanf:"partial_match" toml:"partial_match" json:"partial_match" yaml:"partial_match" toon:"partial_match"`
	SelfCalls            bool     `koanf:"self_calls" toml:"self_calls" json:"self_calls" yaml:"self_calls" toon:"self_calls"`
	LifecycleAnnotations []string `koanf:"lifecycle_annotations" toml:"lifecycle_annotations" json:"lifecycle_annotations" yaml:"lifecycle_annotations" toon:"lifecycle_annotations"`
	IgnoreAnnotations    []string `koanf:"ignore_annotations" toml:"ignore_annotations" json:"ignore_annotations" yaml:"ignore_annotations" toon:"ignore_annotations"`
	IgnoreFile           string   `koanf:"ignore_file" toml:"ignore_file" json:"ignore_file" yaml:"ignore_file" toon:"ignore_file"`
	Workers              int      `koanf:"workers" toml:"workers" json:"workers" yaml:"workers" toon:"workers"`
}

// TemplateConfig controls template discovery.
type TemplateConfig struct {
	// Roots are template roots relative to the project. Empty means every
	// src/main/webapp directory in the project.
	Roots         []string `koanf:"roots" toml:"roots" json:"roots" yaml:"roots" toon:"roots"`
	Extensions    []string `koanf:"extensions" toml:"extensions" json:"extensions" yaml:"extensions" toon:"extensions"`
	FallbackAlias string   `koanf:"fallback_alias" toml:"fallback_alias" json:"fallback_alias" yaml:"fallback_alias" toon:"fallback_alias"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns" json:"patterns" yaml:"patterns" toon:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs" json:"dirs" yaml:"dirs" toon:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore" json:"gitignore" yaml:"gitignore" toon:"gitignore"`
}

// CacheConfig controls the interactive decision cache.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled" json:"enabled" yaml:"enabled" toon:"enabled"`
	Dir     string `koanf:"dir" toml:"dir" json:"dir" yaml:"dir" toon:"dir"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format     string `koanf:"format" toml:"format" json:"format" yaml:"format" toon:"format"` // markdown, text, json, yaml, toon
	ReportFile string `koanf:"report_file" toml:"report_file" json:"report_file" yaml:"report_file" toon:"report_file"`
	PatchDir   string `koanf:"patch_dir" toml:"patch_dir" json:"patch_dir" yaml:"patch_dir" toon:"patch_dir"`
	Color      bool   `koanf:"color" toml:"color" json:"color" yaml:"color" toon:"color"`
	Verbose    bool   `koanf:"verbose" toml:"verbose" json:"verbose" yaml:"verbose" toon:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			ViewModelSuffix:      "ViewModel",
			PartialMatch:         true,
			SelfCalls:            true,
			LifecycleAnnotations: []string{"@Init", "@AfterCompose", "@Destroy"},
			IgnoreAnnotations:    []string{},
			IgnoreFile:           ".vmsweep-ignore",
		},
		Templates: TemplateConfig{
			Roots:         []string{},
			Extensions:    []string{".zul"},
			FallbackAlias: "vm",
		},
		Exclude: ExcludeConfig{
			Patterns: []string{},
			Dirs: []string{
				".git",
				".vmsweep",
				"target",
				"build",
				"node_modules",
				".gradle",
				".idea",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".vmsweep/cache",
		},
		Output: OutputConfig{
			Format:     "markdown",
			ReportFile: "unused_viewmodel_report.md",
			PatchDir:   "patches",
			Color:      true,
			Verbose:    false,
		},
	}
}

// Load loads configuration from a file. Keys absent from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if err := k.Load(fileProvider(path), parserFor(path)); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func fileProvider(path string) *file.File {
	return file.Provider(path)
}

// parserFor picks the koanf parser from the file extension, defaulting to TOML.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

// configNames are the file names searched by LoadOrDefault.
var configNames = []string{
	"vmsweep.toml",
	"vmsweep.yaml",
	"vmsweep.yml",
	"vmsweep.json",
	".vmsweep.toml",
	".vmsweep.yaml",
	".vmsweep.yml",
	".vmsweep.json",
}

// LoadOrDefault tries to load config from standard locations under root or
// returns defaults. The second return value is the file that was found. A
// found file that fails to load is an error, with defaults returned
// alongside it.
func LoadOrDefault(root string) (*Config, string, error) {
	searchDirs := []string{root, filepath.Join(root, ".vmsweep")}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				return DefaultConfig(), path, err
			}
			return cfg, path, nil
		}
	}

	return DefaultConfig(), "", nil
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}

// IsTemplate reports whether path has a configured template extension.
func (c *Config) IsTemplate(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range c.Templates.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// TOML renders c as a configuration file, headed by a short comment.
func (c *Config) TOML() ([]byte, error) {
	content, err := gotoml.Marshal(*c)
	if err != nil {
		return nil, fmt.Errorf("marshal config to TOML: %w", err)
	}
	header := "# vmsweep configuration\n# Keys left out fall back to their defaults.\n\n"
	return append([]byte(header), content...), nil
}
