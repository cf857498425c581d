package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/vmsweep/internal/testutil"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{
			name:    "valid toml",
			file:    "vmsweep.toml",
			content: "[analysis]\npartial_match = false\nworkers = 4\n\n[output]\nformat = \"yaml\"\n",
		},
		{
			name:    "valid yaml",
			file:    "vmsweep.yaml",
			content: "templates:\n  extensions: [\".zul\", \".zhtml\"]\n",
		},
		{
			name:    "misspelled key",
			file:    "vmsweep.toml",
			content: "[analysis]\npartial_mach = false\n",
			wantErr: "partial_mach",
		},
		{
			name:    "wrong type",
			file:    "vmsweep.json",
			content: `{"cache": {"enabled": "yes"}}`,
			wantErr: "invalid configuration",
		},
		{
			name:    "unknown format",
			file:    "vmsweep.toml",
			content: "[output]\nformat = \"html\"\n",
			wantErr: "invalid configuration",
		},
		{
			name:    "negative workers",
			file:    "vmsweep.toml",
			content: "[analysis]\nworkers = -1\n",
			wantErr: "invalid configuration",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			testutil.WriteFile(t, path, tt.content)

			err := Validate(path)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_MissingFile(t *testing.T) {
	assert.Error(t, Validate(filepath.Join(t.TempDir(), "nope.toml")))
}

func TestTOML_RoundTrip(t *testing.T) {
	content, err := DefaultConfig().TOML()
	require.NoError(t, err)
	assert.Contains(t, string(content), "# vmsweep configuration")
	assert.Contains(t, string(content), "viewmodel_suffix")

	path := filepath.Join(t.TempDir(), "vmsweep.toml")
	testutil.WriteFile(t, path, string(content))

	require.NoError(t, Validate(path), "generated defaults pass the schema")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Analysis, cfg.Analysis)
	assert.Equal(t, DefaultConfig().Output, cfg.Output)
	assert.Equal(t, DefaultConfig().Exclude.Dirs, cfg.Exclude.Dirs)
}
