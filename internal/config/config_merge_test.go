package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeConfigs_ExclusionsMerge(t *testing.T) {
	base := &Config{Exclude: []string{"**/node_modules/**", "**/vendor/**"}}
	project := &Config{Exclude: []string{"**/dist/**", "**/vendor/**"}}

	merged := mergeConfigs(base, project)

	assert.Equal(t, []string{"**/node_modules/**", "**/vendor/**", "**/dist/**"}, merged.Exclude)
}

func TestMergeConfigs_ProjectWins(t *testing.T) {
	base := &Config{
		Host:     Host{Path: "/global/typescript.js", LibDir: "/global/lib"},
		Resolver: Resolver{Probe: ProbeHost, Globals: []string{"React"}},
		Output:   Output{Format: FormatJSON},
		Include:  []string{"**/*.ts"},
	}
	project := &Config{
		Resolver: Resolver{Probe: ProbeStatic},
		Output:   Output{Format: FormatCompact},
	}

	merged := mergeConfigs(base, project)

	assert.Equal(t, ProbeStatic, merged.Resolver.Probe)
	assert.Equal(t, FormatCompact, merged.Output.Format)
	assert.Equal(t, []string{"React"}, merged.Resolver.Globals)
	assert.Equal(t, []string{"**/*.ts"}, merged.Include)
	assert.Equal(t, "/global/typescript.js", merged.Host.Path)
	assert.Equal(t, "/global/lib", merged.Host.LibDir)
}

func TestMergeConfigs_ProjectIncludeReplacesBase(t *testing.T) {
	base := &Config{Include: []string{"**/*.ts"}}
	project := &Config{Include: []string{"src/**/*.tsx"}}

	merged := mergeConfigs(base, project)
	assert.Equal(t, []string{"src/**/*.tsx"}, merged.Include)
}

func TestLoadWithRoot_DefaultsWithoutFiles(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	root := t.TempDir()

	cfg, err := LoadWithRoot("", root)
	require.NoError(t, err)
	assert.Equal(t, root, cfg.Project.Root)
	assert.Equal(t, ProbeAuto, cfg.Resolver.Probe)
}

func TestLoadWithRoot_GlobalUnderProject(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, KDLFileName), []byte(`
resolver { globals "React"; }
exclude "**/global/**"
`), 0o644))

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, KDLFileName), []byte(`
output { format "json"; }
`), 0o644))

	cfg, err := LoadWithRoot("", root)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.Equal(t, []string{"React"}, cfg.Resolver.Globals)
	assert.Contains(t, cfg.Exclude, "**/global/**")
	assert.Equal(t, root, cfg.Project.Root)
}

func TestLoadWithRoot_ExplicitPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[output]\nmax_depth = 2\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Output.MaxDepth)
	assert.Equal(t, dir, cfg.Project.Root)
}

func TestLoadWithRoot_BrokenProjectFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, KDLFileName), []byte(`output {`), 0o644))

	_, err := LoadWithRoot("", root)
	assert.Error(t, err)
}

func TestDeduplicatePatterns(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, DeduplicatePatterns([]string{"a", "b", "a"}))
	assert.Empty(t, DeduplicatePatterns(nil))
}
