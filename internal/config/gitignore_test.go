package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitignoreParser_ShouldIgnore(t *testing.T) {
	gp := NewGitignoreParser()
	for _, line := range []string{
		"# comment",
		"",
		"*.log",
		"dist/",
		"/coverage",
		"src/generated/*.ts",
		"!keep.log",
	} {
		gp.AddPattern(line)
	}

	tests := []struct {
		path   string
		isDir  bool
		ignore bool
	}{
		{"debug.log", false, true},
		{"nested/deep/error.log", false, true},
		{"keep.log", false, false},
		{"dist", true, true},
		{"dist/app.js", false, true},
		{"packages/ui/dist/index.js", false, true},
		{"coverage/lcov.info", false, true},
		{"packages/coverage/x.ts", false, false},
		{"src/generated/api.ts", false, true},
		{"src/app.tsx", false, false},
		{"./debug.log", false, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ignore, gp.ShouldIgnore(tt.path, tt.isDir), tt.path)
	}
}

func TestGitignoreParser_LoadGitignore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("node_modules/\n*.tmp\n"), 0o644))

	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(dir))

	assert.True(t, gp.ShouldIgnore("node_modules/typescript/lib/typescript.js", false))
	assert.True(t, gp.ShouldIgnore("a.tmp", false))
	assert.Equal(t, []string{"**/node_modules/**", "**/*.tmp"}, gp.ExclusionPatterns())
}

func TestGitignoreParser_MissingFile(t *testing.T) {
	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(t.TempDir()))
	assert.False(t, gp.ShouldIgnore("anything.ts", false))
	assert.Empty(t, gp.ExclusionPatterns())
}
