package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandArgs(t *testing.T) {
	root := t.TempDir()
	for _, f := range []string{"src/a.tsx", "src/b.ts", "src/nested/c.tsx", "README.md"} {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	}

	files, err := expandArgs(root, []string{"src/**/*.tsx", "src/b.ts", "src/a.tsx"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("src", "a.tsx"),
		filepath.Join("src", "nested", "c.tsx"),
		filepath.Join("src", "b.ts"),
	}, files)

	_, err = expandArgs(root, []string{"lib/**/*.ts"})
	assert.ErrorContains(t, err, "no files match")

	outside := filepath.Join(t.TempDir(), "x.ts")
	files, err = expandArgs(root, []string{outside})
	require.NoError(t, err)
	assert.Equal(t, []string{outside}, files)
}
