package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/navpatch/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startWatcher(t *testing.T, opts Options) (*Watcher, <-chan []Event) {
	t.Helper()
	batches := make(chan []Event, 16)
	w, err := New(opts, func(events []Event) { batches <- events })
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
	return w, batches
}

func nextBatch(t *testing.T, batches <-chan []Event) []Event {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
		return nil
	}
}

func TestWatcher_DebouncesIntoOneBatch(t *testing.T) {
	root := t.TempDir()
	w, batches := startWatcher(t, Options{
		Root:     root,
		Include:  []string{"**/*.tsx"},
		Debounce: 50 * time.Millisecond,
	})

	path := filepath.Join(root, "app.tsx")
	require.NoError(t, os.WriteFile(path, []byte("export const a = 1"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("export const a = 2"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("x"), 0o644))

	batch := nextBatch(t, batches)
	require.Len(t, batch, 1)
	assert.Equal(t, path, batch[0].Path)
	assert.Equal(t, EventCreate, batch[0].Type)

	events, flushed := w.Stats()
	assert.Equal(t, int64(1), events)
	assert.Equal(t, int64(1), flushed)
}

func TestWatcher_NewDirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	_, batches := startWatcher(t, Options{Root: root, Debounce: 30 * time.Millisecond})

	dir := filepath.Join(root, "src")
	require.NoError(t, os.Mkdir(dir, 0o755))
	// Give the watcher a moment to add the new directory.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "index.ts")
	require.NoError(t, os.WriteFile(path, []byte("let x"), 0o644))

	var paths []string
	deadline := time.After(5 * time.Second)
	for len(paths) == 0 {
		select {
		case b := <-batches:
			for _, ev := range b {
				if ev.Path == path {
					paths = append(paths, ev.Path)
				}
			}
		case <-deadline:
			t.Fatal("no event for file in new directory")
		}
	}
	assert.Equal(t, []string{path}, paths)
}

func TestWatcher_Matches(t *testing.T) {
	root := t.TempDir()
	gp := config.NewGitignoreParser()
	gp.AddPattern("generated/")

	w, err := New(Options{
		Root:      root,
		Include:   []string{"**/*.ts", "**/*.tsx"},
		Exclude:   []string{"**/node_modules/**", "**/*.d.ts"},
		Gitignore: gp,
	}, func([]Event) {})
	require.NoError(t, err)
	defer w.Stop()

	assert.True(t, w.Matches(filepath.Join(root, "src", "app.tsx")))
	assert.True(t, w.Matches("src/util.ts"))
	assert.False(t, w.Matches("src/types.d.ts"))
	assert.False(t, w.Matches("node_modules/typescript/lib/lib.d.ts"))
	assert.False(t, w.Matches("generated/api.ts"))
	assert.False(t, w.Matches("README.md"))
	assert.True(t, w.ignoredDir(filepath.Join(root, "node_modules")))
	assert.True(t, w.ignoredDir(filepath.Join(root, "generated")))
	assert.False(t, w.ignoredDir(filepath.Join(root, "src")))
}

func TestNew_RequiresCallback(t *testing.T) {
	_, err := New(Options{Root: t.TempDir()}, nil)
	assert.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("out/\n"), 0o644))

	cfg := config.Default()
	cfg.Project.Root = root
	cfg.Watch.DebounceMs = 75

	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 75*time.Millisecond, opts.Debounce)
	require.NotNil(t, opts.Gitignore)
	assert.True(t, opts.Gitignore.ShouldIgnore("out/app.js", false))

	cfg.Watch.RespectGitignore = false
	opts, err = OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Nil(t, opts.Gitignore)
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "create", EventCreate.String())
	assert.Equal(t, "rename", EventRename.String())
	assert.Equal(t, "EventType(9)", EventType(9).String())
}
