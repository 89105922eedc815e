// Package watch reports debounced batches of source file changes below a
// project root.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/navpatch/internal/config"
	"github.com/standardbeagle/navpatch/internal/debug"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
	EventRename
)

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "create"
	case EventWrite:
		return "write"
	case EventRemove:
		return "remove"
	case EventRename:
		return "rename"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event is the last change seen for a path within one debounce window.
type Event struct {
	Path string
	Type EventType
}

// Options selects what is watched.
type Options struct {
	Root      string
	Include   []string // globs relative to Root; empty matches everything
	Exclude   []string
	Debounce  time.Duration
	Gitignore *config.GitignoreParser
}

// OptionsFromConfig builds watch options from the project config, loading
// .gitignore from the project root when enabled.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	opts := Options{
		Root:     cfg.Project.Root,
		Include:  cfg.Include,
		Exclude:  cfg.Exclude,
		Debounce: time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
	}
	if cfg.Watch.RespectGitignore {
		gp := config.NewGitignoreParser()
		if err := gp.LoadGitignore(cfg.Project.Root); err != nil {
			return Options{}, fmt.Errorf("load .gitignore: %w", err)
		}
		opts.Gitignore = gp
	}
	return opts, nil
}

// Watcher monitors the file system and hands debounced batches to a callback
type Watcher struct {
	watcher *fsnotify.Watcher
	opts    Options
	onBatch func([]Event)
	events  chan Event
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	eventsProcessed atomic.Int64
	batches         atomic.Int64
}

// New creates a watcher. onBatch runs on the watcher's own goroutine, one
// batch at a time, with events sorted by path.
func New(opts Options, onBatch func([]Event)) (*Watcher, error) {
	if onBatch == nil {
		return nil, fmt.Errorf("watch: batch callback is required")
	}
	if opts.Root == "" {
		opts.Root = "."
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}
	opts.Root = root
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		watcher: fsw,
		opts:    opts,
		onBatch: onBatch,
		events:  make(chan Event, 64),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start adds watches below the root and starts processing events
func (w *Watcher) Start() error {
	debug.LogWatch("starting watcher for %s\n", w.opts.Root)

	if err := w.addWatches(w.opts.Root); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", w.opts.Root, err)
	}

	w.wg.Add(2)
	go w.processEvents()
	go w.debounce()
	return nil
}

// Stop stops the watcher and waits for its goroutines. Pending events are
// dropped.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	debug.LogWatch("watcher stopped after %d events\n", w.eventsProcessed.Load())
	return err
}

// Stats returns the number of events delivered and batches flushed.
func (w *Watcher) Stats() (events, batches int64) {
	return w.eventsProcessed.Load(), w.batches.Load()
}

// addWatches recursively adds watches to all directories that are not ignored
func (w *Watcher) addWatches(root string) error {
	visitedDirs := make(map[string]bool)

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}

		// Symlink cycles
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visitedDirs[realPath] {
			return filepath.SkipDir
		}
		visitedDirs[realPath] = true

		if path != root && w.ignoredDir(path) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			log.Printf("WARNING: failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.opts.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) ignoredDir(path string) bool {
	rel := w.rel(path)
	for _, pattern := range w.opts.Exclude {
		// "**/node_modules/**" excludes the directory itself too.
		if ok, _ := doublestar.Match(pattern, rel+"/"); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return w.opts.Gitignore != nil && w.opts.Gitignore.ShouldIgnore(rel, true)
}

// Matches reports whether a file path is selected by the include and
// exclude globs and not ignored by .gitignore.
func (w *Watcher) Matches(path string) bool {
	if !filepath.IsAbs(path) {
		path = filepath.Join(w.opts.Root, path)
	}
	rel := w.rel(path)
	for _, pattern := range w.opts.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	if w.opts.Gitignore != nil && w.opts.Gitignore.ShouldIgnore(rel, false) {
		return false
	}
	if len(w.opts.Include) == 0 {
		return true
	}
	for _, pattern := range w.opts.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// processEvents translates fsnotify events into debouncer input
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("WARNING: file watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	debug.LogWatch("received %v for %s\n", event.Op, path)

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if event.Op&fsnotify.Create != 0 && !w.ignoredDir(path) {
			if err := w.addWatches(path); err != nil {
				log.Printf("WARNING: failed to watch new directory %s: %v", path, err)
			}
		}
		return
	}

	var eventType EventType
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = EventCreate
	case event.Op&fsnotify.Write != 0:
		eventType = EventWrite
	case event.Op&fsnotify.Remove != 0:
		eventType = EventRemove
	case event.Op&fsnotify.Rename != 0:
		eventType = EventRename
	default:
		return
	}

	if !w.Matches(path) {
		return
	}

	select {
	case w.events <- Event{Path: path, Type: eventType}:
	case <-w.ctx.Done():
	}
}

// debounce collects events until the debounce window passes without a new
// one, then flushes them as one batch. A create followed by writes stays a
// create.
func (w *Watcher) debounce() {
	defer w.wg.Done()

	pending := make(map[string]EventType)
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case ev := <-w.events:
			if prev, ok := pending[ev.Path]; ok && prev == EventCreate && ev.Type == EventWrite {
				ev.Type = EventCreate
			}
			pending[ev.Path] = ev.Type
			timer.Reset(w.opts.Debounce)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := make([]Event, 0, len(pending))
			for path, t := range pending {
				batch = append(batch, Event{Path: path, Type: t})
			}
			sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
			pending = make(map[string]EventType)

			debug.LogWatch("flushing %d debounced events\n", len(batch))
			w.onBatch(batch)
			w.eventsProcessed.Add(int64(len(batch)))
			w.batches.Add(1)
		}
	}
}
