// Package workspace wires a loaded host, the outline engine and the markup
// label extractor for one project, as configured.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/standardbeagle/navpatch/internal/config"
	"github.com/standardbeagle/navpatch/internal/debug"
	"github.com/standardbeagle/navpatch/internal/display"
	naverrors "github.com/standardbeagle/navpatch/internal/errors"
	"github.com/standardbeagle/navpatch/internal/jsruntime"
	"github.com/standardbeagle/navpatch/internal/label"
	"github.com/standardbeagle/navpatch/internal/navtree"
	"github.com/standardbeagle/navpatch/internal/patch"
	"github.com/standardbeagle/navpatch/internal/resolver"
	"github.com/standardbeagle/navpatch/internal/types"
)

// ErrNoHost is returned when no host script is configured or installed.
var ErrNoHost = errors.New("no typescript.js found; set host.path or install typescript")

// Workspace owns everything needed to answer outline and label queries for
// the files of one project.
type Workspace struct {
	cfg       *config.Config
	host      *jsruntime.Host
	engine    *navtree.Engine
	service   *navtree.Service
	extractor *label.Extractor
	probe     resolver.Probe
	probeName string
}

// Options tune Open beyond the config file.
type Options struct {
	// Logger receives patch warnings. Nil uses the standard logger.
	Logger *log.Logger
}

// Open loads the configured host and prepares the engine. The host is
// discovered under node_modules when the config names none.
func Open(cfg *config.Config, opts Options) (*Workspace, error) {
	if !cfg.ResolveHost() {
		return nil, naverrors.NewFileError("discover", cfg.Project.Root, ErrNoHost)
	}

	host, err := jsruntime.LoadHost(cfg.Host.Path)
	if err != nil {
		return nil, err
	}

	probe, probeName, err := selectProbe(cfg, host)
	if err != nil {
		return nil, err
	}

	var forced *patch.Profile
	if cfg.Host.Profile != "" {
		kind, err := patch.ParseProfileKind(cfg.Host.Profile)
		if err != nil {
			closeProbe(probe)
			return nil, naverrors.NewConfigError("host.profile", cfg.Host.Profile, err)
		}
		p := patch.ProfileFor(kind)
		forced = &p
	}
	version := cfg.Host.Version
	if version == "" {
		version = host.Version()
	}

	engine, err := navtree.NewEngine(navtree.EngineOptions{
		Source:   func() (string, error) { return host.Source(), nil },
		Profile:  forced,
		Version:  version,
		Compiler: jsruntime.NewCompiler(host),
		Bindings: types.Bindings{Host: host.API(), Label: label.Formatter},
		Probe:    probe,
		Logger:   opts.Logger,
	})
	if err != nil {
		closeProbe(probe)
		return nil, err
	}

	extractor, err := label.NewExtractor()
	if err != nil {
		closeProbe(probe)
		return nil, err
	}

	debug.LogEngine("workspace %s: host %s (version %q), probe %s\n", cfg.Project.Root, cfg.Host.Path, version, probeName)
	return &Workspace{
		cfg:       cfg,
		host:      host,
		engine:    engine,
		service:   navtree.NewService(host, navtree.NewCache(engine)),
		extractor: extractor,
		probe:     probe,
		probeName: probeName,
	}, nil
}

// selectProbe picks the free-variable probe. "auto" prefers the host's own
// compiler when it can build programs and its lib files are present.
func selectProbe(cfg *config.Config, host *jsruntime.Host) (resolver.Probe, string, error) {
	switch cfg.Resolver.Probe {
	case config.ProbeHost:
		p, err := jsruntime.NewSelfProbe(host, cfg.Host.LibDir)
		if err != nil {
			return nil, "", naverrors.NewConfigError("resolver.probe", cfg.Resolver.Probe, err)
		}
		return p, config.ProbeHost, nil
	case config.ProbeAuto, "":
		if host.HasCompilerAPI() && hasLibFiles(cfg, host) {
			if p, err := jsruntime.NewSelfProbe(host, cfg.Host.LibDir); err == nil {
				return p, config.ProbeHost, nil
			}
		}
	}
	p, err := resolver.NewStaticProbe(cfg.Resolver.Globals...)
	if err != nil {
		return nil, "", err
	}
	return p, config.ProbeStatic, nil
}

func hasLibFiles(cfg *config.Config, host *jsruntime.Host) bool {
	dir := cfg.Host.LibDir
	if dir == "" {
		dir = filepath.Dir(host.Path())
	}
	_, err := os.Stat(filepath.Join(dir, "lib.d.ts"))
	return err == nil
}

func closeProbe(p resolver.Probe) {
	if sp, ok := p.(*resolver.StaticProbe); ok {
		sp.Close()
	}
}

// Config returns the configuration the workspace was opened with.
func (w *Workspace) Config() *config.Config {
	return w.cfg
}

// Host returns the loaded host runtime.
func (w *Workspace) Host() *jsruntime.Host {
	return w.host
}

// Service returns the outline query facade.
func (w *Workspace) Service() *navtree.Service {
	return w.service
}

// ProbeName reports which probe resolves free variables: "static" or "host".
func (w *Workspace) ProbeName() string {
	return w.probeName
}

// Flags returns the configured feature flags.
func (w *Workspace) Flags() types.FeatureFlags {
	return w.cfg.Features.Flags()
}

// Path resolves a file name against the project root.
func (w *Workspace) Path(fileName string) string {
	if filepath.IsAbs(fileName) {
		return filepath.Clean(fileName)
	}
	return filepath.Join(w.cfg.Project.Root, fileName)
}

func (w *Workspace) read(fileName string) (string, error) {
	path := w.Path(fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", naverrors.NewFileError("read", path, err)
	}
	return string(data), nil
}

// Sync reloads fileName from disk into the host program.
func (w *Workspace) Sync(fileName string) error {
	text, err := w.read(fileName)
	if err != nil {
		return err
	}
	w.host.Open(w.Path(fileName), text)
	return nil
}

// Forget drops fileName from the host program.
func (w *Workspace) Forget(fileName string) {
	w.host.Close(w.Path(fileName))
}

// Outline returns the outline of fileName for flags. When text is empty the
// file is read from disk; otherwise text replaces the document contents.
// Text the host cannot parse fails with a *errors.ParseError.
func (w *Workspace) Outline(ctx context.Context, fileName, text string, flags types.FeatureFlags) (*display.Item, error) {
	path := w.Path(fileName)
	if text == "" {
		var err error
		if text, err = w.read(fileName); err != nil {
			return nil, err
		}
	}
	w.host.Open(path, text)

	tree, err := w.service.GetNavTreeItems(ctx, path, flags)
	if err != nil {
		if errors.Is(err, naverrors.ErrNoSourceFile) {
			if parseErr := w.host.DocumentError(path); parseErr != nil {
				return nil, parseErr
			}
		}
		return nil, err
	}
	return display.Decode(tree)
}

// Module synthesizes the module text for flags without compiling it.
func (w *Workspace) Module(flags types.FeatureFlags) (*navtree.Module, error) {
	return w.engine.Synthesize(flags)
}

// Labels lists the markup elements of fileName with their outline labels.
// When text is empty the file is read from disk.
func (w *Workspace) Labels(fileName, text string) ([]label.Element, error) {
	if !label.SupportsFile(fileName) {
		return nil, fmt.Errorf("%s: markup labels need a .tsx, .jsx or .js file", fileName)
	}
	if text == "" {
		var err error
		if text, err = w.read(fileName); err != nil {
			return nil, err
		}
	}
	return w.extractor.Extract([]byte(text))
}

// Close releases the parsers held by the workspace.
func (w *Workspace) Close() {
	w.extractor.Close()
	closeProbe(w.probe)
}
