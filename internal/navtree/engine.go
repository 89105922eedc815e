// Package navtree builds, caches and queries patched outline modules.
package navtree

import (
	"fmt"
	"log"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/navpatch/internal/debug"
	naverrors "github.com/standardbeagle/navpatch/internal/errors"
	"github.com/standardbeagle/navpatch/internal/patch"
	"github.com/standardbeagle/navpatch/internal/resolver"
	"github.com/standardbeagle/navpatch/internal/types"
)

// Module is one built outline module together with how it was built.
type Module struct {
	types.NavigationModule

	Profile       patch.Profile
	Flags         types.FeatureFlags
	Text          string
	FreeVariables []string
	Report        patch.Report
	// Fingerprint is the xxhash of the host source the module came from.
	Fingerprint uint64
}

// Builder builds the module for a flag set.
type Builder interface {
	Build(flags types.FeatureFlags) (*Module, error)
}

// EngineOptions configures an Engine.
type EngineOptions struct {
	// Source returns the raw host script. It is called at most once.
	Source func() (string, error)
	// Profile forces a host profile. Nil selects one from Version or from
	// the version marker in the host source.
	Profile *patch.Profile
	// Version is the host version used when Profile is nil.
	Version string

	Compiler types.ModuleCompiler
	Bindings types.Bindings
	// Probe resolves free variables for profiles that need it.
	Probe resolver.Probe
	// Logger receives patch warnings. Nil uses the standard logger.
	Logger *log.Logger

	// OnSynthesize is called with every synthesized module text that is
	// handed to the compiler.
	OnSynthesize func(profile patch.Profile, text string)
}

// Engine runs locate, patch, synthesize, resolve and compile.
type Engine struct {
	opts    EngineOptions
	source  func() (string, error)
	applier *patch.Applier
}

// NewEngine creates an engine. The host source is read lazily and only once.
func NewEngine(opts EngineOptions) (*Engine, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("engine needs a host source")
	}
	if opts.Compiler == nil {
		return nil, fmt.Errorf("engine needs a module compiler")
	}
	return &Engine{
		opts:    opts,
		source:  sync.OnceValues(opts.Source),
		applier: patch.NewApplier(opts.Logger),
	}, nil
}

// Build builds the module for flags. A missing anchor marker fails the build;
// a missing patch token only degrades it.
func (e *Engine) Build(flags types.FeatureFlags) (*Module, error) {
	m, err := e.Synthesize(flags)
	if err != nil {
		return nil, err
	}

	if e.opts.OnSynthesize != nil {
		e.opts.OnSynthesize(m.Profile, m.Text)
	}

	m.NavigationModule, err = e.opts.Compiler.Compile(m.Text, e.opts.Bindings)
	if err != nil {
		return nil, err
	}

	debug.LogEngine("built %s module for %s: %d/%d patches applied, %d free variables\n",
		m.Profile.Name(), flags, len(m.Report.Applied), len(m.Report.Applied)+len(m.Report.Skipped), len(m.FreeVariables))
	return m, nil
}

// Synthesize produces the module text for flags without compiling it.
func (e *Engine) Synthesize(flags types.FeatureFlags) (*Module, error) {
	src, err := e.source()
	if err != nil {
		return nil, err
	}

	profile, err := e.profile(src)
	if err != nil {
		return nil, err
	}

	buf, err := patch.Locate(src, profile.Anchor, profile.Name())
	if err != nil {
		return nil, err
	}
	report := e.applier.Apply(buf, profile.Catalog.Select(flags))
	body := buf.Lines()

	m := &Module{
		Profile:     profile,
		Flags:       flags,
		Report:      report,
		Fingerprint: xxhash.Sum64String(src),
	}

	if !profile.NeedsFreeVariableResolution {
		m.Text = patch.Synthesize(body, profile, "")
		return m, nil
	}

	if e.opts.Probe == nil {
		return nil, naverrors.NewCompileError("resolve", fmt.Errorf("%s profile needs a compiler probe", profile.Name()))
	}
	result, err := resolver.Resolve(body, profile, e.opts.Probe)
	if err != nil {
		return nil, err
	}
	m.Text = result.Text
	m.FreeVariables = result.Names
	return m, nil
}

func (e *Engine) profile(src string) (patch.Profile, error) {
	if e.opts.Profile != nil {
		return *e.opts.Profile, nil
	}
	version := e.opts.Version
	if version == "" {
		detected, ok := patch.DetectVersion(src)
		if !ok {
			return patch.Profile{}, naverrors.NewHostIncompatibleError("unknown", "version", "versionMajorMinor")
		}
		version = detected
	}
	return patch.SelectProfile(version)
}
