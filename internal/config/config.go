package config

import (
	"os"
	"path/filepath"

	"github.com/standardbeagle/navpatch/internal/types"
)

// Probe modes for free-variable resolution.
const (
	ProbeAuto   = "auto"
	ProbeStatic = "static"
	ProbeHost   = "host"
)

// Output formats of the outline command.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatCompact = "compact"
)

// Config file names looked up in the project directory and the user's home.
const (
	KDLFileName  = ".navpatch.kdl"
	TOMLFileName = ".navpatch.toml"
)

type Config struct {
	Version  int      `toml:"version"`
	Project  Project  `toml:"project"`
	Host     Host     `toml:"host"`
	Features Features `toml:"features"`
	Resolver Resolver `toml:"resolver"`
	Output   Output   `toml:"output"`
	Watch    Watch    `toml:"watch"`
	Include  []string `toml:"include"`
	Exclude  []string `toml:"exclude"`
}

type Project struct {
	Root string `toml:"root"`
}

// Host selects the language service script the outline module is cut from.
type Host struct {
	Path    string `toml:"path"`    // typescript.js; discovered under node_modules when empty
	Profile string `toml:"profile"` // "legacy" or "refactored"; detected from the version when empty
	Version string `toml:"version"` // overrides the version found in the host script
	LibDir  string `toml:"lib_dir"` // lib.*.d.ts directory for the host probe
}

type Features struct {
	ArraysTuplesNumberedItems bool `toml:"arrays_tuples_numbered_items"`
}

// Flags converts the section into the cache key type.
func (f Features) Flags() types.FeatureFlags {
	return types.FeatureFlags{ArraysTuplesNumberedItems: f.ArraysTuplesNumberedItems}
}

type Resolver struct {
	Probe   string   `toml:"probe"`   // "auto", "static" or "host"
	Globals []string `toml:"globals"` // extra names the static probe treats as declared
}

type Output struct {
	Format   string `toml:"format"`
	MaxDepth int    `toml:"max_depth"` // 0 = unlimited
}

type Watch struct {
	DebounceMs       int  `toml:"debounce_ms"`
	RespectGitignore bool `toml:"respect_gitignore"`
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot loads ~/.navpatch.kdl as a base and merges the project config
// found in rootDir over it. Without any config file the defaults are used.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil {
		if globalCfg, err := LoadFile(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	var projectConfig *Config
	if path != "" {
		cfg, err := loadPath(path)
		if err != nil {
			return nil, err
		}
		projectConfig = cfg
	} else if cfg, err := LoadFile(searchDir); err != nil {
		return nil, err
	} else if cfg != nil {
		projectConfig = cfg
	}

	switch {
	case baseConfig != nil && projectConfig != nil:
		return mergeConfigs(baseConfig, projectConfig), nil
	case projectConfig != nil:
		return projectConfig, nil
	case baseConfig != nil:
		baseConfig.Project.Root = absOr(searchDir)
		return baseConfig, nil
	}

	cfg := Default()
	cfg.Project.Root = absOr(searchDir)
	return cfg, nil
}

// LoadFile loads .navpatch.kdl from dir, falling back to .navpatch.toml.
// It returns nil, nil when neither exists.
func LoadFile(dir string) (*Config, error) {
	if cfg, err := LoadKDL(dir); err != nil || cfg != nil {
		return cfg, err
	}
	return LoadTOML(dir)
}

func loadPath(path string) (*Config, error) {
	if filepath.Ext(path) == ".toml" {
		return loadTOMLFile(path)
	}
	return loadKDLFile(path)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: absOr(".")},
		Resolver: Resolver{
			Probe: ProbeAuto,
		},
		Output: Output{
			Format: FormatText,
		},
		Watch: Watch{
			DebounceMs:       300,
			RespectGitignore: true,
		},
		Include: []string{"**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx"},
		Exclude: []string{
			"**/.git/**",
			"**/node_modules/**",
			"**/dist/**",
			"**/build/**",
			"**/*.min.js",
			"**/*.d.ts",
		},
	}
}

// mergeConfigs layers a project config over the global one. Exclusions are
// combined; inclusions and the resolver globals come from the project when
// set.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		merged.Exclude = DeduplicatePatterns(append(append([]string{}, base.Exclude...), project.Exclude...))
	}
	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}
	if len(project.Resolver.Globals) == 0 {
		merged.Resolver.Globals = base.Resolver.Globals
	}
	if merged.Host.Path == "" {
		merged.Host.Path = base.Host.Path
	}
	if merged.Host.LibDir == "" {
		merged.Host.LibDir = base.Host.LibDir
	}

	return &merged
}

// DeduplicatePatterns drops repeated patterns, keeping first occurrences.
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func absOr(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}

// resolveRoot makes a configured root absolute relative to the directory of
// the config file.
func resolveRoot(cfg *Config, configDir string) {
	if cfg.Project.Root == "" {
		cfg.Project.Root = absOr(configDir)
		return
	}
	if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Join(configDir, cfg.Project.Root)
	}
	cfg.Project.Root = filepath.Clean(cfg.Project.Root)
}

// resolveHostPaths makes configured host paths relative to the project root.
func resolveHostPaths(cfg *Config) {
	if cfg.Host.Path != "" && !filepath.IsAbs(cfg.Host.Path) {
		cfg.Host.Path = filepath.Join(cfg.Project.Root, cfg.Host.Path)
	}
	if cfg.Host.LibDir != "" && !filepath.IsAbs(cfg.Host.LibDir) {
		cfg.Host.LibDir = filepath.Join(cfg.Project.Root, cfg.Host.LibDir)
	}
}
