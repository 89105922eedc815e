package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// LoadTOML loads .navpatch.toml from dir. It returns nil, nil when the file
// does not exist.
func LoadTOML(dir string) (*Config, error) {
	tomlPath := filepath.Join(dir, TOMLFileName)
	if _, err := os.Stat(tomlPath); os.IsNotExist(err) {
		return nil, nil
	}
	return loadTOMLFile(tomlPath)
}

func loadTOMLFile(tomlPath string) (*Config, error) {
	content, err := os.ReadFile(tomlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", tomlPath, err)
	}
	cfg, err := parseTOML(content)
	if err != nil {
		return nil, err
	}
	resolveRoot(cfg, filepath.Dir(tomlPath))
	resolveHostPaths(cfg)
	return cfg, nil
}

// parseTOML decodes over the defaults, so absent keys keep their default
// values. Exclusions are appended to the default list.
func parseTOML(content []byte) (*Config, error) {
	cfg := Default()
	cfg.Project.Root = ""
	defaults := cfg.Exclude
	cfg.Exclude = nil

	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}
	cfg.Exclude = DeduplicatePatterns(append(defaults, cfg.Exclude...))
	return cfg, nil
}
