package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// HostRelPath is where npm installs the language service script.
var HostRelPath = filepath.Join("node_modules", "typescript", "lib", "typescript.js")

// DiscoverHost looks for an installed typescript.js in root and its parent
// directories, the way node resolves packages.
func DiscoverHost(root string) (string, bool) {
	dir := absOr(root)
	for {
		candidate := filepath.Join(dir, HostRelPath)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// HostPackageVersion reads the version field of the package.json next to
// the host's lib directory. It returns "" when the file is missing or has no
// version.
func HostPackageVersion(hostPath string) string {
	packageJSON := filepath.Join(filepath.Dir(filepath.Dir(hostPath)), "package.json")
	data, err := os.ReadFile(packageJSON)
	if err != nil {
		return ""
	}
	var pkg struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if json.Unmarshal(data, &pkg) != nil {
		return ""
	}
	return pkg.Version
}

// ResolveHost fills in Host.Path from discovery and Host.Version from the
// package manifest when the config leaves them empty.
func (c *Config) ResolveHost() bool {
	if c.Host.Path == "" {
		path, ok := DiscoverHost(c.Project.Root)
		if !ok {
			return false
		}
		c.Host.Path = path
	}
	if c.Host.Version == "" {
		c.Host.Version = HostPackageVersion(c.Host.Path)
	}
	return true
}
