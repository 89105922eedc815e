package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL loads .navpatch.kdl from dir. It returns nil, nil when the file
// does not exist.
func LoadKDL(dir string) (*Config, error) {
	kdlPath := filepath.Join(dir, KDLFileName)
	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}
	return loadKDLFile(kdlPath)
}

func loadKDLFile(kdlPath string) (*Config, error) {
	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", kdlPath, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}
	resolveRoot(cfg, filepath.Dir(kdlPath))
	resolveHostPaths(cfg)
	return cfg, nil
}

// parseKDL reads a config document over the defaults. Unknown nodes are
// ignored with a warning so newer files still load.
//
//	host { path "node_modules/typescript/lib/typescript.js"; profile "legacy" }
//	features { arrays_tuples_numbered_items true }
//	resolver { probe "static"; globals "React" "JSX" }
//	output { format "compact"; max_depth 3 }
//	watch { debounce_ms 200 }
//	exclude "**/generated/**"
func parseKDL(content string) (*Config, error) {
	cfg := Default()
	cfg.Project.Root = ""

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
			}
		case "host":
			for _, cn := range n.Children {
				assignSimpleString(cn, "path", func(v string) { cfg.Host.Path = v })
				assignSimpleString(cn, "profile", func(v string) { cfg.Host.Profile = v })
				assignSimpleString(cn, "version", func(v string) { cfg.Host.Version = v })
				assignSimpleString(cn, "lib_dir", func(v string) { cfg.Host.LibDir = v })
			}
		case "features":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "arrays_tuples_numbered_items":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Features.ArraysTuplesNumberedItems = b
					}
				default:
					log.Printf("WARNING: unknown feature '%s' in KDL config", nodeName(cn))
				}
			}
		case "resolver":
			for _, cn := range n.Children {
				assignSimpleString(cn, "probe", func(v string) { cfg.Resolver.Probe = v })
				if nodeName(cn) == "globals" {
					cfg.Resolver.Globals = append(cfg.Resolver.Globals, collectStringArgs(cn)...)
				}
			}
		case "output":
			for _, cn := range n.Children {
				assignSimpleString(cn, "format", func(v string) { cfg.Output.Format = v })
				if nodeName(cn) == "max_depth" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Output.MaxDepth = v
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Watch.RespectGitignore = b
					}
				}
			}
		case "include":
			// An explicit include list replaces the default source globs.
			cfg.Include = collectStringArgs(n)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		default:
			log.Printf("WARNING: unknown node '%s' in KDL config", nodeName(n))
		}
	}

	cfg.Exclude = DeduplicatePatterns(cfg.Exclude)
	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		log.Printf("WARNING: invalid integer value for '%s' in KDL config, got %T", nodeName(n), n.Arguments[0].Value)
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs accepts both `exclude "a" "b"` and the block form
// `exclude { "a"; "b" }`, where each child node is named by its string.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
