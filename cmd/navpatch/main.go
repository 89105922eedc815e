package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/navpatch/internal/config"
	"github.com/standardbeagle/navpatch/internal/debug"
	"github.com/standardbeagle/navpatch/internal/version"

	"github.com/urfave/cli/v2"
)

var Version = version.Version

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")
	rootFlag := c.String("root")

	cfg, err := config.LoadWithRoot(configPath, rootFlag)
	if err != nil {
		where := configPath
		if where == "" {
			where = "project root"
		}
		return nil, fmt.Errorf("failed to load config from %s: %w", where, err)
	}

	if rootFlag != "" {
		absRoot, err := filepath.Abs(rootFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootFlag, err)
		}
		cfg.Project.Root = absRoot
	}
	if host := c.String("host"); host != "" {
		absHost, err := filepath.Abs(host)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve host path %q: %w", host, err)
		}
		cfg.Host.Path = absHost
	}
	if profile := c.String("profile"); profile != "" {
		cfg.Host.Profile = profile
	}
	if c.IsSet("numbered-items") {
		cfg.Features.ArraysTuplesNumberedItems = c.Bool("numbered-items")
	}
	if probe := c.String("probe"); probe != "" {
		cfg.Resolver.Probe = probe
	}
	if globals := c.StringSlice("global"); len(globals) > 0 {
		cfg.Resolver.Globals = append(cfg.Resolver.Globals, globals...)
	}
	if format := c.String("format"); format != "" {
		cfg.Output.Format = format
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Exclude = config.DeduplicatePatterns(append(cfg.Exclude, excludes...))
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	app := &cli.App{
		Name:                   "navpatch",
		Usage:                  "TypeScript outlines with JSX class/id labels, type members and numbered array items",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: .navpatch.kdl or .navpatch.toml in the root)",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Path to typescript.js (default: node_modules/typescript/lib/typescript.js above the root)",
			},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "Force the host layout: legacy or refactored",
			},
			&cli.BoolFlag{
				Name:    "numbered-items",
				Aliases: []string{"n"},
				Usage:   "Outline array literal and tuple elements by index",
			},
			&cli.StringFlag{
				Name:  "probe",
				Usage: "Free variable probe: auto, static or host",
			},
			&cli.StringSliceFlag{
				Name:  "global",
				Usage: "Extra global names the static probe treats as declared",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json or compact",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/generated/**')",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log component debug output to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				debug.EnableDebug = "true"
				debug.SetDebugOutput(os.Stderr)
			} else if debug.IsDebugEnabled() {
				debug.SetDebugOutput(os.Stderr)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "outline",
				Aliases:   []string{"o"},
				Usage:     "Print the navigation tree of files",
				ArgsUsage: "<file|glob>...",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "max-depth",
						Aliases: []string{"d"},
						Usage:   "Maximum depth to display, 0 = unlimited (overrides config)",
					},
					&cli.BoolFlag{
						Name:  "spans",
						Usage: "Show the first text span of each item",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Cancel a file's outline after this long (e.g., 2s)",
					},
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Print outlines again when matching files change",
					},
				},
				Action: outlineCommand,
			},
			{
				Name:   "module",
				Usage:  "Print the synthesized outline module with its patch report",
				Action: moduleCommand,
			},
			{
				Name:      "labels",
				Aliases:   []string{"l"},
				Usage:     "List the JSX elements of files with their outline labels",
				ArgsUsage: "<file|glob>...",
				Action:    labelsCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the outline tools over MCP on stdio",
				Action: mcpCommand,
			},
			{
				Name:  "config",
				Usage: "Configuration management",
				Subcommands: []*cli.Command{
					{
						Name:    "show",
						Aliases: []string{"s"},
						Usage:   "Show current configuration values",
						Action:  configShowCommand,
					},
					{
						Name:    "validate",
						Aliases: []string{"v"},
						Usage:   "Validate configuration and locate the host",
						Action:  configValidateCommand,
					},
				},
			},
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(c *cli.Context) error {
					fmt.Println(version.FullInfo())
					fmt.Println("build:", version.BuildID())
					return nil
				},
			},
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// expandArgs resolves file and glob arguments against the project root.
// Globs use doublestar syntax. The result keeps paths relative to the root
// when they are below it.
func expandArgs(root string, args []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		pattern := arg
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(root, pattern)
		}
		if !strings.ContainsAny(arg, "*?[{") {
			add(pattern)
			continue
		}
		matches, err := globFiles(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return files, nil
}
