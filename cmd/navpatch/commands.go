package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/navpatch/internal/config"
	"github.com/standardbeagle/navpatch/internal/debug"
	"github.com/standardbeagle/navpatch/internal/display"
	"github.com/standardbeagle/navpatch/internal/mcp"
	"github.com/standardbeagle/navpatch/internal/types"
	"github.com/standardbeagle/navpatch/internal/watch"
	"github.com/standardbeagle/navpatch/internal/workspace"
)

func globFiles(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func openWorkspace(c *cli.Context) (*workspace.Workspace, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, err
	}
	return workspace.Open(cfg, workspace.Options{})
}

func outlineCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("outline needs at least one file")
	}
	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	cfg := ws.Config()
	maxDepth := cfg.Output.MaxDepth
	if c.IsSet("max-depth") {
		maxDepth = c.Int("max-depth")
	}
	formatter := display.NewTreeFormatter(display.FormatterOptions{
		Format:    cfg.Output.Format,
		ShowSpans: c.Bool("spans"),
		MaxDepth:  maxDepth,
	})

	files, err := expandArgs(cfg.Project.Root, c.Args().Slice())
	if err != nil {
		return err
	}

	printOutline := func(ctx context.Context, file string) error {
		if timeout := c.Duration("timeout"); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
			ws.Host().SetCancellationToken(types.ContextCancellationToken{Ctx: ctx})
			defer ws.Host().SetCancellationToken(nil)
		}
		item, err := ws.Outline(ctx, file, "", ws.Flags())
		if err != nil {
			return err
		}
		fmt.Println(formatter.Format(file, item))
		return nil
	}

	for _, file := range files {
		if err := printOutline(c.Context, file); err != nil {
			return err
		}
	}
	if !c.Bool("watch") {
		return nil
	}

	opts, err := watch.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watched := make(map[string]bool, len(files))
	for _, f := range files {
		watched[ws.Path(f)] = true
	}
	w, err := watch.New(opts, func(batch []watch.Event) {
		for _, ev := range batch {
			if !watched[ev.Path] {
				continue
			}
			rel, _ := filepath.Rel(cfg.Project.Root, ev.Path)
			if ev.Type == watch.EventRemove || ev.Type == watch.EventRename {
				ws.Forget(ev.Path)
				fmt.Printf("%s: %s\n", rel, ev.Type)
				continue
			}
			if err := printOutline(ctx, rel); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s: %v\n", rel, err)
			}
		}
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Watching %d file(s), press Ctrl+C to stop\n", len(files))
	<-ctx.Done()
	return w.Stop()
}

func moduleCommand(c *cli.Context) error {
	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	m, err := ws.Module(ws.Flags())
	if err != nil {
		return err
	}

	if ws.Config().Output.Format == config.FormatJSON {
		skipped := make([]string, 0, len(m.Report.Skipped))
		for _, op := range m.Report.Skipped {
			skipped = append(skipped, op.SearchToken)
		}
		return printJSON(map[string]interface{}{
			"profile":        m.Profile.Name(),
			"features":       m.Flags.String(),
			"applied":        len(m.Report.Applied),
			"skipped":        skipped,
			"free_variables": m.FreeVariables,
			"fingerprint":    fmt.Sprintf("%016x", m.Fingerprint),
			"text":           m.Text,
		})
	}

	fmt.Fprintf(os.Stderr, "profile: %s, features: %s\n", m.Profile.Name(), m.Flags)
	fmt.Fprintf(os.Stderr, "patches: %d applied, %d skipped\n", len(m.Report.Applied), len(m.Report.Skipped))
	for _, op := range m.Report.Skipped {
		fmt.Fprintf(os.Stderr, "  skipped: %s\n", op.SearchToken)
	}
	fmt.Fprintf(os.Stderr, "free variables: %v\n", m.FreeVariables)
	fmt.Println(m.Text)
	return nil
}

func labelsCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("labels needs at least one file")
	}
	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	files, err := expandArgs(ws.Config().Project.Root, c.Args().Slice())
	if err != nil {
		return err
	}

	asJSON := ws.Config().Output.Format == config.FormatJSON
	results := make(map[string]interface{}, len(files))
	for _, file := range files {
		elements, err := ws.Labels(file, "")
		if err != nil {
			return err
		}
		if asJSON {
			results[file] = elements
			continue
		}
		fmt.Printf("%s (%d elements)\n", file, len(elements))
		for _, el := range elements {
			fmt.Printf("  %d:%d  %s\n", el.Line, el.Column, el.Label)
		}
	}
	if asJSON {
		return printJSON(results)
	}
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func mcpCommand(c *cli.Context) error {
	// stdout carries the protocol
	debug.SetMCPMode(true)

	logger := mcp.NewDiagnosticLogger(true)
	if c.Bool("debug") {
		path, err := debug.OpenLogFile("")
		if err != nil {
			logger.Printf("trace log unavailable: %v", err)
		} else {
			logger.Printf("tracing to %s", path)
			defer debug.CloseLogFile()
		}
	}
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		logger.Printf("failed to load config: %v", err)
		return err
	}
	ws, err := workspace.Open(cfg, workspace.Options{Logger: logger.Logger()})
	if err != nil {
		logger.Printf("failed to open workspace: %v", err)
		return err
	}
	defer ws.Close()

	mcpServer, err := mcp.NewServer(ws, logger)
	if err != nil {
		return err
	}
	defer mcpServer.Close()

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		debug.LogMCP("Starting MCP server with stdio transport...\n")
		errChan <- mcpServer.Start(ctx)
	}()

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		debug.LogMCP("Received signal %v, shutting down gracefully...\n", sig)
		cancel()

		shutdownTimer := time.NewTimer(2 * time.Second)
		defer shutdownTimer.Stop()
		select {
		case <-errChan:
			debug.LogMCP("Server shutdown completed\n")
		case <-shutdownTimer.C:
			debug.LogMCP("Server shutdown timed out\n")
		}
		return nil
	}
}

func configShowCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	return printJSON(cfg)
}

func configValidateCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}

	var warnings []string
	if !cfg.ResolveHost() {
		warnings = append(warnings, "no typescript.js found; set host.path or install typescript")
	} else if v := config.HostPackageVersion(cfg.Host.Path); v != "" {
		fmt.Printf("Host: %s (typescript %s)\n", cfg.Host.Path, v)
	} else {
		fmt.Printf("Host: %s\n", cfg.Host.Path)
	}
	if len(cfg.Include) == 0 {
		warnings = append(warnings, "no include patterns; every file under the root is watched")
	}

	fmt.Println("Configuration is valid")
	for _, w := range warnings {
		fmt.Printf("Warning: %s\n", w)
	}
	return nil
}
