// Package mcp exposes outline and markup label queries as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/navpatch/internal/config"
	navdebug "github.com/standardbeagle/navpatch/internal/debug"
	"github.com/standardbeagle/navpatch/internal/display"
	"github.com/standardbeagle/navpatch/internal/version"
	"github.com/standardbeagle/navpatch/internal/workspace"
)

type toolHandler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Server serves one workspace over MCP.
type Server struct {
	ws               *workspace.Workspace
	server           *mcp.Server
	diagnosticLogger *DiagnosticLogger
	handlers         map[string]toolHandler
}

// NewServer registers the tools for ws. A nil logger writes diagnostics to
// a file, keeping stdio clean for the protocol.
func NewServer(ws *workspace.Workspace, logger *DiagnosticLogger) (*Server, error) {
	if ws == nil {
		return nil, fmt.Errorf("mcp server needs a workspace")
	}
	if logger == nil {
		logger = NewDiagnosticLogger(true)
	}

	s := &Server{
		ws:               ws,
		diagnosticLogger: logger,
		handlers:         make(map[string]toolHandler),
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "navpatch-mcp-server",
			Version: version.Info(),
		}, nil),
	}
	s.registerTools()
	logger.Printf("MCP server ready for %s (host %s)", ws.Config().Project.Root, ws.Config().Host.Path)
	return s, nil
}

func (s *Server) addTool(tool *mcp.Tool, handler toolHandler) {
	wrapped := func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.recoverFromPanic(tool.Name, func() (*mcp.CallToolResult, error) {
			return handler(ctx, req)
		})
	}
	s.handlers[tool.Name] = wrapped
	s.server.AddTool(tool, wrapped)
}

func (s *Server) registerTools() {
	s.addTool(&mcp.Tool{
		Name:        "info",
		Description: "Server version, loaded host, resolver probe and module cache state.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleInfo)

	s.addTool(&mcp.Tool{
		Name:        "navigation_tree",
		Description: "Outline of a TypeScript/JavaScript file as the patched navigation bar builds it: JSX elements labelled tag.class#id, type alias members, optional numbered array and tuple items.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "File path, relative to the project root",
				},
				"text": {
					Type:        "string",
					Description: "File contents to use instead of reading the file",
				},
				"numbered_items": {
					Type:        "boolean",
					Description: "Outline array literal and tuple elements by index (default from config)",
				},
				"format": {
					Type:        "string",
					Description: "Output format: json (default), text or compact",
					Enum:        []any{config.FormatJSON, config.FormatText, config.FormatCompact},
				},
				"max_depth": {
					Type:        "integer",
					Description: "Maximum depth to return, 0 = unlimited",
				},
			},
			Required: []string{"file"},
		},
	}, s.handleOutline)

	s.addTool(&mcp.Tool{
		Name:        "markup_labels",
		Description: "List the JSX elements of a .tsx/.jsx/.js file with the outline label each one gets.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "File path, relative to the project root",
				},
				"text": {
					Type:        "string",
					Description: "File contents to use instead of reading the file",
				},
			},
			Required: []string{"file"},
		},
	}, s.handleLabels)

	s.addTool(&mcp.Tool{
		Name:        "module_text",
		Description: "The synthesized outline module for a feature flag set, with applied and skipped patches and resolved free variables.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"numbered_items": {
					Type:        "boolean",
					Description: "Select the numbered array and tuple items patch",
				},
			},
		},
	}, s.handleModule)
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := s.ws.Config()
	entries, builds := s.ws.Service().Cache().Stats()
	return createJSONResponse(map[string]interface{}{
		"server_name":    "navpatch-mcp-server",
		"server_version": version.FullInfo(),
		"build_id":       version.BuildID(),
		"go_version":     runtime.Version(),
		"project_root":   cfg.Project.Root,
		"host_path":      cfg.Host.Path,
		"host_version":   s.ws.Host().Version(),
		"probe":          s.ws.ProbeName(),
		"features":       s.ws.Flags().String(),
		"cache": map[string]int{
			"entries": entries,
			"builds":  builds,
		},
		"tools": []string{"info", "navigation_tree", "markup_labels", "module_text"},
	})
}

func (s *Server) handleOutline(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params OutlineParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("navigation_tree", fmt.Errorf("invalid parameters: %w", err))
	}
	if strings.TrimSpace(params.File) == "" {
		return createErrorResponse("navigation_tree", fmt.Errorf("file is required"))
	}

	flags := s.ws.Flags()
	if params.NumberedItems != nil {
		flags.ArraysTuplesNumberedItems = *params.NumberedItems
	}
	format := strings.ToLower(params.Format)
	if format == "" {
		format = config.FormatJSON
	}
	if format != config.FormatJSON && format != config.FormatText && format != config.FormatCompact {
		return createErrorResponse("navigation_tree", fmt.Errorf("unknown format %q", params.Format))
	}

	item, err := s.ws.Outline(ctx, params.File, params.Text, flags)
	if err != nil {
		return createErrorResponse("navigation_tree", err)
	}
	navdebug.LogMCP("navigation_tree %s (%s): %d items\n", params.File, flags, item.Count())

	output := display.NewTreeFormatter(display.FormatterOptions{
		Format:   format,
		MaxDepth: params.MaxDepth,
	}).Format(params.File, item)

	result := createTextResponse(output)
	if format == config.FormatJSON {
		addWarningsToResponse(result, unknownFieldWarnings(params.Warnings))
	}
	return result, nil
}

func (s *Server) handleLabels(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params LabelsParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("markup_labels", fmt.Errorf("invalid parameters: %w", err))
	}
	if strings.TrimSpace(params.File) == "" {
		return createErrorResponse("markup_labels", fmt.Errorf("file is required"))
	}

	elements, err := s.ws.Labels(params.File, params.Text)
	if err != nil {
		return createErrorResponse("markup_labels", err)
	}
	return createResponseWithWarnings(map[string]interface{}{
		"file":     params.File,
		"count":    len(elements),
		"elements": elements,
	}, params.Warnings)
}

func (s *Server) handleModule(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params ModuleParams
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
			return createErrorResponse("module_text", fmt.Errorf("invalid parameters: %w", err))
		}
	}

	flags := s.ws.Flags()
	if params.NumberedItems != nil {
		flags.ArraysTuplesNumberedItems = *params.NumberedItems
	}

	m, err := s.ws.Module(flags)
	if err != nil {
		return createErrorResponse("module_text", err)
	}

	skipped := make([]string, 0, len(m.Report.Skipped))
	for _, op := range m.Report.Skipped {
		skipped = append(skipped, op.SearchToken)
	}
	return createJSONResponse(map[string]interface{}{
		"profile":        m.Profile.Name(),
		"features":       flags.String(),
		"applied":        len(m.Report.Applied),
		"skipped":        skipped,
		"free_variables": m.FreeVariables,
		"fingerprint":    fmt.Sprintf("%016x", m.Fingerprint),
		"text":           m.Text,
	})
}

// recoverFromPanic turns a panicking or failing handler into an error result.
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.diagnosticLogger.Printf("PANIC RECOVERED in %s: %v\n%s", operation, r, debug.Stack())
			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()

	result, err = handler()
	if err != nil {
		s.diagnosticLogger.Printf("Error in %s: %v", operation, err)
		return createErrorResponse(operation, err)
	}
	return result, nil
}

// Start serves the tools over stdio until ctx is done or the client leaves.
func (s *Server) Start(ctx context.Context) error {
	s.diagnosticLogger.Printf("Starting MCP server with stdio transport")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Close flushes the diagnostic log.
func (s *Server) Close() error {
	s.diagnosticLogger.Printf("MCP server shutdown complete")
	return s.diagnosticLogger.Close()
}
