package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	naverrors "github.com/standardbeagle/navpatch/internal/errors"
)

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createTextResponse returns preformatted text as is.
func createTextResponse(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// createErrorResponse reports a tool failure inside the result with IsError
// set, so the client can see it and retry.
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}
	if kind := errorKind(err); kind != "" {
		errorData["kind"] = kind
	}
	if suggestion := errorSuggestion(err); suggestion != "" {
		errorData["suggestion"] = suggestion
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

func errorKind(err error) string {
	var (
		incompatible *naverrors.HostIncompatibleError
		query        *naverrors.QueryError
		parse        *naverrors.ParseError
		compile      *naverrors.CompileError
		file         *naverrors.FileError
		cfg          *naverrors.ConfigError
	)
	switch {
	case errors.As(err, &incompatible):
		return "host_incompatible"
	case errors.As(err, &query):
		return "query"
	case errors.As(err, &parse):
		return "parse"
	case errors.As(err, &compile):
		return "compile"
	case errors.As(err, &file):
		return "file"
	case errors.As(err, &cfg):
		return "config"
	default:
		return ""
	}
}

func errorSuggestion(err error) string {
	var incompatible *naverrors.HostIncompatibleError
	switch {
	case errors.As(err, &incompatible):
		return "The installed typescript.js does not match a known layout; set host.profile or host.version in .navpatch.kdl"
	case errors.Is(err, naverrors.ErrNoProgram), errors.Is(err, naverrors.ErrNoSourceFile):
		return "Pass the file path relative to the project root, or its contents in 'text'"
	default:
		return ""
	}
}

// createResponseWithWarnings adds a "warnings" field listing unknown
// parameters to a JSON response.
func createResponseWithWarnings(data map[string]interface{}, warnings []UnknownField) (*mcp.CallToolResult, error) {
	if len(warnings) > 0 {
		data["warnings"] = unknownFieldWarnings(warnings)
	}
	return createJSONResponse(data)
}

func unknownFieldWarnings(fields []UnknownField) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, fmt.Sprintf("unknown parameter %q ignored", f.Name))
	}
	return out
}

// addWarningsToResponse adds a "warnings" field to a JSON text response.
// Non-JSON text gets the warnings appended as a list.
func addWarningsToResponse(result *mcp.CallToolResult, warnings []string) {
	if result == nil || len(warnings) == 0 || len(result.Content) == 0 {
		return
	}
	textContent, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return
	}

	var responseData map[string]interface{}
	if err := json.Unmarshal([]byte(textContent.Text), &responseData); err == nil {
		responseData["warnings"] = warnings
		if updatedJSON, err := json.Marshal(responseData); err == nil {
			result.Content[0] = &mcp.TextContent{Text: string(updatedJSON)}
			return
		}
	}

	warningText := "\n\nWarnings:\n"
	for _, warning := range warnings {
		warningText += fmt.Sprintf("- %s\n", warning)
	}
	textContent.Text += warningText
}
