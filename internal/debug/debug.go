// Package debug writes component-tagged trace lines. Nothing is written until
// tracing is switched on and a sink is set.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnableDebug switches tracing on for a whole build:
//
//	go build -ldflags "-X github.com/standardbeagle/navpatch/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// EnvVar switches tracing on at run time when set to 1 or true.
const EnvVar = "NAVPATCH_DEBUG"

// MCPMode is set while stdout carries the MCP protocol. Traces then only go
// to a log file opened with OpenLogFile.
var MCPMode = false

type sink struct {
	mu   sync.Mutex
	w    io.Writer
	file *os.File
}

var out sink

func (s *sink) writer() (io.Writer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w, s.file != nil
}

// SetMCPMode marks stdio as owned by the protocol.
func SetMCPMode(enabled bool) {
	MCPMode = enabled
}

// SetDebugOutput replaces the trace sink. nil silences tracing. A log file
// opened earlier stays open until CloseLogFile.
func SetDebugOutput(w io.Writer) {
	out.mu.Lock()
	defer out.mu.Unlock()
	out.w = w
}

// OpenLogFile sends traces to a new file under dir, or under the system temp
// directory when dir is empty, and returns its path.
func OpenLogFile(dir string) (string, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "navpatch")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("trace log dir: %w", err)
	}
	name := fmt.Sprintf("trace-%s-%d.log", time.Now().Format("20060102-150405"), os.Getpid())
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("trace log: %w", err)
	}

	out.mu.Lock()
	defer out.mu.Unlock()
	if out.file != nil {
		_ = out.file.Close()
	}
	out.file = f
	out.w = f
	return path, nil
}

// CloseLogFile closes the file opened by OpenLogFile, if any, and silences
// tracing.
func CloseLogFile() error {
	out.mu.Lock()
	defer out.mu.Unlock()
	if out.file == nil {
		return nil
	}
	err := out.file.Close()
	out.file = nil
	out.w = nil
	return err
}

// IsDebugEnabled reports whether tracing is switched on by build flag or
// environment. It is false in MCP mode unless a log file is open.
func IsDebugEnabled() bool {
	if MCPMode {
		if _, toFile := out.writer(); !toFile {
			return false
		}
	}
	if EnableDebug == "true" {
		return true
	}
	switch os.Getenv(EnvVar) {
	case "1", "true":
		return true
	}
	return false
}

// Log writes one trace line tagged with component.
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	out.mu.Lock()
	defer out.mu.Unlock()
	if out.w == nil {
		return
	}
	fmt.Fprintf(out.w, "navpatch:%s "+format, append([]interface{}{component}, args...)...)
}

// LogPatch traces anchor location and patch application.
func LogPatch(format string, args ...interface{}) { Log("patch", format, args...) }

// LogResolver traces free-variable resolution.
func LogResolver(format string, args ...interface{}) { Log("resolve", format, args...) }

// LogEngine traces module builds and the module cache.
func LogEngine(format string, args ...interface{}) { Log("engine", format, args...) }

// LogHost traces the embedded host runtime.
func LogHost(format string, args ...interface{}) { Log("host", format, args...) }

func LogMCP(format string, args ...interface{}) { Log("mcp", format, args...) }

func LogWatch(format string, args ...interface{}) { Log("watch", format, args...) }
