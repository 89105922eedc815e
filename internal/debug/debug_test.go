package debug

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tracing switches tracing on into a fresh buffer and restores the package
// state when the test ends.
func tracing(t *testing.T) *bytes.Buffer {
	t.Helper()
	enable, mcp := EnableDebug, MCPMode
	out.mu.Lock()
	w, f := out.w, out.file
	out.mu.Unlock()
	t.Cleanup(func() {
		EnableDebug, MCPMode = enable, mcp
		out.mu.Lock()
		out.w, out.file = w, f
		out.mu.Unlock()
	})
	t.Setenv(EnvVar, "")

	var buf bytes.Buffer
	EnableDebug = "true"
	MCPMode = false
	SetDebugOutput(&buf)
	return &buf
}

func TestIsDebugEnabled(t *testing.T) {
	tracing(t)

	EnableDebug = "false"
	assert.False(t, IsDebugEnabled())

	t.Setenv(EnvVar, "1")
	assert.True(t, IsDebugEnabled())
	t.Setenv(EnvVar, "yes")
	assert.False(t, IsDebugEnabled())

	EnableDebug = "true"
	assert.True(t, IsDebugEnabled())
	SetMCPMode(true)
	assert.False(t, IsDebugEnabled(), "stdio belongs to the protocol")
}

func TestLog_ComponentTags(t *testing.T) {
	buf := tracing(t)

	LogPatch("applied %d\n", 3)
	LogResolver("free %s\n", "isToken")
	LogEngine("built\n")
	LogHost("loaded\n")
	LogMCP("call\n")
	LogWatch("event\n")

	assert.Equal(t, []string{
		"navpatch:patch applied 3",
		"navpatch:resolve free isToken",
		"navpatch:engine built",
		"navpatch:host loaded",
		"navpatch:mcp call",
		"navpatch:watch event",
	}, strings.Split(strings.TrimSpace(buf.String()), "\n"))
}

func TestLog_SilentWhenOffOrNoSink(t *testing.T) {
	buf := tracing(t)

	EnableDebug = "false"
	LogEngine("hidden\n")
	assert.Empty(t, buf.String())

	EnableDebug = "true"
	SetDebugOutput(nil)
	LogEngine("hidden\n")
	assert.Empty(t, buf.String())
}

func TestOpenLogFile_TracesInMCPMode(t *testing.T) {
	buf := tracing(t)
	SetMCPMode(true)

	path, err := OpenLogFile(t.TempDir())
	require.NoError(t, err)
	assert.True(t, IsDebugEnabled())

	LogMCP("tools registered\n")
	require.NoError(t, CloseLogFile())
	require.NoError(t, CloseLogFile())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "navpatch:mcp tools registered\n", string(data))
	assert.Empty(t, buf.String())
	assert.False(t, IsDebugEnabled())
}

func TestLog_Concurrent(t *testing.T) {
	tracing(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			SetDebugOutput(&bytes.Buffer{})
			LogEngine("build %d\n", id)
		}(i)
	}
	wg.Wait()
}
