// Package jsruntime runs the host language service script inside an
// embedded JavaScript runtime and compiles synthesized outline modules
// against it.
package jsruntime

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dop251/goja"

	"github.com/standardbeagle/navpatch/internal/debug"
	naverrors "github.com/standardbeagle/navpatch/internal/errors"
	"github.com/standardbeagle/navpatch/internal/types"
)

// Host is a loaded host script. The runtime is single threaded, so every
// entry into it holds mu.
type Host struct {
	mu     sync.Mutex
	vm     *goja.Runtime
	ts     *goja.Object
	path   string
	source string

	docs  map[string]*document
	token types.CancellationToken
}

type document struct {
	text       string
	sourceFile goja.Value
	parseErr   error
}

// LoadHost reads and evaluates the host script at path.
func LoadHost(path string) (*Host, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, naverrors.NewFileError("read", path, err)
	}
	return NewHost(path, string(data))
}

// NewHost evaluates source as a CommonJS script named name and keeps its
// exports as the host API. Scripts that assign a global `ts` instead of
// module.exports are accepted too.
func NewHost(name, source string) (*Host, error) {
	vm := goja.New()
	module := vm.NewObject()
	exports := vm.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return nil, err
	}
	if err := vm.Set("module", module); err != nil {
		return nil, err
	}
	if err := vm.Set("exports", exports); err != nil {
		return nil, err
	}

	if _, err := vm.RunScript(name, source); err != nil {
		return nil, naverrors.NewCompileError("load host", err)
	}

	api := exportedAPI(vm, module)
	if api == nil {
		return nil, naverrors.NewCompileError("load host", fmt.Errorf("%s exports no host API object", name))
	}

	h := &Host{
		vm:     vm,
		ts:     api,
		path:   name,
		source: source,
		docs:   make(map[string]*document),
	}
	debug.LogHost("loaded %s (version %s, %d bytes)\n", name, h.Version(), len(source))
	return h, nil
}

func exportedAPI(vm *goja.Runtime, module *goja.Object) *goja.Object {
	if v := module.Get("exports"); v != nil {
		if obj, ok := v.(*goja.Object); ok && len(obj.Keys()) > 0 {
			return obj
		}
	}
	if v := vm.Get("ts"); v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
		if obj, ok := v.(*goja.Object); ok {
			return obj
		}
	}
	return nil
}

// Path returns the name the host script was loaded from.
func (h *Host) Path() string {
	return h.path
}

// Source returns the raw host script text.
func (h *Host) Source() string {
	return h.source
}

// API returns the live host API object.
func (h *Host) API() types.HostAPI {
	return h.ts
}

// Version returns the host's version string, or "" when it reports none.
func (h *Host) Version() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, key := range []string{"version", "versionMajorMinor"} {
		if v := h.ts.Get(key); v != nil && !goja.IsUndefined(v) {
			return v.String()
		}
	}
	return ""
}

// HasCompilerAPI reports whether the host can build whole programs, which
// the self-hosted probe needs.
func (h *Host) HasCompilerAPI() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := goja.AssertFunction(h.ts.Get("createProgram"))
	return ok
}

// Open adds or replaces a document of the current program.
func (h *Host) Open(fileName, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.docs[fileName] = &document{text: text}
}

// DocumentError returns the parse failure of the last attempt to turn the
// named document into a source file, or nil.
func (h *Host) DocumentError(fileName string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if doc, ok := h.docs[fileName]; ok && doc.parseErr != nil {
		return doc.parseErr
	}
	return nil
}

// Close removes a document.
func (h *Host) Close(fileName string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.docs, fileName)
}

// SetCancellationToken installs the token handed to outline queries.
func (h *Host) SetCancellationToken(token types.CancellationToken) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

// CancellationToken returns the installed token, if any.
func (h *Host) CancellationToken() (types.CancellationToken, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token, h.token != nil
}

// Program returns the open documents as a program. There is no program
// until a document has been opened.
func (h *Host) Program() (types.Program, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.docs) == 0 {
		return nil, false
	}
	return &program{host: h}, true
}

type program struct {
	host *Host
}

// SourceFile parses the named document on first use.
func (p *program) SourceFile(fileName string) (types.SourceFile, bool) {
	h := p.host
	h.mu.Lock()
	defer h.mu.Unlock()

	doc, ok := h.docs[fileName]
	if !ok {
		return nil, false
	}
	if doc.sourceFile == nil {
		sf, err := h.createSourceFile(fileName, doc.text)
		if err != nil {
			debug.LogHost("failed to parse %s: %v\n", fileName, err)
			doc.parseErr = naverrors.NewParseError(fileName, 0, 0, "", err)
			return nil, false
		}
		doc.sourceFile = sf
		doc.parseErr = nil
	}
	return doc.sourceFile, true
}

func (h *Host) createSourceFile(fileName, text string) (goja.Value, error) {
	create, ok := goja.AssertFunction(h.ts.Get("createSourceFile"))
	if !ok {
		return nil, fmt.Errorf("host has no createSourceFile")
	}
	kind := scriptKindName(fileName)
	return create(h.ts,
		h.vm.ToValue(fileName),
		h.vm.ToValue(text),
		h.enumValue("ScriptTarget", "Latest", 99),
		h.vm.ToValue(true),
		h.enumValue("ScriptKind", kind, scriptKinds[kind]),
	)
}

// enumValue reads ts.<enum>.<member>, falling back to def.
func (h *Host) enumValue(enum, member string, def int) goja.Value {
	if e, ok := h.ts.Get(enum).(*goja.Object); ok {
		if v := e.Get(member); v != nil && !goja.IsUndefined(v) {
			return v
		}
	}
	return h.vm.ToValue(def)
}

var scriptKinds = map[string]int{"JS": 1, "JSX": 2, "TS": 3, "TSX": 4}

func scriptKindName(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".tsx":
		return "TSX"
	case ".jsx":
		return "JSX"
	case ".js", ".mjs", ".cjs":
		return "JS"
	default:
		return "TS"
	}
}
