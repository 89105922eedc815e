package jsruntime

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"

	"github.com/standardbeagle/navpatch/internal/debug"
	"github.com/standardbeagle/navpatch/internal/types"
)

// probeFileName is the in-memory file the self-hosted probe compiles.
const probeFileName = "/main.ts"

// libRoot is where the probe's compiler host pretends the lib files live.
const libRoot = "/lib/"

// probeScript builds a program over an in-memory compiler host and returns
// the semantic diagnostics of the probed file shaped like types.Diagnostic.
const probeScript = `(function (ts, fileName, text, readLib, libRoot, libCache) {
    var target = ts.ScriptTarget ? ts.ScriptTarget.Latest : 99;
    var options = { noEmit: true, target: target, types: [] };
    var host = {
        getSourceFile: function (name, languageVersion) {
            if (name === fileName) {
                return ts.createSourceFile(name, text, languageVersion, true);
            }
            if (libCache[name]) {
                return libCache[name];
            }
            var libText = readLib(name);
            if (libText === undefined || libText === null) {
                return undefined;
            }
            return (libCache[name] = ts.createSourceFile(name, libText, languageVersion, true));
        },
        getDefaultLibFileName: function (opts) {
            return libRoot + (ts.getDefaultLibFileName ? ts.getDefaultLibFileName(opts) : "lib.d.ts");
        },
        getDefaultLibLocation: function () { return libRoot; },
        writeFile: function () {},
        getCurrentDirectory: function () { return "/"; },
        getDirectories: function () { return []; },
        fileExists: function (name) { return name === fileName || readLib(name) !== undefined; },
        readFile: function (name) { return name === fileName ? text : readLib(name); },
        getCanonicalFileName: function (name) { return name; },
        useCaseSensitiveFileNames: function () { return true; },
        getNewLine: function () { return "\n"; }
    };
    var program = ts.createProgram([fileName], options, host);
    var diagnostics = program.getSemanticDiagnostics(program.getSourceFile(fileName));
    var out = [];
    for (var i = 0; i < diagnostics.length; i++) {
        var d = diagnostics[i];
        var message = ts.flattenDiagnosticMessageText
            ? ts.flattenDiagnosticMessageText(d.messageText, "\n")
            : (typeof d.messageText === "string" ? d.messageText : d.messageText.messageText);
        var line = 0, column = 0;
        if (d.file && d.start !== undefined && d.file.getLineAndCharacterOfPosition) {
            var pos = d.file.getLineAndCharacterOfPosition(d.start);
            line = pos.line + 1;
            column = pos.character + 1;
        }
        out.push({ Code: d.code, Message: message, Line: line, Column: column });
    }
    return out;
})`

// SelfProbe compiles text with the host's own compiler. Lib files are read
// from LibDir, normally the directory holding the host script.
type SelfProbe struct {
	host   *Host
	libDir string
	run    goja.Callable
	cache  *goja.Object
}

// NewSelfProbe prepares a probe over host. An empty libDir uses the host
// script's directory.
func NewSelfProbe(host *Host, libDir string) (*SelfProbe, error) {
	if libDir == "" {
		libDir = filepath.Dir(host.Path())
	}

	host.mu.Lock()
	defer host.mu.Unlock()

	if _, ok := goja.AssertFunction(host.ts.Get("createProgram")); !ok {
		return nil, fmt.Errorf("host %s has no createProgram", host.Path())
	}
	v, err := host.vm.RunString(probeScript)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare probe: %w", err)
	}
	run, ok := goja.AssertFunction(v)
	if !ok {
		return nil, fmt.Errorf("probe script is not a function")
	}
	return &SelfProbe{host: host, libDir: libDir, run: run, cache: host.vm.NewObject()}, nil
}

// Compile returns the semantic diagnostics of text compiled as a
// standalone file.
func (p *SelfProbe) Compile(text string) ([]types.Diagnostic, error) {
	h := p.host
	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := p.run(goja.Undefined(),
		h.ts,
		h.vm.ToValue(probeFileName),
		h.vm.ToValue(text),
		h.vm.ToValue(p.readLib),
		h.vm.ToValue(libRoot),
		p.cache,
	)
	if err != nil {
		return nil, fmt.Errorf("self-hosted probe failed: %w", err)
	}

	var diagnostics []types.Diagnostic
	if err := h.vm.ExportTo(result, &diagnostics); err != nil {
		return nil, fmt.Errorf("unexpected probe result: %w", err)
	}
	debug.LogResolver("self-hosted probe: %d diagnostics\n", len(diagnostics))
	return diagnostics, nil
}

// readLib serves lib.*.d.ts files below libRoot. Any other name is unknown.
func (p *SelfProbe) readLib(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	if !strings.HasPrefix(name, libRoot) {
		return goja.Undefined()
	}
	base := path.Base(name)
	if !strings.HasPrefix(base, "lib.") || !strings.HasSuffix(base, ".d.ts") {
		return goja.Undefined()
	}
	data, err := os.ReadFile(filepath.Join(p.libDir, base))
	if err != nil {
		return goja.Undefined()
	}
	return p.host.vm.ToValue(string(data))
}
