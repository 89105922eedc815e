package jsruntime

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/standardbeagle/navpatch/internal/debug"
	naverrors "github.com/standardbeagle/navpatch/internal/errors"
	"github.com/standardbeagle/navpatch/internal/types"
)

// moduleFileName names synthesized modules in runtime stack traces.
const moduleFileName = "navigationBar.synthesized.js"

// namespaceSlot is the host property legacy modules attach themselves to.
// Each compiled module sees it unset so it builds a private namespace
// instead of overwriting the host's own.
const namespaceSlot = "NavigationBar"

// Compiler evaluates synthesized module text inside a Host runtime.
type Compiler struct {
	host *Host
}

// NewCompiler creates a compiler bound to host.
func NewCompiler(host *Host) *Compiler {
	return &Compiler{host: host}
}

// Compile evaluates moduleText, which must be a function expression taking
// the host API and the label formatter, and invokes it once with bindings.
// A nil bindings.Host means the compiler's own host API.
func (c *Compiler) Compile(moduleText string, bindings types.Bindings) (types.NavigationModule, error) {
	h := c.host
	h.mu.Lock()
	defer h.mu.Unlock()

	prg, err := goja.Compile(moduleFileName, moduleText, false)
	if err != nil {
		return nil, naverrors.NewCompileError("parse", err)
	}
	factoryValue, err := h.vm.RunProgram(prg)
	if err != nil {
		return nil, naverrors.NewCompileError("evaluate", err)
	}
	factory, ok := goja.AssertFunction(factoryValue)
	if !ok {
		return nil, naverrors.NewCompileError("evaluate", fmt.Errorf("module text does not evaluate to a function"))
	}

	api, err := h.apiValue(bindings.Host)
	if err != nil {
		return nil, naverrors.NewCompileError("bind", err)
	}
	view := h.vm.CreateObject(api)
	if err := view.Set(namespaceSlot, goja.Undefined()); err != nil {
		return nil, naverrors.NewCompileError("bind", err)
	}

	label := bindings.Label
	if label == nil {
		return nil, naverrors.NewCompileError("bind", fmt.Errorf("no label formatter"))
	}

	exported, err := factory(goja.Undefined(), view, h.vm.ToValue(h.labelBridge(api, label)))
	if err != nil {
		return nil, naverrors.NewCompileError("instantiate", err)
	}
	exports, ok := exported.(*goja.Object)
	if !ok {
		return nil, naverrors.NewCompileError("instantiate", fmt.Errorf("module returned %v instead of an object", exported))
	}
	getTree, ok := goja.AssertFunction(exports.Get("getNavigationTree"))
	if !ok {
		return nil, naverrors.NewCompileError("instantiate", fmt.Errorf("module exports no getNavigationTree function"))
	}

	debug.LogHost("compiled outline module (%d bytes)\n", len(moduleText))
	return &navigationModule{host: h, exports: exports, getTree: getTree}, nil
}

func (h *Host) apiValue(api types.HostAPI) (*goja.Object, error) {
	if api == nil {
		return h.ts, nil
	}
	obj, ok := api.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("host API of type %T does not belong to this runtime", api)
	}
	return obj, nil
}

// navigationModule is a compiled outline module.
type navigationModule struct {
	host    *Host
	exports *goja.Object
	getTree goja.Callable
}

// GetNavigationTree runs the module's tree builder. The token is handed over
// as is; the module decides when to poll it. The result is exported to plain
// Go values (maps, slices, numbers and strings).
func (m *navigationModule) GetNavigationTree(sourceFile types.SourceFile, token types.CancellationToken) (types.NavigationTree, error) {
	h := m.host
	h.mu.Lock()
	defer h.mu.Unlock()

	sf, ok := sourceFile.(goja.Value)
	if !ok {
		sf = h.vm.ToValue(sourceFile)
	}
	result, err := m.getTree(m.exports, sf, h.tokenValue(token))
	if err != nil {
		return nil, fmt.Errorf("getNavigationTree: %w", err)
	}
	return result.Export(), nil
}

// tokenValue presents token to scripts with the host's method names.
func (h *Host) tokenValue(token types.CancellationToken) goja.Value {
	if token == nil {
		token = types.NoopCancellationToken{}
	}
	obj := h.vm.NewObject()
	_ = obj.Set("isCancellationRequested", func(goja.FunctionCall) goja.Value {
		return h.vm.ToValue(token.IsCancellationRequested())
	})
	_ = obj.Set("throwIfCancellationRequested", func(goja.FunctionCall) goja.Value {
		if err := token.ThrowIfCancellationRequested(); err != nil {
			panic(h.vm.NewGoError(err))
		}
		return goja.Undefined()
	})
	return obj
}
