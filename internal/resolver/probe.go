package resolver

import (
	"fmt"
	"sync"

	"github.com/t14raptor/go-fast/parser"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"

	"github.com/standardbeagle/navpatch/internal/types"
)

// defaultGlobals are names provided by the ECMAScript standard library.
var defaultGlobals = []string{
	"undefined", "NaN", "Infinity", "globalThis", "arguments", "eval",
	"Object", "Function", "Array", "String", "Number", "Boolean", "Symbol", "BigInt",
	"Math", "JSON", "Date", "RegExp", "Intl", "Reflect", "Proxy", "Atomics",
	"Error", "TypeError", "RangeError", "SyntaxError", "ReferenceError", "EvalError", "URIError", "AggregateError",
	"Map", "Set", "WeakMap", "WeakSet", "WeakRef", "FinalizationRegistry", "Promise",
	"ArrayBuffer", "SharedArrayBuffer", "DataView",
	"Int8Array", "Uint8Array", "Uint8ClampedArray", "Int16Array", "Uint16Array",
	"Int32Array", "Uint32Array", "Float32Array", "Float64Array", "BigInt64Array", "BigUint64Array",
	"parseInt", "parseFloat", "isNaN", "isFinite",
	"encodeURI", "encodeURIComponent", "decodeURI", "decodeURIComponent", "escape", "unescape",
	"console",
}

// StaticProbe reports "Cannot find name" diagnostics from scope analysis of
// a tree-sitter syntax tree, and a syntax diagnostic when the text does not
// parse. It needs no host runtime.
type StaticProbe struct {
	mu      sync.Mutex
	parser  *tree_sitter.Parser
	globals map[string]struct{}
}

// NewStaticProbe creates a probe that treats the standard library globals
// and extraGlobals as bound.
func NewStaticProbe(extraGlobals ...string) (*StaticProbe, error) {
	p := tree_sitter.NewParser()
	if err := p.SetLanguage(tree_sitter.NewLanguage(tree_sitter_javascript.Language())); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to load javascript grammar: %w", err)
	}

	globals := make(map[string]struct{}, len(defaultGlobals)+len(extraGlobals))
	for _, name := range defaultGlobals {
		globals[name] = struct{}{}
	}
	for _, name := range extraGlobals {
		globals[name] = struct{}{}
	}
	return &StaticProbe{parser: p, globals: globals}, nil
}

// Compile analyses text and returns its diagnostics. Every unbound
// reference is reported with its own diagnostic.
func (p *StaticProbe) Compile(text string) ([]types.Diagnostic, error) {
	var diagnostics []types.Diagnostic
	if _, err := parser.ParseFile(text); err != nil {
		diagnostics = append(diagnostics, types.Diagnostic{
			Code:    CodeSyntaxError,
			Message: err.Error(),
		})
	}

	src := []byte(text)

	p.mu.Lock()
	if p.parser == nil {
		p.mu.Unlock()
		return nil, fmt.Errorf("probe is closed")
	}
	tree := p.parser.Parse(src, nil)
	p.mu.Unlock()
	if tree == nil {
		return nil, fmt.Errorf("javascript parser returned no tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	if len(diagnostics) == 0 && root.HasError() {
		if bad := firstErrorNode(root); bad != nil {
			pos := bad.StartPosition()
			diagnostics = append(diagnostics, types.Diagnostic{
				Code:    CodeSyntaxError,
				Message: fmt.Sprintf("Unexpected %q.", bad.Utf8Text(src)),
				Line:    int(pos.Row) + 1,
				Column:  int(pos.Column) + 1,
			})
		}
	}

	for _, ref := range newScopeAnalyzer(src, p.globals).freeReferences(root) {
		diagnostics = append(diagnostics, types.Diagnostic{
			Code:    CodeCannotFindName,
			Message: fmt.Sprintf("Cannot find name '%s'.", ref.name),
			Line:    int(ref.row) + 1,
			Column:  int(ref.column) + 1,
		})
	}
	return diagnostics, nil
}

// Close releases the parser.
func (p *StaticProbe) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
}

func firstErrorNode(n *tree_sitter.Node) *tree_sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		if bad := firstErrorNode(child); bad != nil {
			return bad
		}
	}
	return nil
}
