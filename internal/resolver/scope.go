package resolver

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// scope is one lexical scope of the analysed program.
type scope struct {
	parent   *scope
	names    map[string]struct{}
	function bool
}

func newScope(parent *scope, function bool) *scope {
	return &scope{parent: parent, names: make(map[string]struct{}), function: function}
}

func (s *scope) declare(name string) {
	s.names[name] = struct{}{}
}

func (s *scope) lookup(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.names[name]; ok {
			return true
		}
	}
	return false
}

// functionScope returns the nearest scope that receives var declarations.
func (s *scope) functionScope() *scope {
	cur := s
	for !cur.function && cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

var functionKinds = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function_expression":            true,
	"function":                       true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
}

var blockKinds = map[string]bool{
	"statement_block":  true,
	"for_statement":    true,
	"for_in_statement": true,
	"catch_clause":     true,
	"switch_body":      true,
	"class":            true,
}

// reference is an identifier that resolved to no binding.
type reference struct {
	name   string
	row    uint
	column uint
}

// scopeAnalyzer finds free variables of a JavaScript syntax tree.
type scopeAnalyzer struct {
	src      []byte
	globals  map[string]struct{}
	scopes   map[uintptr]*scope
	bindings map[uintptr]struct{}
}

func newScopeAnalyzer(src []byte, globals map[string]struct{}) *scopeAnalyzer {
	return &scopeAnalyzer{
		src:      src,
		globals:  globals,
		scopes:   make(map[uintptr]*scope),
		bindings: make(map[uintptr]struct{}),
	}
}

// freeReferences returns every reference under root, in source order, that
// is neither bound in an enclosing scope nor a known global.
func (a *scopeAnalyzer) freeReferences(root *tree_sitter.Node) []reference {
	program := newScope(nil, true)
	a.scopes[root.Id()] = program
	a.collect(root, program)

	var refs []reference
	a.resolve(root, program, &refs)
	return refs
}

// collect records the scopes created by each node and every declared name.
func (a *scopeAnalyzer) collect(n *tree_sitter.Node, cur *scope) {
	if !n.IsNamed() {
		return
	}
	kind := n.Kind()

	switch kind {
	case "function_declaration", "generator_function_declaration", "class_declaration":
		a.bindPattern(n.ChildByFieldName("name"), cur)
	}

	if functionKinds[kind] || blockKinds[kind] {
		s := newScope(cur, functionKinds[kind])
		a.scopes[n.Id()] = s
		cur = s
	}

	switch kind {
	case "function_expression", "function", "generator_function", "class":
		a.bindPattern(n.ChildByFieldName("name"), cur)
	}
	if functionKinds[kind] {
		if params := n.ChildByFieldName("parameters"); params != nil {
			for i := uint(0); i < params.NamedChildCount(); i++ {
				a.bindPattern(params.NamedChild(i), cur)
			}
		}
		a.bindPattern(n.ChildByFieldName("parameter"), cur)
	}

	switch kind {
	case "variable_declaration":
		a.bindDeclarators(n, cur.functionScope())
	case "lexical_declaration":
		a.bindDeclarators(n, cur)
	case "catch_clause":
		a.bindPattern(n.ChildByFieldName("parameter"), cur)
	case "for_in_statement":
		if declKind := n.ChildByFieldName("kind"); declKind != nil {
			target := cur
			if declKind.Utf8Text(a.src) == "var" {
				target = cur.functionScope()
			}
			a.bindPattern(n.ChildByFieldName("left"), target)
		}
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil {
			a.collect(child, cur)
		}
	}
}

func (a *scopeAnalyzer) bindDeclarators(n *tree_sitter.Node, target *scope) {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		decl := n.NamedChild(i)
		if decl != nil && decl.Kind() == "variable_declarator" {
			a.bindPattern(decl.ChildByFieldName("name"), target)
		}
	}
}

// bindPattern declares every identifier bound by a binding pattern.
// Default values inside the pattern stay references.
func (a *scopeAnalyzer) bindPattern(n *tree_sitter.Node, target *scope) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		a.bindings[n.Id()] = struct{}{}
		target.declare(n.Utf8Text(a.src))
	case "assignment_pattern", "object_assignment_pattern":
		a.bindPattern(n.ChildByFieldName("left"), target)
	case "pair_pattern":
		a.bindPattern(n.ChildByFieldName("value"), target)
	case "object_pattern", "array_pattern", "rest_pattern":
		for i := uint(0); i < n.NamedChildCount(); i++ {
			a.bindPattern(n.NamedChild(i), target)
		}
	}
}

// resolve walks the tree again and reports unbound references.
func (a *scopeAnalyzer) resolve(n *tree_sitter.Node, cur *scope, refs *[]reference) {
	if s, ok := a.scopes[n.Id()]; ok {
		cur = s
	}

	switch n.Kind() {
	case "identifier", "shorthand_property_identifier":
		if _, bound := a.bindings[n.Id()]; !bound {
			name := n.Utf8Text(a.src)
			if _, global := a.globals[name]; !global && !cur.lookup(name) {
				pos := n.StartPosition()
				*refs = append(*refs, reference{name: name, row: pos.Row, column: pos.Column})
			}
		}
		return
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil {
			a.resolve(child, cur, refs)
		}
	}
}
