package label

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/navpatch/internal/types"
)

// Element is one markup element found in a source file.
type Element struct {
	Tag        string                  `json:"tag"`
	Label      string                  `json:"label"`
	Line       int                     `json:"line"`
	Column     int                     `json:"column"`
	Attributes []types.MarkupAttribute `json:"-"`
}

// Extractor finds markup elements in TSX/JSX source without a host runtime.
type Extractor struct {
	mu     sync.Mutex
	parser *tree_sitter.Parser
}

// NewExtractor creates an extractor backed by the TSX grammar, which also
// accepts plain JSX.
func NewExtractor() (*Extractor, error) {
	p := tree_sitter.NewParser()
	if err := p.SetLanguage(tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to load tsx grammar: %w", err)
	}
	return &Extractor{parser: p}, nil
}

// Close releases the parser.
func (e *Extractor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.parser != nil {
		e.parser.Close()
		e.parser = nil
	}
}

// SupportsFile reports whether path has a markup-capable extension.
func SupportsFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx", ".jsx", ".js":
		return true
	default:
		return false
	}
}

// Extract returns every opening and self-closing element in source order.
func (e *Extractor) Extract(src []byte) ([]Element, error) {
	e.mu.Lock()
	if e.parser == nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("extractor is closed")
	}
	tree := e.parser.Parse(src, nil)
	e.mu.Unlock()
	if tree == nil {
		return nil, fmt.Errorf("tsx parser returned no tree")
	}
	defer tree.Close()

	var elements []Element
	walkElements(tree.RootNode(), src, &elements)
	return elements, nil
}

func walkElements(n *tree_sitter.Node, src []byte, out *[]Element) {
	switch n.Kind() {
	case "jsx_opening_element", "jsx_self_closing_element":
		if el, ok := element(n, src); ok {
			*out = append(*out, el)
		}
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if child := n.NamedChild(i); child != nil {
			walkElements(child, src, out)
		}
	}
}

func element(n *tree_sitter.Node, src []byte) (Element, bool) {
	name := n.ChildByFieldName("name")
	if name == nil {
		// Fragments (<>) have no tag name.
		return Element{}, false
	}

	var attrs []types.MarkupAttribute
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Kind() != "jsx_attribute" {
			continue
		}
		if attr, ok := attribute(child, src); ok {
			attrs = append(attrs, attr)
		}
	}

	tag := name.Utf8Text(src)
	pos := n.StartPosition()
	return Element{
		Tag:        tag,
		Label:      Format(tag, attrs),
		Line:       int(pos.Row) + 1,
		Column:     int(pos.Column) + 1,
		Attributes: attrs,
	}, true
}

// attribute reads name="value" or name={expr}. Attributes without a value
// are dropped.
func attribute(n *tree_sitter.Node, src []byte) (types.MarkupAttribute, bool) {
	if n.NamedChildCount() < 2 {
		return types.MarkupAttribute{}, false
	}
	attr := types.MarkupAttribute{Name: n.NamedChild(0).Utf8Text(src)}

	value := n.NamedChild(n.NamedChildCount() - 1)
	if value.Kind() == "string" {
		attr.Literal = true
		attr.Value = stringContent(value, src)
	}
	return attr, true
}

func stringContent(n *tree_sitter.Node, src []byte) string {
	var sb strings.Builder
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child != nil && child.Kind() == "string_fragment" {
			sb.WriteString(child.Utf8Text(src))
		}
	}
	return sb.String()
}
