package patch

import "github.com/standardbeagle/navpatch/internal/types"

// Op is one text patch, applied relative to the first line of the current
// buffer that contains SearchToken.
type Op struct {
	SearchToken      string
	LineOffset       int
	InsertedLines    []string
	RemovedLineCount int
	// Feature names the flag that gates this op. Empty means always applied.
	Feature string
}

// Catalog is an ordered list of ops authored for sequential application.
type Catalog []Op

// Select returns the ops enabled by flags, preserving catalog order.
func (c Catalog) Select(flags types.FeatureFlags) []Op {
	ops := make([]Op, 0, len(c))
	for _, op := range c {
		if op.Feature != "" && !flags.Enabled(op.Feature) {
			continue
		}
		ops = append(ops, op)
	}
	return ops
}

const (
	tokenAddChildren   = "function addChildrenRecursively(node)"
	tokenTypeAliasCase = "case 262 /* SyntaxKind.TypeAliasDeclaration */"
	tokenUnknownName   = `return "<unknown>";`
)

// The switch in addChildrenRecursively starts seven lines below its
// signature in both host generations.
const addChildrenSwitchOffset = 7

const jsxChildrenCases = `
                case ts.SyntaxKind.JsxSelfClosingElement:
                    addLeafNode(node)
                    break;
                case ts.SyntaxKind.JsxElement:
                    startNode(node)
                    ts.forEachChild(node, addChildrenRecursively);
                    endNode()
                    break;`

// https://github.com/microsoft/TypeScript/pull/52558/
const typeAliasChildrenCase = `
                case ts.SyntaxKind.TypeAliasDeclaration:
                    addNodeWithRecursiveChild(node, node.type);
                    break;
            `

const numberedItemsCases = `
                case ts.SyntaxKind.TupleType:
                case ts.SyntaxKind.ArrayLiteralExpression:
                    const { elements } = node;
                    for (const [i, element] of elements.entries()) {
                        addNodeWithRecursiveChild(element, element, ts.setTextRange(ts.factory.createIdentifier(i.toString()), element));
                    }
                    break;
            `

const jsxNameCases = `
                case ts.SyntaxKind.JsxSelfClosingElement:
                    return getNameFromJsxTag(node);
                case ts.SyntaxKind.JsxElement:
                    return getNameFromJsxTag(node.openingElement);`

// DefaultCatalog returns the shipped patch catalog. The type alias op pair
// relies on order: the insertion lands three lines below the original case
// label, so the removal that follows still finds the original label first.
// The numbered items op sits before the name op because both depend on the
// addChildrenRecursively anchor being untouched by later edits.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			SearchToken:   tokenAddChildren,
			LineOffset:    addChildrenSwitchOffset,
			InsertedLines: []string{jsxChildrenCases},
		},
		{
			SearchToken:   tokenTypeAliasCase,
			LineOffset:    3,
			InsertedLines: []string{typeAliasChildrenCase},
		},
		{
			SearchToken:      tokenTypeAliasCase,
			LineOffset:       0,
			RemovedLineCount: 1,
		},
		{
			SearchToken:   tokenAddChildren,
			LineOffset:    addChildrenSwitchOffset,
			InsertedLines: []string{numberedItemsCases},
			Feature:       types.FeatureArraysTuplesNumberedItems,
		},
		{
			SearchToken:   tokenUnknownName,
			LineOffset:    -1,
			InsertedLines: []string{jsxNameCases},
		},
	}
}
