// Package label renders outline labels for markup elements.
package label

import (
	"strings"

	"github.com/standardbeagle/navpatch/internal/types"
)

var classAttributes = map[string]bool{
	"class":     true,
	"className": true,
}

// Format renders tagName followed by one ".token" chip per class token and
// a "#id" suffix. Only literal attribute values contribute; when several id
// attributes are present the last one wins.
func Format(tagName string, attributes []types.MarkupAttribute) string {
	var classes strings.Builder
	id := ""
	for _, attr := range attributes {
		if !attr.Literal {
			continue
		}
		switch {
		case classAttributes[attr.Name]:
			for _, token := range strings.Fields(attr.Value) {
				classes.WriteString(".")
				classes.WriteString(token)
			}
		case attr.Name == "id":
			id = "#" + attr.Value
		}
	}
	return tagName + classes.String() + id
}

// Formatter is Format as a types.LabelFormatter.
var Formatter types.LabelFormatter = Format
