package display

import (
	"encoding/json"
	"fmt"

	"github.com/standardbeagle/navpatch/internal/types"
)

// TextSpan is a character range in the source file.
type TextSpan struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// Item is one node of an outline as the navigation module builds it.
type Item struct {
	Text          string     `json:"text"`
	Kind          string     `json:"kind"`
	KindModifiers string     `json:"kindModifiers,omitempty"`
	Spans         []TextSpan `json:"spans,omitempty"`
	NameSpan      *TextSpan  `json:"nameSpan,omitempty"`
	ChildItems    []*Item    `json:"childItems,omitempty"`
}

// Decode converts the tree returned by a navigation module into Items. The
// tree is treated as plain data, so any JSON-shaped value works.
func Decode(tree types.NavigationTree) (*Item, error) {
	if tree == nil {
		return nil, fmt.Errorf("decode navigation tree: empty tree")
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("decode navigation tree: %w", err)
	}
	var item Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("decode navigation tree: %w", err)
	}
	return &item, nil
}

// Count returns the number of items in the tree rooted at it.
func (it *Item) Count() int {
	if it == nil {
		return 0
	}
	n := 1
	for _, c := range it.ChildItems {
		n += c.Count()
	}
	return n
}

// Depth returns the depth of the deepest item; a lone root has depth 0.
func (it *Item) Depth() int {
	if it == nil {
		return 0
	}
	deepest := 0
	for _, c := range it.ChildItems {
		if d := c.Depth() + 1; d > deepest {
			deepest = d
		}
	}
	return deepest
}

// Walk visits items depth first, stopping below a node when fn returns false.
func (it *Item) Walk(fn func(item *Item, depth int) bool) {
	it.walk(fn, 0)
}

func (it *Item) walk(fn func(item *Item, depth int) bool, depth int) {
	if it == nil || !fn(it, depth) {
		return
	}
	for _, c := range it.ChildItems {
		c.walk(fn, depth+1)
	}
}
