package display

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Item {
	return &Item{
		Text:  "<global>",
		Kind:  "module",
		Spans: []TextSpan{{Start: 0, Length: 120}},
		ChildItems: []*Item{
			{
				Text:  "App",
				Kind:  "function",
				Spans: []TextSpan{{Start: 0, Length: 80}},
				ChildItems: []*Item{
					{Text: "main.layout.wide", Spans: []TextSpan{{Start: 20, Length: 50}}},
				},
			},
			{
				Text:          "Props",
				Kind:          "type",
				KindModifiers: "export",
				ChildItems: []*Item{
					{Text: "title", Kind: "property"},
				},
			},
		},
	}
}

func TestNewTreeFormatter(t *testing.T) {
	formatter := NewTreeFormatter(FormatterOptions{})
	assert.Equal(t, "  ", formatter.options.Indent)

	options := FormatterOptions{Format: "text", ShowSpans: true, MaxDepth: 5, Indent: "\t"}
	formatter = NewTreeFormatter(options)
	assert.Equal(t, options, formatter.options)
}

func TestTreeFormatter_Format_NilTree(t *testing.T) {
	assert.Equal(t, "No outline available", NewTreeFormatter(FormatterOptions{}).Format("a.ts", nil))
}

func TestTreeFormatter_Format_Text(t *testing.T) {
	output := NewTreeFormatter(FormatterOptions{Format: "text"}).Format("app.tsx", sampleTree())

	assert.Equal(t, "Outline for 'app.tsx'\n"+
		"Total items: 5, Max depth: 2\n"+
		"\n"+
		"→ <global> (module)\n"+
		"  ├─→ App (function)\n"+
		"  │ └─→ main.layout.wide\n"+
		"  └─→ Props (type, export)\n"+
		"    └─→ title (property)\n", output)
}

func TestTreeFormatter_Format_TextMaxDepth(t *testing.T) {
	output := NewTreeFormatter(FormatterOptions{Format: "text", MaxDepth: 1}).Format("app.tsx", sampleTree())

	assert.Contains(t, output, "App (function)")
	assert.NotContains(t, output, "main.layout.wide")
	assert.NotContains(t, output, "title")
}

func TestTreeFormatter_Format_Compact(t *testing.T) {
	output := NewTreeFormatter(FormatterOptions{Format: "compact", ShowSpans: true}).Format("app.tsx", sampleTree())

	assert.Equal(t, "<global> (module) [0+120]\n"+
		"  App (function) [0+80]\n"+
		"    main.layout.wide [20+50]\n"+
		"  Props (type, export)\n"+
		"    title (property)", output)
}

func TestTreeFormatter_Format_JSON(t *testing.T) {
	output := NewTreeFormatter(FormatterOptions{Format: "json", MaxDepth: 1}).Format("app.tsx", sampleTree())

	var decoded jsonOutline
	require.NoError(t, json.Unmarshal([]byte(output), &decoded))
	assert.Equal(t, "app.tsx", decoded.File)
	assert.Equal(t, 3, decoded.TotalItems)
	assert.Equal(t, 1, decoded.MaxDepth)
	require.Len(t, decoded.Tree.ChildItems, 2)
	assert.Nil(t, decoded.Tree.ChildItems[0].ChildItems)
}

func TestDecode_ExportedTree(t *testing.T) {
	// Shape of a tree exported from the script runtime.
	tree := map[string]interface{}{
		"text":          "<global>",
		"kind":          "module",
		"kindModifiers": "",
		"spans":         []interface{}{map[string]interface{}{"start": int64(0), "length": int64(42)}},
		"childItems": []interface{}{
			map[string]interface{}{
				"text":       "0",
				"kind":       "",
				"spans":      []interface{}{map[string]interface{}{"start": int64(3), "length": float64(2)}},
				"childItems": nil,
			},
		},
	}

	item, err := Decode(tree)
	require.NoError(t, err)
	assert.Equal(t, "<global>", item.Text)
	assert.Equal(t, []TextSpan{{Start: 0, Length: 42}}, item.Spans)
	require.Len(t, item.ChildItems, 1)
	assert.Equal(t, "0", item.ChildItems[0].Text)
	assert.Equal(t, 2, item.ChildItems[0].Spans[0].Length)
	assert.Equal(t, 2, item.Count())
	assert.Equal(t, 1, item.Depth())
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(nil)
	assert.Error(t, err)

	_, err = Decode(func() {})
	assert.Error(t, err)

	_, err = Decode("not an object")
	assert.Error(t, err)
}

func TestItem_Walk(t *testing.T) {
	var visited []string
	sampleTree().Walk(func(item *Item, depth int) bool {
		visited = append(visited, item.Text)
		return item.Text != "App"
	})
	assert.Equal(t, []string{"<global>", "App", "Props", "title"}, visited)
}
