package display

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TreeFormatter formats outlines for display
type TreeFormatter struct {
	options FormatterOptions
}

// FormatterOptions controls tree formatting
type FormatterOptions struct {
	Format    string // "text", "json", "compact"
	ShowSpans bool   // Append the first span as [start+length]
	MaxDepth  int    // Maximum depth to display, 0 = unlimited
	Indent    string // Indentation string for compact output
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(options FormatterOptions) *TreeFormatter {
	if options.Indent == "" {
		options.Indent = "  "
	}
	return &TreeFormatter{options: options}
}

// Format formats the outline of fileName for display
func (tf *TreeFormatter) Format(fileName string, root *Item) string {
	if root == nil {
		return "No outline available"
	}

	switch tf.options.Format {
	case "json":
		return tf.formatJSON(fileName, root)
	case "compact":
		return tf.formatCompact(root)
	default:
		return tf.formatText(fileName, root)
	}
}

// formatText formats the outline as ASCII art
func (tf *TreeFormatter) formatText(fileName string, root *Item) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Outline for '%s'\n", fileName))
	sb.WriteString(fmt.Sprintf("Total items: %d, Max depth: %d\n", root.Count(), root.Depth()))
	sb.WriteString("\n")

	tf.formatNode(&sb, root, "", 0, true, true)

	return sb.String()
}

// formatNode recursively formats an item and its children
func (tf *TreeFormatter) formatNode(sb *strings.Builder, item *Item, prefix string, depth int, isLast bool, isRoot bool) {
	if tf.options.MaxDepth > 0 && depth > tf.options.MaxDepth {
		return
	}

	var branch string
	if isRoot {
		branch = "→ "
	} else if isLast {
		branch = "└─→ "
	} else {
		branch = "├─→ "
	}

	sb.WriteString(prefix)
	sb.WriteString(branch)
	sb.WriteString(tf.label(item))
	sb.WriteString("\n")

	childCount := len(item.ChildItems)
	for i, child := range item.ChildItems {
		var childPrefix string
		if isRoot || isLast {
			childPrefix = prefix + "  "
		} else {
			childPrefix = prefix + "│ "
		}
		tf.formatNode(sb, child, childPrefix, depth+1, i == childCount-1, false)
	}
}

// label renders "text (kind)" with optional modifiers and span.
func (tf *TreeFormatter) label(item *Item) string {
	label := item.Text
	if item.Kind != "" {
		label += " (" + item.Kind
		if item.KindModifiers != "" {
			label += ", " + item.KindModifiers
		}
		label += ")"
	}
	if tf.options.ShowSpans && len(item.Spans) > 0 {
		label += fmt.Sprintf(" [%d+%d]", item.Spans[0].Start, item.Spans[0].Length)
	}
	return label
}

// formatCompact formats the outline as one indented line per item
func (tf *TreeFormatter) formatCompact(root *Item) string {
	var lines []string
	root.Walk(func(item *Item, depth int) bool {
		if tf.options.MaxDepth > 0 && depth > tf.options.MaxDepth {
			return false
		}
		lines = append(lines, strings.Repeat(tf.options.Indent, depth)+tf.label(item))
		return true
	})
	return strings.Join(lines, "\n")
}

type jsonOutline struct {
	File       string `json:"file"`
	TotalItems int    `json:"total_items"`
	MaxDepth   int    `json:"max_depth"`
	Tree       *Item  `json:"tree"`
}

// formatJSON formats the outline as indented JSON, pruned to MaxDepth
func (tf *TreeFormatter) formatJSON(fileName string, root *Item) string {
	tree := prune(root, tf.options.MaxDepth, 0)
	data, err := json.MarshalIndent(jsonOutline{
		File:       fileName,
		TotalItems: tree.Count(),
		MaxDepth:   tree.Depth(),
		Tree:       tree,
	}, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}

// prune copies item without the levels below maxDepth.
func prune(item *Item, maxDepth, depth int) *Item {
	out := *item
	if maxDepth > 0 && depth >= maxDepth {
		out.ChildItems = nil
		return &out
	}
	out.ChildItems = make([]*Item, 0, len(item.ChildItems))
	for _, c := range item.ChildItems {
		out.ChildItems = append(out.ChildItems, prune(c, maxDepth, depth+1))
	}
	if len(out.ChildItems) == 0 {
		out.ChildItems = nil
	}
	return &out
}
