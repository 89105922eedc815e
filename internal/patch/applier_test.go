package patch

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/navpatch/internal/types"
)

func captureApplier() (*Applier, *bytes.Buffer) {
	var out bytes.Buffer
	return NewApplier(log.New(&out, "", 0)), &out
}

func warningLines(out *bytes.Buffer) []string {
	var lines []string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(line, "WARNING:") {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestApply_SecondOpSeesInsertedLine(t *testing.T) {
	buf := NewLineBuffer([]string{"a", "b X", "c", "d X"})
	applier, _ := captureApplier()

	report := applier.Apply(buf, []Op{
		{SearchToken: "X", LineOffset: -1, InsertedLines: []string{"new X"}},
		{SearchToken: "X", LineOffset: 1, InsertedLines: []string{"after"}},
	})

	assert.Len(t, report.Applied, 2)
	assert.Equal(t, []string{"new X", "after", "a", "b X", "c", "d X"}, buf.Lines())
}

func TestApply_SecondOpLandsOnInsertedLineBetweenOriginals(t *testing.T) {
	buf := NewLineBuffer([]string{"a", "b X", "c", "d X"})
	applier, _ := captureApplier()

	// The first op rewrites "b X" and leaves "new X" at index 2, between the
	// rewritten line and "d X". The second op must find it there, not at
	// index 1 where the first X used to be.
	report := applier.Apply(buf, []Op{
		{SearchToken: "X", RemovedLineCount: 1, InsertedLines: []string{"b", "new X"}},
		{SearchToken: "X", InsertedLines: []string{"marker"}},
	})

	assert.Len(t, report.Applied, 2)
	assert.Equal(t, []string{"a", "b", "marker", "new X", "c", "d X"}, buf.Lines())
}

func TestApply_ConsumedOccurrenceMovesToNext(t *testing.T) {
	buf := NewLineBuffer([]string{"head", "a X", "mid", "c X"})
	applier, _ := captureApplier()

	applier.Apply(buf, []Op{
		{SearchToken: "X", RemovedLineCount: 1},
		{SearchToken: "X", InsertedLines: []string{"marker"}},
	})

	assert.Equal(t, []string{"head", "mid", "marker", "c X"}, buf.Lines())
}

func TestApply_MissingTokenSkipsWithOneWarning(t *testing.T) {
	buf := NewLineBuffer([]string{"one", "two", "three"})
	applier, out := captureApplier()

	report := applier.Apply(buf, []Op{
		{SearchToken: "absent token", InsertedLines: []string{"never"}},
		{SearchToken: "two", LineOffset: 1, InsertedLines: []string{"inserted"}},
	})

	require.True(t, report.Degraded())
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "absent token", report.Skipped[0].SearchToken)
	assert.Len(t, report.Applied, 1)
	assert.Equal(t, []string{"one", "two", "inserted", "three"}, buf.Lines())

	warnings := warningLines(out)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "failed to patch navigation bar module (outline)")
	assert.Contains(t, warnings[0], "absent token")
}

func TestApply_OutOfRangeOffsetIsSkipped(t *testing.T) {
	buf := NewLineBuffer([]string{"X", "b"})
	applier, out := captureApplier()

	report := applier.Apply(buf, []Op{{SearchToken: "X", LineOffset: -1, InsertedLines: []string{"before"}}})

	assert.True(t, report.Degraded())
	assert.Equal(t, []string{"X", "b"}, buf.Lines())
	assert.Len(t, warningLines(out), 1)
}

func TestApply_DefaultCatalogOnLegacyHost(t *testing.T) {
	buf, err := Locate(readHost(t, "legacy"), LegacyProfile().Anchor, "legacy")
	require.NoError(t, err)
	applier, out := captureApplier()

	report := applier.Apply(buf, DefaultCatalog().Select(types.FeatureFlags{ArraysTuplesNumberedItems: true}))

	assert.False(t, report.Degraded())
	assert.Empty(t, warningLines(out))

	text := buf.String()
	// Only the label in getNodeKind survives; the case label is removed.
	assert.Equal(t, 1, strings.Count(text, tokenTypeAliasCase))
	assert.Contains(t, text, "addNodeWithRecursiveChild(node, node.type);")
	assert.Contains(t, text, "return getNameFromJsxTag(node.openingElement);")
	assert.Contains(t, text, "case ts.SyntaxKind.TupleType:")

	// Inserted cases land inside the switch, right after its opening line,
	// with the later insertion first.
	switchLine := buf.Find("switch (node.kind) {")
	require.GreaterOrEqual(t, switchLine, 0)
	lines := buf.Lines()
	assert.Contains(t, lines[switchLine+1], "case ts.SyntaxKind.TupleType:")
	assert.Contains(t, lines[switchLine+2], "case ts.SyntaxKind.JsxSelfClosingElement:")

	// The replacement type alias case sits right before the default branch
	// of addChildrenRecursively.
	typeAlias := buf.Find("case ts.SyntaxKind.TypeAliasDeclaration:")
	require.GreaterOrEqual(t, typeAlias, 0)
	assert.Contains(t, lines[typeAlias+1], "default:")
	assert.Contains(t, lines[typeAlias-1], "break;")
}

func TestApply_DefaultCatalogOnRefactoredHostDegrades(t *testing.T) {
	buf, err := Locate(readHost(t, "refactored"), RefactoredProfile().Anchor, "refactored")
	require.NoError(t, err)
	applier, out := captureApplier()

	report := applier.Apply(buf, DefaultCatalog().Select(types.FeatureFlags{}))

	// The bundled host spells the type alias label differently, so both
	// type alias ops miss; everything else still applies.
	require.Len(t, report.Skipped, 2)
	assert.Len(t, report.Applied, 2)
	assert.Len(t, warningLines(out), 2)
	assert.Contains(t, buf.String(), "return getNameFromJsxTag(node);")
	assert.Contains(t, buf.String(), "case 264 /* TypeAliasDeclaration */:")
}
