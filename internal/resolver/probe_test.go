package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeNames(t *testing.T, src string, extra ...string) []string {
	t.Helper()
	probe, err := NewStaticProbe(extra...)
	require.NoError(t, err)
	defer probe.Close()

	diagnostics, err := probe.Compile(src)
	require.NoError(t, err)
	return UnresolvedNames(diagnostics)
}

func TestStaticProbe_Scopes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "var hoisting",
			src:  "function f() { use(x); if (true) { var x = 1; } }",
			want: []string{"use"},
		},
		{
			name: "block scoped let",
			src:  "function f() { { let y = 1; } return y; }",
			want: []string{"y"},
		},
		{
			name: "parameters and defaults",
			src:  "function f(a, { b, c: [d] }, e = dflt, ...rest) { return a + b + d + e + rest.length; }",
			want: []string{"dflt"},
		},
		{
			name: "arrow parameter",
			src:  "const g = item => item.value + other;",
			want: []string{"other"},
		},
		{
			name: "hoisted function declaration",
			src:  "run(); function run() { return helper(); }",
			want: []string{"helper"},
		},
		{
			name: "named function expression",
			src:  "const h = function self(n) { return n ? self(n - 1) : 0; };",
			want: []string{},
		},
		{
			name: "catch parameter",
			src:  "try { work(); } catch (err) { log(err); }",
			want: []string{"log", "work"},
		},
		{
			name: "for of destructuring",
			src:  "for (const [i, element] of list.entries()) { visit(i, element); }",
			want: []string{"list", "visit"},
		},
		{
			name: "properties and labels are not references",
			src:  "var o = { key: 1, method() { return this.key; } }; outer: for (;;) { o.other; break outer; }",
			want: []string{},
		},
		{
			name: "shorthand property is a reference",
			src:  "var node = 1; var out = { node, missing };",
			want: []string{"missing"},
		},
		{
			name: "standard globals",
			src:  "var m = new Map(); JSON.stringify(Object.keys(m)); console.log(undefined);",
			want: []string{},
		},
		{
			name: "class declaration",
			src:  "class Walker { visit(node) { return new Walker(node, Base); } }",
			want: []string{"Base"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, freeNames(t, tt.src))
		})
	}
}

func TestStaticProbe_ExtraGlobals(t *testing.T) {
	assert.Empty(t, freeNames(t, "process.exit(0);", "process"))
}

func TestStaticProbe_ReportsEachOccurrence(t *testing.T) {
	probe, err := NewStaticProbe()
	require.NoError(t, err)
	defer probe.Close()

	diagnostics, err := probe.Compile("foo();\nfoo();")
	require.NoError(t, err)
	require.Len(t, diagnostics, 2)
	assert.Equal(t, CodeCannotFindName, diagnostics[0].Code)
	assert.Equal(t, "Cannot find name 'foo'.", diagnostics[0].Message)
	assert.Equal(t, 1, diagnostics[0].Line)
	assert.Equal(t, 2, diagnostics[1].Line)
	assert.Equal(t, 1, diagnostics[1].Column)
}

func TestStaticProbe_SyntaxError(t *testing.T) {
	probe, err := NewStaticProbe()
	require.NoError(t, err)
	defer probe.Close()

	diagnostics, err := probe.Compile("function (")
	require.NoError(t, err)
	require.NotEmpty(t, diagnostics)
	assert.Equal(t, CodeSyntaxError, diagnostics[0].Code)
}

func TestStaticProbe_Closed(t *testing.T) {
	probe, err := NewStaticProbe()
	require.NoError(t, err)
	probe.Close()

	_, err = probe.Compile("x")
	assert.Error(t, err)
}
