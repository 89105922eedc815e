package types

// FeatureFlags selects optional enhancements of the patch catalog.
// The struct is comparable and is used directly as a cache key.
type FeatureFlags struct {
	// ArraysTuplesNumberedItems outlines array literal and tuple type
	// elements as children named by their index.
	ArraysTuplesNumberedItems bool
}

// Enabled reports whether the named feature is on. Unknown names are off.
func (f FeatureFlags) Enabled(name string) bool {
	switch name {
	case FeatureArraysTuplesNumberedItems:
		return f.ArraysTuplesNumberedItems
	default:
		return false
	}
}

// String renders the flags as a stable key, e.g. "arraysTuplesNumberedItems=true".
func (f FeatureFlags) String() string {
	if f.ArraysTuplesNumberedItems {
		return FeatureArraysTuplesNumberedItems + "=true"
	}
	return FeatureArraysTuplesNumberedItems + "=false"
}

// Feature names used by patch operations and configuration.
const (
	FeatureArraysTuplesNumberedItems = "arraysTuplesNumberedItems"
)

// HostAPI is the live API object of the host language service (the `ts`
// namespace). Its concrete type belongs to the runtime that loaded the host.
type HostAPI any

// SourceFile is a parsed source file owned by the host.
type SourceFile any

// NavigationTree is the host-defined outline result. It is passed through
// without inspection.
type NavigationTree any

// CancellationToken is the cooperative cancellation signal handed to the
// host-defined tree builder.
type CancellationToken interface {
	IsCancellationRequested() bool
	ThrowIfCancellationRequested() error
}

// NoopCancellationToken is never cancelled.
type NoopCancellationToken struct{}

func (NoopCancellationToken) IsCancellationRequested() bool       { return false }
func (NoopCancellationToken) ThrowIfCancellationRequested() error { return nil }

// MarkupAttribute is one attribute of a markup element as seen by the label
// formatter. Literal is false when the value is an expression.
type MarkupAttribute struct {
	Name    string
	Value   string
	Literal bool
}

// LabelFormatter renders the outline label of a markup element.
type LabelFormatter func(tagName string, attributes []MarkupAttribute) string

// Bindings are the only values injected into a synthesized module.
type Bindings struct {
	Host  HostAPI
	Label LabelFormatter
}

// NavigationModule is the exported surface of a compiled outline module.
type NavigationModule interface {
	GetNavigationTree(sourceFile SourceFile, token CancellationToken) (NavigationTree, error)
}

// ModuleCompiler turns synthesized module text into an invocable module.
type ModuleCompiler interface {
	Compile(moduleText string, bindings Bindings) (NavigationModule, error)
}

// Diagnostic is a compiler diagnostic reported by a probe.
type Diagnostic struct {
	Code    int
	Message string
	Line    int // 1-based, 0 when unknown
	Column  int // 1-based, 0 when unknown
}

// ProgramHost is the part of a host language service the query facade needs.
type ProgramHost interface {
	// Program returns the current program, or false when the host has none.
	Program() (Program, bool)
	// CancellationToken returns the host's own token, if it exposes one.
	CancellationToken() (CancellationToken, bool)
}

// Program resolves source files by name.
type Program interface {
	SourceFile(fileName string) (SourceFile, bool)
}
