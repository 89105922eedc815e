// Package resolver rebinds free variables of a synthesized outline module.
//
// Bundled hosts define the outline module as a top-level fragment that
// refers to helpers by bare name. Once extracted, those names are unbound.
// The resolver compiles the synthesized text once through a Probe, collects
// the names the probe could not find and destructures exactly those names
// from the host API parameter.
package resolver

import (
	"regexp"
	"sort"
	"strings"

	"github.com/standardbeagle/navpatch/internal/debug"
	naverrors "github.com/standardbeagle/navpatch/internal/errors"
	"github.com/standardbeagle/navpatch/internal/patch"
	"github.com/standardbeagle/navpatch/internal/types"
)

// Probe compiles module text standalone and reports its diagnostics.
type Probe interface {
	Compile(text string) ([]types.Diagnostic, error)
}

// ProbeFunc adapts a function to the Probe interface.
type ProbeFunc func(text string) ([]types.Diagnostic, error)

// Compile calls f(text).
func (f ProbeFunc) Compile(text string) ([]types.Diagnostic, error) {
	return f(text)
}

// Result is the outcome of one resolution pass.
type Result struct {
	// Text is the final synthesized module text.
	Text string
	// Names are the destructured free variables, sorted.
	Names []string
	// Preamble is the binding line, empty when nothing was unresolved.
	Preamble string
}

var cannotFindName = regexp.MustCompile(`^Cannot find name '(.+?)'.`)

// Resolve synthesizes body, compiles it once with probe and re-synthesizes
// it with a binding preamble for every unresolved name. It does not iterate:
// names introduced by the preamble itself are not probed again.
func Resolve(body []string, profile patch.Profile, probe Probe) (Result, error) {
	text := patch.Synthesize(body, profile, "")

	diagnostics, err := probe.Compile(text)
	if err != nil {
		return Result{}, naverrors.NewCompileError("probe", err)
	}

	names := UnresolvedNames(diagnostics)
	if len(names) == 0 {
		debug.LogResolver("no free variables in %s module\n", profile.Name())
		return Result{Text: text}, nil
	}

	preamble := Preamble(names)
	debug.LogResolver("binding %d free variables: %s\n", len(names), strings.Join(names, ", "))
	return Result{
		Text:     patch.Synthesize(body, profile, preamble),
		Names:    names,
		Preamble: preamble,
	}, nil
}

// UnresolvedNames extracts the distinct names of all "Cannot find name"
// diagnostics, sorted.
func UnresolvedNames(diagnostics []types.Diagnostic) []string {
	seen := make(map[string]struct{})
	for _, d := range diagnostics {
		if !IsCannotFindName(d.Code) {
			continue
		}
		m := cannotFindName.FindStringSubmatch(d.Message)
		if m == nil {
			continue
		}
		seen[m[1]] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preamble returns `const {a, b} = ts;` for names, or "" when names is empty.
func Preamble(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return "const {" + strings.Join(names, ", ") + "} = " + patch.HostParam + ";"
}
