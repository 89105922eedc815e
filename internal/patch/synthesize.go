package patch

import "strings"

// Parameter names of the synthesized module function. Patched cases refer to
// these names directly.
const (
	HostParam  = "ts"
	LabelParam = "getNameFromJsxTag"
)

// Synthesize wraps the patched body into a function expression taking the
// host API and the label formatter and returning the profile's export
// expression. A non-empty preamble becomes the first body line.
func Synthesize(body []string, profile Profile, preamble string) string {
	var sb strings.Builder
	sb.WriteString("(function (" + HostParam + ", " + LabelParam + ") {\n")
	if preamble != "" {
		sb.WriteString(preamble)
		sb.WriteString("\n")
	}
	sb.WriteString(strings.Join(body, "\n"))
	sb.WriteString("\nreturn ")
	sb.WriteString(profile.ExportExpression)
	sb.WriteString("\n})")
	return sb.String()
}
