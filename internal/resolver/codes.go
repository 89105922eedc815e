package resolver

// Diagnostic codes the host compiler uses for "Cannot find name" errors.
const (
	CodeCannotFindName                  = 2304
	CodeCannotFindNameDidYouMean        = 2552
	CodeCannotFindNameNodeTypes         = 2580
	CodeCannotFindNameJQueryTypes       = 2581
	CodeCannotFindNameTestTypes         = 2582
	CodeCannotFindNameChangeLib         = 2583
	CodeCannotFindNameChangeLibDOM      = 2584
	CodeCannotFindNameNodeTypesConfig   = 2591
	CodeCannotFindNameJQueryTypesConfig = 2592
	CodeCannotFindNameTestTypesConfig   = 2593
	CodeCannotFindNameStaticMember      = 2662
	CodeCannotFindNameInstanceMember    = 2663
)

// CodeSyntaxError is reported by probes for text that does not parse.
const CodeSyntaxError = 1005

var cannotFindCodes = map[int]bool{
	CodeCannotFindName:                  true,
	CodeCannotFindNameDidYouMean:        true,
	CodeCannotFindNameNodeTypes:         true,
	CodeCannotFindNameJQueryTypes:       true,
	CodeCannotFindNameTestTypes:         true,
	CodeCannotFindNameNodeTypesConfig:   true,
	CodeCannotFindNameJQueryTypesConfig: true,
	CodeCannotFindNameTestTypesConfig:   true,
	CodeCannotFindNameStaticMember:      true,
	CodeCannotFindNameInstanceMember:    true,
}

// IsCannotFindName reports whether code is a "Cannot find name" diagnostic.
// The library variants (2583, 2584) point at missing lib settings rather
// than missing bindings and are excluded.
func IsCannotFindName(code int) bool {
	return cannotFindCodes[code]
}
