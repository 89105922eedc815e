package patch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ProfileKind discriminates the two host generations.
type ProfileKind int

const (
	// ProfileLegacy is the namespace-IIFE host layout (major version < 5).
	ProfileLegacy ProfileKind = iota
	// ProfileRefactored is the flat bundled module layout (major version >= 5).
	ProfileRefactored
)

func (k ProfileKind) String() string {
	switch k {
	case ProfileLegacy:
		return "legacy"
	case ProfileRefactored:
		return "refactored"
	default:
		return fmt.Sprintf("ProfileKind(%d)", int(k))
	}
}

// ParseProfileKind parses "legacy" or "refactored".
func ParseProfileKind(name string) (ProfileKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "legacy":
		return ProfileLegacy, nil
	case "refactored":
		return ProfileRefactored, nil
	default:
		return 0, fmt.Errorf("unknown host profile %q (want legacy or refactored)", name)
	}
}

// Profile carries everything that differs between host generations.
type Profile struct {
	Kind                        ProfileKind
	Anchor                      AnchorWindow
	Catalog                     Catalog
	ExportExpression            string
	NeedsFreeVariableResolution bool
}

// Name returns the profile kind name.
func (p Profile) Name() string {
	return p.Kind.String()
}

// LegacyProfile describes hosts that define the outline module as
// `var NavigationBar; (function (NavigationBar) { ... })(...)`.
func LegacyProfile() Profile {
	return Profile{
		Kind: ProfileLegacy,
		Anchor: AnchorWindow{
			StartMarker: "var NavigationBar;",
			EndMarker:   "(ts.NavigationBar = {}));",
		},
		Catalog:          DefaultCatalog(),
		ExportExpression: "NavigationBar",
	}
}

// RefactoredProfile describes bundled hosts where the module is a top-level
// fragment introduced by a source path comment. The fragment references
// bare helpers, so free variables must be resolved.
func RefactoredProfile() Profile {
	return Profile{
		Kind: ProfileRefactored,
		Anchor: AnchorWindow{
			StartMarker:     "// src/services/navigationBar.ts",
			EndMarker:       "// src/",
			SkipStartMarker: true,
		},
		Catalog:                     DefaultCatalog(),
		ExportExpression:            "{ getNavigationTree }",
		NeedsFreeVariableResolution: true,
	}
}

// ProfileFor returns the profile of the given kind.
func ProfileFor(kind ProfileKind) Profile {
	if kind == ProfileRefactored {
		return RefactoredProfile()
	}
	return LegacyProfile()
}

// SelectProfile picks the profile for a host version string such as "4.9.5"
// or "5.3".
func SelectProfile(version string) (Profile, error) {
	major, err := majorVersion(version)
	if err != nil {
		return Profile{}, err
	}
	if major >= 5 {
		return RefactoredProfile(), nil
	}
	return LegacyProfile(), nil
}

func majorVersion(version string) (int, error) {
	v := strings.TrimPrefix(strings.TrimSpace(version), "v")
	head, _, _ := strings.Cut(v, ".")
	major, err := strconv.Atoi(head)
	if err != nil || head == "" {
		return 0, fmt.Errorf("invalid host version %q", version)
	}
	return major, nil
}

var versionMarker = regexp.MustCompile(`versionMajorMinor = "(\d+\.\d+)"`)

// DetectVersion finds the host's major.minor version in its source text.
func DetectVersion(source string) (string, bool) {
	m := versionMarker.FindStringSubmatch(source)
	if m == nil {
		return "", false
	}
	return m[1], true
}
