package patch

import (
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/navpatch/internal/debug"
	naverrors "github.com/standardbeagle/navpatch/internal/errors"
)

// AnchorWindow delimits the outline module inside raw host source.
type AnchorWindow struct {
	StartMarker string
	EndMarker   string
	// SkipStartMarker drops the start marker itself from the output.
	SkipStartMarker bool
}

// Locate extracts the text between the window's markers. The end marker is
// searched after the start position and is included in the result. A missing
// marker is a HostIncompatibleError; no partial buffer is ever returned.
func Locate(source string, window AnchorWindow, profile string) (*LineBuffer, error) {
	start := strings.Index(source, window.StartMarker)
	if start < 0 || window.StartMarker == "" {
		return nil, naverrors.NewHostIncompatibleError(profile, "start", window.StartMarker).
			WithClosest(closestLine(source, window.StartMarker))
	}
	if window.SkipStartMarker {
		start += len(window.StartMarker)
	}

	rest := source[start:]
	end := strings.Index(rest, window.EndMarker)
	if end < 0 || window.EndMarker == "" {
		return nil, naverrors.NewHostIncompatibleError(profile, "end", window.EndMarker).
			WithClosest(closestLine(rest, window.EndMarker))
	}

	region := rest[:end+len(window.EndMarker)]
	lines := SplitLines(region)
	debug.LogPatch("located %s module: %d bytes, %d lines\n", profile, len(region), len(lines))
	return NewLineBuffer(lines), nil
}

// minHintSimilarity is the Jaro-Winkler score a host line needs before it is
// offered as a hint for a missing marker or token.
const minHintSimilarity = 0.85

// closestLine returns the trimmed line of text most similar to marker, or ""
// when nothing is similar enough. Only lines of comparable length are scored.
func closestLine(text, marker string) string {
	if marker == "" {
		return ""
	}
	maxLen := 4 * len(marker)

	best := ""
	var bestScore float32
	for _, line := range SplitLines(text) {
		line = strings.TrimSpace(line)
		if line == "" || len(line) > maxLen {
			continue
		}
		score, err := edlib.StringsSimilarity(line, marker, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = line, score
		}
	}
	if bestScore < minHintSimilarity {
		return ""
	}
	return best
}
