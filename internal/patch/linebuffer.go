package patch

import (
	"fmt"
	"regexp"
	"strings"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// SplitLines splits text on LF or CRLF line breaks.
func SplitLines(text string) []string {
	return lineBreak.Split(text, -1)
}

// LineBuffer is the mutable working copy of an extracted module.
// Searches always scan the current contents, so earlier splices shift what
// later searches see.
type LineBuffer struct {
	lines []string
}

// NewLineBuffer creates a buffer owning a copy of lines.
func NewLineBuffer(lines []string) *LineBuffer {
	cp := make([]string, len(lines))
	copy(cp, lines)
	return &LineBuffer{lines: cp}
}

// Lines returns a copy of the current lines.
func (b *LineBuffer) Lines() []string {
	cp := make([]string, len(b.lines))
	copy(cp, b.lines)
	return cp
}

// Find returns the index of the first line containing token, or -1.
func (b *LineBuffer) Find(token string) int {
	for i, line := range b.lines {
		if strings.Contains(line, token) {
			return i
		}
	}
	return -1
}

// Splice removes up to remove lines at index and inserts lines in their place.
// index may equal the line count to append. Nothing is modified when index is out of
// range.
func (b *LineBuffer) Splice(index, remove int, insert ...string) error {
	if index < 0 || index > len(b.lines) {
		return fmt.Errorf("splice index %d outside buffer of %d lines", index, len(b.lines))
	}
	if remove < 0 {
		return fmt.Errorf("negative remove count %d", remove)
	}
	if index+remove > len(b.lines) {
		remove = len(b.lines) - index
	}

	out := make([]string, 0, len(b.lines)-remove+len(insert))
	out = append(out, b.lines[:index]...)
	out = append(out, insert...)
	out = append(out, b.lines[index+remove:]...)
	b.lines = out
	return nil
}

// String joins the buffer with LF.
func (b *LineBuffer) String() string {
	return strings.Join(b.lines, "\n")
}
