package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GitignoreParser matches project paths against .gitignore patterns. The
// watcher uses it to drop events for ignored files.
type GitignoreParser struct {
	patterns []GitignorePattern
}

type GitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool
	Absolute  bool

	glob string // doublestar form of Pattern
}

// NewGitignoreParser creates a new gitignore parser
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{}
}

// LoadGitignore loads patterns from rootPath/.gitignore. A missing file is
// not an error.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	file, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		return nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		gp.AddPattern(scanner.Text())
	}
	return scanner.Err()
}

// AddPattern parses one .gitignore line. Blank lines and comments are ignored.
func (gp *GitignoreParser) AddPattern(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	var p GitignorePattern
	if strings.HasPrefix(line, "!") {
		p.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.Absolute = true
		line = strings.TrimPrefix(line, "/")
	} else if strings.Contains(line, "/") {
		// A slash in the middle anchors the pattern too.
		p.Absolute = true
	}
	if line == "" {
		return
	}
	p.Pattern = line
	p.glob = line
	if !p.Absolute {
		p.glob = "**/" + line
	}
	gp.patterns = append(gp.patterns, p)
}

// ShouldIgnore reports whether path, relative to the project root, is
// ignored. Later patterns override earlier ones.
func (gp *GitignoreParser) ShouldIgnore(path string, isDir bool) bool {
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")

	ignored := false
	for _, p := range gp.patterns {
		if p.matches(path, isDir) {
			ignored = !p.Negate
		}
	}
	return ignored
}

func (p GitignorePattern) matches(path string, isDir bool) bool {
	if (!p.Directory || isDir) && match(p.glob, path) {
		return true
	}
	// Anything below a matched directory is ignored as well.
	return match(p.glob+"/**", path)
}

func match(glob, path string) bool {
	ok, err := doublestar.Match(glob, path)
	return err == nil && ok
}

// ExclusionPatterns returns the non-negated patterns as exclusion globs.
func (gp *GitignoreParser) ExclusionPatterns() []string {
	var exclusions []string
	for _, p := range gp.patterns {
		if p.Negate {
			continue
		}
		if p.Directory {
			exclusions = append(exclusions, p.glob+"/**")
			continue
		}
		exclusions = append(exclusions, p.glob)
	}
	return exclusions
}
