package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GitignoreParser handles parsing and matching .gitignore files
type GitignoreParser struct {
	patterns []GitignorePattern
}

// GitignorePattern is one parsed .gitignore line. Glob is the
// doublestar form matched against root-relative slash paths.
type GitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool
	Absolute  bool

	glob string
}

// NewGitignoreParser creates a new gitignore parser
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{}
}

// LoadGitignore loads patterns from the .gitignore at rootPath. A missing
// file is not an error.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	file, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		return nil
	}
	defer file.Close()

	return gp.scanAndParsePatterns(file)
}

func (gp *GitignoreParser) scanAndParsePatterns(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		gp.AddPattern(line)
	}
	return scanner.Err()
}

// AddPattern adds a single pattern line
func (gp *GitignoreParser) AddPattern(line string) {
	p := GitignorePattern{}

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
		line = line[1:]
	} else if strings.Contains(line, "/") && !strings.HasPrefix(line, "**/") {
		// a slash in the middle anchors the pattern to the root, as git does
		p.Absolute = true
	}
	if line == "" {
		return
	}

	p.Pattern = line
	if p.Absolute {
		p.glob = line
	} else {
		p.glob = "**/" + strings.TrimPrefix(line, "**/")
	}
	if !doublestar.ValidatePattern(p.glob) {
		return
	}
	gp.patterns = append(gp.patterns, p)
}

// ShouldIgnore checks a root-relative path. The last matching pattern wins
// so negations can re-include.
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
	// the path itself
	if !p.Directory || isDir {
		if ok, _ := doublestar.Match(p.glob, path); ok {
			return true
		}
	}
	// any ancestor directory of the path
	for dir := parentDir(path); dir != ""; dir = parentDir(dir) {
		if ok, _ := doublestar.Match(p.glob, dir); ok {
			return true
		}
	}
	return false
}

func parentDir(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i <= 0 {
		return ""
	}
	return path[:i]
}

// GetExclusionPatterns returns the non-negated patterns as exclusion globs
func (gp *GitignoreParser) GetExclusionPatterns() []string {
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
