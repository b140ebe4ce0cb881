package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Ignore matches site paths against gitignore patterns. Paths are slash
// separated and relative to the site root.
type Ignore struct {
	matcher gitignore.Matcher
}

// NewIgnore reads every .gitignore below rootPath on disk, including nested
// ones.
func NewIgnore(rootPath string) (*Ignore, error) {
	bfs := osfs.New(rootPath)
	patterns, err := gitignore.ReadPatterns(bfs, []string{})
	if err != nil {
		return nil, fmt.Errorf("failed to read gitignore patterns: %w", err)
	}
	return &Ignore{matcher: gitignore.NewMatcher(patterns)}, nil
}

// FromFS reads the .gitignore at the root of fsys. A missing file yields an
// Ignore that matches nothing.
func FromFS(fsys fs.FS) (*Ignore, error) {
	data, err := fs.ReadFile(fsys, ".gitignore")
	if errors.Is(err, fs.ErrNotExist) {
		return FromPatterns(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitignore: %w", err)
	}

	var lines []string
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return FromPatterns(lines...), nil
}

// FromPatterns builds an Ignore from gitignore lines. Blank lines and
// comments are skipped.
func FromPatterns(lines ...string) *Ignore {
	var patterns []gitignore.Pattern
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return &Ignore{matcher: gitignore.NewMatcher(patterns)}
}

// IsIgnored checks a slash separated path relative to the site root.
func (ig *Ignore) IsIgnored(rel string, isDir bool) bool {
	if ig == nil {
		return false
	}
	rel = strings.Trim(path.Clean("/"+rel), "/")
	if rel == "" {
		return false
	}
	parts := strings.Split(rel, "/")
	for _, p := range parts {
		if p == ".git" {
			return true
		}
	}
	return ig.matcher.Match(parts, isDir)
}

// WalkDir walks fsys from root like fs.WalkDir, skipping ignored files and
// directories.
func (ig *Ignore) WalkDir(fsys fs.FS, root string, fn fs.WalkDirFunc) error {
	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fn(p, d, err)
		}
		if ig.IsIgnored(p, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		return fn(p, d, nil)
	})
}
