package content

import (
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hayeah/tessera/ignore"
	"github.com/hayeah/tessera/internal/hujsonutil"
)

// Options are decoded call options.
type Options = hujsonutil.Options

// Resolver resolves file declarations: comma separated glob patterns,
// relative to the page directory or, with a leading slash, to the site root.
// Results are site root paths with a leading slash.
type Resolver struct {
	FS       fs.FS
	PagesDir string
	Ignore   *ignore.Ignore
}

// NewResolver creates a resolver for a site.
func NewResolver(site *Site, ig *ignore.Ignore) *Resolver {
	return &Resolver{FS: site.FS, PagesDir: site.PagesDir, Ignore: ig}
}

// Resolve returns the files matched by decl. Page data files and ignored
// files are skipped. Each pattern's matches are sorted; duplicates across
// patterns are dropped. With firstOnly at most one file is returned.
func (r *Resolver) Resolve(decl string, page *Page, firstOnly bool) []string {
	if r == nil || r.FS == nil {
		return nil
	}
	seen := map[string]bool{}
	var files []string
	for _, glob := range strings.Split(decl, Separator) {
		glob = strings.TrimSpace(glob)
		if glob == "" {
			continue
		}
		matches, err := doublestar.Glob(r.FS, r.pattern(glob, page), doublestar.WithFilesOnly())
		if err != nil {
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			if seen[m] || r.skip(m) {
				continue
			}
			seen[m] = true
			files = append(files, "/"+m)
			if firstOnly {
				return files
			}
		}
	}
	return files
}

func (r *Resolver) pattern(glob string, page *Page) string {
	if strings.HasPrefix(glob, "/") {
		return strings.TrimPrefix(path.Clean(glob), "/")
	}
	dir := "/"
	if page != nil && page.Path != "" {
		dir = page.Path
	}
	pagesDir := r.PagesDir
	if pagesDir == "" {
		pagesDir = DefaultPagesDir
	}
	return strings.TrimPrefix(path.Join(pagesDir, dir, glob), "/")
}

func (r *Resolver) skip(file string) bool {
	ext := path.Ext(file)
	for _, de := range DataFileExts {
		if ext == de {
			return true
		}
	}
	return r.Ignore.IsIgnored(file, false)
}

// Open opens a resolved file.
func (r *Resolver) Open(file string) (fs.File, error) {
	return r.FS.Open(strings.TrimPrefix(file, "/"))
}

// ReadFile reads a resolved file.
func (r *Resolver) ReadFile(file string) ([]byte, error) {
	return fs.ReadFile(r.FS, strings.TrimPrefix(file, "/"))
}

// DefaultFileGlob is the file list pattern when none is configured.
const DefaultFileGlob = "*.jpg, *.jpeg, *.png, *.gif"

// FileListConfig selects files for a FileList.
type FileListConfig struct {
	Glob string `toml:"glob" json:"glob"`
	Sort string `toml:"sort" json:"sort"`
}

// FileList is the configurable file selection of one render.
type FileList struct {
	resolver *Resolver
	current  func() *Page
	cfg      FileListConfig
}

// NewFileList creates a file list resolving relative to the current page.
func NewFileList(resolver *Resolver, current func() *Page) *FileList {
	return &FileList{resolver: resolver, current: current, cfg: FileListConfig{Glob: DefaultFileGlob}}
}

// Config returns a snapshot of the configuration.
func (l *FileList) Config() FileListConfig { return l.cfg }

// Restore replaces the configuration with a snapshot.
func (l *FileList) Restore(cfg FileListConfig) { l.cfg = cfg }

// Apply merges call options: glob and sort ("asc" or "desc").
func (l *FileList) Apply(opts Options) {
	l.cfg.Glob = opts.String("glob", l.cfg.Glob)
	l.cfg.Sort = opts.String("sort", l.cfg.Sort)
}

// Files returns the selected files.
func (l *FileList) Files() []string {
	var page *Page
	if l.current != nil {
		page = l.current()
	}
	files := l.resolver.Resolve(l.cfg.Glob, page, false)
	if strings.EqualFold(strings.TrimSpace(l.cfg.Sort), "desc") {
		sort.Sort(sort.Reverse(sort.StringSlice(files)))
	} else if strings.EqualFold(strings.TrimSpace(l.cfg.Sort), "asc") {
		sort.Strings(files)
	}
	return files
}

// Count returns the number of selected files.
func (l *FileList) Count() int {
	return len(l.Files())
}
