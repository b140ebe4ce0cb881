package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/hayeah/tessera/ignore"
)

// DefaultPagesDir is the directory holding the page tree.
const DefaultPagesDir = "pages"

// DataFileExts are the extensions of page data files, in priority order.
var DataFileExts = []string{".txt", ".md"}

var orderPrefixRe = regexp.MustCompile(`^\d+\.`)

// DirStore loads a site from a directory tree:
//
//	shared.toml | shared.yml
//	pages/page.txt               -> /
//	pages/01.blog/blog.txt       -> /blog
//	pages/01.blog/02.post/post.md -> /blog/post
//
// Each page directory holds one data file whose basename is the page
// template. Numeric prefixes order siblings and are dropped from URLs.
type DirStore struct {
	FS       fs.FS
	PagesDir string
	Ignore   *ignore.Ignore
	Logger   *slog.Logger
}

type pageJob struct {
	dir  string
	file string
}

// Load reads shared data and every page, parsing data files in parallel.
func (s *DirStore) Load(ctx context.Context) (*Site, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pagesDir := s.PagesDir
	if pagesDir == "" {
		pagesDir = DefaultPagesDir
	}

	shared, err := loadShared(s.FS)
	if err != nil {
		return nil, err
	}

	jobs, err := s.findPages(pagesDir)
	if err != nil {
		return nil, err
	}

	pages := make([]*Page, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := s.loadPage(pagesDir, job, shared)
			if err != nil {
				return err
			}
			pages[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	assignIndexes(pages)
	logger.Debug("site loaded", "pages", len(pages), "dir", pagesDir)

	site := NewSite(s.FS, pages, shared)
	site.PagesDir = pagesDir
	return site, nil
}

// findPages returns one job per directory that has a data file.
func (s *DirStore) findPages(pagesDir string) ([]pageJob, error) {
	var jobs []pageJob
	err := s.Ignore.WalkDir(s.FS, pagesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		entries, err := fs.ReadDir(s.FS, p)
		if err != nil {
			return err
		}
		if file := dataFile(entries); file != "" {
			jobs = append(jobs, pageJob{dir: p, file: path.Join(p, file)})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", pagesDir, err)
	}
	return jobs, nil
}

func dataFile(entries []fs.DirEntry) string {
	for _, ext := range DataFileExts {
		for _, e := range entries {
			if !e.IsDir() && path.Ext(e.Name()) == ext {
				return e.Name()
			}
		}
	}
	return ""
}

func (s *DirStore) loadPage(pagesDir string, job pageJob, shared *Shared) (*Page, error) {
	raw, err := fs.ReadFile(s.FS, job.file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", job.file, err)
	}
	data, err := ParseDataFile(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", job.file, err)
	}

	rel := strings.TrimPrefix(strings.TrimPrefix(job.dir, pagesDir), "/")
	data[FieldPath] = PagePath(rel)
	data[FieldURL] = PageURL(rel)
	data[FieldLevel] = PageLevel(rel)
	if rel != "" {
		data[FieldParent] = PageURL(path.Dir(rel))
	}
	data[FieldTemplate] = strings.TrimSuffix(path.Base(job.file), path.Ext(job.file))

	p := NewPage(data, shared)
	p.DataFile = job.file
	if info, err := fs.Stat(s.FS, job.file); err == nil {
		p.ModTime = info.ModTime()
	}
	return p, nil
}

// PagePath returns the page path for a directory relative to the pages dir.
func PagePath(rel string) string {
	if rel == "" || rel == "." {
		return "/"
	}
	return "/" + rel + "/"
}

// PageURL strips the ordering prefixes from every segment of rel.
func PageURL(rel string) string {
	if rel == "" || rel == "." {
		return "/"
	}
	segs := strings.Split(rel, "/")
	for i, seg := range segs {
		if stripped := orderPrefixRe.ReplaceAllString(seg, ""); stripped != "" {
			segs[i] = stripped
		}
	}
	return "/" + strings.Join(segs, "/")
}

// PageLevel returns the depth of rel below the home page.
func PageLevel(rel string) int {
	if rel == "" || rel == "." {
		return 0
	}
	return strings.Count(rel, "/") + 1
}

// assignIndexes numbers pages by their position in the tree: the home page
// is "1", its second child "1.2".
func assignIndexes(pages []*Page) {
	sorted := append([]*Page(nil), pages...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	byURL := map[string]*Page{}
	counts := map[string]int{}
	for _, p := range sorted {
		byURL[p.URL] = p
		if p.Index != "" {
			continue
		}
		parent, ok := byURL[p.ParentURL]
		if p.ParentURL == "" || !ok {
			counts[""]++
			p.Index = strconv.Itoa(counts[""])
		} else {
			counts[p.ParentURL]++
			p.Index = parent.Index + "." + strconv.Itoa(counts[p.ParentURL])
		}
		p.Data[FieldIndex] = p.Index
	}
}

// SharedFiles are tried in order for site wide data.
var SharedFiles = []string{"shared.toml", "shared.yml", "shared.yaml"}

func loadShared(fsys fs.FS) (*Shared, error) {
	for _, name := range SharedFiles {
		raw, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		data := map[string]any{}
		if path.Ext(name) == ".toml" {
			_, err = toml.Decode(string(raw), &data)
		} else {
			err = yaml.Unmarshal(raw, &data)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		return NewShared(data), nil
	}
	return NewShared(nil), nil
}
