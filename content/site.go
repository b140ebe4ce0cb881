package content

import (
	"context"
	"io/fs"
	"sort"
)

// Store loads a site.
type Store interface {
	Load(ctx context.Context) (*Site, error)
}

// Site is a loaded content tree. It is read only and may be shared between
// concurrent renders.
type Site struct {
	// FS is the site root, holding page files and theme templates.
	FS       fs.FS
	PagesDir string
	Shared   *Shared

	pages []*Page
	byURL map[string]*Page
}

// NewSite indexes pages by URL. Pages are kept ordered by path so that
// numbered directories sort as authored.
func NewSite(fsys fs.FS, pages []*Page, shared *Shared) *Site {
	if shared == nil {
		shared = NewShared(nil)
	}
	sorted := append([]*Page(nil), pages...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	s := &Site{FS: fsys, PagesDir: DefaultPagesDir, Shared: shared, pages: sorted, byURL: map[string]*Page{}}
	for _, p := range sorted {
		p.Shared = shared
		s.byURL[p.URL] = p
	}
	return s
}

// Page returns the page at url, or nil.
func (s *Site) Page(url string) *Page {
	return s.byURL[url]
}

// Collection returns all pages in path order.
func (s *Site) Collection() []*Page {
	return s.pages
}

// Len returns the number of pages.
func (s *Site) Len() int {
	return len(s.pages)
}
