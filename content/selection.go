package content

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/hayeah/tessera/internal/htmlutil"
)

// Selection is a filterable, sortable list of pages. Filters narrow the
// selection in place.
type Selection struct {
	pages []*Page
}

// NewSelection copies pages into a new selection.
func NewSelection(pages []*Page) *Selection {
	return &Selection{pages: append([]*Page(nil), pages...)}
}

// Pages returns the current selection.
func (s *Selection) Pages() []*Page {
	return s.pages
}

func (s *Selection) filter(keep func(*Page) bool) {
	out := s.pages[:0:0]
	for _, p := range s.pages {
		if keep(p) {
			out = append(out, p)
		}
	}
	s.pages = out
}

// ExcludeHidden drops hidden pages.
func (s *Selection) ExcludeHidden() {
	s.filter(func(p *Page) bool { return !p.Hidden })
}

// ExcludePage drops the page at url.
func (s *Selection) ExcludePage(url string) {
	s.filter(func(p *Page) bool { return p.URL != url })
}

// FilterByParentURL keeps the children of url.
func (s *Selection) FilterByParentURL(url string) {
	s.filter(func(p *Page) bool { return p.ParentURL == url && p.URL != url })
}

// FilterSiblings keeps pages sharing a parent with page, excluding page.
func (s *Selection) FilterSiblings(page *Page) {
	s.filter(func(p *Page) bool { return p.ParentURL == page.ParentURL && p.URL != page.URL })
}

// FilterRelated keeps pages sharing at least one tag with page.
func (s *Selection) FilterRelated(page *Page) {
	s.filter(func(p *Page) bool {
		if p.URL == page.URL {
			return false
		}
		for _, t := range page.Tags {
			if p.HasTag(t) {
				return true
			}
		}
		return false
	})
}

// FilterByTag keeps pages tagged with tag. An empty tag keeps everything.
func (s *Selection) FilterByTag(tag string) {
	if tag == "" {
		return
	}
	s.filter(func(p *Page) bool { return p.HasTag(tag) })
}

// FilterByTemplate keeps pages using template.
func (s *Selection) FilterByTemplate(template string) {
	if template == "" {
		return
	}
	s.filter(func(p *Page) bool { return p.Template == template })
}

// searchSource adapts pages to fuzzy.Source.
type searchSource []*Page

func (ss searchSource) String(i int) string {
	p := ss[i]
	parts := []string{p.Title(), strings.Join(p.Tags, " ")}
	if text, ok := p.Lookup(FieldText); ok {
		parts = append(parts, htmlutil.StripTags(text))
	}
	return strings.Join(parts, " ")
}

func (ss searchSource) Len() int { return len(ss) }

// Search keeps pages fuzzy matching query, preserving order.
func (s *Selection) Search(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	matched := map[int]bool{}
	for _, m := range fuzzy.FindFrom(query, searchSource(s.pages)) {
		matched[m.Index] = true
	}
	i := -1
	s.filter(func(*Page) bool {
		i++
		return matched[i]
	})
}

// SortBy orders the selection by a field. Values that both parse as numbers
// compare numerically. An empty field keeps path order.
func (s *Selection) SortBy(field string, asc bool) {
	if field == "" {
		sort.SliceStable(s.pages, func(i, j int) bool {
			if asc {
				return s.pages[i].Path < s.pages[j].Path
			}
			return s.pages[i].Path > s.pages[j].Path
		})
		return
	}
	sort.SliceStable(s.pages, func(i, j int) bool {
		a, _ := s.pages[i].Lookup(field)
		b, _ := s.pages[j].Lookup(field)
		c := CompareValues(a, b)
		if asc {
			return c < 0
		}
		return c > 0
	})
}

// Slice applies offset and limit. A limit of 0 means no limit.
func (s *Selection) Slice(offset, limit int) {
	if offset > 0 {
		if offset >= len(s.pages) {
			s.pages = nil
			return
		}
		s.pages = s.pages[offset:]
	}
	if limit > 0 && limit < len(s.pages) {
		s.pages = s.pages[:limit]
	}
}

// PrevNext returns the neighbours of url in the selection.
func (s *Selection) PrevNext(url string) (prev, next *Page) {
	for i, p := range s.pages {
		if p.URL != url {
			continue
		}
		if i > 0 {
			prev = s.pages[i-1]
		}
		if i+1 < len(s.pages) {
			next = s.pages[i+1]
		}
		return prev, next
	}
	return nil, nil
}

// CompareValues compares two values numerically when both parse as
// numbers and byte-wise otherwise. It returns -1, 0 or 1.
func CompareValues(a, b string) int {
	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}
