package content

import (
	"sort"
	"strings"
)

// Page list types.
const (
	TypeAll      = ""
	TypeChildren = "children"
	TypeSiblings = "siblings"
	TypeRelated  = "related"
)

// PageListConfig selects and orders the pages of a PageList.
type PageListConfig struct {
	Type           string `toml:"type" json:"type"`
	Context        string `toml:"context" json:"context"`
	Filter         string `toml:"filter" json:"filter"`
	Search         string `toml:"search" json:"search"`
	Template       string `toml:"template" json:"template"`
	ExcludeHidden  bool   `toml:"excludeHidden" json:"excludeHidden"`
	ExcludeCurrent bool   `toml:"excludeCurrent" json:"excludeCurrent"`
	Sort           string `toml:"sort" json:"sort"`
	Offset         int    `toml:"offset" json:"offset"`
	Limit          int    `toml:"limit" json:"limit"`
}

// DefaultPageListConfig lists all visible pages in path order.
func DefaultPageListConfig() PageListConfig {
	return PageListConfig{ExcludeHidden: true}
}

// PageList is the configurable page selection of one render.
type PageList struct {
	site       *Site
	requestURL string
	// current returns the active context page, used by children, siblings
	// and related lists when Context is empty.
	current func() *Page
	cfg     PageListConfig
}

// NewPageList creates a page list for a request.
func NewPageList(site *Site, requestURL string, cfg PageListConfig, current func() *Page) *PageList {
	if current == nil {
		current = func() *Page { return site.Page(requestURL) }
	}
	return &PageList{site: site, requestURL: requestURL, current: current, cfg: cfg}
}

// Config returns a snapshot of the configuration.
func (l *PageList) Config() PageListConfig {
	return l.cfg
}

// Restore replaces the configuration with a snapshot.
func (l *PageList) Restore(cfg PageListConfig) {
	l.cfg = cfg
}

// Apply merges call options into the configuration. Unknown keys are ignored.
func (l *PageList) Apply(opts Options) {
	c := &l.cfg
	c.Type = opts.String("type", c.Type)
	c.Context = opts.String("context", c.Context)
	c.Filter = opts.String("filter", c.Filter)
	c.Search = opts.String("search", c.Search)
	c.Template = opts.String("template", c.Template)
	c.ExcludeHidden = opts.Bool("excludeHidden", c.ExcludeHidden)
	c.ExcludeCurrent = opts.Bool("excludeCurrent", c.ExcludeCurrent)
	c.Sort = opts.String("sort", c.Sort)
	c.Offset = opts.Int("offset", c.Offset)
	c.Limit = opts.Int("limit", c.Limit)
}

// Pages returns the selected pages.
func (l *PageList) Pages() []*Page {
	sel := l.selection(l.cfg)
	sel.FilterByTag(l.cfg.Filter)
	l.sort(sel)
	sel.Slice(l.cfg.Offset, l.cfg.Limit)
	return sel.Pages()
}

// Count returns the number of selected pages.
func (l *PageList) Count() int {
	return len(l.Pages())
}

// Tags returns the distinct sorted tags of the selection, ignoring the tag
// filter, offset and limit.
func (l *PageList) Tags() []string {
	seen := map[string]bool{}
	var tags []string
	for _, p := range l.selection(l.cfg).Pages() {
		for _, t := range p.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// selection applies type, template, search and exclusion filters.
func (l *PageList) selection(cfg PageListConfig) *Selection {
	sel := NewSelection(l.site.Collection())

	if cfg.ExcludeHidden {
		sel.ExcludeHidden()
	}
	if cfg.ExcludeCurrent {
		sel.ExcludePage(l.requestURL)
	}

	ctx := l.contextPage(cfg)
	switch strings.ToLower(cfg.Type) {
	case TypeChildren:
		if ctx == nil {
			return NewSelection(nil)
		}
		sel.FilterByParentURL(ctx.URL)
	case TypeSiblings:
		if ctx == nil {
			return NewSelection(nil)
		}
		sel.FilterSiblings(ctx)
	case TypeRelated:
		if ctx == nil {
			return NewSelection(nil)
		}
		sel.FilterRelated(ctx)
	}

	sel.FilterByTemplate(cfg.Template)
	sel.Search(cfg.Search)
	return sel
}

func (l *PageList) contextPage(cfg PageListConfig) *Page {
	if cfg.Context != "" {
		return l.site.Page(cfg.Context)
	}
	return l.current()
}

// sort parses "field [asc|desc]". Without a field pages keep path order.
func (l *PageList) sort(sel *Selection) {
	fields := strings.Fields(l.cfg.Sort)
	field, asc := "", true
	for _, f := range fields {
		switch strings.ToLower(f) {
		case "asc":
			asc = true
		case "desc":
			asc = false
		default:
			field = f
		}
	}
	if field == "" && asc {
		return
	}
	sel.SortBy(field, asc)
}
