package content

import (
	"path"
	"strings"
	"time"

	"github.com/hayeah/tessera/internal/htmlutil"
)

// Shared holds site wide values, visible when a page does not define a field.
type Shared struct {
	Data map[string]any
}

// NewShared returns an empty Shared when data is nil.
func NewShared(data map[string]any) *Shared {
	if data == nil {
		data = map[string]any{}
	}
	return &Shared{Data: data}
}

// Get returns the shared value of field and whether it exists.
func (s *Shared) Get(field string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.Data[field]
	if !ok {
		return "", false
	}
	return FormatValue(v), true
}

// Page is one node of the content tree. Pages are read only once loaded.
type Page struct {
	URL       string
	Path      string
	Level     int
	ParentURL string
	Template  string
	Index     string
	Hidden    bool
	Private   bool
	Tags      []string
	Data      map[string]any
	Shared    *Shared
	ModTime   time.Time
	DataFile  string
}

// NewPage builds a page from its data. System fields (:url, :path, :level,
// :parent, :template, :index) and the user fields hidden, private and tags
// are lifted into struct fields.
func NewPage(data map[string]any, shared *Shared) *Page {
	if data == nil {
		data = map[string]any{}
	}
	p := &Page{Data: data, Shared: shared}

	str := func(k string) string { return FormatValue(data[k]) }
	p.URL = str(FieldURL)
	p.Path = str(FieldPath)
	p.ParentURL = str(FieldParent)
	p.Template = str(FieldTemplate)
	p.Index = str(FieldIndex)
	p.Hidden = Truthy(data[FieldHidden])
	p.Private = Truthy(data[FieldPrivate])

	switch lvl := data[FieldLevel].(type) {
	case int:
		p.Level = lvl
	case int64:
		p.Level = int(lvl)
	case float64:
		p.Level = int(lvl)
	}

	p.Tags = extractTags(data[FieldTags])
	return p
}

func extractTags(v any) []string {
	var raw []string
	switch v := v.(type) {
	case nil:
		return nil
	case []any:
		for _, t := range v {
			raw = append(raw, FormatValue(t))
		}
	case []string:
		raw = v
	default:
		raw = strings.Split(FormatValue(v), Separator)
	}

	var tags []string
	for _, t := range raw {
		t = strings.TrimSpace(htmlutil.StripTags(t))
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Lookup returns a field from the page data, then from shared data.
func (p *Page) Lookup(field string) (string, bool) {
	if v, ok := p.Data[field]; ok {
		return FormatValue(v), true
	}
	return p.Shared.Get(field)
}

// Get resolves a field for a request. Missing fields fall back to shared
// data and then to the computed fields :current, :currentPath, :basename and
// :mtime, finally to "".
func (p *Page) Get(field, requestURL string) string {
	if v, ok := p.Lookup(field); ok {
		return v
	}
	switch field {
	case FieldCurrent:
		if p.IsCurrent(requestURL) {
			return "true"
		}
	case FieldCurrentPath:
		if p.IsInCurrentPath(requestURL) {
			return "true"
		}
	case FieldBasename:
		return path.Base(strings.TrimSuffix(p.Path, "/"))
	case FieldMTime:
		if !p.ModTime.IsZero() {
			return p.ModTime.Format(MTimeLayout)
		}
	}
	return ""
}

// Theme returns the page theme, falling back to the shared theme.
func (p *Page) Theme() string {
	v, _ := p.Lookup(FieldTheme)
	return v
}

// Title returns the title field or the basename of the page path.
func (p *Page) Title() string {
	if v, ok := p.Lookup(FieldTitle); ok && v != "" {
		return v
	}
	return p.Get(FieldBasename, "")
}

// IsCurrent reports whether the page is the requested one.
func (p *Page) IsCurrent(requestURL string) bool {
	return p.URL == requestURL
}

// IsInCurrentPath reports whether the page is the requested page or one of
// its ancestors.
func (p *Page) IsInCurrentPath(requestURL string) bool {
	return strings.HasPrefix(requestURL, strings.TrimSuffix(p.URL, "/")+"/") || p.URL == requestURL
}

// HasTag reports whether the page carries tag.
func (p *Page) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
