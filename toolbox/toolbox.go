// Package toolbox holds the built-in methods a template can call, such as
// <@ pagelist { type: "children" } @> or <@ nav @>.
package toolbox

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/hayeah/tessera/content"
)

// Model is the render state a method works on.
type Model interface {
	Site() *content.Site
	// Context returns the current context page. It may be nil.
	Context() *content.Page
	RequestURL() string
	PageList() *content.PageList
	FileList() *content.FileList
	Files() *content.Resolver
	Resizer() content.Resizer
	// Set overrides a value for the rest of the render.
	Set(key, value string)
}

// Method is a toolbox method. It returns the text to output.
type Method func(m Model, opts content.Options) string

// Toolbox is a registry of methods.
type Toolbox struct {
	mu      sync.RWMutex
	methods map[string]Method

	// Now returns the current time for the date method.
	Now func() time.Time
}

// New returns a toolbox with the built-in methods.
func New() *Toolbox {
	tb := &Toolbox{methods: map[string]Method{}, Now: time.Now}
	tb.Register("pagelist", PageList)
	tb.Register("filelist", FileList)
	tb.Register("set", Set)
	tb.Register("breadcrumbs", Breadcrumbs)
	tb.Register("nav", Nav)
	tb.Register("img", Img)
	tb.Register("date", tb.date)
	return tb
}

// Register adds or replaces a method.
func (tb *Toolbox) Register(name string, m Method) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.methods[name] = m
}

// Has reports whether name is a toolbox method.
func (tb *Toolbox) Has(name string) bool {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	_, ok := tb.methods[name]
	return ok
}

// Names returns the registered method names, sorted.
func (tb *Toolbox) Names() []string {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	names := make([]string, 0, len(tb.methods))
	for n := range tb.methods {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named method. Unknown names return "".
func (tb *Toolbox) Invoke(name string, m Model, opts content.Options) string {
	tb.mu.RLock()
	fn, ok := tb.methods[name]
	tb.mu.RUnlock()
	if !ok {
		return ""
	}
	if opts == nil {
		opts = content.Options{}
	}
	return fn(m, opts)
}

// PageList configures the page list of the render.
func PageList(m Model, opts content.Options) string {
	m.PageList().Apply(opts)
	return ""
}

// FileList configures the file list of the render.
func FileList(m Model, opts content.Options) string {
	m.FileList().Apply(opts)
	return ""
}

// Set overrides values for the rest of the render.
func Set(m Model, opts content.Options) string {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.Set(k, content.FormatValue(opts[k]))
	}
	return ""
}

// Breadcrumbs lists the pages from the home page to the context page.
func Breadcrumbs(m Model, opts content.Options) string {
	page := m.Context()
	if page == nil {
		return ""
	}
	site := m.Site()

	var trail []*content.Page
	for p := page; p != nil; {
		trail = append([]*content.Page{p}, trail...)
		if p.URL == "/" || p.ParentURL == "" {
			break
		}
		p = site.Page(p.ParentURL)
	}

	sep := opts.String("separator", "")
	var b strings.Builder
	fmt.Fprintf(&b, `<ul class="%s">`, html.EscapeString(opts.String("class", "breadcrumbs")))
	for i, p := range trail {
		if i > 0 && sep != "" {
			fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(sep))
		}
		b.WriteString(link(p, m.RequestURL()))
	}
	b.WriteString("</ul>")
	return b.String()
}

// Nav lists the visible children of a parent page, the home page by default.
func Nav(m Model, opts content.Options) string {
	site := m.Site()
	parent := opts.String("parent", "/")

	sel := content.NewSelection(site.Collection())
	sel.ExcludeHidden()
	sel.FilterByParentURL(parent)
	pages := sel.Pages()
	if opts.Bool("home", false) {
		if home := site.Page("/"); home != nil {
			pages = append([]*content.Page{home}, pages...)
		}
	}
	if len(pages) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<ul class="%s">`, html.EscapeString(opts.String("class", "nav")))
	for _, p := range pages {
		b.WriteString(link(p, m.RequestURL()))
	}
	b.WriteString("</ul>")
	return b.String()
}

func link(p *content.Page, requestURL string) string {
	class := ""
	switch {
	case p.IsCurrent(requestURL):
		class = ` class="current"`
	case p.URL != "/" && p.IsInCurrentPath(requestURL):
		class = ` class="current-path"`
	}
	return fmt.Sprintf(`<li%s><a href="%s">%s</a></li>`, class, html.EscapeString(p.URL), html.EscapeString(p.Title()))
}

// Img outputs an image tag for the first file matching the file option.
func Img(m Model, opts content.Options) string {
	decl := opts.String("file", "")
	if decl == "" {
		return ""
	}
	files := m.Files().Resolve(decl, m.Context(), true)
	if len(files) == 0 {
		return ""
	}
	file := files[0]

	attrs := []string{fmt.Sprintf(`src="%s"`, html.EscapeString(file))}
	width, height := opts.Int("width", 0), opts.Int("height", 0)
	if r := m.Resizer(); r != nil && content.IsImage(file) {
		if img, err := r.Resize(file, width, height, opts.Bool("crop", false)); err == nil {
			attrs[0] = fmt.Sprintf(`src="%s"`, html.EscapeString(img.File))
			attrs = append(attrs, fmt.Sprintf(`width="%d"`, img.Width), fmt.Sprintf(`height="%d"`, img.Height))
		}
	}
	attrs = append(attrs, fmt.Sprintf(`alt="%s"`, html.EscapeString(opts.String("alt", ""))))
	if class := opts.String("class", ""); class != "" {
		attrs = append(attrs, fmt.Sprintf(`class="%s"`, html.EscapeString(class)))
	}
	return "<img " + strings.Join(attrs, " ") + ">"
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// date formats the date option, or the current time, with a Go layout.
func (tb *Toolbox) date(m Model, opts content.Options) string {
	t := tb.Now()
	if v := opts.String("date", ""); v != "" {
		parsed := false
		for _, l := range dateLayouts {
			if d, err := time.Parse(l, v); err == nil {
				t, parsed = d, true
				break
			}
		}
		if !parsed {
			return v
		}
	}
	return t.Format(opts.String("format", "2006"))
}
