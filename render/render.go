// Package render interprets templates against a content site. A render
// walks the parsed template with a session holding the context page, the
// runtime variables and the snippets defined so far.
package render

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"

	"github.com/hayeah/tessera/content"
	"github.com/hayeah/tessera/extension"
	"github.com/hayeah/tessera/ignore"
	"github.com/hayeah/tessera/internal/metrics"
	"github.com/hayeah/tessera/pipe"
	"github.com/hayeah/tessera/syntax"
	"github.com/hayeah/tessera/toolbox"
)

// Defaults for Options.
const (
	DefaultThemesDir       = "themes"
	DefaultTemplate        = "default.html"
	NotFoundTemplate       = "page_not_found"
	DefaultMaxIncludeDepth = 32
	DefaultGenerator       = "tessera"
)

// Options configure a Renderer.
type Options struct {
	Delimiters      syntax.Delimiters
	ThemesDir       string
	Theme           string // used when neither page nor shared data set one
	DefaultTemplate string
	NotFoundURL     string // page rendered for unknown URLs, if set
	MaxIncludeDepth int
	PageList        content.PageListConfig
	Generator       string // content of the Generator meta tag; "-" disables it
}

func (o Options) withDefaults() Options {
	o.Delimiters = o.Delimiters.OrDefault()
	if o.ThemesDir == "" {
		o.ThemesDir = DefaultThemesDir
	}
	if o.DefaultTemplate == "" {
		o.DefaultTemplate = DefaultTemplate
	}
	if o.MaxIncludeDepth <= 0 {
		o.MaxIncludeDepth = DefaultMaxIncludeDepth
	}
	if o.Generator == "" {
		o.Generator = DefaultGenerator
	}
	return o
}

// DefaultOptions returns the options used by New when none are given.
func DefaultOptions() Options {
	return Options{PageList: content.DefaultPageListConfig()}.withDefaults()
}

// Request identifies the page to render.
type Request struct {
	URL   string
	Query url.Values
}

// Result is a rendered page.
type Result struct {
	Page     *content.Page
	Template string
	Output   string
	Assets   extension.Assets
	NotFound bool
	// Warnings are template syntax errors met while rendering.
	Warnings []string
}

// Renderer renders pages of a site. It is safe for concurrent use; each
// Render call works on its own session.
type Renderer struct {
	Site       *content.Site
	Options    Options
	Templates  *Resolver
	Cache      *syntax.Cache
	Pipes      *pipe.Registry
	Toolbox    *toolbox.Toolbox
	Extensions *extension.Registry
	Ignore     *ignore.Ignore
	Resizer    content.Resizer
	Logger     *slog.Logger
	Metrics    *metrics.OutputMetrics
}

// New creates a renderer with the built-in pipes, toolbox and extensions.
// Templates resolve from the site filesystem first, then from the
// built-in templates.
func New(site *content.Site, opts Options) *Renderer {
	opts = opts.withDefaults()
	layers := []fs.FS{Builtin()}
	if site.FS != nil {
		layers = append([]fs.FS{site.FS}, layers...)
	}
	return &Renderer{
		Site:       site,
		Options:    opts,
		Templates:  NewResolver(layers...),
		Cache:      syntax.NewCache(opts.Delimiters, syntax.DefaultCacheSize),
		Pipes:      pipe.NewRegistry(),
		Toolbox:    toolbox.New(),
		Extensions: extension.NewRegistry(),
		Resizer:    &content.DimensionResizer{FS: site.FS},
		Logger:     slog.Default(),
	}
}

func (r *Renderer) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Renderer) record(typ, key, body string) {
	if r.Metrics != nil {
		r.Metrics.Add(typ, key, []byte(body))
	}
}

// Render renders the page at req.URL. Unknown URLs render the NotFoundURL
// page when configured, else the built-in not found template.
func (r *Renderer) Render(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.URL == "" {
		req.URL = "/"
	}

	page, notFound := r.lookup(req.URL)
	tmpl, err := r.pageTemplate(page)
	if err != nil {
		return nil, fmt.Errorf("failed to load template for %s: %w", req.URL, err)
	}

	s := newSession(r, page, req)
	out := s.renderTemplate(tmpl)
	out = s.assets.Inject(out)
	out = r.addMetaTags(out)
	r.record(metrics.TypeFinal, req.URL, out)

	r.logger().Debug("rendered page", "url", req.URL, "template", tmpl.Path, "bytes", len(out), "notFound", notFound)
	return &Result{
		Page:     page,
		Template: tmpl.Path,
		Output:   out,
		Assets:   s.assets,
		NotFound: notFound,
		Warnings: s.warnings,
	}, nil
}

// RenderString interprets text in the context of the page at req.URL,
// without page templates, asset injection or meta tags.
func (r *Renderer) RenderString(req Request, text string) string {
	if req.URL == "" {
		req.URL = "/"
	}
	page, _ := r.lookup(req.URL)
	out := newSession(r, page, req).Interpret(text, ".")
	r.record(metrics.TypeFinal, req.URL, out)
	return out
}

func (r *Renderer) lookup(url string) (*content.Page, bool) {
	if p := r.Site.Page(url); p != nil {
		return p, false
	}
	if r.Options.NotFoundURL != "" {
		if p := r.Site.Page(r.Options.NotFoundURL); p != nil {
			return p, true
		}
	}
	p := content.NewPage(map[string]any{
		content.FieldURL:      url,
		content.FieldTemplate: NotFoundTemplate,
		content.FieldTitle:    "Page not found",
	}, r.Site.Shared)
	return p, true
}

// pageTemplate finds <themes>/<theme>/<template>.html, then the template in
// the built-in layer, then the default template.
func (r *Renderer) pageTemplate(page *content.Page) (*Template, error) {
	theme := page.Theme()
	if theme == "" {
		theme = r.Options.Theme
	}
	name := page.Template + TemplateExt
	var names []string
	if page.Template != "" {
		names = append(names, path.Join(r.Options.ThemesDir, theme, name), name)
	}
	names = append(names, r.Options.DefaultTemplate)
	return r.Templates.LoadFirst(names...)
}

func (r *Renderer) addMetaTags(out string) string {
	if r.Options.Generator == "-" {
		return out
	}
	meta := "\n\t" + `<meta name="Generator" content="` + html.EscapeString(r.Options.Generator) + `">`
	return strings.Replace(out, "<head>", "<head>"+meta, 1)
}
