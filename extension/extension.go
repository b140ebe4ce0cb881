// Package extension defines the contract for template extensions: named
// components that render output and may require stylesheets or scripts.
package extension

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/hayeah/tessera/content"
)

// ErrUnknown is returned by Registry.New for names without a factory.
var ErrUnknown = errors.New("unknown extension")

// Assets are the stylesheets and scripts an extension needs in the page head.
type Assets struct {
	CSS []string `json:"css,omitempty"`
	JS  []string `json:"js,omitempty"`
}

// Merge appends the assets of b that a does not contain yet.
func (a *Assets) Merge(b Assets) {
	a.CSS = appendUnique(a.CSS, b.CSS...)
	a.JS = appendUnique(a.JS, b.JS...)
}

func appendUnique(list []string, items ...string) []string {
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		dup := false
		for _, have := range list {
			if have == it {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, it)
		}
	}
	return list
}

// Empty reports whether there are no assets.
func (a Assets) Empty() bool {
	return len(a.CSS) == 0 && len(a.JS) == 0
}

// Tags renders the assets as link and script tags.
func (a Assets) Tags() string {
	var b strings.Builder
	for _, css := range a.CSS {
		fmt.Fprintf(&b, `<link type="text/css" rel="stylesheet" href="%s" />`+"\n", html.EscapeString(css))
	}
	for _, js := range a.JS {
		fmt.Fprintf(&b, `<script type="text/javascript" src="%s"></script>`+"\n", html.EscapeString(js))
	}
	return b.String()
}

// Inject inserts the asset tags before </head>. Output without a head
// element is returned unchanged.
func (a Assets) Inject(output string) string {
	if a.Empty() {
		return output
	}
	i := strings.Index(strings.ToLower(output), "</head>")
	if i < 0 {
		return output
	}
	return output[:i] + a.Tags() + output[i:]
}

// Model is the render state an extension may read.
type Model interface {
	Site() *content.Site
	Context() *content.Page
	RequestURL() string
}

// Extension is an instantiated extension call.
type Extension interface {
	Output() string
	Assets() Assets
}

// Factory creates an extension for one call.
type Factory func(opts content.Options, m Model) (Extension, error)

// Registry maps extension names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry with the built-in extensions.
func NewRegistry() *Registry {
	r := &Registry{factories: map[string]Factory{}}
	r.Register("assets", NewAssetsExtension)
	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Names returns the registered extension names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New instantiates the named extension.
func (r *Registry) New(name string, opts content.Options, m Model) (Extension, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	if opts == nil {
		opts = content.Options{}
	}
	ext, err := f(opts, m)
	if err != nil {
		return nil, fmt.Errorf("extension %s: %w", name, err)
	}
	return ext, nil
}

// Static is an extension with fixed output and assets.
type Static struct {
	Text  string
	Files Assets
}

func (s *Static) Output() string { return s.Text }
func (s *Static) Assets() Assets { return s.Files }

// NewAssetsExtension registers the css and js options as page assets and
// outputs nothing. Both accept a single path or a comma separated list.
func NewAssetsExtension(opts content.Options, _ Model) (Extension, error) {
	return &Static{Files: Assets{
		CSS: appendUnique(nil, strings.Split(opts.String("css", ""), content.Separator)...),
		JS:  appendUnique(nil, strings.Split(opts.String("js", ""), content.Separator)...),
	}}, nil
}
