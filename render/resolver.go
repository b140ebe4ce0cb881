package render

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// TemplateExt is appended to template names given without an extension.
const TemplateExt = ".html"

//go:embed templates
var builtinFS embed.FS

// Builtin returns the built-in templates: default.html and
// page_not_found.html.
func Builtin() fs.FS {
	sub, err := fs.Sub(builtinFS, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Template is a loaded template file.
type Template struct {
	Path string // slash separated, relative to the layer root
	Body string
	FS   fs.FS
}

// Dir returns the directory includes of this template resolve against.
func (t *Template) Dir() string {
	return path.Dir(t.Path)
}

// Resolver looks up templates across a stack of filesystems. The first layer
// has the highest priority; the last usually holds the built-in defaults.
type Resolver struct {
	Layers []fs.FS
}

// NewResolver creates a resolver over the given layers.
func NewResolver(layers ...fs.FS) *Resolver {
	return &Resolver{Layers: layers}
}

// Join resolves an include path against dir. Paths with a leading slash are
// relative to the layer root.
func (r *Resolver) Join(dir, name string) string {
	if strings.HasPrefix(name, "/") {
		return strings.TrimPrefix(path.Clean(name), "/")
	}
	return strings.TrimPrefix(path.Join(dir, name), "/")
}

// Find returns the first layer holding name. A name without extension also
// matches name + TemplateExt.
func (r *Resolver) Find(name string) (fs.FS, string, error) {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" || name == "." {
		return nil, "", fmt.Errorf("empty template path")
	}
	candidates := []string{name}
	if path.Ext(name) == "" {
		candidates = append(candidates, name+TemplateExt)
	}
	for _, fsys := range r.Layers {
		for _, c := range candidates {
			if info, err := fs.Stat(fsys, c); err == nil && !info.IsDir() {
				return fsys, c, nil
			}
		}
	}
	return nil, "", fmt.Errorf("template %q: %w", name, fs.ErrNotExist)
}

// Load reads the template at name.
func (r *Resolver) Load(name string) (*Template, error) {
	fsys, file, err := r.Find(name)
	if err != nil {
		return nil, err
	}
	body, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("error reading template %s: %w", file, err)
	}
	return &Template{Path: file, Body: string(body), FS: fsys}, nil
}

// LoadFirst loads the first of names that exists.
func (r *Resolver) LoadFirst(names ...string) (*Template, error) {
	for _, name := range names {
		t, err := r.Load(name)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("none of the templates %q exist: %w", names, fs.ErrNotExist)
}
