package render

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/hayeah/tessera/content"
	"github.com/hayeah/tessera/extension"
	"github.com/hayeah/tessera/internal/metrics"
	"github.com/hayeah/tessera/syntax"
)

// Session is the state of one render. It is not safe for concurrent use.
type Session struct {
	r    *Renderer
	site *content.Site
	req  Request
	log  *slog.Logger

	ctx      *Context
	rt       *Runtime
	pagelist *content.PageList
	filelist *content.FileList
	files    *content.Resolver

	snippets  map[string][]syntax.Node
	overrides map[string]string
	assets    extension.Assets
	includes  []string
	depth     int // snippet call depth
	warnings  []string
}

func newSession(r *Renderer, page *content.Page, req Request) *Session {
	s := &Session{
		r:         r,
		site:      r.Site,
		req:       req,
		log:       r.logger().With("url", req.URL),
		ctx:       NewContext(page),
		snippets:  map[string][]syntax.Node{},
		overrides: map[string]string{},
	}
	current := s.ctx.Get
	s.files = content.NewResolver(r.Site, r.Ignore)
	s.pagelist = content.NewPageList(r.Site, req.URL, r.Options.PageList, current)
	s.filelist = content.NewFileList(s.files, current)
	s.rt = NewRuntime(map[string]func() string{
		VarPagelistCount: func() string { return strconv.Itoa(s.pagelist.Count()) },
		VarFilelistCount: func() string { return strconv.Itoa(s.filelist.Count()) },
	})
	return s
}

// Site returns the site being rendered.
func (s *Session) Site() *content.Site { return s.site }

// Context returns the current context page.
func (s *Session) Context() *content.Page { return s.ctx.Get() }

// RequestURL returns the URL of the requested page.
func (s *Session) RequestURL() string { return s.req.URL }

func (s *Session) PageList() *content.PageList { return s.pagelist }
func (s *Session) FileList() *content.FileList { return s.filelist }
func (s *Session) Files() *content.Resolver { return s.files }
func (s *Session) Resizer() content.Resizer { return s.r.Resizer }

// Set assigns a runtime variable, or overrides a page value for the rest of
// the render.
func (s *Session) Set(key, value string) {
	if s.rt.IsRuntimeVar(key) {
		s.rt.Set(key, value)
		return
	}
	s.overrides[key] = value
}

// Interpret renders text. Includes resolve against dir.
func (s *Session) Interpret(text, dir string) string {
	tree, errs := s.r.Cache.Parse(text)
	for _, e := range errs {
		s.log.Warn("template syntax error", "template", s.currentTemplate(), "err", e)
		s.warnings = append(s.warnings, s.currentTemplate()+":"+e.Error())
	}
	return s.evalNodes(tree.Nodes, dir)
}

func (s *Session) currentTemplate() string {
	if len(s.includes) == 0 {
		return ""
	}
	return s.includes[len(s.includes)-1]
}

// renderTemplate interprets t and keeps it on the include stack meanwhile.
func (s *Session) renderTemplate(t *Template) string {
	s.includes = append(s.includes, t.Path)
	defer func() { s.includes = s.includes[:len(s.includes)-1] }()

	s.r.record(metrics.TypeTemplate, t.Path, t.Body)
	return s.Interpret(t.Body, t.Dir())
}

func (s *Session) include(n *syntax.IncludeNode, dir string) string {
	name := s.r.Templates.Join(dir, n.Path)
	if slices.Contains(s.includes, name) {
		s.log.Warn("include cycle", "template", name, "stack", strings.Join(s.includes, " > "))
		return ""
	}
	if len(s.includes) >= s.r.Options.MaxIncludeDepth {
		s.log.Warn("include nested too deep", "template", name, "max", s.r.Options.MaxIncludeDepth)
		return ""
	}
	t, err := s.r.Templates.Load(name)
	if err != nil {
		s.log.Debug("include not found", "template", name, "err", err)
		return ""
	}
	s.log.Debug("including", "template", t.Path)
	return s.renderTemplate(t)
}
