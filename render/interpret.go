package render

import (
	"path"
	"strconv"
	"strings"

	"github.com/hayeah/tessera/content"
	"github.com/hayeah/tessera/internal/hujsonutil"
	"github.com/hayeah/tessera/syntax"
)

// CaptionExt names the sidecar file holding a file's caption.
const CaptionExt = ".caption"

func (s *Session) evalNodes(nodes []syntax.Node, dir string) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(s.eval(n, dir))
	}
	return b.String()
}

func (s *Session) eval(n syntax.Node, dir string) string {
	switch n := n.(type) {
	case *syntax.TextNode:
		return n.Text
	case *syntax.VarNode:
		return s.resolve(n.Expr)
	case *syntax.IncludeNode:
		return s.include(n, dir)
	case *syntax.CallNode:
		return s.call(n, dir)
	case *syntax.SnippetNode:
		s.snippets[n.Name] = n.Body
		s.log.Debug("registered snippet", "name", n.Name)
		return ""
	case *syntax.WithNode:
		return s.with(n, dir)
	case *syntax.ForNode:
		return s.forLoop(n, dir)
	case *syntax.ForeachNode:
		return s.foreach(n, dir)
	case *syntax.IfNode:
		if s.evalCondition(n.Cond) {
			return s.evalNodes(n.Body, dir)
		}
		return s.evalNodes(n.Else, dir)
	}
	return ""
}

// options expands variables in a raw option object and decodes it. Invalid
// options decode as empty.
func (s *Session) options(raw string) content.Options {
	if strings.TrimSpace(raw) == "" {
		return content.Options{}
	}
	opts, err := hujsonutil.ParseOptions(s.expandJSON(raw))
	if err != nil {
		s.log.Warn("invalid options", "options", raw, "err", err)
		return content.Options{}
	}
	return opts
}

// call dispatches to a snippet, then a toolbox method, then an extension.
func (s *Session) call(n *syntax.CallNode, dir string) string {
	opts := s.options(n.Options)

	if body, ok := s.snippets[n.Name]; ok {
		if s.depth >= s.r.Options.MaxIncludeDepth {
			s.log.Warn("snippet nested too deep", "name", n.Name, "max", s.r.Options.MaxIncludeDepth)
			return ""
		}
		s.depth++
		defer func() { s.depth-- }()
		s.log.Debug("calling snippet", "name", n.Name)
		return s.evalNodes(body, dir)
	}

	if s.r.Toolbox.Has(n.Name) {
		s.log.Debug("calling toolbox method", "name", n.Name, "options", opts)
		return s.r.Toolbox.Invoke(n.Name, s, opts)
	}

	ext, err := s.r.Extensions.New(n.Name, opts, s)
	if err != nil {
		s.log.Debug("call not resolved", "name", n.Name, "err", err)
		return ""
	}
	s.assets.Merge(ext.Assets())
	return ext.Output()
}

func (s *Session) with(n *syntax.WithNode, dir string) string {
	target := s.operand(n.Target)

	var page *content.Page
	if n.Target.IsWord("prev") || n.Target.IsWord("next") {
		prev, next := s.neighbours()
		page = next
		if n.Target.IsWord("prev") {
			page = prev
		}
	}
	if p := s.site.Page(target); p != nil {
		page = p
	}
	if page != nil {
		s.log.Debug("with page", "page", page.URL)
		restore := s.ctx.Push(page)
		defer restore()
		return s.evalNodes(n.Body, dir)
	}

	if files := s.files.Resolve(target, s.ctx.Get(), true); len(files) > 0 {
		s.log.Debug("with file", "file", files[0])
		return s.withFile(files[0], s.options(n.Options), n.Body, dir)
	}

	s.log.Debug("with: no page or file", "target", target)
	return s.evalNodes(n.Else, dir)
}

// neighbours returns the pages before and after the context page in the
// page list, hidden pages included.
func (s *Session) neighbours() (prev, next *content.Page) {
	page := s.ctx.Get()
	if page == nil {
		return nil, nil
	}
	cfg := s.pagelist.Config()
	defer s.pagelist.Restore(cfg)
	s.pagelist.Apply(content.Options{"excludeHidden": false})
	return content.NewSelection(s.pagelist.Pages()).PrevNext(page.URL)
}

func (s *Session) forLoop(n *syntax.ForNode, dir string) string {
	start, end := toInt(s.operand(n.Start)), toInt(s.operand(n.End))

	shelf := s.rt.Shelve()
	defer s.rt.Unshelve(shelf)

	var b strings.Builder
	for i := start; i <= end; i++ {
		s.rt.Set(VarIndex, strconv.Itoa(i))
		b.WriteString(s.evalNodes(n.Body, dir))
	}
	return b.String()
}

func (s *Session) foreach(n *syntax.ForeachNode, dir string) string {
	var b strings.Builder
	i := 0
	next := func() {
		i++
		s.rt.Set(VarIndex, strconv.Itoa(i))
	}

	shelf := s.rt.Shelve()
	switch {
	case n.Target.IsWord("pagelist"):
		pages := s.pagelist.Pages()
		restore := s.ctx.Push(s.ctx.Get())
		for _, p := range pages {
			cfg := s.pagelist.Config()
			s.ctx.Set(p)
			next()
			b.WriteString(s.evalNodes(n.Body, dir))
			s.pagelist.Restore(cfg)
		}
		restore()

	case n.Target.IsWord("filters"):
		for _, f := range s.pagelist.Tags() {
			s.rt.Set(VarFilter, f)
			next()
			b.WriteString(s.evalNodes(n.Body, dir))
		}

	case n.Target.IsWord("tags"):
		var tags []string
		if page := s.ctx.Get(); page != nil {
			tags = page.Tags
		}
		for _, t := range tags {
			s.rt.Set(VarTag, t)
			next()
			b.WriteString(s.evalNodes(n.Body, dir))
		}

	default:
		var files []string
		if n.Target.IsWord("filelist") {
			files = s.filelist.Files()
		} else {
			files = s.files.Resolve(s.operand(n.Target), s.ctx.Get(), false)
		}
		opts := s.options(n.Options)
		for _, f := range files {
			next()
			b.WriteString(s.withFile(f, opts, n.Body, dir))
		}
	}
	s.rt.Unshelve(shelf)

	if i == 0 {
		s.log.Debug("foreach: no items", "target", n.Target.Text)
		b.WriteString(s.evalNodes(n.Else, dir))
	}
	return b.String()
}

// withFile renders body with the file variables of file set. Images also
// get their size and, when options are given, a resized version.
func (s *Session) withFile(file string, opts content.Options, body []syntax.Node, dir string) string {
	shelf := s.rt.Shelve()
	defer s.rt.Unshelve(shelf)

	s.rt.Set(VarFile, file)
	s.rt.Set(VarBasename, path.Base(file))
	if caption, err := s.files.ReadFile(file + CaptionExt); err == nil {
		s.rt.Set(VarCaption, strings.TrimSpace(string(caption)))
	}

	if content.IsImage(file) {
		w, h, err := content.ImageSize(s.site.FS, file)
		if err != nil {
			s.log.Debug("image size", "file", file, "err", err)
		} else {
			s.rt.Set(VarWidth, strconv.Itoa(w))
			s.rt.Set(VarHeight, strconv.Itoa(h))
		}
		if len(opts) > 0 && s.r.Resizer != nil {
			img, err := s.r.Resizer.Resize(file, opts.Int("width", 0), opts.Int("height", 0), opts.Bool("crop", false))
			if err != nil {
				s.log.Debug("resize", "file", file, "err", err)
			} else {
				s.rt.Set(VarFileResized, img.File)
				s.rt.Set(VarWidthResized, strconv.Itoa(img.Width))
				s.rt.Set(VarHeightResized, strconv.Itoa(img.Height))
			}
		}
	}
	return s.evalNodes(body, dir)
}
