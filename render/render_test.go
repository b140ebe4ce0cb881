package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayeah/tessera/content"
	"github.com/hayeah/tessera/toolbox"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// testSite is:
//
//	/               home
//	/blog           blog
//	/blog/first     post, tags go, web, with b.png
//	/blog/second    post, tags web
//	/blog/draft     post, hidden
//	/about          page, theme "other"
func testSite(t *testing.T, extra map[string]string) *content.Site {
	t.Helper()
	fsys := fstest.MapFS{
		"shared.toml":                          {Data: []byte("sitename = \"Demo\"\ntheme = \"standard\"\n")},
		"pages/home.txt":                       {Data: []byte("+++\ntitle = \"Home\"\n+++\nWelcome")},
		"pages/01.blog/blog.txt":               {Data: []byte("+++\ntitle = \"Blog\"\n+++\n")},
		"pages/01.blog/01.first/post.md":       {Data: []byte("---\ntitle: First\ntags: go, web\n---\nHello *gophers*")},
		"pages/01.blog/01.first/b.png":         {Data: pngBytes(t, 40, 20)},
		"pages/01.blog/01.first/b.png.caption": {Data: []byte("A caption\n")},
		"pages/01.blog/02.second/post.md":      {Data: []byte("---\ntitle: Second\ntags: web\n---\n")},
		"pages/01.blog/03.draft/post.md":       {Data: []byte("---\ntitle: Draft\nhidden: true\ntags: go\n---\n")},
		"pages/02.about/page.txt":              {Data: []byte("+++\ntitle = \"About\"\ntheme = \"other\"\n+++\n")},
		"themes/standard/parts/a.html":         {Data: []byte("A[<@ b.html @>]")},
		"themes/standard/parts/b.html":         {Data: []byte("B@{ :i }")},
		"themes/standard/parts/loop.html":      {Data: []byte("L<@ loop.html @>")},
		"themes/standard/parts/nested/up.html": {Data: []byte("<@ ../b.html @>")},
	}
	for name, body := range extra {
		fsys[name] = &fstest.MapFile{Data: []byte(body)}
	}
	site, err := (&content.DirStore{FS: fsys}).Load(context.Background())
	require.NoError(t, err)
	return site
}

func newTestRenderer(t *testing.T, extra map[string]string) *Renderer {
	t.Helper()
	r := New(testSite(t, extra), Options{PageList: content.DefaultPageListConfig()})
	r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return r
}

func TestInterpret(t *testing.T) {
	r := newTestRenderer(t, nil)

	tests := []struct {
		name string
		url  string
		tmpl string
		want string
	}{
		{"plain text unchanged", "/", "<p>plain {text} @ 50% </p>", "<p>plain {text} @ 50% </p>"},
		{"variable", "/blog/first", "<h1>@{ title }</h1>", "<h1>First</h1>"},
		{"shared fallback", "/blog/first", "@{ sitename }", "Demo"},
		{"missing variable", "/", "[@{ nope }]", "[]"},
		{"computed field", "/blog/first", "@{ :basename }|@{ :current }", "01.first|true"},
		{"pipes", "/blog/first", "@{ text | markdown }", "<p>Hello <em>gophers</em></p>"},
		{"pipe default", "/", "@{ nope | def(\"none\") }", "none"},
		{"pipe argument variable", "/", "@{ nope | def(@{ title }) }", "Home"},
		{"pipe argument string expanded", "/", "@{ nope | def(\"@{ sitename }: @{ title | upper }\") }", "Demo: HOME"},
		{"nested blocks pair", "/", "<@ if @{ title } @>A<@ if @{ nope } @>B<@ else @>C<@ end @>D<@ else @>E<@ end @>", "ACD"},
		{"for counts inclusive", "/", "<@ for 1 to 3 @>@{ :i },<@ end @>", "1,2,3,"},
		{"for with descending bounds is empty", "/", "<@ for 5 to 3 @>x<@ end @>", ""},
		{"for bounds from variables", "/", "<@ set { n: 2 } @><@ for 1 to @{ n } @>@{ :i }<@ end @>", "12"},
		{"for malformed bound is zero", "/", "<@ for \"a\" to 1 @>@{ :i }<@ end @>", "01"},
		{"foreach without files runs else once", "/blog/first", "<@ foreach \"*.gif\" @>x<@ else @>none<@ end @>", "none"},
		{"foreach files", "/blog/first", "<@ foreach \"*.png\" @>@{ :i }:@{ :basename }<@ end @>", "1:b.png"},
		{"foreach tags", "/blog/first", "<@ foreach in tags @>@{ :i }:@{ :tag } <@ end @>", "1:go 2:web "},
		{"foreach tags empty", "/", "<@ foreach in tags @>x<@ else @>no tags<@ end @>", "no tags"},
		{"foreach filters", "/", "<@ pagelist { type: \"children\", context: \"/blog\" } @><@ foreach in filters @>@{ :filter },<@ end @>", "go,web,"},
		{"foreach pagelist", "/blog/first", "<@ pagelist { type: \"children\", context: \"/blog\" } @><@ foreach in pagelist @>@{ :i }.@{ title } <@ end @>@{ title }", "1.First 2.Second First"},
		{"pagelist count", "/", "<@ pagelist { type: \"children\", context: \"/blog\" } @>@{ :pagelistCount }", "2"},
		{"filelist", "/blog/first", "<@ foreach in filelist @>@{ :file }<@ end @>|@{ :filelistCount }", "/pages/01.blog/01.first/b.png|1"},
		{"with page restores context", "/blog/first", "<@ with \"/about\" @>@{ title }<@ end @>|@{ title }", "About|First"},
		{"nested with restores each context", "/blog/first",
			"<@ with \"/about\" @><@ with \"/blog\" @><@ with next @>@{ title }<@ end @>@{ title }<@ end @>@{ title }<@ end @>|@{ title }",
			"FirstBlogAbout|First"},
		{"with prev inside with", "/blog/first", "<@ with \"/blog/second\" @><@ with prev @>@{ title }<@ end @>@{ title }<@ end @>|@{ title }", "FirstSecond|First"},
		{"with prev and next", "/blog/first", "<@ with prev @>@{ title }<@ end @>|<@ with next @>@{ title }<@ end @>", "Blog|Second"},
		{"with next includes hidden", "/blog/second", "<@ with next @>@{ title }<@ end @>", "Draft"},
		{"with missing runs else", "/", "<@ with \"/nope\" @>x<@ else @>missing<@ end @>", "missing"},
		{"with file", "/blog/first", "<@ with \"*.png\" @>@{ :file } @{ :basename } @{ :width }x@{ :height } @{ :caption }<@ end @>[@{ :file }]",
			"/pages/01.blog/01.first/b.png b.png 40x20 A caption[]"},
		{"with file resized", "/blog/first", "<@ with \"*.png\" { width: 20 } @>@{ :fileResized } @{ :widthResized }x@{ :heightResized }<@ end @>",
			"/pages/01.blog/01.first/b.png 20x10"},
		{"if left to right", "/", "<@ if @{ title } or @{ title } and @{ nope } @>T<@ else @>F<@ end @>", "F"},
		{"if not", "/", "<@ if not @{ nope } @>T<@ end @><@ if !@{ title } @>X<@ end @>", "T"},
		{"numeric comparison", "/", "<@ if \"10\" > \"9\" @>num<@ end @>", "num"},
		{"string comparison", "/", "<@ if \"10\" > \"1a\" @>x<@ else @>str<@ end @>", "str"},
		{"comparison with variable", "/blog/first", "<@ if @{ title } = \"First\" @>yes<@ end @><@ if @{ title } != 'First' @>no<@ end @>", "yes"},
		{"query parameters are escaped", "/", "@{ ?q }", "&lt;b&gt;"},
		{"snippet", "/", "<@ snippet greet @>Hi @{ title }<@ end @><@ greet @>, <@ greet @>", "Hi Home, Hi Home"},
		{"later snippet wins", "/", "<@ snippet s @>1<@ end @><@ snippet s @>2<@ end @><@ s @>", "2"},
		{"snippet shadows toolbox", "/", "<@ snippet nav @>mine<@ end @><@ nav @>", "mine"},
		{"unknown call is empty", "/", "[<@ nothing @>]", "[]"},
		{"set overrides page value", "/", "<@ set { title: \"Changed\" } @>@{ title }", "Changed"},
		{"include", "/", "<@ themes/standard/parts/a.html @>", "A[B]"},
		{"include sees runtime", "/", "<@ for 1 to 2 @><@ themes/standard/parts/b.html @><@ end @>", "B1B2"},
		{"include parent dir", "/", "<@ themes/standard/parts/nested/up.html @>", "B"},
		{"include cycle is cut", "/", "<@ themes/standard/parts/loop.html @>", "L"},
		{"missing include", "/", "[<@ themes/none.html @>]", "[]"},
		{"comment", "/", "a<# hidden @{ title } #>b", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{URL: tt.url, Query: url.Values{"q": {"<b>"}}}
			assert.Equal(t, tt.want, r.RenderString(req, tt.tmpl))
		})
	}
}

func TestRuntimeRestoredAfterLoops(t *testing.T) {
	assert := assert.New(t)
	r := newTestRenderer(t, nil)
	req := Request{URL: "/blog/first"}

	// the inner loop shadows :i; the outer value is back after it
	out := r.RenderString(req, "<@ for 1 to 2 @><@ foreach \"*.png\" @>@{ :i }<@ end @>@{ :i }<@ end @>[@{ :i }]")
	assert.Equal("1112[]", out)

	out = r.RenderString(req, "<@ foreach in tags @><@ with \"*.png\" @>@{ :tag }@{ :file | def(\"-\") }<@ end @>@{ :file | def(\"-\") },<@ end @>")
	assert.Equal("go/pages/01.blog/01.first/b.png-,web/pages/01.blog/01.first/b.png-,", out)
}

func TestPagelistConfigRestoredPerIteration(t *testing.T) {
	r := newTestRenderer(t, nil)
	tmpl := `<@ pagelist { type: "children", context: "/blog" } @>` +
		`<@ foreach in pagelist @><@ pagelist { context: "/blog/first" } @>@{ title }:@{ :pagelistCount } <@ end @>` +
		`@{ :pagelistCount }`
	assert.Equal(t, "First:0 Second:0 2", r.RenderString(Request{URL: "/"}, tmpl))
}

func TestCallOptionsJSONMode(t *testing.T) {
	assert := assert.New(t)
	r := newTestRenderer(t, nil)
	r.Toolbox.Register("echo", func(m toolbox.Model, opts content.Options) string {
		return opts.String("a", "?") + "|" + opts.String("b", "?") + "|" + opts.String("n", "?")
	})

	out := r.RenderString(Request{URL: "/"},
		`<@ set { quote: "Say \"hi\"" } @><@ echo { a: @{ quote }, b: "x @{ quote }", n: 3 } @>`)
	assert.Equal(`Say "hi"|x Say "hi"|3`, out)

	// invalid options decode as empty
	assert.Equal("?|?|?", r.RenderString(Request{URL: "/"}, `<@ echo { a: [ } @>`))
}

func TestSnippetRecursionIsBounded(t *testing.T) {
	r := newTestRenderer(t, nil)
	out := r.RenderString(Request{URL: "/"}, "<@ snippet r @>x<@ r @><@ end @><@ r @>")
	assert.Equal(t, strings.Repeat("x", DefaultMaxIncludeDepth), out)
}

func TestRender(t *testing.T) {
	r := newTestRenderer(t, map[string]string{
		"themes/standard/post.html": "<html><head><title>@{ title }</title></head><body>" +
			"<@ assets { css: \"/x.css\", js: \"/x.js\" } @><@ assets { css: \"/x.css\" } @>@{ text | markdown }</body></html>",
		"themes/standard/home.html": "<html><head></head><body><@ if @{ title } @>open",
	})
	ctx := context.Background()

	t.Run("theme template with assets and meta", func(t *testing.T) {
		assert := assert.New(t)
		res, err := r.Render(ctx, Request{URL: "/blog/first"})
		require.NoError(t, err)

		assert.False(res.NotFound)
		assert.Equal("/blog/first", res.Page.URL)
		assert.Equal("themes/standard/post.html", res.Template)
		assert.Equal("<html><head>\n\t"+`<meta name="Generator" content="tessera">`+"<title>First</title>"+
			`<link type="text/css" rel="stylesheet" href="/x.css" />`+"\n"+
			`<script type="text/javascript" src="/x.js"></script>`+"\n"+
			"</head><body><p>Hello <em>gophers</em></p></body></html>", res.Output)
		assert.Equal([]string{"/x.css"}, res.Assets.CSS)
		assert.Empty(res.Warnings)
	})

	t.Run("syntax errors become warnings", func(t *testing.T) {
		assert := assert.New(t)
		res, err := r.Render(ctx, Request{URL: "/"})
		require.NoError(t, err)
		assert.Contains(res.Output, "<body>open")
		require.Len(t, res.Warnings, 1)
		assert.Contains(res.Warnings[0], "themes/standard/home.html")
		assert.Contains(res.Warnings[0], "unclosed if")
	})

	t.Run("missing theme template falls back to default", func(t *testing.T) {
		assert := assert.New(t)
		res, err := r.Render(ctx, Request{URL: "/about"})
		require.NoError(t, err)
		assert.Equal("default.html", res.Template)
		assert.Contains(res.Output, "<h1>About</h1>")
		assert.Contains(res.Output, `<meta name="Generator" content="tessera">`)
	})

	t.Run("not found", func(t *testing.T) {
		assert := assert.New(t)
		res, err := r.Render(ctx, Request{URL: "/nope"})
		require.NoError(t, err)
		assert.True(res.NotFound)
		assert.Equal("page_not_found.html", res.Template)
		assert.Contains(res.Output, "There is no page at <code>/nope</code>")
	})

	t.Run("not found page", func(t *testing.T) {
		assert := assert.New(t)
		r2 := newTestRenderer(t, nil)
		r2.Options.NotFoundURL = "/about"
		res, err := r2.Render(ctx, Request{URL: "/nope"})
		require.NoError(t, err)
		assert.True(res.NotFound)
		assert.Equal("/about", res.Page.URL)
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := r.Render(canceled, Request{URL: "/"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestResolver(t *testing.T) {
	assert := assert.New(t)
	site := fstest.MapFS{
		"themes/a/page.html": {Data: []byte("site page")},
		"default.html":       {Data: []byte("site default")},
	}
	r := NewResolver(site, Builtin())

	tmpl, err := r.Load("themes/a/page")
	require.NoError(t, err)
	assert.Equal("themes/a/page.html", tmpl.Path)
	assert.Equal("themes/a", tmpl.Dir())

	tmpl, err = r.Load("default.html")
	require.NoError(t, err)
	assert.Equal("site default", tmpl.Body)

	tmpl, err = r.LoadFirst("themes/b/page.html", "page_not_found.html")
	require.NoError(t, err)
	assert.Contains(tmpl.Body, "Page not found")

	_, err = r.Load("missing.html")
	assert.Error(err)

	assert.Equal("themes/a/b.html", r.Join("themes/a", "b.html"))
	assert.Equal("b.html", r.Join("themes/a", "/b.html"))
	assert.Equal("themes/b.html", r.Join("themes/a", "../b.html"))
}

func TestRuntime(t *testing.T) {
	assert := assert.New(t)
	n := 0
	rt := NewRuntime(map[string]func() string{":count": func() string { n++; return "c" }})

	assert.True(rt.IsRuntimeVar(VarIndex))
	assert.True(rt.IsRuntimeVar(":count"))
	assert.False(rt.IsRuntimeVar("title"))

	rt.Set(VarIndex, "1")
	shelf := rt.Shelve()
	rt.Set(VarIndex, "2")
	rt.Set(VarTag, "go")
	assert.Equal("2", rt.Get(VarIndex))
	rt.Unshelve(shelf)
	assert.Equal("1", rt.Get(VarIndex))
	_, ok := rt.Lookup(VarTag)
	assert.False(ok)

	rt.Set(":count", "x")
	assert.Equal("c", rt.Get(":count"))
	assert.Equal(1, n)
	assert.Equal([]string{VarIndex}, rt.Keys())
}

func TestContextPush(t *testing.T) {
	assert := assert.New(t)
	a, b := &content.Page{URL: "/a"}, &content.Page{URL: "/b"}
	c := NewContext(a)

	func() {
		restore := c.Push(b)
		defer restore()
		assert.Equal(b, c.Get())
	}()
	assert.Equal(a, c.Get())
}
