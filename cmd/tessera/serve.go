package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	ginrender "github.com/gin-gonic/gin/render"

	"github.com/hayeah/tessera"
	"github.com/hayeah/tessera/content"
	"github.com/hayeah/tessera/render"
)

// ServeCmd serves rendered pages and site files over HTTP.
type ServeCmd struct {
	SiteFlags
	Addr  string `arg:"-a,--addr" default:":8080" help:"listen address"`
	Watch bool   `arg:"-w,--watch" help:"reload the site when its files change"`
}

// Run serves until the process shuts down. The server is closed by an exit
// function of app.Shutdown, so open requests finish before goo exits.
func (c *ServeCmd) Run(ctx context.Context) error {
	cfg, err := c.Config()
	if err != nil {
		return err
	}
	app, cleanup, err := BuildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	s := newServer(app)
	if c.Watch {
		if err := watchSite(ctx, cfg.Root, app.Logger, func() { s.reload(ctx) }); err != nil {
			return err
		}
	}

	srv := &http.Server{Addr: c.Addr, Handler: s.engine()}
	closed := make(chan struct{})
	app.Shutdown.OnExit(func() error {
		defer close(closed)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		app.Logger.Info("closing server", "addr", c.Addr)
		return srv.Shutdown(shutdownCtx)
	})

	app.Logger.Info("serving", "addr", c.Addr, "pages", app.Site.Len(), "watch", c.Watch)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-closed
	return nil
}

// server renders pages with the current renderer, which reload swaps.
type server struct {
	app      *tessera.App
	renderer atomic.Pointer[render.Renderer]
}

func newServer(app *tessera.App) *server {
	s := &server{app: app}
	s.renderer.Store(app.Renderer)
	return s
}

// NewServer returns the HTTP handler of app.
func NewServer(app *tessera.App) *gin.Engine {
	return newServer(app).engine()
}

// reload loads the site again. On failure the previous site stays.
func (s *server) reload(ctx context.Context) {
	r, err := s.app.Reload(ctx)
	if err != nil {
		s.app.Logger.Error("reload failed", "error", err)
		return
	}
	s.renderer.Store(r)
	s.app.Logger.Info("site reloaded", "pages", r.Site.Len())
}

// engine routes every GET request: files below the pages and themes
// directories are served as is, anything else renders the page at the
// request path with the query string as ?key variables.
func (s *server) engine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(gin.Recovery(), requestLogger(s.app.Logger))
	e.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusMethodNotAllowed)
			return
		}
		r := s.renderer.Load()
		if file, ok := siteFile(r, c.Request.URL.Path); ok {
			c.FileFromFS("/"+file, http.FS(r.Site.FS))
			return
		}
		servePage(c, r)
	})
	return e
}

func servePage(c *gin.Context, r *render.Renderer) {
	url := c.Request.URL.Path
	if url != "/" {
		url = strings.TrimSuffix(url, "/")
	}
	res, err := r.Render(c.Request.Context(), render.Request{URL: url, Query: c.Request.URL.Query()})
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusOK
	if res.NotFound {
		status = http.StatusNotFound
	}
	c.Render(status, pageRender{output: res.Output})
}

// siteFile reports whether p names a servable file of the site. Page data
// files, templates and ignored files are not served.
func siteFile(r *render.Renderer, p string) (string, bool) {
	p = strings.TrimPrefix(path.Clean(p), "/")
	ext := path.Ext(p)
	if ext == "" || ext == render.TemplateExt || r.Site.FS == nil {
		return "", false
	}
	for _, de := range content.DataFileExts {
		if ext == de {
			return "", false
		}
	}
	dir, _, _ := strings.Cut(p, "/")
	if dir != r.Site.PagesDir && dir != r.Options.ThemesDir {
		return "", false
	}
	if r.Ignore.IsIgnored(p, false) {
		return "", false
	}
	return p, true
}

var _ ginrender.Render = pageRender{}

// pageRender writes rendered page output as HTML.
type pageRender struct {
	output string
}

func (r pageRender) Render(w http.ResponseWriter) error {
	r.WriteContentType(w)
	_, err := w.Write([]byte(r.output))
	return err
}

func (r pageRender) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = []string{"text/html; charset=utf-8"}
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
