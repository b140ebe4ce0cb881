// Package tessera loads a site and wires the renderer used by the tessera
// command.
package tessera

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/google/wire"
	"github.com/hayeah/goo"
	"github.com/jmoiron/sqlx"

	"github.com/hayeah/tessera/content"
	"github.com/hayeah/tessera/ignore"
	"github.com/hayeah/tessera/internal/metrics"
	"github.com/hayeah/tessera/render"
)

// App is a loaded site ready to render. Metrics is nil unless
// Config.Metrics is set.
type App struct {
	Config   *Config
	Logger   *slog.Logger
	Shutdown *goo.ShutdownContext
	Store    content.Store
	Site     *content.Site
	Renderer *render.Renderer
	Metrics  *metrics.OutputMetrics
}

// Reload loads the site from the store again and returns a renderer for
// it, configured like the current one. The app itself is not changed.
func (a *App) Reload(ctx context.Context) (*render.Renderer, error) {
	site, err := ProvideSite(ctx, a.Store)
	if err != nil {
		return nil, err
	}
	return ProvideRenderer(a.Config, site, a.Renderer.Ignore, a.Logger, a.Metrics), nil
}

// ProvideLogger creates the logger for cfg.
func ProvideLogger(cfg *Config) *slog.Logger {
	return NewLogger(os.Stderr, cfg.Debug)
}

// ProvideIgnore reads the .gitignore files of the site root.
func ProvideIgnore(cfg *Config) (*ignore.Ignore, error) {
	return ignore.NewIgnore(cfg.Root)
}

// ProvideDB opens the SQLite database, or returns nil when cfg.DB is empty.
func ProvideDB(cfg *Config) (*sqlx.DB, func(), error) {
	if cfg.DB == "" {
		return nil, func() {}, nil
	}
	db, err := content.OpenSQLite(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { db.Close() }, nil
}

// ProvideStore reads pages from the database when one is open, else from
// the directory tree. The database is migrated first.
func ProvideStore(cfg *Config, db *sqlx.DB, migrator *goo.DBMigrator, ig *ignore.Ignore, logger *slog.Logger) (content.Store, error) {
	fsys := os.DirFS(cfg.Root)
	if db == nil {
		return &content.DirStore{FS: fsys, Ignore: ig, Logger: logger}, nil
	}
	store := &content.SQLStore{DB: db, FS: fsys, Migrator: migrator, Logger: logger}
	if err := store.Migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

// ProvideSite loads the site.
func ProvideSite(ctx context.Context, store content.Store) (*content.Site, error) {
	site, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load site: %w", err)
	}
	return site, nil
}

// ProvideCounter picks the token counter named by cfg.TokenCounter.
func ProvideCounter(cfg *Config, logger *slog.Logger) metrics.Counter {
	if cfg.TokenCounter == "tiktoken" {
		c, err := metrics.NewTiktokenCounter(metrics.DefaultTiktokenModel)
		if err == nil {
			return c
		}
		logger.Warn("tiktoken unavailable, using simple counter", "error", err)
	}
	return &metrics.SimpleCounter{}
}

// ProvideMetrics constructs OutputMetrics with the given counter, or
// returns nil when cfg.Metrics is off.
func ProvideMetrics(cfg *Config, counter metrics.Counter) *metrics.OutputMetrics {
	if !cfg.Metrics {
		return nil
	}
	return metrics.NewOutputMetrics(counter, runtime.NumCPU())
}

// ProvideRenderer creates the site renderer.
func ProvideRenderer(cfg *Config, site *content.Site, ig *ignore.Ignore, logger *slog.Logger, m *metrics.OutputMetrics) *render.Renderer {
	r := render.New(site, cfg.RenderOptions())
	r.Ignore = ig
	r.Logger = logger
	r.Metrics = m
	return r
}

// Wires collects the providers of App.
var Wires = wire.NewSet(
	ProvideLogger,
	ProvideIgnore,
	ProvideDB,
	goo.ProvideDBMigrator,
	goo.ProvideShutdownContext,
	ProvideStore,
	ProvideSite,
	ProvideCounter,
	ProvideMetrics,
	ProvideRenderer,
	wire.Struct(new(App), "*"),
)
