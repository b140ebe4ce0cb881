package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hayeah/goo"

	"github.com/hayeah/tessera"
	"github.com/hayeah/tessera/content"
	"github.com/hayeah/tessera/ignore"
)

// IndexCmd imports a site directory into a SQLite database.
type IndexCmd struct {
	SiteFlags
}

// Run loads the directory tree and replaces the stored pages.
func (c *IndexCmd) Run(ctx context.Context, stderr io.Writer) error {
	cfg, err := c.Config()
	if err != nil {
		return err
	}
	if cfg.DB == "" {
		return fmt.Errorf("no database given, use --db or set db in %s", tessera.ConfigFile)
	}
	logger := tessera.NewLogger(stderr, cfg.Debug)

	ig, err := ignore.NewIgnore(cfg.Root)
	if err != nil {
		return err
	}
	site, err := (&content.DirStore{FS: os.DirFS(cfg.Root), Ignore: ig, Logger: logger}).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load site: %w", err)
	}

	db, err := content.OpenSQLite(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	store := &content.SQLStore{DB: db, Migrator: goo.ProvideDBMigrator(db, logger), Logger: logger}
	if err := store.Migrate(); err != nil {
		return err
	}
	return store.Import(ctx, site)
}
