package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/hayeah/goo"
	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3" // Import SQLite driver
)

// Migrations create the tables of SQLStore. Append new migrations; applied
// ones are recorded by name and never run again.
var Migrations = []goo.Migration{
	{
		Name: "create_pages_table",
		Up: `
			CREATE TABLE IF NOT EXISTS pages (
				url       TEXT PRIMARY KEY,
				path      TEXT NOT NULL,
				data_file TEXT NOT NULL DEFAULT '',
				data      TEXT NOT NULL,
				mod_time  DATETIME
			);
		`,
	},
	{
		Name: "create_shared_table",
		Up: `
			CREATE TABLE IF NOT EXISTS shared (
				id   INTEGER PRIMARY KEY CHECK (id = 1),
				data TEXT NOT NULL
			);
		`,
	},
}

// SQLStore persists pages in SQLite. Templates and page files are still
// read from FS.
type SQLStore struct {
	DB       *sqlx.DB
	FS       fs.FS
	Migrator *goo.DBMigrator
	Logger   *slog.Logger
}

type pageRow struct {
	URL      string     `db:"url"`
	Path     string     `db:"path"`
	DataFile string     `db:"data_file"`
	Data     string     `db:"data"`
	ModTime  *time.Time `db:"mod_time"`
}

// OpenSQLite opens a SQLite database. Call SQLStore.Migrate before using
// it as a store.
func OpenSQLite(file string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", file)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", file, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", file, err)
	}
	return db, nil
}

// Migrate applies the pending Migrations.
func (s *SQLStore) Migrate() error {
	m := s.Migrator
	if m == nil {
		m = goo.ProvideDBMigrator(s.DB, s.logger())
	}
	if err := m.Up(Migrations); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Import replaces the stored site with site.
func (s *SQLStore) Import(ctx context.Context, site *Site) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM pages"); err != nil {
		return fmt.Errorf("failed to clear pages: %w", err)
	}

	for _, p := range site.Collection() {
		data, err := json.Marshal(p.Data)
		if err != nil {
			return fmt.Errorf("failed to encode page %s: %w", p.URL, err)
		}
		var mod *time.Time
		if !p.ModTime.IsZero() {
			t := p.ModTime.UTC()
			mod = &t
		}
		_, err = tx.NamedExecContext(ctx,
			"INSERT INTO pages (url, path, data_file, data, mod_time) VALUES (:url, :path, :data_file, :data, :mod_time)",
			pageRow{URL: p.URL, Path: p.Path, DataFile: p.DataFile, Data: string(data), ModTime: mod},
		)
		if err != nil {
			return fmt.Errorf("failed to insert page %s: %w", p.URL, err)
		}
	}

	shared, err := json.Marshal(site.Shared.Data)
	if err != nil {
		return fmt.Errorf("failed to encode shared data: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO shared (id, data) VALUES (1, ?) ON CONFLICT(id) DO UPDATE SET data = excluded.data",
		string(shared),
	); err != nil {
		return fmt.Errorf("failed to store shared data: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	s.logger().Info("site imported", "pages", site.Len())
	return nil
}

// Load reads every stored page.
func (s *SQLStore) Load(ctx context.Context) (*Site, error) {
	var rows []pageRow
	if err := s.DB.SelectContext(ctx, &rows, "SELECT url, path, data_file, data, mod_time FROM pages ORDER BY path"); err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}

	shared := NewShared(nil)
	var sharedData string
	err := s.DB.GetContext(ctx, &sharedData, "SELECT data FROM shared WHERE id = 1")
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to load shared data: %w", err)
	default:
		if err := json.Unmarshal([]byte(sharedData), &shared.Data); err != nil {
			return nil, fmt.Errorf("failed to decode shared data: %w", err)
		}
	}

	pages := make([]*Page, 0, len(rows))
	for _, row := range rows {
		data := map[string]any{}
		if err := json.Unmarshal([]byte(row.Data), &data); err != nil {
			return nil, fmt.Errorf("failed to decode page %s: %w", row.URL, err)
		}
		p := NewPage(data, shared)
		p.DataFile = row.DataFile
		if row.ModTime != nil {
			p.ModTime = row.ModTime.Local()
		}
		pages = append(pages, p)
	}

	s.logger().Debug("site loaded from database", "pages", len(pages))
	return NewSite(s.FS, pages, shared), nil
}

func (s *SQLStore) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
