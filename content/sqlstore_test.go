package content

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/hayeah/goo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLStoreImportLoad(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	site := loadTestSite(t)

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	defer db.Close()

	store := &SQLStore{DB: db, FS: site.FS}
	require.NoError(t, store.Migrate())
	require.NoError(t, store.Import(ctx, site))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(site.Len(), loaded.Len())

	first := loaded.Page("/blog/first")
	require.NotNil(t, first)
	assert.Equal("/01.blog/01.first/", first.Path)
	assert.Equal(2, first.Level)
	assert.Equal("/blog", first.ParentURL)
	assert.Equal("post", first.Template)
	assert.Equal([]string{"go", "web"}, first.Tags)
	assert.Equal("Demo", first.Get("sitename", "/"))
	assert.Equal("2024-05-01 10:30:00", first.ModTime.UTC().Format(MTimeLayout))
	assert.True(loaded.Page("/blog/draft").Hidden)

	// importing again replaces the previous rows
	require.NoError(t, store.Import(ctx, site))
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(site.Len(), again.Len())
}

func TestSQLStoreMigrate(t *testing.T) {
	assert := assert.New(t)

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	defer db.Close()

	store := &SQLStore{DB: db, Migrator: goo.ProvideDBMigrator(db, slog.Default())}
	require.NoError(t, store.Migrate())
	// applied migrations are skipped
	require.NoError(t, store.Migrate())

	var applied []string
	require.NoError(t, db.Select(&applied, "SELECT name FROM migrations ORDER BY name"))
	assert.Equal([]string{"create_pages_table", "create_shared_table"}, applied)

	site, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(0, site.Len())
}

func TestSQLStoreWithoutMigrate(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = (&SQLStore{DB: db}).Load(context.Background())
	assert.ErrorContains(t, err, "failed to load pages")
}
