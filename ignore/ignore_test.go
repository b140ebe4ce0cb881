package ignore

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFS(t *testing.T) {
	assert := assert.New(t)

	fsys := fstest.MapFS{
		".gitignore":            {Data: []byte("# drafts\n*.psd\ncache/\n")},
		"pages/a/page.txt":      {Data: []byte("x")},
		"pages/a/raw.psd":       {Data: []byte("x")},
		"pages/cache/thumb.jpg": {Data: []byte("x")},
		"pages/b/photo.jpg":     {Data: []byte("x")},
	}

	ig, err := FromFS(fsys)
	require.NoError(t, err)

	assert.True(ig.IsIgnored("pages/a/raw.psd", false))
	assert.True(ig.IsIgnored("pages/cache", true))
	assert.False(ig.IsIgnored("pages/a/page.txt", false))
	assert.True(ig.IsIgnored(".git/config", false))
	assert.False(ig.IsIgnored(".", true))

	var seen []string
	err = ig.WalkDir(fsys, "pages", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			seen = append(seen, p)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal([]string{"pages/a/page.txt", "pages/b/photo.jpg"}, seen)
}

func TestFromFSMissing(t *testing.T) {
	ig, err := FromFS(fstest.MapFS{})
	require.NoError(t, err)
	assert.False(t, ig.IsIgnored("anything.txt", false))

	var nilIgnore *Ignore
	assert.False(t, nilIgnore.IsIgnored("anything.txt", false))
}

func TestNewIgnore(t *testing.T) {
	assert := assert.New(t)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.log\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pages", "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pages", "sub", ".gitignore"), []byte("secret.txt\n"), 0o644))

	ig, err := NewIgnore(root)
	require.NoError(t, err)

	assert.True(ig.IsIgnored("debug.log", false))
	assert.True(ig.IsIgnored("pages/sub/secret.txt", false))
	assert.False(ig.IsIgnored("pages/secret.txt", false))
}
