package tessera

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/hayeah/tessera/content"
	"github.com/hayeah/tessera/render"
	"github.com/hayeah/tessera/syntax"
)

// ConfigFile is the name of the site config, read from the site root.
const ConfigFile = "tessera.toml"

// Config is the site configuration.
type Config struct {
	Root            string                 `toml:"root"`
	Theme           string                 `toml:"theme"`
	ThemesDir       string                 `toml:"themesDir"`
	DefaultTemplate string                 `toml:"defaultTemplate"`
	NotFound        string                 `toml:"notFound"`
	Generator       string                 `toml:"generator"`
	Delimiters      syntax.Delimiters      `toml:"delimiters"`
	MaxIncludeDepth int                    `toml:"maxIncludeDepth"`
	PageList        content.PageListConfig `toml:"pagelist"`

	// DB is a SQLite file holding the pages. Empty reads pages from Root.
	DB string `toml:"db"`
	// TokenCounter is "simple" or "tiktoken".
	TokenCounter string `toml:"tokenCounter"`
	Debug        bool   `toml:"debug"`

	// Metrics records the output of every render. Only the render command
	// sets it.
	Metrics bool `toml:"-"`
}

// DefaultConfig returns the config used when the site has no config file.
func DefaultConfig() *Config {
	return &Config{
		Root:            ".",
		ThemesDir:       render.DefaultThemesDir,
		DefaultTemplate: render.DefaultTemplate,
		MaxIncludeDepth: render.DefaultMaxIncludeDepth,
		PageList:        content.DefaultPageListConfig(),
		TokenCounter:    "simple",
	}
}

// LoadConfig reads tessera.toml from root over DefaultConfig. A missing
// file is not an error. Root is always set to root.
func LoadConfig(root string) (*Config, error) {
	cfg := DefaultConfig()
	if root == "" {
		root = "."
	}

	data, err := os.ReadFile(filepath.Join(root, ConfigFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := ParseConfig(string(data), cfg); err != nil {
			return nil, err
		}
	}

	cfg.Root = root
	if cfg.DB != "" && !filepath.IsAbs(cfg.DB) {
		cfg.DB = filepath.Join(root, cfg.DB)
	}
	return cfg, nil
}

// ParseConfig decodes TOML text into cfg, keeping the fields it does not
// set.
func ParseConfig(text string, cfg *Config) error {
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", ConfigFile, err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return fmt.Errorf("unknown key in %s: %s", ConfigFile, keys[0])
	}
	return nil
}

// RenderOptions converts the config for render.New.
func (c *Config) RenderOptions() render.Options {
	return render.Options{
		Delimiters:      c.Delimiters,
		ThemesDir:       c.ThemesDir,
		Theme:           c.Theme,
		DefaultTemplate: c.DefaultTemplate,
		NotFoundURL:     c.NotFound,
		MaxIncludeDepth: c.MaxIncludeDepth,
		PageList:        c.PageList,
		Generator:       c.Generator,
	}
}
