package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/hayeah/tessera/content"
)

// PagesCmd lists pages the way a page list selects them.
type PagesCmd struct {
	SiteFlags
	Type    string `arg:"--type" help:"children, siblings, related or empty for all pages"`
	Context string `arg:"--context" help:"context page URL for --type"`
	Filter  string `arg:"-f,--filter" help:"only pages with this tag"`
	Search  string `arg:"-s,--search" help:"fuzzy search in titles and urls"`
	Sort    string `arg:"--sort" help:"field and direction, e.g. \"date desc\""`
	Hidden  bool   `arg:"--hidden" help:"include hidden pages"`
}

// Run prints a table of the selected pages.
func (c *PagesCmd) Run(ctx context.Context, stdout io.Writer) error {
	cfg, err := c.Config()
	if err != nil {
		return err
	}
	app, cleanup, err := BuildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	list := content.NewPageList(app.Site, "/", content.PageListConfig{
		Type:          c.Type,
		Context:       c.Context,
		Filter:        c.Filter,
		Search:        c.Search,
		Sort:          c.Sort,
		ExcludeHidden: !c.Hidden,
	}, nil)
	pages := list.Pages()
	if len(pages) == 0 {
		_, err := fmt.Fprintln(stdout, "no pages")
		return err
	}

	_, err = fmt.Fprintln(stdout, pagesTable(pages))
	return err
}

func pagesTable(pages []*content.Page) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("URL", "TITLE", "TEMPLATE", "TAGS")
	for _, p := range pages {
		t.Row(p.URL, p.Title(), p.Template, strings.Join(p.Tags, ", "))
	}
	return t
}
