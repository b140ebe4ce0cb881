package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hayeah/tessera"
	"github.com/hayeah/tessera/source"
	"github.com/hayeah/tessera/syntax"
)

// OutlineCmd prints templates with their outermost block statements marked,
// followed by any parse problems.
type OutlineCmd struct {
	Sources []string `arg:"positional,required" help:"template sources: file, -, clipboard:, text:..., http(s)://"`
	Root    string   `arg:"-r,--root" default:"." help:"site root, for configured delimiters"`
	Marker  string   `arg:"--marker" default:"#" help:"marker inserted after the opening delimiter"`
}

// Run loads and outlines the sources.
func (c *OutlineCmd) Run(ctx context.Context, stdout io.Writer) error {
	cfg, err := tessera.LoadConfig(c.Root)
	if err != nil {
		return err
	}
	text, err := source.LoadAll(ctx, c.Sources)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(stdout, syntax.MarkOuter(text, cfg.Delimiters, c.Marker)); err != nil {
		return err
	}
	_, errs := syntax.Parse(text, cfg.Delimiters.OrDefault())
	for _, e := range errs {
		fmt.Fprintf(stdout, "\n%s", e)
	}
	return nil
}
