package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/hayeah/goo"

	"github.com/hayeah/tessera"
)

// Args defines the command-line arguments with subcommands
type Args struct {
	Render  *RenderCmd  `arg:"subcommand:render" help:"Render a page"`
	Outline *OutlineCmd `arg:"subcommand:outline" help:"Print a template with its outermost statements marked"`
	Pages   *PagesCmd   `arg:"subcommand:pages" help:"List the pages of a site"`
	Index   *IndexCmd   `arg:"subcommand:index" help:"Import a site directory into SQLite"`
	Serve   *ServeCmd   `arg:"subcommand:serve" help:"Serve a site over HTTP"`
	Browse  *BrowseCmd  `arg:"subcommand:browse" help:"Browse pages and preview their output"`
}

// SiteFlags select the site a command works on.
type SiteFlags struct {
	Root  string `arg:"-r,--root" default:"." help:"site root directory"`
	DB    string `arg:"--db" help:"SQLite database holding the pages"`
	Debug bool   `arg:"--debug" help:"log debug events"`
}

// Config loads tessera.toml from the root and applies the flags over it.
func (f SiteFlags) Config() (*tessera.Config, error) {
	cfg, err := tessera.LoadConfig(f.Root)
	if err != nil {
		return nil, err
	}
	if f.DB != "" {
		cfg.DB = f.DB
	}
	if f.Debug {
		cfg.Debug = true
	}
	return cfg, nil
}

// Runner encapsulates the state and behavior for the CLI
type Runner struct {
	Args   Args
	Stdout io.Writer
	Stderr io.Writer
}

// Run dispatches to the appropriate subcommand
func (r *Runner) Run(ctx context.Context) error {
	switch {
	case r.Args.Render != nil:
		return r.Args.Render.Run(ctx, r.Stdout, r.Stderr)
	case r.Args.Outline != nil:
		return r.Args.Outline.Run(ctx, r.Stdout)
	case r.Args.Pages != nil:
		return r.Args.Pages.Run(ctx, r.Stdout)
	case r.Args.Index != nil:
		return r.Args.Index.Run(ctx, r.Stderr)
	case r.Args.Serve != nil:
		return r.Args.Serve.Run(ctx)
	case r.Args.Browse != nil:
		return r.Args.Browse.Run(ctx, r.Stdout)
	default:
		return fmt.Errorf("no subcommand specified, use 'render', 'outline', 'pages', 'index', 'serve' or 'browse'")
	}
}

func main() {
	var args Args
	parser := arg.MustParse(&args)
	if parser.Subcommand() == nil {
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}

	// canceled on the first interrupt; goo exits the process once the
	// exit functions have run
	shutdown, err := goo.ProvideShutdownContext(tessera.NewLogger(os.Stderr, false))
	if err != nil {
		log.Fatal(err)
	}

	runner := &Runner{Args: args, Stdout: os.Stdout, Stderr: os.Stderr}
	if err := runner.Run(shutdown); err != nil {
		log.Fatal(err)
	}
}
