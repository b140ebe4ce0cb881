package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/hayeah/tessera/internal/metrics/chart"
	"github.com/hayeah/tessera/render"
	"github.com/hayeah/tessera/source"
)

// RenderCmd renders one page.
type RenderCmd struct {
	SiteFlags
	URL         string   `arg:"positional" default:"/" help:"page URL"`
	Query       []string `arg:"-q,--query,separate" help:"query parameter as key=value, repeatable"`
	Template    string   `arg:"-t,--template" help:"render this template source in the page context instead of the page template (file, -, clipboard:, text:..., http(s)://)"`
	Output      string   `arg:"-o,--output" default:"-" help:"output file, - for stdout"`
	Clipboard   bool     `arg:"-c,--clipboard" help:"copy the output to the clipboard"`
	Metrics     bool     `arg:"--metrics" help:"print a token breakdown to stderr"`
	MetricsJSON string   `arg:"--metrics-json" help:"write template and page metrics as JSON to this file"`
	Tokens      string   `arg:"--tokens" help:"token counter: simple or tiktoken"`
}

// Run renders the page and writes the output.
func (c *RenderCmd) Run(ctx context.Context, stdout, stderr io.Writer) error {
	cfg, err := c.Config()
	if err != nil {
		return err
	}
	if c.Tokens != "" {
		cfg.TokenCounter = c.Tokens
	}
	cfg.Metrics = c.Metrics || c.MetricsJSON != ""
	query, err := parseQuery(c.Query)
	if err != nil {
		return err
	}

	app, cleanup, err := BuildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	req := render.Request{URL: c.URL, Query: query}
	var output string
	if c.Template != "" {
		text, err := source.Load(ctx, c.Template)
		if err != nil {
			return err
		}
		output = app.Renderer.RenderString(req, text)
	} else {
		res, err := app.Renderer.Render(ctx, req)
		if err != nil {
			return err
		}
		if res.NotFound {
			app.Logger.Warn("page not found", "url", c.URL)
		}
		for _, w := range res.Warnings {
			app.Logger.Warn("template problem", "at", w)
		}
		output = res.Output
	}

	if err := writeOutput(c.Output, output, stdout); err != nil {
		return err
	}
	if c.Clipboard {
		if err := clipboard.WriteAll(output); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
	}

	if app.Metrics == nil {
		return nil
	}
	app.Metrics.Wait()
	if c.MetricsJSON != "" {
		data, err := json.MarshalIndent(app.Metrics, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
		if err := os.WriteFile(c.MetricsJSON, data, 0644); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	if c.Metrics {
		return chart.Print(app.Metrics, chart.DefaultOptions(termWidth, stderr))
	}
	return nil
}

// parseQuery turns key=value pairs into query values.
func parseQuery(pairs []string) (url.Values, error) {
	q := url.Values{}
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid query parameter %q, expected key=value", pair)
		}
		q.Add(k, v)
	}
	return q, nil
}

func writeOutput(dest, output string, stdout io.Writer) error {
	if dest == "" || dest == "-" {
		_, err := io.WriteString(stdout, output)
		return err
	}
	if err := os.WriteFile(dest, []byte(output), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// termWidth returns the width of the terminal, or 80 as a fallback.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
