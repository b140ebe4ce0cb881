// Package chart prints OutputMetrics as a bar chart: template token counts
// grouped by directory, plus the rendered pages.
package chart

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hayeah/tessera/internal/metrics"
)

// Options controls layout and I/O.
type Options struct {
	BarWidth     int        // 0 = 35% of the terminal, at most 30
	FillRune     rune       // default '█'
	ThresholdPct float64    // directories below this share collapse into dir/**
	TermWidth    func() int // must return columns
	Writer       io.Writer
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions(termWidthFn func() int, w io.Writer) Options {
	return Options{
		FillRune:     '█',
		ThresholdPct: 1,
		TermWidth:    termWidthFn,
		Writer:       w,
	}
}

// Print waits for m and writes the chart.
func Print(m *metrics.OutputMetrics, opt Options) error {
	templates, total := collectTemplates(m)
	rows := groupTemplates(templates, dirTotals(templates), total, opt.ThresholdPct)
	rows = append(rows, pageRows(m)...)
	_, err := io.WriteString(opt.Writer, strings.Join(layout(rows, total, len(templates), opt), "\n")+"\n")
	return err
}

type templateTokens struct {
	Path   string
	Tokens int
}

// collectTemplates returns the template entries and the token total of all
// entries.
func collectTemplates(m *metrics.OutputMetrics) ([]templateTokens, int) {
	m.Wait()
	var (
		out   []templateTokens
		total int
	)
	for k, v := range m.Items {
		total += v.Tokens
		if k.Type == metrics.TypeTemplate {
			out = append(out, templateTokens{Path: k.Key, Tokens: v.Tokens})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, total
}

// ancestors returns the directories above p, outermost first.
func ancestors(p string) []string {
	var dirs []string
	for d := path.Dir(p); d != "." && d != "/"; d = path.Dir(d) {
		dirs = append([]string{d}, dirs...)
	}
	return dirs
}

// dirTotals sums the template tokens of every directory.
func dirTotals(templates []templateTokens) map[string]int {
	totals := map[string]int{}
	for _, t := range templates {
		for _, d := range ancestors(t.Path) {
			totals[d] += t.Tokens
		}
	}
	return totals
}

type row struct {
	Label  string
	Tokens int
}

// groupTemplates lists the templates. Going down from the top, the first
// directory or file below the threshold is folded into a parent/** row.
func groupTemplates(templates []templateTokens, totals map[string]int, total int, thresholdPct float64) []row {
	limit := float64(total) * thresholdPct / 100
	sums := map[string]int{}
	var order []string
	for _, t := range templates {
		label := t.Path
		parent := ""
		for _, d := range append(ancestors(t.Path), t.Path) {
			n := t.Tokens
			if d != t.Path {
				n = totals[d]
			}
			if float64(n) < limit {
				label = path.Join(parent, "**")
				break
			}
			parent = d
		}
		if _, ok := sums[label]; !ok {
			order = append(order, label)
		}
		sums[label] += t.Tokens
	}

	rows := make([]row, 0, len(order))
	for _, l := range order {
		rows = append(rows, row{Label: l, Tokens: sums[l]})
	}
	return rows
}

// pageRows returns the metrics that are not templates, such as rendered
// pages, labelled type:key.
func pageRows(m *metrics.OutputMetrics) []row {
	var rows []row
	for k, v := range m.Items {
		if k.Type != metrics.TypeTemplate {
			rows = append(rows, row{Label: k.String(), Tokens: v.Tokens})
		}
	}
	return rows
}

func layout(rows []row, total, templateCount int, opt Options) []string {
	if len(rows) == 0 {
		return []string{"No tokens recorded"}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Tokens != rows[j].Tokens {
			return rows[i].Tokens < rows[j].Tokens
		}
		return rows[i].Label < rows[j].Label
	})

	cols := opt.TermWidth()
	barW := opt.BarWidth
	if barW <= 0 {
		barW = min(cols*35/100, 30)
	}
	bar := lipgloss.NewStyle().Width(barW)
	share := lipgloss.NewStyle().Width(8).Align(lipgloss.Right)
	count := lipgloss.NewStyle().Width(8).Align(lipgloss.Right)
	labelW := max(cols-barW-16-2, 8)

	peak := rows[len(rows)-1].Tokens
	line := func(fill string, tokens int, label string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			bar.Render(fill),
			share.Render(fmt.Sprintf("%.1f%%", percent(tokens, total))),
			count.Render(fmt.Sprint(tokens)),
			"  "+shorten(label, labelW))
	}

	lines := make([]string, 0, len(rows)+2)
	for _, r := range rows {
		n := 0
		if peak > 0 {
			n = (r.Tokens*barW + peak/2) / peak
		}
		if n == 0 && r.Tokens > 0 {
			n = 1
		}
		lines = append(lines, line(strings.Repeat(string(opt.FillRune), n), r.Tokens, r.Label))
	}
	lines = append(lines, line(strings.Repeat("─", barW), total, "TOTAL"))
	lines = append(lines, fmt.Sprintf("\nSummary: %d templates, %d tokens", templateCount, total))
	return lines
}

// shorten keeps the tail of s within n runes.
func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "…" + string(r[len(r)-n+1:])
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}
