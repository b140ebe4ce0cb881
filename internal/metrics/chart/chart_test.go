package chart

import (
	"bytes"
	"testing"

	"github.com/hayeah/tessera/internal/assert"
	"github.com/hayeah/tessera/internal/metrics"
)

func constantTermWidth(cols int) func() int { return func() int { return cols } }

// fakeMetrics holds three templates and one rendered page:
//
//	themes/std/page.html         900 tokens
//	themes/std/parts/nav.html     20 tokens
//	themes/other/x/y.html         50 tokens
//	final:/blog                   30 tokens
func fakeMetrics() *metrics.OutputMetrics {
	m := &metrics.OutputMetrics{Items: map[metrics.MetricKey]metrics.MetricItem{}}
	add := func(typ, key string, tokens int) {
		m.Items[metrics.NewKey(typ, key)] = metrics.MetricItem{Tokens: tokens}
	}
	add(metrics.TypeTemplate, "themes/std/page.html", 900)
	add(metrics.TypeTemplate, "themes/std/parts/nav.html", 20)
	add(metrics.TypeTemplate, "themes/other/x/y.html", 50)
	add(metrics.TypeFinal, "/blog", 30)
	return m
}

func TestCollectTemplates(t *testing.T) {
	a := assert.New(t)
	templates, total := collectTemplates(fakeMetrics())

	a.Equal(1000, total)
	a.Equal([]templateTokens{
		{"themes/other/x/y.html", 50},
		{"themes/std/page.html", 900},
		{"themes/std/parts/nav.html", 20},
	}, templates)
}

func TestDirTotals(t *testing.T) {
	a := assert.New(t)
	totals := dirTotals([]templateTokens{
		{"themes/std/page.html", 900},
		{"themes/std/parts/nav.html", 20},
		{"themes/other/x/y.html", 50},
	})
	a.Equal(970, totals["themes"])
	a.Equal(920, totals["themes/std"])
	a.Equal(50, totals["themes/other/x"])
	a.NotContains(totals, "themes/std/page.html")
}

func TestGroupTemplatesThreshold(t *testing.T) {
	a := assert.New(t)
	templates := []templateTokens{
		{"themes/other/x/y.html", 50},
		{"themes/std/page.html", 900},
		{"themes/std/parts/nav.html", 20},
		{"themes/std/parts/footer.html", 10},
	}
	rows := groupTemplates(templates, dirTotals(templates), 980, 5)

	a.Equal([]row{
		{"themes/other/x/y.html", 50},
		{"themes/std/page.html", 900},
		{"themes/std/**", 30},
	}, rows)
}

func TestLayout(t *testing.T) {
	a := assert.New(t)
	rows := []row{
		{Label: "themes/std/page.html", Tokens: 900},
		{Label: "themes/std/**", Tokens: 20},
		{Label: "final:/blog", Tokens: 50},
	}
	opt := Options{BarWidth: 20, FillRune: '#', TermWidth: constantTermWidth(80)}
	lines := layout(rows, 1000, 2, opt)

	a.Len(lines, 5)
	a.Contains(lines[0], "themes/std/**")
	a.Contains(lines[2], "####################")
	a.Contains(lines[2], "90.0%")
	a.Contains(lines[3], "TOTAL")
	a.Contains(lines[4], "Summary: 2 templates, 1000 tokens")
}

func TestShorten(t *testing.T) {
	a := assert.New(t)
	a.Equal("short", shorten("short", 8))
	a.Equal("…/page.html", shorten("themes/std/page.html", 11))
}

func TestPrint(t *testing.T) {
	a := assert.New(t)
	var buf bytes.Buffer
	err := Print(fakeMetrics(), DefaultOptions(constantTermWidth(100), &buf))
	a.NoError(err)
	a.Contains(buf.String(), "final:/blog")
	a.Contains(buf.String(), "TOTAL")

	var empty bytes.Buffer
	a.NoError(Print(&metrics.OutputMetrics{Items: map[metrics.MetricKey]metrics.MetricItem{}}, DefaultOptions(constantTermWidth(80), &empty)))
	a.Equal("No tokens recorded\n", empty.String())
}

func TestMetricsJSON(t *testing.T) {
	a := assert.New(t)
	a.EqualToJSONFixture("metrics", fakeMetrics())
}
