// Package pipe holds the functions applied to variable values, as in
// @{ text | markdown | shorten(200) }.
package pipe

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/hayeah/tessera/internal/htmlutil"
)

// Func transforms a value. Args are already resolved to strings.
type Func func(value string, args []string) string

// Registry maps pipe names to functions.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry returns a registry with the built-in pipes.
func NewRegistry() *Registry {
	r := &Registry{funcs: map[string]Func{}}
	r.Register("def", Def)
	r.Register("markdown", Markdown)
	r.Register("stripTags", StripTags)
	r.Register("shorten", Shorten)
	r.Register("sanitize", Sanitize)
	r.Register("escape", Escape)
	r.Register("lower", func(v string, _ []string) string { return strings.ToLower(v) })
	r.Register("upper", func(v string, _ []string) string { return strings.ToUpper(v) })
	r.Register("replace", Replace)
	r.Register("dateFormat", DateFormat)
	return r
}

// Register adds or replaces a pipe.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Has reports whether name is a known pipe.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.funcs[name]
	return ok
}

// Apply runs the named pipe. A bare number shortens the value to that many
// characters. Unknown names leave the value unchanged.
func (r *Registry) Apply(name, value string, args []string) string {
	if n, err := strconv.Atoi(name); err == nil {
		return Shorten(value, []string{strconv.Itoa(n)})
	}
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()
	if !ok {
		return value
	}
	return fn(value, args)
}

func arg(args []string, i int, def string) string {
	if i < len(args) {
		return args[i]
	}
	return def
}

// Def returns the first argument when value is empty.
func Def(value string, args []string) string {
	if strings.TrimSpace(value) == "" {
		return arg(args, 0, "")
	}
	return value
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown converts GitHub flavored markdown to HTML.
func Markdown(value string, _ []string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(value), &buf); err != nil {
		return value
	}
	return strings.TrimSpace(buf.String())
}

// StripTags removes HTML markup.
func StripTags(value string, _ []string) string {
	return htmlutil.StripTags(value)
}

// Shorten strips markup and cuts the text at a word boundary so that it
// fits max characters including the ellipsis (default " ...").
func Shorten(value string, args []string) string {
	max, err := strconv.Atoi(strings.TrimSpace(arg(args, 0, "")))
	if err != nil || max <= 0 {
		return value
	}
	ellipsis := arg(args, 1, " ...")

	text := strings.Join(strings.Fields(htmlutil.StripTags(value)), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	limit := max - len([]rune(ellipsis))
	if limit < 0 {
		limit = 0
	}
	cut := string(runes[:limit])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + ellipsis
}

var dashes = regexp.MustCompile(`-+`)

// Sanitize turns value into a lowercase slug of letters, digits and dashes.
// Accents are dropped: "Café" becomes "cafe".
func Sanitize(value string, _ []string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(htmlutil.StripTags(value))) {
		switch {
		case unicode.Is(unicode.Mn, r):
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(dashes.ReplaceAllString(b.String(), "-"), "-")
}

// Escape escapes HTML special characters.
func Escape(value string, _ []string) string {
	return html.EscapeString(value)
}

// Replace replaces every occurrence of the first argument with the second.
// A first argument written as /pattern/ is a regular expression.
func Replace(value string, args []string) string {
	search, repl := arg(args, 0, ""), arg(args, 1, "")
	if search == "" {
		return value
	}
	if len(search) > 2 && strings.HasPrefix(search, "/") && strings.HasSuffix(search, "/") {
		re, err := regexp.Compile(search[1 : len(search)-1])
		if err != nil {
			return value
		}
		return re.ReplaceAllString(value, repl)
	}
	return strings.ReplaceAll(value, search, repl)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// DateFormat parses value as a date and formats it with a Go layout
// (default "Jan 2, 2006"). Values that are not dates pass through.
func DateFormat(value string, args []string) string {
	layout := arg(args, 0, "Jan 2, 2006")
	v := strings.TrimSpace(value)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, v); err == nil {
			return t.Format(layout)
		}
	}
	if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(ts, 0).UTC().Format(layout)
	}
	return value
}
