package hujsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"
)

// Options are the decoded options of a call or statement.
type Options map[string]any

// ParseOptions decodes a relaxed JSON object: keys may be unquoted, and
// comments and trailing commas are allowed. Empty text yields empty options.
func ParseOptions(text string) (Options, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Options{}, nil
	}

	v, err := hujson.Parse([]byte(QuoteKeys(text)))
	if err != nil {
		return nil, fmt.Errorf("invalid options %q: %w", text, err)
	}
	v.Standardize()

	opts := Options{}
	if err := json.Unmarshal(v.Pack(), &opts); err != nil {
		return nil, fmt.Errorf("options must be an object: %w", err)
	}
	return opts, nil
}

// QuoteKeys wraps bare object keys in double quotes. Text inside strings is
// left alone.
func QuoteKeys(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 8)

	// last non-space byte written outside a string
	var prev byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			j := skipString(text, i)
			b.WriteString(text[i:j])
			i = j - 1
			prev = '"'

		case c == '/' && i+1 < len(text) && (text[i+1] == '/' || text[i+1] == '*'):
			j := skipComment(text, i)
			b.WriteString(text[i:j])
			i = j - 1

		case isIdentStart(c) && (prev == '{' || prev == ','):
			j := i
			for j < len(text) && isIdent(text[j]) {
				j++
			}
			k := j
			for k < len(text) && isBlank(text[k]) {
				k++
			}
			if k < len(text) && text[k] == ':' {
				b.WriteString(strconv.Quote(text[i:j]))
			} else {
				b.WriteString(text[i:j])
			}
			i = j - 1
			prev = text[j-1]

		default:
			b.WriteByte(c)
			if !isBlank(c) {
				prev = c
			}
		}
	}
	return b.String()
}

// skipString returns the index after the string starting at i.
func skipString(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(s)
}

// skipComment returns the index after the comment starting at i.
func skipComment(s string, i int) int {
	if s[i+1] == '/' {
		if j := strings.IndexByte(s[i:], '\n'); j >= 0 {
			return i + j
		}
		return len(s)
	}
	if j := strings.Index(s[i+2:], "*/"); j >= 0 {
		return i + 2 + j + 2
	}
	return len(s)
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdent(c byte) bool {
	return isIdentStart(c) || c == '-' || (c >= '0' && c <= '9')
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Has reports whether key is set.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// String returns the option as a string, or def when absent.
func (o Options) String(key, def string) string {
	v, ok := o[key]
	if !ok || v == nil {
		return def
	}
	switch v := v.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return def
	}
	return string(b)
}

// Int returns the option as an integer, or def when absent or not numeric.
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// Bool returns the option as a boolean. Strings such as "true", "1" and "false"
// are accepted.
func (o Options) Bool(key string, def bool) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return def
}

// Merge returns defaults overlaid with o.
func (o Options) Merge(defaults Options) Options {
	out := Options{}
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range o {
		out[k] = v
	}
	return out
}
