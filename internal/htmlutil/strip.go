package htmlutil

import (
	"strings"

	"golang.org/x/net/html"
)

// StripTags removes markup from s and returns its text content. Entities are
// decoded. The contents of script and style elements are dropped.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			if name, _ := z.TagName(); isRaw(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRaw(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isRaw(name []byte) bool {
	return string(name) == "script" || string(name) == "style"
}
