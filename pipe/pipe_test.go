package pipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryApply(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name  string
		pipe  string
		value string
		args  []string
		want  string
	}{
		{"def on empty", "def", "", []string{"fallback"}, "fallback"},
		{"def keeps value", "def", "x", []string{"fallback"}, "x"},
		{"markdown", "markdown", "# Hi", nil, "<h1>Hi</h1>"},
		{"markdown strikethrough", "markdown", "~~old~~ new", nil, "<p><del>old</del> new</p>"},
		{"stripTags", "stripTags", "<p>a <b>b</b></p>", nil, "a b"},
		{"shorten", "shorten", "The quick brown fox jumps", []string{"15"}, "The quick ..."},
		{"shorten short", "shorten", "Short", []string{"15"}, "Short"},
		{"shorten custom ellipsis", "shorten", "one two three", []string{"9", "…"}, "one two…"},
		{"number shorthand", "14", "The quick brown fox", nil, "The quick ..."},
		{"sanitize", "sanitize", "Hello, World & Co!", nil, "hello-world-co"},
		{"sanitize accents", "sanitize", "Crème Brûlée", nil, "creme-brulee"},
		{"escape", "escape", `<a href="x">`, nil, "&lt;a href=&#34;x&#34;&gt;"},
		{"lower", "lower", "ABC", nil, "abc"},
		{"upper", "upper", "abc", nil, "ABC"},
		{"replace", "replace", "a-b-c", []string{"-", "+"}, "a+b+c"},
		{"replace regexp", "replace", "a1b22c", []string{`/\d+/`, "#"}, "a#b#c"},
		{"dateFormat", "dateFormat", "2024-03-04", []string{"02.01.2006"}, "04.03.2024"},
		{"dateFormat default", "dateFormat", "2024-03-04 10:00:00", nil, "Mar 4, 2024"},
		{"dateFormat passthrough", "dateFormat", "soon", nil, "soon"},
		{"unknown pipe", "nope", "value", nil, "value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Apply(tt.pipe, tt.value, tt.args))
		})
	}
}

func TestRegister(t *testing.T) {
	assert := assert.New(t)
	r := NewRegistry()
	assert.False(r.Has("twice"))
	r.Register("twice", func(v string, _ []string) string { return v + v })
	assert.True(r.Has("twice"))
	assert.Equal("abab", r.Apply("twice", "ab", nil))
}
