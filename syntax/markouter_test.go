package syntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkOuter(t *testing.T) {
	d := DefaultDelimiters()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "siblings",
			in:   `<@ if a @>1<@ end @><@ if b @>2<@ end @>`,
			want: `<@# if a @>1<@# end @><@# if b @>2<@# end @>`,
		},
		{
			name: "nested",
			in:   `<@ if a @><@ if b @>x<@ else @>y<@ end @><@ else @>z<@ end @>`,
			want: `<@# if a @><@ if b @>x<@ else @>y<@ end @><@# else @>z<@# end @>`,
		},
		{
			name: "calls and includes untouched",
			in:   `<@ header.php @><@ foreach in pagelist @><@ format @><@ end @>`,
			want: `<@ header.php @><@# foreach in pagelist @><@ format @><@# end @>`,
		},
		{
			name: "stray end goes negative",
			in:   `<@ end @><@ if a @>x<@ end @>`,
			want: `<@ end @><@ if a @>x<@ end @>`,
		},
		{
			name: "no statements",
			in:   "plain text",
			want: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MarkOuter(tt.in, d, ""))
		})
	}
}

// markedOpeners returns the source offsets of block openers MarkOuter marked.
func markedOpeners(marked string, d Delimiters, marker string) []int {
	var offsets []int
	prefix := d.StmtOpen + marker
	shift, idx := 0, 0
	for {
		i := strings.Index(marked[idx:], prefix)
		if i < 0 {
			return offsets
		}
		at := idx + i
		rest := strings.TrimLeft(marked[at+len(prefix):], " \t\r\n")
		word := strings.ToLower(keywordRe.FindString(rest))
		if _, ok := map[string]bool{"if": true, "for": true, "foreach": true, "with": true, "snippet": true}[word]; ok {
			offsets = append(offsets, at-shift)
		}
		shift += len(marker)
		idx = at + len(prefix)
	}
}

func TestMarkOuterMatchesParser(t *testing.T) {
	d := DefaultDelimiters()
	sources := []string{
		`<@ if @{ a } @>A<@ if @{ b } @>B<@ else @>C<@ end @><@ end @>tail<@ with "/x" @>w<@ end @>`,
		`<@ foreach in pagelist @><@ foreach in tags @>@{ :tag }<@ end @><@ else @>none<@ end @>`,
		"<@ snippet s @>\n<@ for 1 to 3 @>@{ :i }<@ end @>\n<@ end @>\n<@ s @>",
		`<@ with prev @><@ if @{ x } @>y<@ end @><@ else @><@ foreach "*.jpg" @>f<@ end @><@ end @>`,
	}

	for _, src := range sources {
		tree, errs := Parse(src, d)
		assert.Empty(t, errs, src)

		var want []int
		for _, n := range tree.Nodes {
			switch n.(type) {
			case *IfNode, *ForNode, *ForeachNode, *WithNode, *SnippetNode:
				want = append(want, n.Pos().Offset)
			}
		}
		got := markedOpeners(MarkOuter(src, d, "~"), d, "~")
		assert.Equal(t, want, got, src)
	}
}
