package syntax

import (
	"regexp"
	"strings"
)

// DefaultMarker is inserted by MarkOuter when no marker is given.
const DefaultMarker = "#"

// MarkOuter inserts marker right after the opening delimiter of every
// outermost block statement and of the else/end statements that belong to
// them. Depth starts at 0: end and else decrement before the check, openers
// and else increment after it.
func MarkOuter(text string, d Delimiters, marker string) string {
	d = d.OrDefault()
	if marker == "" {
		marker = DefaultMarker
	}
	open, close := regexp.QuoteMeta(d.StmtOpen), regexp.QuoteMeta(d.StmtClose)
	re := regexp.MustCompile(`(?is)(` + open + `\s*(?:if|foreach|for|with|snippet)\s.*?` + close + `)|(` +
		open + `\s*else\s*` + close + `)|(` +
		open + `\s*end\s*` + close + `)`)

	var b strings.Builder
	depth, last := 0, 0
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		isBegin, isElse, isEnd := m[2] >= 0, m[4] >= 0, m[6] >= 0

		if isEnd || isElse {
			depth--
		}
		b.WriteString(text[last:m[0]])
		if depth == 0 {
			b.WriteString(d.StmtOpen)
			b.WriteString(marker)
			b.WriteString(text[m[0]+len(d.StmtOpen) : m[1]])
		} else {
			b.WriteString(text[m[0]:m[1]])
		}
		if isBegin || isElse {
			depth++
		}
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}
