package render

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hayeah/tessera/content"
	"github.com/hayeah/tessera/syntax"
)

// evalCondition evaluates the parts strictly left to right: the first part
// seeds the result, each following part is combined with `and` or `or`
// without precedence. An empty condition is false.
func (s *Session) evalCondition(cond syntax.Condition) bool {
	result := false
	for i, part := range cond.Parts {
		v := s.evalPart(part)
		switch {
		case i == 0:
			result = v
		case part.Op == syntax.OpAnd:
			result = result && v
		case part.Op == syntax.OpOr:
			result = result || v
		}
	}
	return result
}

func (s *Session) evalPart(part syntax.Part) bool {
	switch {
	case part.Comparison != nil:
		c := part.Comparison
		return compare(s.operand(c.Left), c.Operator, s.operand(c.Right))
	case part.Boolean != nil:
		return part.Boolean.Not != (s.operand(part.Boolean.Operand) != "")
	}
	return false
}

// compare compares numerically when both sides are numbers, else as strings.
func compare(left, op, right string) bool {
	c := content.CompareValues(left, right)
	switch op {
	case "=":
		return c == 0
	case "!=":
		return c != 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	}
	return false
}

var intPrefixRe = regexp.MustCompile(`^[+-]?\d+`)

// toInt reads the leading integer of s, ignoring leading whitespace. Values
// without one are 0.
func toInt(s string) int {
	m := intPrefixRe.FindString(strings.TrimLeft(s, " \t\r\n"))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}
