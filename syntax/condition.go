package syntax

import (
	"fmt"
	"strings"
)

// LogicOp joins a condition part to the accumulated result.
type LogicOp int

const (
	OpNone LogicOp = iota
	OpAnd
	OpOr
)

func (op LogicOp) String() string {
	switch op {
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	}
	return ""
}

// Comparison is `left operator right`.
type Comparison struct {
	Left     Operand
	Operator string
	Right    Operand
}

// Boolean is a truthiness test, optionally negated with `not` or `!`.
type Boolean struct {
	Not     bool
	Operand Operand
}

// Part is one term of a condition. Exactly one of Comparison and Boolean is set.
type Part struct {
	Op         LogicOp
	Comparison *Comparison
	Boolean    *Boolean
}

// Condition is an ordered list of parts, combined left to right without
// precedence.
type Condition struct {
	Parts []Part
}

var comparisonOps = []string{"!=", ">=", "<=", "=", ">", "<"}

// ParseCondition parses the expression of an if statement.
func ParseCondition(text string, d Delimiters) (Condition, error) {
	d = d.OrDefault()
	var cond Condition
	s := strings.TrimSpace(text)
	if s == "" {
		return cond, fmt.Errorf("empty condition")
	}

	for s != "" {
		var part Part
		if len(cond.Parts) > 0 {
			op, rest, ok := scanLogicOp(s)
			if !ok {
				return Condition{}, fmt.Errorf("expected and/or before %q", s)
			}
			part.Op = op
			s = rest
		}

		term, rest, err := scanTerm(s, d)
		if err != nil {
			return Condition{}, err
		}
		part.Comparison, part.Boolean = term.Comparison, term.Boolean
		cond.Parts = append(cond.Parts, part)
		s = strings.TrimSpace(rest)
	}
	return cond, nil
}

func scanLogicOp(s string) (LogicOp, string, bool) {
	for _, kw := range []struct {
		word string
		op   LogicOp
	}{{"and", OpAnd}, {"or", OpOr}} {
		if len(s) > len(kw.word) && strings.EqualFold(s[:len(kw.word)], kw.word) && isSpace(s[len(kw.word)]) {
			return kw.op, s[len(kw.word):], true
		}
	}
	return OpNone, s, false
}

func scanTerm(s string, d Delimiters) (Part, string, error) {
	s = strings.TrimLeft(s, " \t\r\n")

	not := false
	switch {
	case strings.HasPrefix(s, "!") && !strings.HasPrefix(s, "!="):
		not, s = true, s[1:]
	case len(s) > 4 && strings.EqualFold(s[:3], "not") && isSpace(s[3]):
		not, s = true, s[4:]
	}

	left, rest, ok := scanOperand(s, d)
	if !ok {
		return Part{}, s, fmt.Errorf("expected operand at %q", s)
	}
	if not {
		return Part{Boolean: &Boolean{Not: true, Operand: left}}, rest, nil
	}

	trimmed := strings.TrimLeft(rest, " \t\r\n")
	for _, op := range comparisonOps {
		if !strings.HasPrefix(trimmed, op) {
			continue
		}
		right, after, ok := scanOperand(trimmed[len(op):], d)
		if !ok {
			return Part{}, trimmed, fmt.Errorf("expected operand after %q", op)
		}
		return Part{Comparison: &Comparison{Left: left, Operator: op, Right: right}}, after, nil
	}
	return Part{Boolean: &Boolean{Operand: left}}, rest, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
