package syntax

import (
	"regexp"
	"strings"
)

// OperandKind tags how an operand was written.
type OperandKind int

const (
	OperandString OperandKind = iota
	OperandNumber
	OperandVar
	OperandWord
)

// Operand is a target, loop bound or comparison side. Text holds the
// unescaped contents of a quoted string, the raw variable markup of a
// variable, or the literal text of a number or word.
type Operand struct {
	Kind OperandKind
	Text string
}

// IsWord reports whether the operand is the bare keyword w (case insensitive).
func (o Operand) IsWord(w string) bool {
	return o.Kind == OperandWord && strings.EqualFold(o.Text, w)
}

var numberRe = regexp.MustCompile(`^-?\d+(?:\.\d+)?`)

const wordStop = " \t\r\n{}()=!<>\"',|"

// scanOperand reads one operand from the start of s and returns the rest.
func scanOperand(s string, d Delimiters) (Operand, string, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	if s == "" {
		return Operand{}, s, false
	}

	switch c := s[0]; {
	case c == '"' || c == '\'':
		var b strings.Builder
		for i := 1; i < len(s); i++ {
			switch s[i] {
			case '\\':
				if i+1 < len(s) {
					i++
					b.WriteByte(s[i])
				}
			case c:
				return Operand{Kind: OperandString, Text: b.String()}, s[i+1:], true
			default:
				b.WriteByte(s[i])
			}
		}
		return Operand{}, s, false

	case d.VarOpen != "" && strings.HasPrefix(s, d.VarOpen):
		end, ok := findClose(s, len(d.VarOpen), d.VarOpen, d.VarClose)
		if !ok {
			return Operand{}, s, false
		}
		if _, valid := ParseVarWith(s[len(d.VarOpen):end], d); !valid {
			return Operand{}, s, false
		}
		end += len(d.VarClose)
		return Operand{Kind: OperandVar, Text: s[:end]}, s[end:], true
	}

	if m := numberRe.FindString(s); m != "" {
		rest := s[len(m):]
		if rest == "" || strings.IndexByte(wordStop, rest[0]) >= 0 {
			return Operand{Kind: OperandNumber, Text: m}, rest, true
		}
	}

	end := strings.IndexAny(s, wordStop)
	if end < 0 {
		end = len(s)
	}
	if end == 0 {
		return Operand{}, s, false
	}
	return Operand{Kind: OperandWord, Text: s[:end]}, s[end:], true
}
