package syntax

import (
	"regexp"
	"strings"
)

// VarExpr is the inner part of a variable reference: a field name followed
// by zero or more pipe calls, as in `title | shorten(40) | escape`.
type VarExpr struct {
	Name  string
	Pipes []PipeCall
}

// PipeCall is one post-processing function applied to a value.
type PipeCall struct {
	Name string
	Args []Operand
}

var (
	varNameRe  = regexp.MustCompile(`^[\w\.\-:\?\+%]+`)
	pipeNameRe = regexp.MustCompile(`^[\w\-\+]+`)
)

// ParseVar parses the text between default variable delimiters.
func ParseVar(inner string) (VarExpr, bool) {
	return ParseVarWith(inner, DefaultDelimiters())
}

// ParseVarWith parses the text between variable delimiters. Pipe arguments
// may themselves be variables written with d.
func ParseVarWith(inner string, d Delimiters) (VarExpr, bool) {
	s := strings.TrimSpace(inner)
	name := varNameRe.FindString(s)
	if name == "" {
		return VarExpr{}, false
	}
	expr := VarExpr{Name: name}
	s = s[len(name):]

	for {
		s = strings.TrimLeft(s, " \t\r\n")
		if s == "" {
			return expr, true
		}
		if s[0] != '|' {
			return VarExpr{}, false
		}
		s = strings.TrimLeft(s[1:], " \t\r\n")
		pname := pipeNameRe.FindString(s)
		if pname == "" {
			return VarExpr{}, false
		}
		call := PipeCall{Name: pname}
		s = strings.TrimLeft(s[len(pname):], " \t\r\n")

		if strings.HasPrefix(s, "(") {
			args, rest, ok := scanArgs(s[1:], d)
			if !ok {
				return VarExpr{}, false
			}
			call.Args = args
			s = rest
		}
		expr.Pipes = append(expr.Pipes, call)
	}
}

// scanArgs reads a comma separated operand list up to the closing paren.
func scanArgs(s string, d Delimiters) ([]Operand, string, bool) {
	var args []Operand
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		if strings.HasPrefix(s, ")") {
			return args, s[1:], true
		}
		op, rest, ok := scanOperand(s, d)
		if !ok {
			return nil, s, false
		}
		args = append(args, op)
		s = strings.TrimLeft(rest, " \t\r\n")
		if strings.HasPrefix(s, ",") {
			s = s[1:]
		} else if !strings.HasPrefix(s, ")") {
			return nil, s, false
		}
	}
}

// VarRef is a variable reference found in a text, with its byte span.
type VarRef struct {
	Start int
	End   int
	Expr  VarExpr
}

// ScanVars finds the variable references in text. Invalid references are
// left to the surrounding literal text.
func ScanVars(text string, d Delimiters) []VarRef {
	d = d.OrDefault()
	var refs []VarRef
	pos := 0
	for pos < len(text) {
		i := strings.Index(text[pos:], d.VarOpen)
		if i < 0 {
			break
		}
		start := pos + i
		end, ok := findClose(text, start+len(d.VarOpen), d.VarOpen, d.VarClose)
		if !ok {
			break
		}
		expr, valid := ParseVarWith(text[start+len(d.VarOpen):end], d)
		if !valid {
			pos = start + len(d.VarOpen)
			continue
		}
		end += len(d.VarClose)
		refs = append(refs, VarRef{Start: start, End: end, Expr: expr})
		pos = end
	}
	return refs
}
