package render

import (
	"bytes"
	"encoding/json"
	"strings"

	"golang.org/x/net/html"

	"github.com/hayeah/tessera/syntax"
)

// value resolves a variable name: query parameters (?name) first, then
// runtime variables, values set during the render, and the context page,
// which falls back to shared data and computed fields.
func (s *Session) value(name string) string {
	if q, ok := strings.CutPrefix(name, "?"); ok {
		return html.EscapeString(s.req.Query.Get(q))
	}
	if s.rt.IsRuntimeVar(name) {
		if v, ok := s.rt.Lookup(name); ok {
			return v
		}
	}
	if v, ok := s.overrides[name]; ok {
		return v
	}
	page := s.ctx.Get()
	if page == nil {
		v, _ := s.site.Shared.Get(name)
		return v
	}
	return page.Get(name, s.req.URL)
}

// resolve returns the value of a variable with its pipes applied.
func (s *Session) resolve(expr syntax.VarExpr) string {
	v := s.value(expr.Name)
	for _, p := range expr.Pipes {
		args := make([]string, len(p.Args))
		for i, a := range p.Args {
			args[i] = s.operand(a)
		}
		v = s.r.Pipes.Apply(p.Name, v, args)
	}
	return v
}

// expand replaces the variables in text with their values.
func (s *Session) expand(text string) string {
	return s.expandWith(text, false)
}

// expandJSON expands variables inside an option object. Values are JSON
// escaped, and a variable standing alone as a member value is quoted.
func (s *Session) expandJSON(text string) string {
	return s.expandWith(text, true)
}

func (s *Session) expandWith(text string, jsonMode bool) string {
	refs := syntax.ScanVars(text, s.r.Options.Delimiters)
	if len(refs) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, ref := range refs {
		b.WriteString(text[last:ref.Start])
		v := s.resolve(ref.Expr)
		if jsonMode {
			v = jsonEscape(v)
			if standalone(text, ref) {
				v = `"` + v + `"`
			}
		}
		b.WriteString(v)
		last = ref.End
	}
	b.WriteString(text[last:])
	return b.String()
}

// standalone reports whether ref is preceded by a colon and followed by a
// comma or closing brace, ignoring whitespace.
func standalone(text string, ref syntax.VarRef) bool {
	before := strings.TrimRight(text[:ref.Start], " \t\r\n")
	after := strings.TrimLeft(text[ref.End:], " \t\r\n")
	return strings.HasSuffix(before, ":") && (strings.HasPrefix(after, ",") || strings.HasPrefix(after, "}"))
}

// jsonEscape escapes v for use inside a JSON string literal.
func jsonEscape(v string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return v
	}
	out := strings.TrimSuffix(buf.String(), "\n")
	return out[1 : len(out)-1]
}

// operand returns the value of a statement operand. Quoted strings and
// variables are expanded; numbers and words are literal.
func (s *Session) operand(op syntax.Operand) string {
	switch op.Kind {
	case syntax.OperandString, syntax.OperandVar:
		return s.expand(op.Text)
	}
	return op.Text
}
