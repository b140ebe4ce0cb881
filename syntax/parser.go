package syntax

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxNesting bounds the depth of nested block statements.
const MaxNesting = 100

// Error is a parse problem. Parsing never fails; errors describe what was
// dropped or repaired.
type Error struct {
	Pos Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

type stmtKind int

const (
	stmtUnknown stmtKind = iota
	stmtEnd
	stmtElse
	stmtIf
	stmtFor
	stmtForeach
	stmtWith
	stmtSnippet
	stmtInclude
	stmtCall
)

var stmtNames = map[stmtKind]string{
	stmtIf:      "if",
	stmtFor:     "for",
	stmtForeach: "foreach",
	stmtWith:    "with",
	stmtSnippet: "snippet",
}

var (
	keywordRe = regexp.MustCompile(`^[A-Za-z]+`)
	includeRe = regexp.MustCompile(`^[\w/\-\.]+\.[A-Za-z0-9]{2,5}$`)
	callRe    = regexp.MustCompile(`(?s)^([\w/\-]+)\s*(\{.*\})?$`)
	nameRe    = regexp.MustCompile(`^[\w/\-]+$`)
)

// classify finds the statement kind from the text between statement
// delimiters. Block keywords must be followed by whitespace and an argument,
// a bare keyword is a call.
func classify(inner string) (stmtKind, string) {
	s := strings.TrimSpace(inner)
	word := strings.ToLower(keywordRe.FindString(s))
	rest := s[len(word):]

	switch word {
	case "end":
		if rest == "" {
			return stmtEnd, ""
		}
	case "else":
		if rest == "" {
			return stmtElse, ""
		}
	case "if", "for", "foreach", "with", "snippet":
		if rest != "" && isSpace(rest[0]) && strings.TrimSpace(rest) != "" {
			kind := map[string]stmtKind{
				"if": stmtIf, "for": stmtFor, "foreach": stmtForeach,
				"with": stmtWith, "snippet": stmtSnippet,
			}[word]
			return kind, strings.TrimSpace(rest)
		}
	}

	switch {
	case includeRe.MatchString(s):
		return stmtInclude, s
	case callRe.MatchString(s):
		return stmtCall, s
	}
	return stmtUnknown, s
}

// Parse builds the syntax tree of a template.
func Parse(text string, d Delimiters) (*Tree, []*Error) {
	d = d.OrDefault()
	p := &parser{tokens: Lex(text, d), d: d}
	nodes, _ := p.parseList(false)
	return &Tree{Source: text, Nodes: nodes}, p.errs
}

type parser struct {
	tokens []Token
	pos    int
	d      Delimiters
	depth  int
	errs   []*Error
}

func (p *parser) errorf(pos Position, format string, args ...any) {
	p.errs = append(p.errs, &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// parseList parses nodes until the end of input or, inside a block, until an
// else or end statement, which is returned as the terminator.
func (p *parser) parseList(inBlock bool) ([]Node, *Token) {
	var nodes []Node
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		p.pos++

		switch tok.Kind {
		case TokenText:
			nodes = append(nodes, &TextNode{Position: tok.Pos, Text: tok.Raw})
			continue
		case TokenVar:
			expr, _ := ParseVarWith(tok.Inner, p.d)
			nodes = append(nodes, &VarNode{Position: tok.Pos, Raw: tok.Raw, Expr: expr})
			continue
		}

		kind, arg := classify(tok.Inner)
		switch kind {
		case stmtEnd, stmtElse:
			if inBlock {
				return nodes, &tok
			}
			p.errorf(tok.Pos, "unexpected %q without an open block", strings.TrimSpace(tok.Inner))

		case stmtInclude:
			nodes = append(nodes, &IncludeNode{Position: tok.Pos, Path: arg})

		case stmtCall:
			m := callRe.FindStringSubmatch(arg)
			nodes = append(nodes, &CallNode{Position: tok.Pos, Name: m[1], Options: m[2]})

		case stmtUnknown:
			p.errorf(tok.Pos, "unrecognized statement %q", arg)
			nodes = append(nodes, &TextNode{Position: tok.Pos, Text: tok.Raw})

		default:
			if p.depth >= MaxNesting {
				p.errorf(tok.Pos, "%s nested deeper than %d, block dropped", stmtNames[kind], MaxNesting)
				p.skipBlock()
				continue
			}
			if n := p.parseBlock(kind, arg, tok); n != nil {
				nodes = append(nodes, n)
			}
		}
	}
	return nodes, nil
}

// skipBlock consumes tokens up to the end statement closing the block whose
// opener was just read, so enclosing blocks keep their own end.
func (p *parser) skipBlock() {
	depth := 0
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		p.pos++
		if tok.Kind != TokenStmt {
			continue
		}
		switch kind, _ := classify(tok.Inner); kind {
		case stmtIf, stmtFor, stmtForeach, stmtWith, stmtSnippet:
			depth++
		case stmtEnd:
			if depth == 0 {
				return
			}
			depth--
		}
	}
}

// parseBlock parses the body and optional else branch of a block statement.
// A malformed header still consumes its block so that pairing stays intact.
func (p *parser) parseBlock(kind stmtKind, arg string, open Token) Node {
	p.depth++
	defer func() { p.depth-- }()

	name := stmtNames[kind]
	allowElse := kind == stmtIf || kind == stmtWith || kind == stmtForeach

	body, term := p.parseList(true)
	var elseBody []Node
	seenElse := false
	for term != nil && term.Kind == TokenStmt {
		k, _ := classify(term.Inner)
		if k == stmtEnd {
			break
		}
		// else
		switch {
		case !allowElse:
			p.errorf(term.Pos, "else is not allowed in %s, branch dropped", name)
		case seenElse:
			p.errorf(term.Pos, "duplicate else in %s, branch dropped", name)
		}
		branch, next := p.parseList(true)
		if allowElse && !seenElse {
			elseBody = branch
		}
		seenElse = true
		term = next
	}
	if term == nil {
		p.errorf(open.Pos, "unclosed %s, closed at end of input", name)
	}

	pos := open.Pos
	switch kind {
	case stmtIf:
		cond, err := ParseCondition(arg, p.d)
		if err != nil {
			p.errorf(pos, "if: %v", err)
		}
		return &IfNode{Position: pos, Source: arg, Cond: cond, Body: body, Else: elseBody}

	case stmtFor:
		start, rest, ok := scanOperand(arg, p.d)
		var end Operand
		if ok {
			rest = strings.TrimLeft(rest, " \t\r\n")
			ok = len(rest) > 2 && strings.EqualFold(rest[:2], "to") && isSpace(rest[2])
			if ok {
				end, rest, ok = scanOperand(rest[2:], p.d)
			}
			ok = ok && strings.TrimSpace(rest) == ""
		}
		if !ok {
			p.errorf(pos, "malformed for statement %q", arg)
			return nil
		}
		return &ForNode{Position: pos, Start: start, End: end, Body: body}

	case stmtForeach, stmtWith:
		if kind == stmtForeach && len(arg) > 3 && strings.EqualFold(arg[:2], "in") && isSpace(arg[2]) {
			arg = strings.TrimSpace(arg[3:])
		}
		target, opts, ok := p.targetAndOptions(arg)
		if !ok {
			p.errorf(pos, "malformed %s statement %q", name, arg)
			return nil
		}
		if kind == stmtWith {
			return &WithNode{Position: pos, Target: target, Options: opts, Body: body, Else: elseBody}
		}
		return &ForeachNode{Position: pos, Target: target, Options: opts, Body: body, Else: elseBody}

	case stmtSnippet:
		if !nameRe.MatchString(arg) {
			p.errorf(pos, "malformed snippet name %q", arg)
			return nil
		}
		return &SnippetNode{Position: pos, Name: arg, Body: body}
	}
	return nil
}

func (p *parser) targetAndOptions(arg string) (Operand, string, bool) {
	target, rest, ok := scanOperand(arg, p.d)
	if !ok {
		return Operand{}, "", false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return target, "", true
	}
	if strings.HasPrefix(rest, "{") && strings.HasSuffix(rest, "}") {
		return target, rest, true
	}
	return Operand{}, "", false
}
