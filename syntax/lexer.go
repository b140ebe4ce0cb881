package syntax

import (
	"fmt"
	"sort"
	"strings"
)

// TokenKind tags a lexed token.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenVar
	TokenStmt
)

func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenVar:
		return "var"
	case TokenStmt:
		return "stmt"
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// Position locates a token or node in its source.
type Position struct {
	Offset int
	Line   int
	Col    int
}

// Pos returns the position itself, so nodes embedding it satisfy Node.
func (p Position) Pos() Position { return p }

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is one lexed unit. Raw holds the full source text including
// delimiters; Inner holds the text between the delimiters.
type Token struct {
	Kind  TokenKind
	Pos   Position
	Raw   string
	Inner string
}

// lineIndex maps byte offsets to line/column positions.
type lineIndex []int

func newLineIndex(text string) lineIndex {
	idx := lineIndex{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (li lineIndex) position(offset int) Position {
	line := sort.Search(len(li), func(i int) bool { return li[i] > offset }) - 1
	return Position{Offset: offset, Line: line + 1, Col: offset - li[line] + 1}
}

// Lex splits text into text, variable and statement tokens. Comments are
// dropped. An opening delimiter without a matching closing delimiter, or a
// variable whose inner text is not a valid expression, is kept as text.
func Lex(text string, d Delimiters) []Token {
	d = d.OrDefault()
	lx := &lexer{src: text, d: d, lines: newLineIndex(text)}
	lx.run()
	return lx.tokens
}

type lexer struct {
	src    string
	d      Delimiters
	lines  lineIndex
	tokens []Token
	// start of the pending text run
	textStart int
}

func (lx *lexer) run() {
	pos := 0
	for pos < len(lx.src) {
		kind, at := lx.nextOpen(pos)
		if at < 0 {
			break
		}

		switch kind {
		case TokenStmt:
			end, ok := findClose(lx.src, at+len(lx.d.StmtOpen), "", lx.d.StmtClose)
			if !ok {
				pos = at + len(lx.d.StmtOpen)
				continue
			}
			lx.flushText(at)
			lx.emit(TokenStmt, at, end+len(lx.d.StmtClose), lx.src[at+len(lx.d.StmtOpen):end])
			pos = end + len(lx.d.StmtClose)

		case TokenVar:
			end, ok := findClose(lx.src, at+len(lx.d.VarOpen), lx.d.VarOpen, lx.d.VarClose)
			if !ok {
				pos = at + len(lx.d.VarOpen)
				continue
			}
			inner := lx.src[at+len(lx.d.VarOpen) : end]
			if _, valid := ParseVarWith(inner, lx.d); !valid {
				pos = at + len(lx.d.VarOpen)
				continue
			}
			lx.flushText(at)
			lx.emit(TokenVar, at, end+len(lx.d.VarClose), inner)
			pos = end + len(lx.d.VarClose)

		default: // comment
			end := strings.Index(lx.src[at+len(lx.d.CommentOpen):], lx.d.CommentClose)
			if end < 0 {
				pos = at + len(lx.d.CommentOpen)
				continue
			}
			lx.flushText(at)
			pos = at + len(lx.d.CommentOpen) + end + len(lx.d.CommentClose)
			lx.textStart = pos
		}
	}
	lx.flushText(len(lx.src))
}

// commentKind marks a comment opener in nextOpen. Comments never become tokens.
const commentKind TokenKind = -1

// nextOpen finds the earliest opening delimiter at or after pos. When two
// delimiters start at the same offset the longer one wins.
func (lx *lexer) nextOpen(pos int) (TokenKind, int) {
	best, bestKind, bestLen := -1, TokenText, 0
	try := func(kind TokenKind, open string) {
		i := strings.Index(lx.src[pos:], open)
		if i < 0 {
			return
		}
		i += pos
		if best < 0 || i < best || (i == best && len(open) > bestLen) {
			best, bestKind, bestLen = i, kind, len(open)
		}
	}
	try(commentKind, lx.d.CommentOpen)
	try(TokenStmt, lx.d.StmtOpen)
	try(TokenVar, lx.d.VarOpen)
	return bestKind, best
}

func (lx *lexer) flushText(end int) {
	if end > lx.textStart {
		lx.emit(TokenText, lx.textStart, end, lx.src[lx.textStart:end])
	}
	lx.textStart = end
}

func (lx *lexer) emit(kind TokenKind, start, end int, inner string) {
	lx.tokens = append(lx.tokens, Token{
		Kind:  kind,
		Pos:   lx.lines.position(start),
		Raw:   lx.src[start:end],
		Inner: inner,
	})
	lx.textStart = end
}

// findClose returns the offset of the closing delimiter, skipping quoted
// strings and, when open is set, nested open/close pairs. If quotes or pairs
// are unbalanced it falls back to the first occurrence.
func findClose(src string, from int, open, close string) (int, bool) {
	var quote byte
	depth := 0
	for i := from; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case open != "" && strings.HasPrefix(src[i:], open):
			depth++
			i += len(open) - 1
		case strings.HasPrefix(src[i:], close):
			if depth == 0 {
				return i, true
			}
			depth--
			i += len(close) - 1
		}
	}
	if i := strings.Index(src[from:], close); i >= 0 {
		return from + i, true
	}
	return -1, false
}
