package filter

import (
	"strings"
	"unicode"
)

// tokenKind classifies a lexer token.
type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenLParen
	tokenRParen
	tokenAnd
	tokenOr
	tokenNot
	tokenAtom
)

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "end of expression"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenAnd:
		return "'&&'"
	case tokenOr:
		return "'||'"
	case tokenNot:
		return "'!'"
	case tokenAtom:
		return "atom"
	default:
		return "unknown token"
	}
}

// token is a single lexeme with its byte offset in the source.
type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexer splits a filter expression into boolean-structure tokens and
// opaque atoms. Quoted strings and /regex/ literals are scanned as
// single atoms, including any attached :line suffix.
type lexer struct {
	src string
	pos int
	err *syntaxError
}

// syntaxError reports a structural error with its position.
type syntaxError struct {
	msg string
	pos int
}

func (l *lexer) tokens() ([]token, *syntaxError) {
	var out []token
	for {
		tok, ok := l.next()
		if !ok {
			return nil, l.err
		}
		out = append(out, tok)
		if tok.kind == tokenEOF {
			return out, nil
		}
	}
}

func (l *lexer) next() (token, bool) {
	for l.pos < len(l.src) && unicode.IsSpace(rune(l.src[l.pos])) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokenEOF, pos: l.pos}, true
	}

	start := l.pos
	switch c := l.src[l.pos]; c {
	case '(':
		l.pos++
		return token{kind: tokenLParen, pos: start}, true
	case ')':
		l.pos++
		return token{kind: tokenRParen, pos: start}, true
	case '!':
		l.pos++
		return token{kind: tokenNot, pos: start}, true
	case '&', '|':
		if l.pos+1 >= len(l.src) || l.src[l.pos+1] != c {
			l.err = &syntaxError{msg: "unknown operator " + string(c), pos: start}
			return token{}, false
		}
		l.pos += 2
		kind := tokenAnd
		if c == '|' {
			kind = tokenOr
		}
		return token{kind: kind, pos: start}, true
	case '"':
		l.scanQuoted()
		l.scanAtomTail()
		return token{kind: tokenAtom, text: l.src[start:l.pos], pos: start}, true
	case '/':
		l.scanDelimited('/')
		l.scanAtomTail()
		return token{kind: tokenAtom, text: l.src[start:l.pos], pos: start}, true
	default:
		l.scanAtomTail()
		return token{kind: tokenAtom, text: l.src[start:l.pos], pos: start}, true
	}
}

// scanQuoted consumes a double-quoted string. An unterminated quote is
// not a structural error: the rest of the input becomes atom text and
// later falls through to the default predicate.
func (l *lexer) scanQuoted() {
	l.scanDelimited('"')
}

func (l *lexer) scanDelimited(close byte) {
	l.pos++ // opening delimiter
	for l.pos < len(l.src) {
		if l.src[l.pos] == close {
			l.pos++
			return
		}
		l.pos++
	}
}

// scanAtomTail consumes atom characters up to whitespace or a
// boolean-structure character.
func (l *lexer) scanAtomTail() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if unicode.IsSpace(rune(c)) || strings.IndexByte("()!&|", c) >= 0 {
			return
		}
		l.pos++
	}
}
