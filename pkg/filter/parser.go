package filter

import (
	apperrors "github.com/allocview/pkg/errors"
)

// Expr is a node in the parsed filter expression tree.
type Expr interface {
	exprNode()
}

// AndExpr is the conjunction of two sub-expressions.
type AndExpr struct {
	X, Y Expr
}

// OrExpr is the disjunction of two sub-expressions.
type OrExpr struct {
	X, Y Expr
}

// NotExpr is a negated sub-expression. Negation is scoped to in-project
// frames: it compiles to default(frame) && !X(alloc, frame).
type NotExpr struct {
	X Expr
}

// AtomExpr is a primitive matcher, kept as raw text until compilation.
type AtomExpr struct {
	Text string
	Pos  int
}

func (*AndExpr) exprNode()  {}
func (*OrExpr) exprNode()   {}
func (*NotExpr) exprNode()  {}
func (*AtomExpr) exprNode() {}

// parser is a recursive-descent parser over the token stream. Only the
// boolean structure can fail; atom contents are validated later, at
// compile time, where unrecognized atoms fall back to the default
// predicate instead of erroring.
type parser struct {
	tokens []token
	pos    int
}

// Parse parses a filter expression into an expression tree. An empty
// expression parses to nil, which compiles to the default filter.
func Parse(src string) (Expr, error) {
	lex := &lexer{src: src}
	tokens, serr := lex.tokens()
	if serr != nil {
		return nil, apperrors.Newf(apperrors.CodeSyntaxError, "%s at offset %d", serr.msg, serr.pos)
	}

	p := &parser{tokens: tokens}
	if p.peek().kind == tokenEOF {
		return nil, nil
	}

	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, p.errorf(tok, "unexpected %s", tok.kind)
	}
	return expr, nil
}

func (p *parser) parseOr() (Expr, error) {
	x, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokenOr {
		p.advance()
		y, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		x = &OrExpr{X: x, Y: y}
	}
	return x, nil
}

func (p *parser) parseAnd() (Expr, error) {
	x, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokenAnd {
		p.advance()
		y, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		x = &AndExpr{X: x, Y: y}
	}
	return x, nil
}

func (p *parser) parseNot() (Expr, error) {
	if p.peek().kind == tokenNot {
		p.advance()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &NotExpr{X: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.kind {
	case tokenLParen:
		p.advance()
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.peek(); closing.kind != tokenRParen {
			return nil, p.errorf(closing, "expected ')', got %s", closing.kind)
		}
		p.advance()
		return x, nil
	case tokenAtom:
		p.advance()
		return &AtomExpr{Text: tok.text, Pos: tok.pos}, nil
	default:
		return nil, p.errorf(tok, "expected operand, got %s", tok.kind)
	}
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *parser) errorf(tok token, format string, args ...interface{}) error {
	args = append(args, tok.pos)
	return apperrors.Newf(apperrors.CodeSyntaxError, format+" at offset %d", args...)
}
