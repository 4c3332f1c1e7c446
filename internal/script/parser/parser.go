// Package parser builds expression trees for PureBlocks expressions.
//
// The grammar is deliberately order-driven rather than precedence-driven at
// its top level. For a span of tokens the first matching rule wins:
//
//	span := ε                                    empty (undefined)
//	      | STRING | NUMBER | True | False | IDENT single-token literal
//	      | IDENT "(" args ")"                   call covering the whole span
//	      | split("==") | split("!=") | split(">=") | split("<=")
//	      | split(">")  | split("<")
//	      | split("and") | split("or")
//	      | "not" span
//	      | arith
//
// split(op) cuts the span at the FIRST occurrence of op outside brackets and
// parses both halves as spans, so "a == b == c" means a == (b == c) and
// "x > 1 and y" means x > (1 and y). Parenthesize to group differently.
//
// arith is a conventional precedence parser for + - * / % ** unary minus,
// indexing, list literals, calls and parenthesized spans.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/IKKNIGHT/PureBlocks/internal/script/ast"
	"github.com/IKKNIGHT/PureBlocks/internal/script/lexer"
	"github.com/IKKNIGHT/PureBlocks/internal/script/token"
)

// ---------------------------------------------------------------------------
// ParseError
// ---------------------------------------------------------------------------

// ParseError records a single error encountered while parsing an expression.
type ParseError struct {
	Column  int // 1-based
	Message string
}

// Error implements the error interface.
func (e ParseError) Error() string {
	return fmt.Sprintf("column %d: %s", e.Column, e.Message)
}

// ErrorList is the set of errors reported for one expression.
type ErrorList []ParseError

func (l ErrorList) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// splitOrder is the order in which top-level operators are tried.
var splitOrder = []token.TokenType{
	token.TOKEN_EQ,
	token.TOKEN_NEQ,
	token.TOKEN_GTE,
	token.TOKEN_LTE,
	token.TOKEN_GT,
	token.TOKEN_LT,
	token.TOKEN_AND,
	token.TOKEN_OR,
}

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

// Parser converts an expression token stream into an expression tree.
type Parser struct {
	tokens []token.Token // without the trailing EOF
	end    int           // column of EOF
	errors []ParseError
}

// New creates a Parser for the given token slice (normally ending with
// TOKEN_EOF).
func New(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens}
	if n := len(tokens); n > 0 && tokens[n-1].Type == token.TOKEN_EOF {
		p.end = tokens[n-1].Pos
		p.tokens = tokens[:n-1]
	} else if n > 0 {
		p.end = tokens[n-1].Pos + len(tokens[n-1].Literal)
	}
	return p
}

// Parse runs the parser and returns the expression tree together with any
// errors that were encountered.
func (p *Parser) Parse() (ast.Expression, []ParseError) {
	expr := p.parseSpan(0, len(p.tokens))
	return expr, p.errors
}

// ParseExpression lexes and parses text. The returned error, if any, is an
// ErrorList.
func ParseExpression(text string) (ast.Expression, error) {
	tokens, lexErrs := lexer.New(text).Tokenize()
	if len(lexErrs) > 0 {
		errs := make(ErrorList, len(lexErrs))
		for i, le := range lexErrs {
			errs[i] = ParseError{Column: le.Column, Message: le.Message}
		}
		return nil, errs
	}
	expr, parseErrs := New(tokens).Parse()
	if len(parseErrs) > 0 {
		return nil, ErrorList(parseErrs)
	}
	return expr, nil
}

func (p *Parser) addError(pos int, msg string) {
	p.errors = append(p.errors, ParseError{Column: pos + 1, Message: msg})
}

func (p *Parser) posAt(i int) int {
	if i < len(p.tokens) {
		return p.tokens[i].Pos
	}
	return p.end
}

// ---------------------------------------------------------------------------
// Spans
// ---------------------------------------------------------------------------

func (p *Parser) parseSpan(lo, hi int) ast.Expression {
	if lo >= hi {
		return &ast.EmptyExpr{Position: p.posAt(lo)}
	}

	if hi-lo == 1 {
		if lit := p.literal(p.tokens[lo]); lit != nil {
			return lit
		}
	}

	if call := p.wholeCall(lo, hi); call != nil {
		return call
	}

	for _, op := range splitOrder {
		i := p.findTopLevel(op, lo, hi)
		if i < 0 {
			continue
		}
		opTok := p.tokens[i]
		if i == lo {
			p.addError(opTok.Pos, fmt.Sprintf("missing left operand for %s", op))
		}
		if i == hi-1 {
			p.addError(opTok.Pos, fmt.Sprintf("missing right operand for %s", op))
		}
		return &ast.BinaryExpr{
			Left:     p.parseSpan(lo, i),
			Op:       op,
			Right:    p.parseSpan(i+1, hi),
			Position: opTok.Pos,
		}
	}

	if p.tokens[lo].Type == token.TOKEN_NOT {
		if lo+1 == hi {
			p.addError(p.tokens[lo].Pos, "missing operand for not")
		}
		return &ast.UnaryExpr{
			Op:       token.TOKEN_NOT,
			Operand:  p.parseSpan(lo+1, hi),
			Position: p.tokens[lo].Pos,
		}
	}

	a := &arith{p: p, pos: lo, end: hi}
	expr := a.additive()
	if a.pos < hi {
		tok := p.tokens[a.pos]
		p.addError(tok.Pos, fmt.Sprintf("unexpected token %s", describe(tok)))
	}
	return expr
}

// literal returns a node for a single-token span, or nil.
func (p *Parser) literal(tok token.Token) ast.Expression {
	switch tok.Type {
	case token.TOKEN_STRING:
		return &ast.StringLit{Value: tok.Literal, Position: tok.Pos}
	case token.TOKEN_NUMBER:
		return p.number(tok)
	case token.TOKEN_TRUE:
		return &ast.BoolLit{Value: true, Position: tok.Pos}
	case token.TOKEN_FALSE:
		return &ast.BoolLit{Value: false, Position: tok.Pos}
	case token.TOKEN_IDENT:
		return &ast.Identifier{Name: tok.Literal, Position: tok.Pos}
	}
	return nil
}

func (p *Parser) number(tok token.Token) ast.Expression {
	f, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.addError(tok.Pos, fmt.Sprintf("invalid number literal %q", tok.Literal))
	}
	return &ast.NumberLit{Value: f, Raw: tok.Literal, Position: tok.Pos}
}

// wholeCall returns a CallExpr when the span is exactly NAME(...).
func (p *Parser) wholeCall(lo, hi int) *ast.CallExpr {
	if hi-lo < 3 || p.tokens[lo].Type != token.TOKEN_IDENT || p.tokens[lo+1].Type != token.TOKEN_LPAREN {
		return nil
	}
	if p.matching(lo+1, hi) != hi-1 {
		return nil
	}
	return &ast.CallExpr{
		Name:     p.tokens[lo].Literal,
		Args:     p.parseList(lo+2, hi-1),
		Position: p.tokens[lo].Pos,
	}
}

// findTopLevel returns the index of the first op outside any brackets, or -1.
func (p *Parser) findTopLevel(op token.TokenType, lo, hi int) int {
	depth := 0
	for i := lo; i < hi; i++ {
		switch p.tokens[i].Type {
		case token.TOKEN_LPAREN, token.TOKEN_LBRACKET:
			depth++
		case token.TOKEN_RPAREN, token.TOKEN_RBRACKET:
			if depth > 0 {
				depth--
			}
		case op:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matching returns the index of the bracket closing the one at open, or -1.
func (p *Parser) matching(open, hi int) int {
	depth := 0
	for i := open; i < hi; i++ {
		switch p.tokens[i].Type {
		case token.TOKEN_LPAREN, token.TOKEN_LBRACKET:
			depth++
		case token.TOKEN_RPAREN, token.TOKEN_RBRACKET:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseList parses comma-separated spans. A single trailing comma is allowed.
func (p *Parser) parseList(lo, hi int) []ast.Expression {
	if lo >= hi {
		return nil
	}
	var items []ast.Expression
	start := lo
	depth := 0
	for i := lo; i <= hi; i++ {
		if i < hi {
			switch p.tokens[i].Type {
			case token.TOKEN_LPAREN, token.TOKEN_LBRACKET:
				depth++
				continue
			case token.TOKEN_RPAREN, token.TOKEN_RBRACKET:
				depth--
				continue
			case token.TOKEN_COMMA:
				if depth != 0 {
					continue
				}
			default:
				continue
			}
		}
		if start == i {
			if i == hi && len(items) > 0 {
				break // trailing comma
			}
			p.addError(p.posAt(i), "empty argument")
		}
		items = append(items, p.parseSpan(start, i))
		start = i + 1
	}
	return items
}

// ---------------------------------------------------------------------------
// Arithmetic
// ---------------------------------------------------------------------------

type arith struct {
	p   *Parser
	pos int
	end int
}

func (a *arith) peekType() token.TokenType {
	if a.pos >= a.end {
		return token.TOKEN_EOF
	}
	return a.p.tokens[a.pos].Type
}

func (a *arith) additive() ast.Expression {
	left := a.multiplicative()
	for a.peekType() == token.TOKEN_PLUS || a.peekType() == token.TOKEN_MINUS {
		opTok := a.p.tokens[a.pos]
		a.pos++
		right := a.multiplicative()
		left = &ast.BinaryExpr{Left: left, Op: opTok.Type, Right: right, Position: opTok.Pos}
	}
	return left
}

func (a *arith) multiplicative() ast.Expression {
	left := a.unary()
	for {
		switch a.peekType() {
		case token.TOKEN_STAR, token.TOKEN_SLASH, token.TOKEN_PERCENT:
			opTok := a.p.tokens[a.pos]
			a.pos++
			right := a.unary()
			left = &ast.BinaryExpr{Left: left, Op: opTok.Type, Right: right, Position: opTok.Pos}
		default:
			return left
		}
	}
}

func (a *arith) unary() ast.Expression {
	if t := a.peekType(); t == token.TOKEN_MINUS || t == token.TOKEN_PLUS {
		opTok := a.p.tokens[a.pos]
		a.pos++
		return &ast.UnaryExpr{Op: opTok.Type, Operand: a.unary(), Position: opTok.Pos}
	}
	return a.power()
}

func (a *arith) power() ast.Expression {
	base := a.postfix(a.primary())
	if a.peekType() == token.TOKEN_POWER {
		opTok := a.p.tokens[a.pos]
		a.pos++
		return &ast.BinaryExpr{Left: base, Op: token.TOKEN_POWER, Right: a.unary(), Position: opTok.Pos}
	}
	return base
}

func (a *arith) postfix(expr ast.Expression) ast.Expression {
	for a.peekType() == token.TOKEN_LBRACKET {
		open := a.pos
		close := a.closeOf(open)
		if close < 0 {
			return expr
		}
		expr = &ast.IndexExpr{
			Object:   expr,
			Index:    a.p.parseSpan(open+1, close),
			Position: a.p.tokens[open].Pos,
		}
		a.pos = close + 1
	}
	return expr
}

// closeOf finds the closing bracket for the one at open, reporting an error
// and consuming the rest of the span when it is missing.
func (a *arith) closeOf(open int) int {
	close := a.p.matching(open, a.end)
	if close < 0 {
		tok := a.p.tokens[open]
		a.p.addError(tok.Pos, fmt.Sprintf("unclosed %s", tok.Literal))
		a.pos = a.end
	}
	return close
}

func (a *arith) primary() ast.Expression {
	if a.pos >= a.end {
		a.p.addError(a.p.posAt(a.pos), "unexpected end of expression")
		return &ast.EmptyExpr{Position: a.p.posAt(a.pos)}
	}
	tok := a.p.tokens[a.pos]

	switch tok.Type {
	case token.TOKEN_NUMBER, token.TOKEN_STRING, token.TOKEN_TRUE, token.TOKEN_FALSE:
		a.pos++
		return a.p.literal(tok)

	case token.TOKEN_IDENT:
		if a.pos+1 < a.end && a.p.tokens[a.pos+1].Type == token.TOKEN_LPAREN {
			close := a.closeOf(a.pos + 1)
			if close < 0 {
				return &ast.CallExpr{Name: tok.Literal, Position: tok.Pos}
			}
			call := &ast.CallExpr{
				Name:     tok.Literal,
				Args:     a.p.parseList(a.pos+2, close),
				Position: tok.Pos,
			}
			a.pos = close + 1
			return call
		}
		a.pos++
		return a.p.literal(tok)

	case token.TOKEN_LPAREN:
		close := a.closeOf(a.pos)
		if close < 0 {
			return &ast.EmptyExpr{Position: tok.Pos}
		}
		if close == a.pos+1 {
			a.p.addError(tok.Pos, "empty parentheses")
		}
		inner := a.p.parseSpan(a.pos+1, close)
		a.pos = close + 1
		return inner

	case token.TOKEN_LBRACKET:
		close := a.closeOf(a.pos)
		if close < 0 {
			return &ast.ListLit{Position: tok.Pos}
		}
		list := &ast.ListLit{
			Elements: a.p.parseList(a.pos+1, close),
			Position: tok.Pos,
		}
		a.pos = close + 1
		return list

	default:
		a.p.addError(tok.Pos, fmt.Sprintf("unexpected token %s in expression", describe(tok)))
		a.pos++
		return &ast.EmptyExpr{Position: tok.Pos}
	}
}

func describe(tok token.Token) string {
	if tok.Literal != "" {
		return fmt.Sprintf("%q", tok.Literal)
	}
	return tok.Type.String()
}
