package lexer

import (
	"fmt"

	"github.com/IKKNIGHT/PureBlocks/internal/script/token"
)

// LexError records a lexing error at a specific column of an expression.
type LexError struct {
	Column  int // 1-based
	Message string
}

// Error implements the error interface.
func (e LexError) Error() string {
	return fmt.Sprintf("column %d: %s", e.Column, e.Message)
}

// Lexer scans a single-line expression into tokens.
type Lexer struct {
	source []rune
	pos    int // current position in source (index into rune slice)
	tokens []token.Token
	errors []LexError
}

// New creates a Lexer for the given expression text.
func New(source string) *Lexer {
	return &Lexer{source: []rune(source)}
}

// Tokenize scans the entire expression and returns the resulting tokens and
// any lexing errors. The token slice always ends with TOKEN_EOF.
func (l *Lexer) Tokenize() ([]token.Token, []LexError) {
	for {
		l.skipWhitespace()

		if l.atEnd() {
			l.emitAt(token.TOKEN_EOF, "", l.pos)
			break
		}

		ch := l.peek()

		switch {
		case isIdentStart(ch):
			l.scanIdentifier()

		case isDigit(ch), ch == '.' && isDigit(l.peekAt(1)):
			l.scanNumber()

		case ch == '"' || ch == '\'':
			l.scanString(ch)

		default:
			l.scanOperatorOrDelimiter()
		}
	}

	return l.tokens, l.errors
}

// ---------------------------------------------------------------------------
// Character helpers
// ---------------------------------------------------------------------------

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.source)
}

func (l *Lexer) peek() rune {
	if l.atEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekAt(offset int) rune {
	idx := l.pos + offset
	if idx >= len(l.source) {
		return 0
	}
	return l.source[idx]
}

func (l *Lexer) advance() rune {
	ch := l.source[l.pos]
	l.pos++
	return ch
}

func (l *Lexer) emitAt(tt token.TokenType, literal string, pos int) {
	l.tokens = append(l.tokens, token.Token{Type: tt, Literal: literal, Pos: pos})
}

func (l *Lexer) addError(pos int, msg string) {
	l.errors = append(l.errors, LexError{Column: pos + 1, Message: msg})
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Identifiers and keywords
// ---------------------------------------------------------------------------

func isIdentStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func (l *Lexer) scanIdentifier() {
	start := l.pos
	for !l.atEnd() && isIdentPart(l.peek()) {
		l.advance()
	}
	literal := string(l.source[start:l.pos])
	l.emitAt(token.KeywordLookup(literal), literal, start)
}

// ---------------------------------------------------------------------------
// Numbers (integer, decimal, scientific notation)
// ---------------------------------------------------------------------------

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func (l *Lexer) scanNumber() {
	start := l.pos

	for !l.atEnd() && isDigit(l.peek()) {
		l.advance()
	}

	if !l.atEnd() && l.peek() == '.' {
		l.advance()
		for !l.atEnd() && isDigit(l.peek()) {
			l.advance()
		}
	}

	if !l.atEnd() && (l.peek() == 'e' || l.peek() == 'E') {
		l.advance()
		if !l.atEnd() && (l.peek() == '+' || l.peek() == '-') {
			l.advance()
		}
		if l.atEnd() || !isDigit(l.peek()) {
			literal := string(l.source[start:l.pos])
			l.addError(start, fmt.Sprintf("invalid number literal: %s", literal))
			l.emitAt(token.TOKEN_ILLEGAL, literal, start)
			return
		}
		for !l.atEnd() && isDigit(l.peek()) {
			l.advance()
		}
	}

	l.emitAt(token.TOKEN_NUMBER, string(l.source[start:l.pos]), start)
}

// ---------------------------------------------------------------------------
// Strings (single or double quoted, no escape processing)
// ---------------------------------------------------------------------------

func (l *Lexer) scanString(quote rune) {
	start := l.pos
	l.advance() // opening quote
	begin := l.pos
	for !l.atEnd() {
		if l.peek() == quote {
			value := string(l.source[begin:l.pos])
			l.advance() // closing quote
			l.emitAt(token.TOKEN_STRING, value, start)
			return
		}
		l.advance()
	}
	l.addError(start, "unterminated string literal")
	l.emitAt(token.TOKEN_ILLEGAL, string(l.source[start:]), start)
}

// ---------------------------------------------------------------------------
// Operators and delimiters
// ---------------------------------------------------------------------------

func (l *Lexer) scanOperatorOrDelimiter() {
	pos := l.pos
	ch := l.peek()
	next := l.peekAt(1)

	// Two-character operators (check first)
	var two token.TokenType = token.TOKEN_ILLEGAL
	switch {
	case ch == '=' && next == '=':
		two = token.TOKEN_EQ
	case ch == '!' && next == '=':
		two = token.TOKEN_NEQ
	case ch == '>' && next == '=':
		two = token.TOKEN_GTE
	case ch == '<' && next == '=':
		two = token.TOKEN_LTE
	case ch == '*' && next == '*':
		two = token.TOKEN_POWER
	}
	if two != token.TOKEN_ILLEGAL {
		l.advance()
		l.advance()
		l.emitAt(two, two.String(), pos)
		return
	}

	l.advance()
	switch ch {
	case '+':
		l.emitAt(token.TOKEN_PLUS, "+", pos)
	case '-':
		l.emitAt(token.TOKEN_MINUS, "-", pos)
	case '*':
		l.emitAt(token.TOKEN_STAR, "*", pos)
	case '/':
		l.emitAt(token.TOKEN_SLASH, "/", pos)
	case '%':
		l.emitAt(token.TOKEN_PERCENT, "%", pos)
	case '>':
		l.emitAt(token.TOKEN_GT, ">", pos)
	case '<':
		l.emitAt(token.TOKEN_LT, "<", pos)
	case '(':
		l.emitAt(token.TOKEN_LPAREN, "(", pos)
	case ')':
		l.emitAt(token.TOKEN_RPAREN, ")", pos)
	case '[':
		l.emitAt(token.TOKEN_LBRACKET, "[", pos)
	case ']':
		l.emitAt(token.TOKEN_RBRACKET, "]", pos)
	case ',':
		l.emitAt(token.TOKEN_COMMA, ",", pos)
	default:
		l.addError(pos, fmt.Sprintf("unexpected character: %c", ch))
		l.emitAt(token.TOKEN_ILLEGAL, string(ch), pos)
	}
}
