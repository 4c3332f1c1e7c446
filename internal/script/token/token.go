package token

// TokenType represents the type of a lexical token inside an expression.
type TokenType int

const (
	// Special tokens
	TOKEN_EOF     TokenType = iota
	TOKEN_ILLEGAL           // unrecognized character

	// Identifiers and literals
	TOKEN_IDENT  // user-defined identifier
	TOKEN_NUMBER // numeric literal (integer, decimal, scientific notation)
	TOKEN_STRING // quoted literal, single or double quotes

	// Keywords (case-sensitive)
	TOKEN_TRUE
	TOKEN_FALSE
	TOKEN_AND
	TOKEN_OR
	TOKEN_NOT

	// Arithmetic operators
	TOKEN_PLUS    // +
	TOKEN_MINUS   // -
	TOKEN_STAR    // *
	TOKEN_SLASH   // /
	TOKEN_PERCENT // %
	TOKEN_POWER   // **

	// Comparison operators
	TOKEN_EQ  // ==
	TOKEN_NEQ // !=
	TOKEN_GTE // >=
	TOKEN_LTE // <=
	TOKEN_GT  // >
	TOKEN_LT  // <

	// Delimiters
	TOKEN_LPAREN   // (
	TOKEN_RPAREN   // )
	TOKEN_LBRACKET // [
	TOKEN_RBRACKET // ]
	TOKEN_COMMA    // ,
)

// Token is a single lexical token produced by the expression lexer.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int // 0-based rune offset into the expression text
}

// keywords maps reserved words to their token types. Lookup is
// case-sensitive: "true" is an identifier, "True" a literal.
var keywords = map[string]TokenType{
	"True":  TOKEN_TRUE,
	"False": TOKEN_FALSE,
	"and":   TOKEN_AND,
	"or":    TOKEN_OR,
	"not":   TOKEN_NOT,
}

// KeywordLookup returns the keyword TokenType for ident, or TOKEN_IDENT if it
// is not a keyword.
func KeywordLookup(ident string) TokenType {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return TOKEN_IDENT
}

var tokenNames = map[TokenType]string{
	TOKEN_EOF:     "EOF",
	TOKEN_ILLEGAL: "ILLEGAL",

	TOKEN_IDENT:  "IDENT",
	TOKEN_NUMBER: "NUMBER",
	TOKEN_STRING: "STRING",

	TOKEN_TRUE:  "True",
	TOKEN_FALSE: "False",
	TOKEN_AND:   "and",
	TOKEN_OR:    "or",
	TOKEN_NOT:   "not",

	TOKEN_PLUS:    "+",
	TOKEN_MINUS:   "-",
	TOKEN_STAR:    "*",
	TOKEN_SLASH:   "/",
	TOKEN_PERCENT: "%",
	TOKEN_POWER:   "**",

	TOKEN_EQ:  "==",
	TOKEN_NEQ: "!=",
	TOKEN_GTE: ">=",
	TOKEN_LTE: "<=",
	TOKEN_GT:  ">",
	TOKEN_LT:  "<",

	TOKEN_LPAREN:   "(",
	TOKEN_RPAREN:   ")",
	TOKEN_LBRACKET: "[",
	TOKEN_RBRACKET: "]",
	TOKEN_COMMA:    ",",
}

// String returns a human-readable name for the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}
