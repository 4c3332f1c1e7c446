// Package lexer turns PureBlocks source text into statements and expression
// text into tokens.
//
// Split is the block splitter: it works line by line and never fails.
// Lexer scans a single expression for the expression parser.
package lexer

import (
	"strings"

	"github.com/IKKNIGHT/PureBlocks/internal/script/ast"
)

// CommentMarker starts a comment line.
const CommentMarker = "#"

// Split breaks source into statements. Blank lines and lines whose trimmed
// content starts with the comment marker are dropped and do not take part in
// indentation accounting. Indent is the raw count of leading whitespace
// characters, with no tab expansion.
func Split(source string) []ast.Statement {
	var stmts []ast.Statement
	for i, raw := range strings.Split(source, "\n") {
		raw = strings.TrimSuffix(raw, "\r")
		text := strings.TrimSpace(raw)
		if text == "" || strings.HasPrefix(text, CommentMarker) {
			continue
		}
		stmts = append(stmts, ast.Statement{
			Text:   text,
			Indent: leadingWhitespace(raw),
			Line:   i + 1,
		})
	}
	return stmts
}

func leadingWhitespace(s string) int {
	n := 0
	for _, ch := range s {
		switch ch {
		case ' ', '\t', '\v', '\f', '\u00a0', '\ufeff':
			n++
		default:
			return n
		}
	}
	return n
}
