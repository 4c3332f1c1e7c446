// Package ast defines the node types for PureBlocks programs: the Statement
// record produced by the block splitter and the expression tree produced by
// the expression parser.
package ast

import (
	"fmt"
	"strings"

	"github.com/IKKNIGHT/PureBlocks/internal/script/token"
)

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// Statement is one logical source line. Nesting is encoded by Indent alone;
// a block is the run of following statements indented deeper than its header.
type Statement struct {
	Text   string `json:"text"`   // trimmed source
	Indent int    `json:"indent"` // count of leading whitespace characters
	Line   int    `json:"line"`   // 1-based source line
}

func (s Statement) String() string {
	return fmt.Sprintf("%d:%s%s", s.Line, strings.Repeat(" ", s.Indent), s.Text)
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Expression is a node of a parsed expression.
type Expression interface {
	Pos() int // 0-based column of the node within the expression text
	exprNode()
}

// EmptyExpr is the empty expression; it evaluates to the undefined value.
type EmptyExpr struct {
	Position int
}

func (n *EmptyExpr) Pos() int  { return n.Position }
func (n *EmptyExpr) exprNode() {}

// NumberLit represents a numeric literal.
type NumberLit struct {
	Value    float64
	Raw      string
	Position int
}

func (n *NumberLit) Pos() int  { return n.Position }
func (n *NumberLit) exprNode() {}

// StringLit represents a quoted literal; no escape processing is applied.
type StringLit struct {
	Value    string
	Position int
}

func (n *StringLit) Pos() int  { return n.Position }
func (n *StringLit) exprNode() {}

// BoolLit represents True or False.
type BoolLit struct {
	Value    bool
	Position int
}

func (n *BoolLit) Pos() int  { return n.Position }
func (n *BoolLit) exprNode() {}

// Identifier represents a variable reference.
type Identifier struct {
	Name     string
	Position int
}

func (n *Identifier) Pos() int  { return n.Position }
func (n *Identifier) exprNode() {}

// BinaryExpr represents left op right. Op is one of the comparison,
// logical (AND/OR) or arithmetic token types.
type BinaryExpr struct {
	Left     Expression
	Op       token.TokenType
	Right    Expression
	Position int
}

func (n *BinaryExpr) Pos() int  { return n.Position }
func (n *BinaryExpr) exprNode() {}

// UnaryExpr represents a prefix operator (not, -, +).
type UnaryExpr struct {
	Op       token.TokenType
	Operand  Expression
	Position int
}

func (n *UnaryExpr) Pos() int  { return n.Position }
func (n *UnaryExpr) exprNode() {}

// CallExpr represents a built-in call such as is_prime(n) or range(a, b).
type CallExpr struct {
	Name     string
	Args     []Expression
	Position int
}

func (n *CallExpr) Pos() int  { return n.Position }
func (n *CallExpr) exprNode() {}

// ListLit represents [elem1, elem2, ...].
type ListLit struct {
	Elements []Expression
	Position int
}

func (n *ListLit) Pos() int  { return n.Position }
func (n *ListLit) exprNode() {}

// IndexExpr represents seq[index].
type IndexExpr struct {
	Object   Expression
	Index    Expression
	Position int
}

func (n *IndexExpr) Pos() int  { return n.Position }
func (n *IndexExpr) exprNode() {}
