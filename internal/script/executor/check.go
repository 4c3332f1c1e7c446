package executor

import (
	"fmt"
	"strings"

	"github.com/IKKNIGHT/PureBlocks/internal/host"
	"github.com/IKKNIGHT/PureBlocks/internal/script/ast"
	"github.com/IKKNIGHT/PureBlocks/internal/script/parser"
)

// Statement kinds reported by Check.
const (
	KindIf          = "if"
	KindElif        = "elif"
	KindElse        = "else"
	KindFor         = "for"
	KindWhile       = "while"
	KindDef         = "def"
	KindPass        = "pass"
	KindPrint       = "print"
	KindAssign      = "assign"
	KindCall        = "call"
	KindUnsupported = "unsupported"
)

// Diagnostic describes one statement as the executor would dispatch it,
// with any expression that fails to parse.
type Diagnostic struct {
	ast.Statement
	Kind     string   `json:"kind"`
	Problems []string `json:"problems,omitempty"`
}

// Check classifies every statement and parses its expressions without
// running anything. Bodies of def blocks are skipped, as the executor skips
// them. A nil registry means host.Default().
func Check(stmts []ast.Statement, reg *host.Registry) []Diagnostic {
	if reg == nil {
		reg = host.Default()
	}
	out := make([]Diagnostic, 0, len(stmts))
	for i := 0; i < len(stmts); i++ {
		st := stmts[i]
		kind, exprs := classify(st.Text, reg)
		d := Diagnostic{Statement: st, Kind: kind}
		if kind == KindDef {
			if m := defPattern.FindStringSubmatch(st.Text); m == nil || !builtinNames[m[1]] {
				d.Problems = append(d.Problems, "function definitions are not supported; block skipped")
			}
			i = blockEnd(stmts, i, len(stmts)) - 1
		}
		for _, x := range exprs {
			if x == "" {
				d.Problems = append(d.Problems, "empty expression")
				continue
			}
			if _, err := parser.ParseExpression(x); err != nil {
				d.Problems = append(d.Problems, fmt.Sprintf("%q: %v", x, err))
			}
		}
		out = append(out, d)
	}
	return out
}

// classify mirrors execStatement and returns the statement kind and the
// expression texts it would evaluate.
func classify(text string, reg *host.Registry) (string, []string) {
	switch {
	case isClause(text, "if"):
		return KindIf, []string{clauseCondition(text, "if")}
	case isClause(text, "elif"):
		return KindElif, []string{clauseCondition(text, "elif")}
	case isClause(text, "else"):
		return KindElse, nil
	case strings.HasPrefix(text, "for "):
		if m := forPattern.FindStringSubmatch(text); m != nil {
			return KindFor, []string{strings.TrimSpace(m[2])}
		}
		return KindUnsupported, nil
	case isClause(text, "while"):
		return KindWhile, []string{clauseCondition(text, "while")}
	case strings.HasPrefix(text, "def "):
		return KindDef, nil
	case text == "pass":
		return KindPass, nil
	case strings.HasPrefix(text, "print(") && strings.HasSuffix(text, ")"):
		return KindPrint, SplitArgs(text)
	}

	if m := matchAssignment(text); m != nil {
		return KindAssign, []string{strings.TrimSpace(m[3])}
	}
	if m := callPattern.FindStringSubmatch(text); m != nil {
		if _, ok := reg.Lookup(m[1]); ok {
			return KindCall, SplitArgs(text)
		}
	}
	return KindUnsupported, nil
}
