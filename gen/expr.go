/*
 * Copyright 2026 The PRQL-Go Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/prql-go/prqlgo/ast"
	"github.com/prql-go/prqlgo/atomize"
	"github.com/prql-go/prqlgo/stdlib"
)

// Operator precedence levels. Unary NOT sits below comparisons on purpose:
// `(!a)==null` needs the parens that produces, since `!` binds looser than
// `==` here, matching the worked precedence examples.
const (
	precOr = iota + 1
	precAnd
	precNot
	precCompare
	precAdd
	precMul
	precUnary
)

func precedenceOf(op ast.TokenType) int {
	switch op {
	case ast.OR:
		return precOr
	case ast.AND:
		return precAnd
	case ast.EQ, ast.NOT_EQ, ast.LT, ast.LE, ast.GT, ast.GE:
		return precCompare
	case ast.PLUS, ast.MINUS:
		return precAdd
	case ast.ASTERISK, ast.SLASH, ast.PERCENT:
		return precMul
	default:
		return precCompare
	}
}

// isAssociative reports whether repeated uses of op can be flattened without
// parenthesizing an equal-precedence right child: `a + b + c` never needs
// parens around `b + c`, but `a - (b - c)` does.
func isAssociative(op ast.TokenType) bool {
	switch op {
	case ast.PLUS, ast.ASTERISK, ast.AND, ast.OR:
		return true
	default:
		return false
	}
}

func binOpText(op ast.TokenType) string {
	switch op {
	case ast.EQ:
		return "="
	case ast.AND:
		return "AND"
	case ast.OR:
		return "OR"
	default:
		return string(op)
	}
}

// parenCtx carries the enclosing operator's precedence and associativity so
// a child binary/unary expression can decide whether it needs its own
// parens, without needing to walk back up the tree.
type parenCtx struct {
	prec  int
	assoc bool
	right bool
}

func needsParens(childPrec int, parent parenCtx) bool {
	if childPrec < parent.prec {
		return true
	}
	return childPrec == parent.prec && parent.right && !parent.assoc
}

// exprRenderer turns resolved ast.Expr trees into SQL text. win/inAgg give a
// single column's window context (nil/false outside of a Windowed or
// Aggregate column) so a nested function call anywhere in the expression
// can still decide correctly whether it needs an OVER clause.
type exprRenderer struct {
	dialect sqlDialect
	stdlib  *stdlib.Registry
}

// sqlDialect is the subset of *dialect.Dialect the generator needs; kept as
// an interface so gen's own tests can exercise rendering rules against a
// minimal fake instead of the full named-dialect registry.
type sqlDialect interface {
	QuoteIdent(name string) string
	QuoteRelation(name string) string
	RenderInterval(count interface{}, unit string) string
	RenderLimit(limit, offset string, hasOffset, hasSort bool) (trailing string, top string, err error)
}

func (g *exprRenderer) expr(e ast.Expr, parent parenCtx, win *atomize.WindowedColumn, inAgg bool) string {
	switch v := e.(type) {
	case *ast.Ident:
		return g.renderIdent(v)
	case *ast.Literal:
		return g.renderLiteral(v)
	case *ast.Unary:
		return g.renderUnary(v, parent, win, inAgg)
	case *ast.Binary:
		return g.renderBinary(v, parent, win, inAgg)
	case *ast.FuncCall:
		return g.renderCall(v, win, inAgg)
	case *ast.FString:
		return g.renderFString(v, win, inAgg)
	case *ast.SString:
		return g.renderSString(v, win, inAgg)
	case *ast.Range:
		return g.expr(v.Start, parenCtx{}, win, inAgg) + ".." + g.expr(v.End, parenCtx{}, win, inAgg)
	default:
		return fmt.Sprintf("%v", e)
	}
}

func (g *exprRenderer) renderIdent(id *ast.Ident) string {
	if id.Opaque {
		return id.Raw
	}
	parts := make([]string, len(id.Parts))
	for i, p := range id.Parts {
		if i < len(id.Parts)-1 {
			parts[i] = g.dialect.QuoteRelation(p)
			continue
		}
		parts[i] = g.dialect.QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}

func (g *exprRenderer) renderLiteral(lit *ast.Literal) string {
	switch lit.Kind {
	case ast.LitNull:
		return "NULL"
	case ast.LitBool:
		if lit.Bool {
			return "true"
		}
		return "false"
	case ast.LitInt:
		return strconv.FormatInt(lit.Int, 10)
	case ast.LitFloat:
		if lit.Text != "" {
			return lit.Text
		}
		return strconv.FormatFloat(lit.Float64, 'f', -1, 64)
	case ast.LitString:
		return quoteStringLiteral(lit.Text)
	case ast.LitDate:
		return "DATE '" + lit.Text + "'"
	case ast.LitTime:
		return "TIME '" + lit.Text + "'"
	case ast.LitTimestamp:
		return "TIMESTAMP '" + lit.Text + "'"
	case ast.LitInterval:
		return g.dialect.RenderInterval(lit.Int, lit.Unit)
	default:
		return ""
	}
}

func quoteStringLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func isNullLiteral(e ast.Expr) bool {
	lit, ok := e.(*ast.Literal)
	return ok && lit.Kind == ast.LitNull
}

func (g *exprRenderer) renderUnary(v *ast.Unary, parent parenCtx, win *atomize.WindowedColumn, inAgg bool) string {
	switch v.Op {
	case ast.BANG:
		inner := g.expr(v.X, parenCtx{prec: precNot}, win, inAgg)
		text := "NOT " + inner
		if needsParens(precNot, parent) {
			return "(" + text + ")"
		}
		return text
	case ast.MINUS:
		inner := g.expr(v.X, parenCtx{prec: precUnary}, win, inAgg)
		text := "- " + inner
		if needsParens(precUnary, parent) {
			return "(" + text + ")"
		}
		return text
	case ast.PLUS:
		// Unary plus changes nothing about the rendered value.
		return g.expr(v.X, parent, win, inAgg)
	default:
		return g.expr(v.X, parent, win, inAgg)
	}
}

func (g *exprRenderer) renderBinary(v *ast.Binary, parent parenCtx, win *atomize.WindowedColumn, inAgg bool) string {
	if v.Op == ast.COALESCE {
		return "COALESCE(" + g.expr(v.L, parenCtx{}, win, inAgg) + ", " + g.expr(v.R, parenCtx{}, win, inAgg) + ")"
	}
	if (v.Op == ast.EQ || v.Op == ast.NOT_EQ) && isNullLiteral(v.R) {
		return g.renderIsNull(v.L, v.Op == ast.NOT_EQ, parent, win, inAgg)
	}
	if (v.Op == ast.EQ || v.Op == ast.NOT_EQ) && isNullLiteral(v.L) {
		return g.renderIsNull(v.R, v.Op == ast.NOT_EQ, parent, win, inAgg)
	}

	prec := precedenceOf(v.Op)
	assoc := isAssociative(v.Op)
	l := g.expr(v.L, parenCtx{prec: prec, assoc: assoc, right: false}, win, inAgg)
	r := g.expr(v.R, parenCtx{prec: prec, assoc: assoc, right: true}, win, inAgg)
	text := l + " " + binOpText(v.Op) + " " + r
	if needsParens(prec, parent) {
		return "(" + text + ")"
	}
	return text
}

func (g *exprRenderer) renderIsNull(operand ast.Expr, negated bool, parent parenCtx, win *atomize.WindowedColumn, inAgg bool) string {
	inner := g.expr(operand, parenCtx{prec: precCompare}, win, inAgg)
	suffix := " IS NULL"
	if negated {
		suffix = " IS NOT NULL"
	}
	text := inner + suffix
	if needsParens(precCompare, parent) {
		return "(" + text + ")"
	}
	return text
}

// renderFString builds a CONCAT(...) call from literal runs (re-quoted as
// SQL string literals) and hole expressions, collapsing to a single quoted
// literal when there are no holes at all. Consecutive holes with nothing
// between them carry no empty literal part (test_f_string's
// `{prefix}{first_name}` case never emits a `''` between them).
func (g *exprRenderer) renderFString(v *ast.FString, win *atomize.WindowedColumn, inAgg bool) string {
	holes := 0
	for _, p := range v.Parts {
		if p.IsHole {
			holes++
		}
	}
	if holes == 0 {
		var lit strings.Builder
		for _, p := range v.Parts {
			lit.WriteString(p.Literal)
		}
		return quoteStringLiteral(lit.String())
	}

	var parts []string
	for _, p := range v.Parts {
		if p.IsHole {
			parts = append(parts, g.expr(p.Expr, parenCtx{}, win, inAgg))
			continue
		}
		if p.Literal == "" {
			continue
		}
		parts = append(parts, quoteStringLiteral(p.Literal))
	}
	return "CONCAT(" + strings.Join(parts, ", ") + ")"
}

// renderSString concatenates literal runs verbatim, unquoted, with holes
// substituted by their rendered sub-expression — never CONCAT-wrapped, since
// an s-string is raw SQL text, not a string value.
func (g *exprRenderer) renderSString(v *ast.SString, win *atomize.WindowedColumn, inAgg bool) string {
	var b strings.Builder
	for _, p := range v.Parts {
		if p.IsHole {
			b.WriteString(g.expr(p.Expr, parenCtx{}, win, inAgg))
			continue
		}
		b.WriteString(p.Literal)
	}
	return b.String()
}

func (g *exprRenderer) exprList(exprs []ast.Expr, win *atomize.WindowedColumn, inAgg bool) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = g.expr(e, parenCtx{}, win, inAgg)
	}
	return strings.Join(parts, ", ")
}

// andJoin renders exprs ANDed together, each free to parenthesize itself as
// if it were one operand of a larger AND (so a bare OR condition mixed into
// a WHERE's multiple predicates still gets the parens it needs).
func (g *exprRenderer) andJoin(exprs []ast.Expr, win *atomize.WindowedColumn, inAgg bool) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = g.expr(e, parenCtx{prec: precAnd, assoc: true, right: i > 0}, win, inAgg)
	}
	return strings.Join(parts, " AND ")
}
