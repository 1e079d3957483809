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

package prql

import (
	"strings"

	"github.com/prql-go/prqlgo/ast"
)

// Format parses source and renders it back to a canonical textual form: one
// pipeline stage per line, minimal parentheses, double-quoted strings.
// format(format(p)) == format(p) for any p that parses (spec.md §8's
// idempotence law), since formatting only ever consults the parsed AST, not
// the original source text.
func Format(source string) (string, error) {
	p := ast.NewParser(source)
	stmts := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return "", errs[0]
	}
	return formatProgram(stmts), nil
}

func formatProgram(stmts []ast.Stmt) string {
	var out []string
	for _, s := range stmts {
		out = append(out, formatStmt(s))
	}
	return strings.Join(out, "\n\n") + "\n"
}

func formatStmt(s ast.Stmt) string {
	switch n := s.(type) {
	case *ast.Prologue:
		var parts []string
		if n.Dialect != "" {
			parts = append(parts, "dialect:"+n.Dialect)
		}
		if n.Version != "" {
			parts = append(parts, `version:"`+n.Version+`"`)
		}
		return "prql " + strings.Join(parts, " ")
	case *ast.FuncDef:
		var params []string
		for _, p := range n.Params {
			if p.Default != nil {
				params = append(params, p.Name+":"+formatExpr(p.Default, 0))
			} else {
				params = append(params, p.Name)
			}
		}
		head := "func " + n.Name
		if len(params) > 0 {
			head += " " + strings.Join(params, " ")
		}
		return head + " -> " + formatExpr(n.Body, 0)
	case *ast.TableDef:
		return "table " + n.Name + " = (\n" + indent(formatPipelineBody(n.Body)) + "\n)"
	case *ast.ExprStmt:
		return formatPipelineBody(n.X)
	default:
		return ""
	}
}

// formatPipelineBody renders a top-level pipeline as one stage per line,
// unwrapping the outer Pipeline node (a bare, non-piped expression renders
// as a single line). Every stage but the last ends the line with a trailing
// "|": the parser only resumes a pipeline across a newline immediately
// after a PIPE token (ast/parser.go's parsePipeline calls skipNewlines right
// after consuming "|"), so a bare newline between stages would instead
// split them into separate top-level statements.
func formatPipelineBody(e ast.Expr) string {
	if pl, ok := e.(*ast.Pipeline); ok {
		var lines []string
		for i, stage := range pl.Stages {
			line := formatExpr(stage, 0)
			if i < len(pl.Stages)-1 {
				line += " |"
			}
			lines = append(lines, line)
		}
		return strings.Join(lines, "\n")
	}
	return formatExpr(e, 0)
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

// Operator precedence for parenthesization, matching ast.Parser's grammar
// (spec.md §4.1), lowest to highest.
const (
	fPrecOr = iota + 1
	fPrecAnd
	fPrecCompare
	fPrecCoalesce
	fPrecAdd
	fPrecMul
	fPrecUnary
)

func formatPrecedence(op ast.TokenType) int {
	switch op {
	case ast.OR:
		return fPrecOr
	case ast.AND:
		return fPrecAnd
	case ast.EQ, ast.NOT_EQ, ast.LT, ast.LE, ast.GT, ast.GE:
		return fPrecCompare
	case ast.COALESCE:
		return fPrecCoalesce
	case ast.PLUS, ast.MINUS:
		return fPrecAdd
	case ast.ASTERISK, ast.SLASH, ast.PERCENT:
		return fPrecMul
	default:
		return fPrecCompare
	}
}

func formatAssociative(op ast.TokenType) bool {
	switch op {
	case ast.PLUS, ast.ASTERISK, ast.AND, ast.OR:
		return true
	default:
		return false
	}
}

// formatExpr renders e at application-or-higher precedence unless
// parentPrec names a specific binary/unary level it is nested under.
func formatExpr(e ast.Expr, parentPrec int) string {
	switch v := e.(type) {
	case *ast.Ident:
		return formatIdent(v)
	case *ast.Literal:
		return formatLiteral(v)
	case *ast.Range:
		s := ""
		if v.Start != nil {
			s += formatExpr(v.Start, fPrecAdd)
		}
		s += ".."
		if v.End != nil {
			s += formatExpr(v.End, fPrecAdd)
		}
		return s
	case *ast.List:
		var items []string
		for _, it := range v.Items {
			items = append(items, formatExpr(it, 0))
		}
		return "[" + strings.Join(items, ", ") + "]"
	case *ast.Assign:
		return v.Name + " = " + formatExpr(v.Value, 0)
	case *ast.Pipeline:
		var parts []string
		for _, s := range v.Stages {
			parts = append(parts, formatExpr(s, 0))
		}
		return strings.Join(parts, " | ")
	case *ast.FuncCall:
		return formatFuncCall(v)
	case *ast.FString:
		return "f" + formatInterpolated(v.Parts)
	case *ast.SString:
		return "s" + formatInterpolated(v.Parts)
	case *ast.Unary:
		return string(v.Op) + formatExpr(v.X, fPrecUnary)
	case *ast.Binary:
		return formatBinary(v, parentPrec)
	default:
		return ""
	}
}

func formatIdent(v *ast.Ident) string {
	if v.Opaque {
		return v.Raw
	}
	segs := make([]string, len(v.Parts))
	for i, part := range v.Parts {
		if i < len(v.Quoted) && v.Quoted[i] {
			segs[i] = "`" + strings.ReplaceAll(part, "`", "``") + "`"
		} else {
			segs[i] = part
		}
	}
	return strings.Join(segs, ".")
}

func formatLiteral(v *ast.Literal) string {
	switch v.Kind {
	case ast.LitNull:
		return "null"
	case ast.LitBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ast.LitInt, ast.LitFloat:
		return v.Text
	case ast.LitString:
		return quoteString(v.Text)
	case ast.LitDate, ast.LitTime, ast.LitTimestamp:
		return "@" + v.Text
	case ast.LitInterval:
		return v.Text + v.Unit
	default:
		return v.Text
	}
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func formatInterpolated(parts []ast.StringPart) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, p := range parts {
		if p.IsHole {
			b.WriteByte('{')
			b.WriteString(formatExpr(p.Expr, 0))
			b.WriteByte('}')
		} else {
			b.WriteString(p.Literal)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// formatFuncCall renders a call's head followed by its positional and named
// arguments. Each slot's required precedence mirrors the exact parse
// function ast.Parser.parseTransformCall used for that transform and
// position (spec.md §4.1): select/derive/aggregate/filter/sort/unique/
// group's body/window's body/join's ON-expr all parse their slot with
// parseOr (full binary precedence, needs no defensive parens); every other
// slot — from/join/group's relation or column-list argument, every named
// argument other than window's, and every argument of a non-transform
// (generic/user-function) call — parses with the restricted
// parseApplicationTerm, which accepts neither a bare binary expression nor a
// bare pipeline. window's rows:/range:/expanding:/rolling: named arguments
// parse with parseOr.
func formatFuncCall(v *ast.FuncCall) string {
	name := ""
	if ident, ok := v.Func.(*ast.Ident); ok {
		name = strings.ToLower(ident.Name())
	}
	var parts []string
	parts = append(parts, formatExpr(v.Func, fPrecUnary))
	for i, a := range v.Args {
		parts = append(parts, formatArgTerm(a, argSlotPrecedence(name, i)))
	}
	for _, na := range v.Named {
		parts = append(parts, na.Name+":"+formatArgTerm(na.Value, namedArgPrecedence(name)))
	}
	return strings.Join(parts, " ")
}

// argSlotPrecedence gives the precedence context for the i-th positional
// argument of a call to name, per parseTransformCall's grammar. Unlisted
// (non-transform) heads use the restricted generic-application level for
// every argument.
func argSlotPrecedence(name string, i int) int {
	switch name {
	case "select", "derive", "aggregate", "filter", "sort", "unique":
		return 0
	case "join":
		if i == 0 {
			return fPrecUnary
		}
		return 0
	case "group":
		if i == 0 {
			return fPrecUnary
		}
		return 0
	case "window":
		return 0
	default:
		return fPrecUnary
	}
}

// namedArgPrecedence gives the precedence context for any named argument of
// a call to name (join's side:, window's rows:/range:/expanding:/rolling:).
func namedArgPrecedence(name string) int {
	if name == "window" {
		return 0
	}
	return fPrecUnary
}

// formatArgTerm renders e as a single call argument. A Pipeline can only
// ever appear in an argument slot through source-level parens (every
// argument-parsing function stops short of PIPE), so it is always
// reparenthesized here regardless of the slot's own precedence.
func formatArgTerm(e ast.Expr, prec int) string {
	if _, ok := e.(*ast.Pipeline); ok {
		return "(" + formatExpr(e, 0) + ")"
	}
	return formatExpr(e, prec)
}

func formatBinary(v *ast.Binary, parentPrec int) string {
	prec := formatPrecedence(v.Op)
	l := formatExpr(v.L, prec)
	r := formatExprRight(v.R, prec, formatAssociative(v.Op))
	text := l + " " + binOpSrcText(v.Op) + " " + r
	if prec < parentPrec {
		return "(" + text + ")"
	}
	return text
}

func formatExprRight(e ast.Expr, prec int, assoc bool) string {
	if b, ok := e.(*ast.Binary); ok {
		childPrec := formatPrecedence(b.Op)
		if childPrec == prec && !assoc {
			return "(" + formatBinaryUnparenthesized(b) + ")"
		}
	}
	return formatExpr(e, prec)
}

func formatBinaryUnparenthesized(v *ast.Binary) string {
	prec := formatPrecedence(v.Op)
	l := formatExpr(v.L, prec)
	r := formatExprRight(v.R, prec, formatAssociative(v.Op))
	return l + " " + binOpSrcText(v.Op) + " " + r
}

func binOpSrcText(op ast.TokenType) string {
	return string(op)
}
