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

// ast.go declares the PRQL abstract syntax tree: statements and expressions.
//
// Every node carries its own byte Span so later stages can report
// diagnostics without re-deriving position information (spec.md §7).
package ast

// Node is implemented by every AST node.
type Node interface {
	Span() Span
}

// Stmt is a top-level PRQL statement.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is a PRQL expression.
type Expr interface {
	Node
	exprNode()
}

type base struct{ S Span }

func (b base) Span() Span { return b.S }

// ---- Statements ----

// Prologue is the optional leading `prql dialect:... version:"..."` statement.
type Prologue struct {
	base
	Dialect string // "" if not given
	Version string // "" if not given
}

func (*Prologue) stmtNode() {}

// Param is one function parameter, with an optional default expression.
type Param struct {
	Name    string
	Default Expr // nil if no default
}

// FuncDef declares a named, curry-able function.
type FuncDef struct {
	base
	Name   string
	Params []Param
	Body   Expr
}

func (*FuncDef) stmtNode() {}

// TableDef declares a named relation computed by a pipeline.
type TableDef struct {
	base
	Name string
	Body Expr // usually a Pipeline
}

func (*TableDef) stmtNode() {}

// ExprStmt is a bare top-level pipeline: the query's main result.
type ExprStmt struct {
	base
	X Expr
}

func (*ExprStmt) stmtNode() {}

// ---- Expressions ----

// Ident is a name reference: bare, dotted (t.col), backtick-quoted, or an
// opaque {{ ... }} templated reference that must round-trip unchanged.
type Ident struct {
	base
	Parts  []string // dotted segments, e.g. ["t", "col"]; len==1 for bare names
	Quoted []bool   // per-segment: was this segment backtick-quoted
	Opaque bool     // true for {{ ref('x') }}-style templated references
	Raw    string   // verbatim source text, used only when Opaque
}

func (*Ident) exprNode() {}

// Name renders the dotted identifier back with '.' separators, ignoring
// quoting — used for lookups, not for output.
func (i *Ident) Name() string {
	s := i.Parts[0]
	for _, p := range i.Parts[1:] {
		s += "." + p
	}
	return s
}

// LiteralKind tags the kind of value a Literal node holds.
type LiteralKind int

const (
	LitNull LiteralKind = iota
	LitBool
	LitInt
	LitFloat
	LitString
	LitDate
	LitTime
	LitTimestamp
	LitInterval
)

// Literal is a constant value: null, bool, number, string, date/time/
// timestamp, or an interval (e.g. 10days).
type Literal struct {
	base
	Kind LiteralKind
	Bool bool
	Int  int64
	// Float64 mirrors the source text for numbers so "5.00" can be told
	// apart from "5" without losing the original form (spec.md's open
	// question on number literal rendering).
	Float64 float64
	HasFrac bool
	Text    string // original literal text: strings, date/time/timestamp body, or unit suffix for intervals
	Unit    string // interval unit: "days", "hours", "minutes", "months", "years"
}

func (*Literal) exprNode() {}

// Range is a..b, with either end optional.
type Range struct {
	base
	Start Expr // nil if open-ended on the left
	End   Expr // nil if open-ended on the right
}

func (*Range) exprNode() {}

// List is an ordered `[ ... ]` expression list. Each item may be a plain
// Expr or an Assign (alias = expr).
type List struct {
	base
	Items []Expr
}

func (*List) exprNode() {}

// Assign is `alias = expr`, used inside column lists and `from e = table`.
type Assign struct {
	base
	Name  string
	Value Expr
}

func (*Assign) exprNode() {}

// Pipeline is `a | b | c`, function composition read left to right.
type Pipeline struct {
	base
	Stages []Expr
}

func (*Pipeline) exprNode() {}

// NamedArg is `name:value` inside a function call's argument list.
type NamedArg struct {
	Name  string
	Value Expr
}

// FuncCall is function application: a name applied to positional and named
// arguments, e.g. `filter age > 25`, `join side:left y [~id]`.
type FuncCall struct {
	base
	Func  Expr // usually *Ident
	Args  []Expr
	Named []NamedArg
}

func (*FuncCall) exprNode() {}

// StringPart is one piece of an interpolated f-string or s-string: either a
// literal run or a {expr} hole.
type StringPart struct {
	Literal string
	IsHole  bool
	Expr    Expr
}

// FString is f"..." — rendered as CONCAT(...) in SQL.
type FString struct {
	base
	Parts []StringPart
}

func (*FString) exprNode() {}

// SString is s"..." — a raw SQL fragment with {expr} holes substituted,
// injected into the output verbatim.
type SString struct {
	base
	Parts []StringPart
}

func (*SString) exprNode() {}

// Unary is +x, -x, or !x.
type Unary struct {
	base
	Op TokenType
	X  Expr
}

func (*Unary) exprNode() {}

// Binary is a binary operator expression.
type Binary struct {
	base
	Op   TokenType
	L, R Expr
}

func (*Binary) exprNode() {}
