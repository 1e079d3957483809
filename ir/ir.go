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

// Package ir declares the relational intermediate representation the
// resolver produces and the atomizer/generator consume: a flat list of
// Transform nodes per named pipeline, already free of PRQL's syntax
// (currying, pipes, named args, transform-vs-function ambiguity all
// resolved away).
//
// Scalar expressions deliberately reuse ast.Expr rather than a second,
// parallel expression representation: by the time the resolver is done, an
// expression tree's Idents already name real columns (or are confirmed
// external references), so the generator can render the same tree it would
// have rendered at parse time. Aggregate/window classification is decided
// at render time by consulting the stdlib registry against the transform
// context (plain aggregate vs. windowed), not duplicated onto every node.
package ir

import "github.com/prql-go/prqlgo/ast"

// Column is a single resolved output column: its visible name and the
// expression that produces it.
type Column struct {
	Alias string
	Expr  ast.Expr
}

// Range is a resolved take/window range; either end may be nil.
type Range struct {
	Start ast.Expr
	End   ast.Expr
}

// JoinSide is the join kind.
type JoinSide string

const (
	JoinInner JoinSide = "inner"
	JoinLeft  JoinSide = "left"
	JoinRight JoinSide = "right"
	JoinFull  JoinSide = "full"
)

// Transform is one relational operation in a resolved pipeline.
type Transform interface {
	transformNode()
}

// From introduces a base table, a previously declared NamedPipeline, or an
// unresolved external reference (e.g. `{{ ref('x') }}`) as the pipeline's
// source.
type From struct {
	Name  string
	Alias string // "" if not aliased
}

func (*From) transformNode() {}

// Compute introduces or replaces columns without changing row count
// (derive, Narrow=false), or narrows/renames the frame to exactly these
// columns (select, Narrow=true).
type Compute struct {
	Columns []Column
	Narrow  bool
}

func (*Compute) transformNode() {}

// Filter is `filter`'s boolean condition. Whether it renders as WHERE or
// HAVING is decided by the atomizer from context (whether it follows an
// Aggregate in the same atomic group and references that Aggregate's
// output columns), not stored here.
type Filter struct {
	Condition ast.Expr
}

func (*Filter) transformNode() {}

// Aggregate collapses the frame to one row per Partition (nil for a plain,
// non-grouped aggregate), computing Columns.
type Aggregate struct {
	Partition []ast.Expr
	Columns   []Column
}

func (*Aggregate) transformNode() {}

// SortKey is one column of a Sort or a Window's ORDER BY, ascending unless
// Descending.
type SortKey struct {
	Expr       ast.Expr
	Descending bool
}

// Sort orders rows; folds with an immediately adjacent Take per spec.md
// §4.4 (ORDER BY attaches to the same SELECT as its LIMIT/OFFSET).
type Sort struct {
	Keys []SortKey
}

func (*Sort) transformNode() {}

// Take limits/offsets rows by a 1-based inclusive Range.
type Take struct {
	Range Range
}

func (*Take) transformNode() {}

// Join attaches another relation, matching rows via Filter, a boolean ON
// expression. The resolver expands `~col` same-name shorthand into an
// explicit equality against both relations rather than SQL's USING(...)
// form, matching observed output of `join y [~id]` rendering as
// `JOIN y ON x.id = y.id`.
type Join struct {
	Side   JoinSide
	With   From
	Filter ast.Expr
}

func (*Join) transformNode() {}

// Unique deduplicates full rows (`unique`), or the degenerate
// `group cols (take 1)` form the resolver lowers to a plain DISTINCT
// (SPEC_FULL.md supplemented feature 3). Columns is nil for DISTINCT over
// every visible column.
type Unique struct {
	Columns []ast.Expr
}

func (*Unique) transformNode() {}

// WindowFrame captures `window rows:.. / range:.. / expanding: / rolling:`
// framing (spec.md §4.3, SPEC_FULL.md scalar supplements).
type WindowFrame struct {
	Rows      *Range
	Range     *Range
	Expanding bool
	Rolling   *int
}

// Window wraps Body with OVER-clause partition/order context: every
// aggregate/window call inside Body renders with this PartitionBy/OrderBy,
// and Frame gives explicit rows/range framing when set. Produced by both
// `group ... ( ... )` (PartitionBy only) and `window ... ( ... )` (explicit
// Frame).
type Window struct {
	PartitionBy []ast.Expr
	OrderBy     []SortKey
	Frame       *WindowFrame
	Body        []Transform
}

func (*Window) transformNode() {}

// NamedPipeline is one `table name = ( ... )` statement, resolved to a flat
// Transform list plus the name later CTEs and the main query see it under.
type NamedPipeline struct {
	Name       string
	Transforms []Transform
}

// Query is the fully resolved program: zero or more named intermediate
// pipelines (rendered as CTEs, in dependency order) plus the main result
// pipeline, together with the effective dialect name.
type Query struct {
	Tables  []NamedPipeline
	Main    []Transform
	Dialect string
}
