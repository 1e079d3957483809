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

// Package atomize splits a resolved pipeline's flat Transform list into
// "atomic" blocks, each realizable as one SQL SELECT, following spec.md
// §4.4's split rules. A Plan is an ordered list of Blocks; every Block but
// the last is emitted by the generator as a CTE, and the last is the
// pipeline's own result SELECT, built incrementally, accumulating
// into the current unit until a boundary forces a new one, generalized
// from a single flat plan to an ordered chain of SELECTs stitched by CTEs.
package atomize

import (
	"github.com/prql-go/prqlgo/ast"
	"github.com/prql-go/prqlgo/ir"
)

// WindowedColumn is one column produced by an ir.Window's body, carrying
// the OVER-clause context the generator needs alongside the computed
// expression itself.
type WindowedColumn struct {
	ir.Column
	PartitionBy []ast.Expr
	OrderBy     []ir.SortKey
	Frame       *ir.WindowFrame
}

// Block is one atomic SELECT: a FROM/JOIN graph, an optional Aggregate,
// WHERE/HAVING predicates, ORDER BY/LIMIT, and DISTINCT. Block carries no
// CTE name of its own — the generator assigns names across an entire
// Query's worth of Blocks (every table plus the main pipeline) from one
// shared counter, since two independently atomized pipelines must not
// collide on "table_0".
type Block struct {
	From  *ir.From
	Joins []*ir.Join

	// Columns is the block's SELECT list before any Aggregate; Windowed
	// holds columns produced by an explicit `group`/`window` body, rendered
	// with an OVER clause built from their own Partition/Order/Frame.
	Columns  []ir.Column
	Windowed []WindowedColumn

	// Narrowed reports whether a `select` (Compute.Narrow) ever ran in this
	// block, meaning Columns is the block's complete output and the
	// generator must not also expand an implicit `relation.*` — a `derive`
	// alone (Narrowed still false) leaves the base row's columns implicitly
	// selected alongside whatever it added.
	Narrowed bool

	Aggregate *ir.Aggregate

	Where  []ast.Expr
	Having []ast.Expr

	Sort []ir.SortKey
	Take *ir.Range

	Distinct        bool
	DistinctColumns []ast.Expr // nil means DISTINCT over every selected column
}

// Plan is an ordered chain of Blocks; Blocks[i] reads FROM Blocks[i-1]'s CTE
// name once i > 0 (the generator wires this up, not this package).
type Plan struct {
	Blocks []*Block
}

// builder accumulates transforms into Blocks, tracking just enough state
// about the current Block to recognize spec.md §4.4's split points.
type builder struct {
	plan *Plan
	cur  *Block

	aggregated         bool
	aggOutputNames     map[string]bool
	windowedNames      map[string]bool
	sortOrAggSinceTake bool
}

// Atomize splits transforms into a Plan. transforms is one pipeline's
// resolved Transform list (the main pipeline, or one NamedPipeline's body).
func Atomize(transforms []ir.Transform) *Plan {
	b := &builder{
		plan:           &Plan{},
		aggOutputNames: map[string]bool{},
		windowedNames:  map[string]bool{},
	}
	b.cur = &Block{}
	b.plan.Blocks = append(b.plan.Blocks, b.cur)

	for _, t := range transforms {
		b.apply(t)
	}
	return b.plan
}

func (b *builder) apply(t ir.Transform) {
	switch v := t.(type) {
	case *ir.From:
		b.cur.From = v
	case *ir.Join:
		if b.aggregated || b.cur.Take != nil || len(b.cur.Sort) > 0 {
			b.split()
		}
		b.cur.Joins = append(b.cur.Joins, v)
	case *ir.Compute:
		b.applyCompute(v)
	case *ir.Filter:
		b.applyFilter(v)
	case *ir.Aggregate:
		if b.aggregated || b.cur.Take != nil {
			b.split()
		}
		b.cur.Aggregate = v
		b.aggregated = true
		b.sortOrAggSinceTake = true
		b.aggOutputNames = map[string]bool{}
		for _, c := range v.Columns {
			if c.Alias != "" {
				b.aggOutputNames[c.Alias] = true
			}
		}
	case *ir.Sort:
		if b.cur.Take != nil {
			b.split()
		}
		b.cur.Sort = v.Keys
		b.sortOrAggSinceTake = true
	case *ir.Take:
		b.applyTake(v)
	case *ir.Unique:
		b.cur.Distinct = true
		b.cur.DistinctColumns = v.Columns
	case *ir.Window:
		b.applyWindow(v)
	}
}

func (b *builder) applyCompute(v *ir.Compute) {
	if v.Narrow {
		b.cur.Columns = v.Columns
		b.cur.Narrowed = true
		return
	}
	b.cur.Columns = append(b.cur.Columns, v.Columns...)
}

// applyFilter implements split rules 1, 2, and 4: a filter touching a
// windowed column always forces a split (WHERE cannot reference a window
// expression in the same SELECT that defines it); post-aggregate, a filter
// on the aggregate's own output renders as HAVING, one mixing aggregate and
// pre-aggregate columns forces a split, and any other post-aggregate filter
// (not a compatible post-aggregate operation) also forces one.
func (b *builder) applyFilter(v *ir.Filter) {
	refsWindow := referencesAny(v.Condition, b.windowedNames)
	if refsWindow {
		b.split()
		b.cur.Where = append(b.cur.Where, v.Condition)
		return
	}

	if !b.aggregated {
		b.cur.Where = append(b.cur.Where, v.Condition)
		return
	}

	refsAgg := referencesAny(v.Condition, b.aggOutputNames)
	refsPre := referencesOtherThan(v.Condition, b.aggOutputNames)
	switch {
	case refsAgg && !refsPre:
		b.cur.Having = append(b.cur.Having, v.Condition)
	default:
		b.split()
		b.cur.Where = append(b.cur.Where, v.Condition)
	}
}

// applyTake implements rule 3's Take-collapsing: two consecutive Takes with
// no intervening Sort/Aggregate intersect into one LIMIT/OFFSET; otherwise
// (a Sort already forced a split above, so only an intervening Aggregate
// reaches here) the second Take starts a fresh block.
func (b *builder) applyTake(v *ir.Take) {
	if b.cur.Take == nil {
		b.cur.Take = &v.Range
		b.sortOrAggSinceTake = false
		return
	}
	if b.sortOrAggSinceTake {
		b.split()
		b.cur.Take = &v.Range
		b.sortOrAggSinceTake = false
		return
	}
	intersected := intersectRange(*b.cur.Take, v.Range)
	b.cur.Take = &intersected
}

// applyWindow inlines a group/window body's columns into the current
// block, tagging their aliases as windowed so a later Filter referencing
// them is recognized by applyFilter.
func (b *builder) applyWindow(v *ir.Window) {
	for _, inner := range v.Body {
		compute, ok := inner.(*ir.Compute)
		if !ok {
			// A window body ending in something other than a Compute (e.g.
			// a bare Sort inside `group department (sort x | take ...)`)
			// carries no new output column; nothing to inline here.
			continue
		}
		for _, c := range compute.Columns {
			wc := WindowedColumn{
				Column:      c,
				PartitionBy: v.PartitionBy,
				OrderBy:     v.OrderBy,
				Frame:       v.Frame,
			}
			b.cur.Windowed = append(b.cur.Windowed, wc)
			if c.Alias != "" {
				b.windowedNames[c.Alias] = true
			}
		}
	}
}

// split closes the current block and opens a new one continuing from it;
// the generator decides the CTE name the closed block renders under.
func (b *builder) split() {
	next := &Block{}
	b.plan.Blocks = append(b.plan.Blocks, next)
	b.cur = next
	b.aggregated = false
	b.aggOutputNames = map[string]bool{}
	b.windowedNames = map[string]bool{}
	b.sortOrAggSinceTake = false
}

// intersectRange composes two consecutive Takes into the single range their
// combination selects. b's bounds are relative to a's own output (a second
// `take 1..5` after `take 11..20` selects rows 1..5 of those 10 rows, i.e.
// absolute rows 11..15) rather than an intersection of two absolute ranges —
// confirmed against original_source's "should be one SELECT" take/take
// fixture, which composes 11..20 then 1..5 into `LIMIT 5 OFFSET 10`
// (absolute 11..15), not a naive min/max intersection.
func intersectRange(a, b ir.Range) ir.Range {
	a0 := literalIntOr(a.Start, 1)
	b0 := literalIntOr(b.Start, 1)
	start := a0 + b0 - 1

	var end *int64
	if v, ok := literalInt(a.End); ok {
		end = &v
	}
	if v, ok := literalInt(b.End); ok {
		cand := a0 + v - 1
		if end == nil || cand < *end {
			end = &cand
		}
	}

	result := ir.Range{Start: &ast.Literal{Kind: ast.LitInt, Int: start}}
	if end != nil {
		result.End = &ast.Literal{Kind: ast.LitInt, Int: *end}
	}
	return result
}

func literalInt(e ast.Expr) (int64, bool) {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.LitInt {
		return 0, false
	}
	return lit.Int, true
}

func literalIntOr(e ast.Expr, fallback int64) int64 {
	if v, ok := literalInt(e); ok {
		return v
	}
	return fallback
}
