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
	"strconv"
	"strings"

	"github.com/prql-go/prqlgo/ast"
	"github.com/prql-go/prqlgo/atomize"
	"github.com/prql-go/prqlgo/ir"
)

// renderBlock renders one atomize.Block as a single SELECT. fromRef is the
// name this block's own FROM clause resolves to when the block carries no
// explicit ir.From of its own — the previous block's CTE name in a chain.
func (g *exprRenderer) renderBlock(b *atomize.Block, fromRef string) (string, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")

	var topFrag, trailingLimit string
	if b.Take != nil {
		limit, offset, hasOffset := takeBounds(b.Take)
		trailing, top, err := g.dialect.RenderLimit(limit, offset, hasOffset, len(b.Sort) > 0)
		if err != nil {
			return "", err
		}
		trailingLimit, topFrag = trailing, top
	}
	if topFrag != "" {
		sb.WriteString(topFrag)
		sb.WriteString(" ")
	}
	if b.Distinct {
		sb.WriteString("DISTINCT ")
	}

	sb.WriteString(strings.Join(g.selectColumns(b, fromRef), ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(g.fromClause(b, fromRef))

	if len(b.Where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(g.andJoin(b.Where, nil, false))
	}
	if b.Aggregate != nil && len(b.Aggregate.Partition) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(g.exprList(b.Aggregate.Partition, nil, false))
	}
	if len(b.Having) > 0 {
		sb.WriteString(" HAVING ")
		sb.WriteString(g.andJoin(substituteAggAliases(b), nil, true))
	}
	if len(b.Sort) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(g.renderSortKeys(b.Sort))
	}
	if trailingLimit != "" {
		sb.WriteString(" ")
		sb.WriteString(trailingLimit)
	}
	return sb.String(), nil
}

// selectColumns renders a block's SELECT list. An Aggregate block renders
// its Partition (bare) followed by its own Columns; any column in the same,
// unsplit block computed after the Aggregate is deliberately not re-rendered
// here (it would self-reference an alias defined in the same SELECT, which
// SQL disallows) — it exists only so a later Filter can recognize it as
// aggregate output and render it as HAVING instead of WHERE.
func (g *exprRenderer) selectColumns(b *atomize.Block, fromRef string) []string {
	if b.Aggregate != nil {
		var out []string
		for _, p := range b.Aggregate.Partition {
			out = append(out, g.expr(p, parenCtx{}, nil, false))
		}
		for _, c := range b.Aggregate.Columns {
			out = append(out, g.renderSelectItem(c.Expr, c.Alias, nil, true))
		}
		return out
	}

	var out []string
	if !b.Narrowed {
		out = append(out, g.starColumns(b, fromRef)...)
	}
	for _, c := range b.Columns {
		out = append(out, g.renderSelectItem(c.Expr, c.Alias, nil, false))
	}
	for _, wc := range b.Windowed {
		wc := wc
		out = append(out, g.renderSelectItem(wc.Expr, wc.Alias, &wc, false))
	}
	return out
}

func (g *exprRenderer) renderSelectItem(e ast.Expr, alias string, win *atomize.WindowedColumn, inAgg bool) string {
	text := g.expr(e, parenCtx{}, win, inAgg)
	if alias == "" {
		return text
	}
	return text + " AS " + g.dialect.QuoteIdent(alias)
}

// starColumns reconstructs the implicit `relation.*`/`*` select-all a block
// never explicitly recorded (ctx.Frame's "All" bookkeeping is resolver-
// internal and never reaches atomize.Block). A bare `*` only renders when
// exactly one relation is in scope and no windowed column is present;
// otherwise every relation in scope (FROM first, then each Join, in order)
// is qualified, since a windowed column sits alongside the base columns
// from a specific relation and a multi-relation FROM needs to disambiguate
// which table's columns `*` would otherwise mean.
func (g *exprRenderer) starColumns(b *atomize.Block, fromRef string) []string {
	rels := []string{relName(b.From, fromRef)}
	for _, j := range b.Joins {
		rels = append(rels, relName(&j.With, ""))
	}
	if len(rels) == 1 && len(b.Windowed) == 0 {
		return []string{"*"}
	}
	out := make([]string, len(rels))
	for i, r := range rels {
		out[i] = g.dialect.QuoteRelation(r) + ".*"
	}
	return out
}

func relName(f *ir.From, fallback string) string {
	if f == nil {
		return fallback
	}
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

func (g *exprRenderer) fromClause(b *atomize.Block, fromRef string) string {
	var sb strings.Builder
	if b.From != nil {
		sb.WriteString(g.dialect.QuoteRelation(b.From.Name))
		if b.From.Alias != "" {
			sb.WriteString(" AS ")
			sb.WriteString(b.From.Alias)
		}
	} else {
		sb.WriteString(g.dialect.QuoteRelation(fromRef))
	}

	for _, j := range b.Joins {
		sb.WriteString(" ")
		sb.WriteString(joinSideText(j.Side))
		sb.WriteString(" ")
		sb.WriteString(g.dialect.QuoteRelation(j.With.Name))
		if j.With.Alias != "" {
			sb.WriteString(" AS ")
			sb.WriteString(j.With.Alias)
		}
		// SupportsUsing is deliberately never consulted: the resolver always
		// expands `~col` into an explicit equality (ir.Join's doc comment),
		// so there is never a USING(...) form to choose here.
		sb.WriteString(" ON ")
		sb.WriteString(g.expr(j.Filter, parenCtx{}, nil, false))
	}
	return sb.String()
}

func joinSideText(s ir.JoinSide) string {
	switch s {
	case ir.JoinLeft:
		return "LEFT JOIN"
	case ir.JoinRight:
		return "RIGHT JOIN"
	case ir.JoinFull:
		return "FULL JOIN"
	default:
		return "JOIN"
	}
}

// takeBounds converts a 1-based inclusive ir.Range into LIMIT/OFFSET text.
// An open-ended End renders OFFSET with no LIMIT at all.
func takeBounds(rng *ir.Range) (limit, offset string, hasOffset bool) {
	start := literalIntOr(rng.Start, 1)
	if start > 1 {
		hasOffset = true
		offset = strconv.FormatInt(start-1, 10)
	}
	if rng.End == nil {
		return "", offset, hasOffset
	}
	if end, ok := literalInt(rng.End); ok {
		limit = strconv.FormatInt(end-start+1, 10)
	}
	return limit, offset, hasOffset
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
