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

package resolve

import (
	"github.com/prql-go/prqlgo/ast"
	"github.com/prql-go/prqlgo/ctx"
	"github.com/prql-go/prqlgo/ir"
	"github.com/prql-go/prqlgo/logger"
)

// newTableRef resolves a `from`/`join` relation reference under bindName
// (an alias when one was given, else the relation's own name). When
// lookupName is already bound to a declared `table`, that declaration is
// reused as-is, so bindName's Columns proxy straight through to the columns
// the table statement recorded for it. Otherwise lookupName names a raw
// external relation with no known schema, and a fresh Declaration is minted
// for it.
func (r *Resolver) newTableRef(lookupName, bindName string) *ctx.Declaration {
	if id, ok := r.ctx.Resolve(lookupName); ok {
		if existing := r.ctx.Arena.Get(id); existing != nil && existing.Kind == ctx.DeclTable {
			r.ctx.Bind(bindName, existing.ID)
			return existing
		}
	}
	logger.Warn("resolve: %q has no declared schema; treating it as a raw external reference", lookupName)
	decl := r.ctx.Arena.Add(ctx.DeclTable, bindName)
	r.ctx.Bind(bindName, decl.ID)
	return decl
}

// relationRef pulls the table/CTE name and optional alias out of a
// `from`/`join` relation argument: a bare (possibly dotted) reference, or
// an `alias = reference` assignment.
func relationRef(e ast.Expr) (name, alias string, ok bool) {
	if a, isAssign := e.(*ast.Assign); isAssign {
		if id, isIdent := a.Value.(*ast.Ident); isIdent {
			return id.Name(), a.Name, true
		}
		return "", "", false
	}
	if id, isIdent := e.(*ast.Ident); isIdent {
		return id.Name(), "", true
	}
	return "", "", false
}

func (r *Resolver) resolveFrom(stage ast.Expr, args []ast.Expr, _ *ctx.Frame) ([]ir.Transform, *ctx.Frame, error) {
	if len(args) != 1 {
		return nil, nil, r.errf(ast.ArityMismatch, stage.Span(), "from takes exactly one relation")
	}
	name, alias, ok := relationRef(args[0])
	if !ok {
		return nil, nil, r.errf(ast.ArityMismatch, stage.Span(), "from expects a table reference")
	}

	refName := name
	if alias != "" {
		refName = alias
	}
	decl := r.newTableRef(name, refName)

	frame := ctx.NewFrame()
	frame.InScopeTables = []int{decl.ID}
	frame.Columns = []ctx.FrameColumn{{Kind: ctx.All, TableID: decl.ID}}

	return []ir.Transform{&ir.From{Name: name, Alias: alias}}, frame, nil
}

func (r *Resolver) resolveSelect(stage ast.Expr, args []ast.Expr, frame *ctx.Frame) ([]ir.Transform, *ctx.Frame, error) {
	if len(args) != 1 {
		return nil, nil, r.errf(ast.ArityMismatch, stage.Span(), "select takes exactly one column list")
	}
	cols, err := r.resolveColumnList(args[0], frame)
	if err != nil {
		return nil, nil, err
	}
	next := frame.Clone()
	next.Columns = frameColumnsForList(cols)
	return []ir.Transform{&ir.Compute{Columns: cols, Narrow: true}}, next, nil
}

func (r *Resolver) resolveDerive(stage ast.Expr, args []ast.Expr, frame *ctx.Frame) ([]ir.Transform, *ctx.Frame, error) {
	if len(args) != 1 {
		return nil, nil, r.errf(ast.ArityMismatch, stage.Span(), "derive takes exactly one column list")
	}
	cols, err := r.resolveColumnList(args[0], frame)
	if err != nil {
		return nil, nil, err
	}
	next := frame.Clone()
	for _, fc := range frameColumnsForList(cols) {
		next.Push(fc)
	}
	return []ir.Transform{&ir.Compute{Columns: cols, Narrow: false}}, next, nil
}

// resolveFilter resolves `filter`'s single boolean condition. A list
// argument (`filter [a > 1, b < 2]`) is rejected: the caller meant `and`,
// and a list of conditions has no single boolean meaning here.
func (r *Resolver) resolveFilter(stage ast.Expr, args []ast.Expr, frame *ctx.Frame) ([]ir.Transform, *ctx.Frame, error) {
	if len(args) != 1 {
		return nil, nil, r.errf(ast.ArityMismatch, stage.Span(), "filter takes exactly one condition")
	}
	cond := args[0]
	if _, isList := cond.(*ast.List); isList {
		return nil, nil, r.errf(ast.InvalidFilter, stage.Span(), "filter does not accept a list; combine conditions with `and`")
	}
	if err := r.validateExpr(cond, frame); err != nil {
		return nil, nil, err
	}
	if err := checkInRanges(cond, r); err != nil {
		return nil, nil, err
	}
	return []ir.Transform{&ir.Filter{Condition: cond}}, frame.Clone(), nil
}

// checkInRanges rejects `in` calls over an open-ended range: `in` tests
// membership in a closed interval, so `age | in ..40` (no lower bound)
// cannot be satisfied by any value and is rejected rather than silently
// compiled to always-false SQL.
func checkInRanges(e ast.Expr, r *Resolver) error {
	fc, ok := e.(*ast.FuncCall)
	if ok {
		if ident, isIdent := fc.Func.(*ast.Ident); isIdent && ident.Name() == "in" {
			for _, a := range fc.Args {
				if rng, isRange := a.(*ast.Range); isRange {
					if rng.Start == nil || rng.End == nil {
						return r.errf(ast.InvalidRange, rng.Span(), "`in` requires a closed range with both bounds")
					}
				}
			}
		}
		for _, a := range fc.Args {
			if err := checkInRanges(a, r); err != nil {
				return err
			}
		}
	}
	if b, isBin := e.(*ast.Binary); isBin {
		if err := checkInRanges(b.L, r); err != nil {
			return err
		}
		return checkInRanges(b.R, r)
	}
	if u, isUn := e.(*ast.Unary); isUn {
		return checkInRanges(u.X, r)
	}
	return nil
}

func (r *Resolver) resolveAggregate(stage ast.Expr, args []ast.Expr, frame *ctx.Frame) ([]ir.Transform, *ctx.Frame, error) {
	if len(args) != 1 {
		return nil, nil, r.errf(ast.ArityMismatch, stage.Span(), "aggregate takes exactly one column list")
	}
	cols, err := r.resolveColumnList(args[0], frame)
	if err != nil {
		return nil, nil, err
	}
	next := ctx.NewFrame()
	next.Columns = frameColumnsForList(cols)
	return []ir.Transform{&ir.Aggregate{Columns: cols}}, next, nil
}

// sortKeys parses a sort column-list argument into ir.SortKeys: a bare
// column sorts ascending, `-col` descending, `+col` explicitly ascending.
func sortKeys(expr ast.Expr) []ir.SortKey {
	var keys []ir.SortKey
	for _, item := range listItems(expr) {
		switch v := item.(type) {
		case *ast.Unary:
			if v.Op == ast.MINUS {
				keys = append(keys, ir.SortKey{Expr: v.X, Descending: true})
				continue
			}
			if v.Op == ast.PLUS {
				keys = append(keys, ir.SortKey{Expr: v.X, Descending: false})
				continue
			}
			keys = append(keys, ir.SortKey{Expr: v})
		default:
			keys = append(keys, ir.SortKey{Expr: v})
		}
	}
	return keys
}

func (r *Resolver) resolveSort(stage ast.Expr, args []ast.Expr, frame *ctx.Frame) ([]ir.Transform, *ctx.Frame, error) {
	if len(args) != 1 {
		return nil, nil, r.errf(ast.ArityMismatch, stage.Span(), "sort takes exactly one column list")
	}
	return []ir.Transform{&ir.Sort{Keys: sortKeys(args[0])}}, frame.Clone(), nil
}

// takeRange resolves a take argument (a bare count or an explicit a..b
// range) into a 1-based inclusive ir.Range: a bare `take n` means the first
// n rows, i.e. the range 1..n.
func takeRange(e ast.Expr) ir.Range {
	if rng, ok := e.(*ast.Range); ok {
		return ir.Range{Start: rng.Start, End: rng.End}
	}
	return ir.Range{Start: &ast.Literal{Kind: ast.LitInt, Int: 1}, End: e}
}

func (r *Resolver) resolveTake(stage ast.Expr, args []ast.Expr, frame *ctx.Frame) ([]ir.Transform, *ctx.Frame, error) {
	if len(args) != 1 {
		return nil, nil, r.errf(ast.ArityMismatch, stage.Span(), "take takes exactly one count or range")
	}
	return []ir.Transform{&ir.Take{Range: takeRange(args[0])}}, frame.Clone(), nil
}

func (r *Resolver) resolveUnique(stage ast.Expr, args []ast.Expr, frame *ctx.Frame) ([]ir.Transform, *ctx.Frame, error) {
	if len(args) == 0 {
		return []ir.Transform{&ir.Unique{}}, frame.Clone(), nil
	}
	if len(args) != 1 {
		return nil, nil, r.errf(ast.ArityMismatch, stage.Span(), "unique takes at most one column list")
	}
	var cols []ast.Expr
	cols = append(cols, listItems(args[0])...)
	return []ir.Transform{&ir.Unique{Columns: cols}}, frame.Clone(), nil
}

// joinRef names the table this join's relation argument refers to, for
// rendering and for qualifying `~col` shorthand predicates.
func joinRef(name, alias string) string {
	if alias != "" {
		return alias
	}
	return name
}

func (r *Resolver) resolveJoin(stage ast.Expr, args []ast.Expr, named []ast.NamedArg, frame *ctx.Frame) ([]ir.Transform, *ctx.Frame, error) {
	if len(args) != 2 {
		return nil, nil, r.errf(ast.ArityMismatch, stage.Span(), "join takes a relation and a join condition")
	}
	name, alias, ok := relationRef(args[0])
	if !ok {
		return nil, nil, r.errf(ast.ArityMismatch, stage.Span(), "join expects a table reference")
	}

	side := ir.JoinInner
	for _, n := range named {
		if n.Name == "side" {
			if id, isIdent := n.Value.(*ast.Ident); isIdent {
				switch id.Name() {
				case "inner":
					side = ir.JoinInner
				case "left":
					side = ir.JoinLeft
				case "right":
					side = ir.JoinRight
				case "full":
					side = ir.JoinFull
				default:
					return nil, nil, r.errf(ast.ArityMismatch, n.Value.Span(), "unknown join side %q", id.Name())
				}
			}
		}
	}

	if len(frame.InScopeTables) == 0 {
		return nil, nil, r.errf(ast.InternalError, stage.Span(), "join with no left-hand relation in scope")
	}
	leftDecl := r.ctx.Arena.Get(frame.InScopeTables[len(frame.InScopeTables)-1])
	leftRef := leftDecl.Name
	rightRef := joinRef(name, alias)

	cond, err := joinCondition(args[1], leftRef, rightRef, r)
	if err != nil {
		return nil, nil, err
	}

	decl := r.newTableRef(name, rightRef)

	next := frame.Clone()
	next.InScopeTables = append(next.InScopeTables, decl.ID)
	next.Columns = append(next.Columns, ctx.FrameColumn{Kind: ctx.All, TableID: decl.ID})

	return []ir.Transform{&ir.Join{
		Side:   side,
		With:   ir.From{Name: name, Alias: alias},
		Filter: cond,
	}}, next, nil
}

// joinCondition builds the ON expression for a join predicate list, which
// may mix `~col` same-name shorthand (expanded to an explicit equality
// between the two relations) with ordinary boolean conditions, ANDed
// together. `~t.col` (a qualified column inside the shorthand) is rejected:
// the shorthand only makes sense for an unqualified, same-named column on
// both sides.
func joinCondition(predicate ast.Expr, leftRef, rightRef string, r *Resolver) (ast.Expr, error) {
	items := listItems(predicate)
	var cond ast.Expr
	for _, item := range items {
		var clause ast.Expr
		if u, isUnary := item.(*ast.Unary); isUnary && u.Op == ast.TILDE {
			ident, isIdent := u.X.(*ast.Ident)
			if !isIdent || len(ident.Parts) != 1 {
				return nil, r.errf(ast.InvalidJoinPredicate, item.Span(),
					"~ shorthand requires an unqualified column name")
			}
			col := ident.Parts[0]
			clause = &ast.Binary{
				Op: ast.EQ,
				L:  &ast.Ident{Parts: []string{leftRef, col}, Quoted: []bool{false, false}},
				R:  &ast.Ident{Parts: []string{rightRef, col}, Quoted: []bool{false, false}},
			}
		} else {
			clause = item
		}
		if cond == nil {
			cond = clause
		} else {
			cond = &ast.Binary{Op: ast.AND, L: cond, R: clause}
		}
	}
	return cond, nil
}
