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

// listItems returns expr's List items, or a single-element slice if expr is
// a bare item (a lone column, not wrapped in `[ ... ]`).
func listItems(expr ast.Expr) []ast.Expr {
	if l, ok := expr.(*ast.List); ok {
		return l.Items
	}
	return []ast.Expr{expr}
}

// resolveColumnList turns a select/derive/aggregate column-list argument
// into resolved ir.Columns, declaring a reference-able name for every item
// that has one (spec.md §4.3 name resolution).
//
// An `alias = expr` item renders `expr AS alias`. A bare item renders with
// no alias at all — confirmed directly against `aggregate (min order_id)`
// compiling to `MIN(order_id)`, with no AS — and, when the bare item is
// itself a plain column reference, is still bound under its own name so a
// later stage can refer to it (a pass-through select does not lose the
// column's name even though this rendering never adds AS name to itself).
func (r *Resolver) resolveColumnList(expr ast.Expr, frame *ctx.Frame) ([]ir.Column, error) {
	var cols []ir.Column
	for _, item := range listItems(expr) {
		switch v := item.(type) {
		case *ast.Assign:
			if err := r.validateExpr(v.Value, frame); err != nil {
				return nil, err
			}
			decl := r.ctx.Arena.Add(ctx.DeclColumn, v.Name)
			decl.Expr = v.Value
			r.ctx.Bind(v.Name, decl.ID)
			cols = append(cols, ir.Column{Alias: v.Name, Expr: v.Value})
		case *ast.Ident:
			if err := r.validateExpr(v, frame); err != nil {
				return nil, err
			}
			name := v.Parts[len(v.Parts)-1]
			decl := r.ctx.Arena.Add(ctx.DeclColumn, name)
			decl.Expr = v
			r.ctx.Bind(name, decl.ID)
			cols = append(cols, ir.Column{Alias: "", Expr: v})
		default:
			if err := r.validateExpr(v, frame); err != nil {
				return nil, err
			}
			cols = append(cols, ir.Column{Alias: "", Expr: v})
		}
	}
	return cols, nil
}

// frameColumnsForList mirrors resolveColumnList's naming decisions into
// Frame bookkeeping entries, for callers that need to update the visible
// Frame alongside the resolved ir.Columns (select/derive).
func frameColumnsForList(cols []ir.Column) []ctx.FrameColumn {
	out := make([]ctx.FrameColumn, 0, len(cols))
	for _, c := range cols {
		alias := c.Alias
		if alias == "" {
			if id, ok := c.Expr.(*ast.Ident); ok {
				alias = id.Parts[len(id.Parts)-1]
			}
		}
		if alias == "" {
			continue
		}
		out = append(out, ctx.FrameColumn{Kind: ctx.Single, Alias: alias})
	}
	return out
}

// hasAllEntry reports whether frame still carries an un-expanded `table.*`
// contribution, meaning its full column set isn't concretely known (no
// `select` has narrowed it yet).
func hasAllEntry(frame *ctx.Frame) bool {
	for _, c := range frame.Columns {
		if c.Kind == ctx.All {
			return true
		}
	}
	return false
}

// validateExpr walks e looking for column references the resolver can
// positively determine do not exist. Without a schema catalog for real
// tables, most names cannot be refuted — a single-part Ident is only
// flagged once `select` has narrowed the frame to a concrete column set
// (hasAllEntry false) and the name is absent from it; a dotted `t.col`
// reference is left alone unless `t` itself is an unbound name (spec.md
// §4.3's "raw external reference" fallback).
func (r *Resolver) validateExpr(e ast.Expr, frame *ctx.Frame) error {
	switch v := e.(type) {
	case *ast.Ident:
		if v.Opaque {
			logger.Warn("resolve: %q is a templated reference; treating it as a raw external reference", v.Raw)
			return nil
		}
		if len(v.Parts) == 1 {
			if hasAllEntry(frame) {
				return nil
			}
			if _, ok := frame.Lookup(v.Parts[0]); !ok {
				if _, bound := r.ctx.Resolve(v.Parts[0]); !bound {
					return r.errf(ast.UnknownName, v.Span(), "unknown name %q", v.Parts[0])
				}
			}
			return nil
		}
		if _, bound := r.ctx.Resolve(v.Parts[0]); !bound {
			logger.Warn("resolve: %q has no declared table %q; treating it as a raw external reference", v.Name(), v.Parts[0])
		}
		return nil
	case *ast.Binary:
		if err := r.validateExpr(v.L, frame); err != nil {
			return err
		}
		return r.validateExpr(v.R, frame)
	case *ast.Unary:
		return r.validateExpr(v.X, frame)
	case *ast.Range:
		if v.Start != nil {
			if err := r.validateExpr(v.Start, frame); err != nil {
				return err
			}
		}
		if v.End != nil {
			return r.validateExpr(v.End, frame)
		}
		return nil
	case *ast.List:
		for _, item := range v.Items {
			if err := r.validateExpr(item, frame); err != nil {
				return err
			}
		}
		return nil
	case *ast.Assign:
		return r.validateExpr(v.Value, frame)
	case *ast.FuncCall:
		for _, a := range v.Args {
			if err := r.validateExpr(a, frame); err != nil {
				return err
			}
		}
		for _, n := range v.Named {
			if err := r.validateExpr(n.Value, frame); err != nil {
				return err
			}
		}
		return nil
	case *ast.FString:
		for _, p := range v.Parts {
			if p.IsHole {
				if err := r.validateExpr(p.Expr, frame); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		return nil
	}
}
