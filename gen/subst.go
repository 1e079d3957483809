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
	"github.com/prql-go/prqlgo/ast"
	"github.com/prql-go/prqlgo/atomize"
)

// substituteAggAliases returns b.Having with every reference to one of
// b.Aggregate's own output aliases replaced by the expression that alias
// names. HAVING can't reference a SELECT-list alias the way ORDER BY can in
// most dialects, and an aggregate's alias is often itself an s-string
// wrapping the real aggregate call (`aggregate sum_salary = s"count({x})"`),
// so the condition has to carry the real expression, not the alias name.
func substituteAggAliases(b *atomize.Block) []ast.Expr {
	if b.Aggregate == nil {
		return b.Having
	}
	subst := make(map[string]ast.Expr, len(b.Aggregate.Columns))
	for _, c := range b.Aggregate.Columns {
		if c.Alias != "" {
			subst[c.Alias] = c.Expr
		}
	}
	if len(subst) == 0 {
		return b.Having
	}
	out := make([]ast.Expr, len(b.Having))
	for i, e := range b.Having {
		out[i] = substituteExpr(e, subst)
	}
	return out
}

// substituteExpr returns a copy of e with every bare Ident matching a key in
// subst replaced by the corresponding expression, mirroring the resolver's
// own function-body inlining pass (resolve/pipeline.go's substituteExpr).
func substituteExpr(e ast.Expr, subst map[string]ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.Ident:
		if !n.Opaque && len(n.Parts) == 1 {
			if v, ok := subst[n.Parts[0]]; ok {
				return v
			}
		}
		return n
	case *ast.Binary:
		cp := *n
		cp.L = substituteExpr(n.L, subst)
		cp.R = substituteExpr(n.R, subst)
		return &cp
	case *ast.Unary:
		cp := *n
		cp.X = substituteExpr(n.X, subst)
		return &cp
	case *ast.Range:
		cp := *n
		if n.Start != nil {
			cp.Start = substituteExpr(n.Start, subst)
		}
		if n.End != nil {
			cp.End = substituteExpr(n.End, subst)
		}
		return &cp
	case *ast.List:
		cp := *n
		cp.Items = make([]ast.Expr, len(n.Items))
		for i, item := range n.Items {
			cp.Items[i] = substituteExpr(item, subst)
		}
		return &cp
	case *ast.FuncCall:
		cp := *n
		cp.Func = substituteExpr(n.Func, subst)
		cp.Args = make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			cp.Args[i] = substituteExpr(a, subst)
		}
		cp.Named = make([]ast.NamedArg, len(n.Named))
		for i, a := range n.Named {
			cp.Named[i] = ast.NamedArg{Name: a.Name, Value: substituteExpr(a.Value, subst)}
		}
		return &cp
	default:
		return e
	}
}
