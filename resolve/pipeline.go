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
	"strings"

	"github.com/prql-go/prqlgo/ast"
	"github.com/prql-go/prqlgo/ctx"
	"github.com/prql-go/prqlgo/ir"
)

// stages flattens a pipeline body into its ordered stage expressions: a
// *ast.Pipeline's Stages, or a single-element slice for anything else (a
// lone `from x`, a parenthesized single stage).
func stages(body ast.Expr) []ast.Expr {
	if p, ok := body.(*ast.Pipeline); ok {
		return p.Stages
	}
	return []ast.Expr{body}
}

// splitCall recognizes a pipeline stage as `name` or `name arg1 arg2
// name2:val`, accepting both a bare *ast.Ident (a zero-argument call, e.g.
// `unique`) and a *ast.FuncCall.
func splitCall(stage ast.Expr) (name string, args []ast.Expr, named []ast.NamedArg, ok bool) {
	switch s := stage.(type) {
	case *ast.Ident:
		if s.Opaque || len(s.Parts) != 1 {
			return "", nil, nil, false
		}
		return s.Parts[0], nil, nil, true
	case *ast.FuncCall:
		ident, isIdent := s.Func.(*ast.Ident)
		if !isIdent || ident.Opaque {
			return "", nil, nil, false
		}
		return ident.Name(), s.Args, s.Named, true
	default:
		return "", nil, nil, false
	}
}

// resolvePipeline resolves every stage of body in order, threading the Frame
// through (spec.md §4.3: each transform consumes the previous stage's frame
// and produces a new one).
func (r *Resolver) resolvePipeline(body ast.Expr, frame *ctx.Frame) ([]ir.Transform, *ctx.Frame, error) {
	var out []ir.Transform
	for _, stage := range stages(body) {
		transforms, next, err := r.resolveStage(stage, frame)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, transforms...)
		frame = next
	}
	return out, frame, nil
}

func (r *Resolver) resolveStage(stage ast.Expr, frame *ctx.Frame) ([]ir.Transform, *ctx.Frame, error) {
	name, args, named, ok := splitCall(stage)
	if !ok {
		return nil, nil, r.errf(ast.UnknownTransform, stage.Span(), "expected a transform call, got %T", stage)
	}
	switch strings.ToLower(name) {
	case "from":
		return r.resolveFrom(stage, args, frame)
	case "select":
		return r.resolveSelect(stage, args, frame)
	case "derive":
		return r.resolveDerive(stage, args, frame)
	case "filter":
		return r.resolveFilter(stage, args, frame)
	case "aggregate":
		return r.resolveAggregate(stage, args, frame)
	case "sort":
		return r.resolveSort(stage, args, frame)
	case "take":
		return r.resolveTake(stage, args, frame)
	case "join":
		return r.resolveJoin(stage, args, named, frame)
	case "unique":
		return r.resolveUnique(stage, args, frame)
	case "group":
		return r.resolveGroup(stage, args, frame)
	case "window":
		return r.resolveWindowStage(stage, args, named, frame)
	default:
		return r.resolveUserCall(stage, name, args, named, frame)
	}
}

// resolveUserCall handles a pipeline stage whose head is not one of the
// eleven relational transforms: either a user `func` statement applied to
// the frame, or an unknown name (an error — only a declared transform or
// function may appear as a pipeline stage).
//
// This compiler resolves a user-defined function by substitution: its body
// is re-resolved with each parameter name bound, in the function's own
// declaration scope, to the caller's argument expression. This is simpler
// than the general PRQL curry/closure model (a function returning a further
// partially-applied function is not supported) but covers every function
// definition SPEC_FULL.md's examples use: a named function always has a
// fixed arity and its body is always a plain pipeline over its arguments.
func (r *Resolver) resolveUserCall(stage ast.Expr, name string, args []ast.Expr, named []ast.NamedArg, frame *ctx.Frame) ([]ir.Transform, *ctx.Frame, error) {
	declID, ok := r.ctx.Resolve(name)
	if !ok {
		return nil, nil, r.errf(ast.UnknownTransform, stage.Span(), "unknown transform or function %q", name)
	}
	decl := r.ctx.Arena.Get(declID)
	if decl == nil || decl.Kind != ctx.DeclFunction || decl.Func == nil {
		return nil, nil, r.errf(ast.UnknownTransform, stage.Span(), "%q is not callable as a pipeline stage", name)
	}
	fn := decl.Func
	if len(args) > len(fn.Params) {
		return nil, nil, r.errf(ast.ArityMismatch, stage.Span(), "%q takes %d argument(s), got %d", name, len(fn.Params), len(args))
	}

	subst := make(map[string]ast.Expr, len(fn.Params))
	for i, param := range fn.Params {
		if i < len(args) {
			subst[param.Name] = args[i]
			continue
		}
		if found := findNamed(named, param.Name); found != nil {
			subst[param.Name] = found
			continue
		}
		if param.Default != nil {
			subst[param.Name] = param.Default
			continue
		}
		return nil, nil, r.errf(ast.ArityMismatch, stage.Span(), "%q missing required argument %q", name, param.Name)
	}

	body := substituteExpr(fn.Body, subst)
	return r.resolvePipeline(body, frame)
}

func findNamed(named []ast.NamedArg, name string) ast.Expr {
	for _, n := range named {
		if n.Name == name {
			return n.Value
		}
	}
	return nil
}

// substituteExpr returns a copy of e with every bare Ident matching a key in
// subst replaced by the corresponding argument expression.
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
	case *ast.Assign:
		cp := *n
		cp.Value = substituteExpr(n.Value, subst)
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
	case *ast.Pipeline:
		cp := *n
		cp.Stages = make([]ast.Expr, len(n.Stages))
		for i, s := range n.Stages {
			cp.Stages[i] = substituteExpr(s, subst)
		}
		return &cp
	default:
		return e
	}
}
