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
	"encoding/json"
	"fmt"

	"github.com/prql-go/prqlgo/ast"
)

// jsonNode is a flat, tagged-union wire representation of one ast.Stmt or
// ast.Expr node. encoding/json can't marshal the Stmt/Expr interfaces
// directly (it has no way to record which concrete type a field held), so
// every AST shape funnels through this single struct with a "kind"
// discriminator, the way a protocol buffer oneof or a hand-rolled JSON AST
// dump would. Byte spans are not carried across the JSON boundary: a round
// trip through ToJSON/FromJSON only needs to preserve semantics for
// Format() to reproduce canonical source, and the formatter never consults
// spans (spec.md §8's round-trip law is stated in terms of Format, not
// diagnostics).
type jsonNode struct {
	Kind string `json:"kind"`

	// Prologue
	Dialect string `json:"dialect,omitempty"`
	Version string `json:"version,omitempty"`

	// FuncDef / TableDef
	Name   string       `json:"name,omitempty"`
	Params []jsonParam  `json:"params,omitempty"`
	Body   *jsonNode    `json:"body,omitempty"`

	// ExprStmt
	X *jsonNode `json:"x,omitempty"`

	// Ident
	Segments []string `json:"segments,omitempty"`
	Quoted   []bool   `json:"quoted,omitempty"`
	Opaque   bool     `json:"opaque,omitempty"`
	Raw      string   `json:"raw,omitempty"`

	// Literal
	LitKind string  `json:"lit_kind,omitempty"`
	Bool    bool    `json:"bool,omitempty"`
	Int     int64   `json:"int,omitempty"`
	Float64 float64 `json:"float64,omitempty"`
	HasFrac bool    `json:"has_frac,omitempty"`
	Text    string  `json:"text,omitempty"`
	Unit    string  `json:"unit,omitempty"`

	// Range
	Start *jsonNode `json:"start,omitempty"`
	End   *jsonNode `json:"end,omitempty"`

	// List
	Items []*jsonNode `json:"items,omitempty"`

	// Assign
	Value *jsonNode `json:"value,omitempty"`

	// Pipeline
	Stages []*jsonNode `json:"stages,omitempty"`

	// FuncCall
	Func  *jsonNode      `json:"func,omitempty"`
	Args  []*jsonNode    `json:"args,omitempty"`
	Named []jsonNamedArg `json:"named,omitempty"`

	// FString / SString
	Parts []jsonStringPart `json:"parts,omitempty"`

	// Unary / Binary
	Op string    `json:"op,omitempty"`
	L  *jsonNode `json:"l,omitempty"`
	R  *jsonNode `json:"r,omitempty"`
}

type jsonParam struct {
	Name    string    `json:"name"`
	Default *jsonNode `json:"default,omitempty"`
}

type jsonNamedArg struct {
	Name  string    `json:"name"`
	Value *jsonNode `json:"value"`
}

type jsonStringPart struct {
	Literal string    `json:"literal,omitempty"`
	IsHole  bool      `json:"is_hole,omitempty"`
	Expr    *jsonNode `json:"expr,omitempty"`
}

// ToJSON parses source and serializes its statement list to JSON.
func ToJSON(source string) (string, error) {
	p := ast.NewParser(source)
	stmts := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return "", errs[0]
	}
	nodes := make([]*jsonNode, len(stmts))
	for i, s := range stmts {
		nodes[i] = stmtToJSON(s)
	}
	out, err := json.MarshalIndent(nodes, "", "  ")
	if err != nil {
		return "", &ast.Error{Kind: ast.InternalError, Message: err.Error()}
	}
	return string(out), nil
}

// FromJSON parses a document produced by ToJSON and renders it back to
// canonical PRQL source via Format's own stmt-list renderer (spec.md §8's
// "format(from_json(to_json(p))) == format(p)" round-trip law).
func FromJSON(jsonSource string) (string, error) {
	var nodes []*jsonNode
	if err := json.Unmarshal([]byte(jsonSource), &nodes); err != nil {
		return "", &ast.Error{Kind: ast.InternalError, Message: err.Error()}
	}
	stmts := make([]ast.Stmt, len(nodes))
	for i, n := range nodes {
		s, err := jsonToStmt(n)
		if err != nil {
			return "", err
		}
		stmts[i] = s
	}
	return formatProgram(stmts), nil
}

func stmtToJSON(s ast.Stmt) *jsonNode {
	switch n := s.(type) {
	case *ast.Prologue:
		return &jsonNode{Kind: "prologue", Dialect: n.Dialect, Version: n.Version}
	case *ast.FuncDef:
		params := make([]jsonParam, len(n.Params))
		for i, p := range n.Params {
			params[i] = jsonParam{Name: p.Name, Default: exprToJSON(p.Default)}
		}
		return &jsonNode{Kind: "func_def", Name: n.Name, Params: params, Body: exprToJSON(n.Body)}
	case *ast.TableDef:
		return &jsonNode{Kind: "table_def", Name: n.Name, Body: exprToJSON(n.Body)}
	case *ast.ExprStmt:
		return &jsonNode{Kind: "expr_stmt", X: exprToJSON(n.X)}
	default:
		return &jsonNode{Kind: "unknown"}
	}
}

func exprToJSON(e ast.Expr) *jsonNode {
	if e == nil {
		return nil
	}
	switch v := e.(type) {
	case *ast.Ident:
		return &jsonNode{Kind: "ident", Segments: v.Parts, Quoted: v.Quoted, Opaque: v.Opaque, Raw: v.Raw}
	case *ast.Literal:
		return &jsonNode{
			Kind: "literal", LitKind: litKindName(v.Kind), Bool: v.Bool, Int: v.Int,
			Float64: v.Float64, HasFrac: v.HasFrac, Text: v.Text, Unit: v.Unit,
		}
	case *ast.Range:
		return &jsonNode{Kind: "range", Start: exprToJSON(v.Start), End: exprToJSON(v.End)}
	case *ast.List:
		items := make([]*jsonNode, len(v.Items))
		for i, it := range v.Items {
			items[i] = exprToJSON(it)
		}
		return &jsonNode{Kind: "list", Items: items}
	case *ast.Assign:
		return &jsonNode{Kind: "assign", Name: v.Name, Value: exprToJSON(v.Value)}
	case *ast.Pipeline:
		stages := make([]*jsonNode, len(v.Stages))
		for i, s := range v.Stages {
			stages[i] = exprToJSON(s)
		}
		return &jsonNode{Kind: "pipeline", Stages: stages}
	case *ast.FuncCall:
		args := make([]*jsonNode, len(v.Args))
		for i, a := range v.Args {
			args[i] = exprToJSON(a)
		}
		named := make([]jsonNamedArg, len(v.Named))
		for i, na := range v.Named {
			named[i] = jsonNamedArg{Name: na.Name, Value: exprToJSON(na.Value)}
		}
		return &jsonNode{Kind: "func_call", Func: exprToJSON(v.Func), Args: args, Named: named}
	case *ast.FString:
		return &jsonNode{Kind: "fstring", Parts: stringPartsToJSON(v.Parts)}
	case *ast.SString:
		return &jsonNode{Kind: "sstring", Parts: stringPartsToJSON(v.Parts)}
	case *ast.Unary:
		return &jsonNode{Kind: "unary", Op: string(v.Op), L: exprToJSON(v.X)}
	case *ast.Binary:
		return &jsonNode{Kind: "binary", Op: string(v.Op), L: exprToJSON(v.L), R: exprToJSON(v.R)}
	default:
		return &jsonNode{Kind: "unknown"}
	}
}

func stringPartsToJSON(parts []ast.StringPart) []jsonStringPart {
	out := make([]jsonStringPart, len(parts))
	for i, p := range parts {
		out[i] = jsonStringPart{Literal: p.Literal, IsHole: p.IsHole, Expr: exprToJSON(p.Expr)}
	}
	return out
}

func litKindName(k ast.LiteralKind) string {
	switch k {
	case ast.LitNull:
		return "null"
	case ast.LitBool:
		return "bool"
	case ast.LitInt:
		return "int"
	case ast.LitFloat:
		return "float"
	case ast.LitString:
		return "string"
	case ast.LitDate:
		return "date"
	case ast.LitTime:
		return "time"
	case ast.LitTimestamp:
		return "timestamp"
	case ast.LitInterval:
		return "interval"
	default:
		return "unknown"
	}
}

func litKindFromName(s string) ast.LiteralKind {
	switch s {
	case "null":
		return ast.LitNull
	case "bool":
		return ast.LitBool
	case "int":
		return ast.LitInt
	case "float":
		return ast.LitFloat
	case "string":
		return ast.LitString
	case "date":
		return ast.LitDate
	case "time":
		return ast.LitTime
	case "timestamp":
		return ast.LitTimestamp
	case "interval":
		return ast.LitInterval
	default:
		return ast.LitNull
	}
}

func jsonToStmt(n *jsonNode) (ast.Stmt, error) {
	if n == nil {
		return nil, &ast.Error{Kind: ast.InternalError, Message: "from_json: nil statement"}
	}
	switch n.Kind {
	case "prologue":
		return &ast.Prologue{Dialect: n.Dialect, Version: n.Version}, nil
	case "func_def":
		params := make([]ast.Param, len(n.Params))
		for i, p := range n.Params {
			def, err := jsonToExpr(p.Default)
			if err != nil {
				return nil, err
			}
			params[i] = ast.Param{Name: p.Name, Default: def}
		}
		body, err := jsonToExpr(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.FuncDef{Name: n.Name, Params: params, Body: body}, nil
	case "table_def":
		body, err := jsonToExpr(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.TableDef{Name: n.Name, Body: body}, nil
	case "expr_stmt":
		x, err := jsonToExpr(n.X)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: x}, nil
	default:
		return nil, &ast.Error{Kind: ast.InternalError, Message: fmt.Sprintf("from_json: unknown statement kind %q", n.Kind)}
	}
}

func jsonToExpr(n *jsonNode) (ast.Expr, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case "ident":
		return &ast.Ident{Parts: n.Segments, Quoted: n.Quoted, Opaque: n.Opaque, Raw: n.Raw}, nil
	case "literal":
		return &ast.Literal{
			Kind: litKindFromName(n.LitKind), Bool: n.Bool, Int: n.Int,
			Float64: n.Float64, HasFrac: n.HasFrac, Text: n.Text, Unit: n.Unit,
		}, nil
	case "range":
		start, err := jsonToExpr(n.Start)
		if err != nil {
			return nil, err
		}
		end, err := jsonToExpr(n.End)
		if err != nil {
			return nil, err
		}
		return &ast.Range{Start: start, End: end}, nil
	case "list":
		items := make([]ast.Expr, len(n.Items))
		for i, it := range n.Items {
			e, err := jsonToExpr(it)
			if err != nil {
				return nil, err
			}
			items[i] = e
		}
		return &ast.List{Items: items}, nil
	case "assign":
		v, err := jsonToExpr(n.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Name: n.Name, Value: v}, nil
	case "pipeline":
		stages := make([]ast.Expr, len(n.Stages))
		for i, s := range n.Stages {
			e, err := jsonToExpr(s)
			if err != nil {
				return nil, err
			}
			stages[i] = e
		}
		return &ast.Pipeline{Stages: stages}, nil
	case "func_call":
		fn, err := jsonToExpr(n.Func)
		if err != nil {
			return nil, err
		}
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			e, err := jsonToExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = e
		}
		named := make([]ast.NamedArg, len(n.Named))
		for i, na := range n.Named {
			v, err := jsonToExpr(na.Value)
			if err != nil {
				return nil, err
			}
			named[i] = ast.NamedArg{Name: na.Name, Value: v}
		}
		return &ast.FuncCall{Func: fn, Args: args, Named: named}, nil
	case "fstring":
		parts, err := jsonToStringParts(n.Parts)
		if err != nil {
			return nil, err
		}
		return &ast.FString{Parts: parts}, nil
	case "sstring":
		parts, err := jsonToStringParts(n.Parts)
		if err != nil {
			return nil, err
		}
		return &ast.SString{Parts: parts}, nil
	case "unary":
		x, err := jsonToExpr(n.L)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.TokenType(n.Op), X: x}, nil
	case "binary":
		l, err := jsonToExpr(n.L)
		if err != nil {
			return nil, err
		}
		r, err := jsonToExpr(n.R)
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Op: ast.TokenType(n.Op), L: l, R: r}, nil
	default:
		return nil, &ast.Error{Kind: ast.InternalError, Message: fmt.Sprintf("from_json: unknown expr kind %q", n.Kind)}
	}
}

func jsonToStringParts(parts []jsonStringPart) ([]ast.StringPart, error) {
	out := make([]ast.StringPart, len(parts))
	for i, p := range parts {
		e, err := jsonToExpr(p.Expr)
		if err != nil {
			return nil, err
		}
		out[i] = ast.StringPart{Literal: p.Literal, IsHole: p.IsHole, Expr: e}
	}
	return out, nil
}
