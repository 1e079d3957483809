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

// Package resolve binds a parsed PRQL program against a Context, expanding
// transform applications into the ir package's relational IR and tracking
// the Frame of visible columns at every point (spec.md §4.3).
package resolve

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/prql-go/prqlgo/ast"
	"github.com/prql-go/prqlgo/ctx"
	"github.com/prql-go/prqlgo/dialect"
	"github.com/prql-go/prqlgo/ir"
	"github.com/prql-go/prqlgo/logger"
	"github.com/prql-go/prqlgo/stdlib"
)

// CompilerVersion is this compiler's own version, compared against a
// `prql version:"..."` prologue for compatibility (spec.md §4.1).
const CompilerVersion = "v0.1.0"

// DefaultDialect is used when no prologue sets one (spec.md §6).
const DefaultDialect = "generic"

// Resolver walks a parsed program and produces an ir.Query.
type Resolver struct {
	ctx     *ctx.Context
	std     *stdlib.Registry
	source  string
	dialect string
	version string
}

// New creates a Resolver. defaultDialect seeds Query.Dialect before any
// prologue is seen; std is the loaded stdlib registry.
func New(source, defaultDialect string, std *stdlib.Registry) *Resolver {
	return &Resolver{
		ctx:     ctx.New(),
		std:     std,
		source:  source,
		dialect: defaultDialect,
		version: CompilerVersion,
	}
}

// SetCompilerVersion overrides the version a `prql version:"..."` prologue
// is checked against (default CompilerVersion). Used by embedders pinning
// compatibility to a different release line than this package's own.
func (r *Resolver) SetCompilerVersion(v string) { r.version = v }

// Resolve runs the resolver over an entire parsed program.
func (r *Resolver) Resolve(stmts []ast.Stmt) (*ir.Query, error) {
	q := &ir.Query{Dialect: r.dialect}

	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.Prologue:
			if err := r.resolvePrologue(s, q); err != nil {
				return nil, err
			}
		case *ast.FuncDef:
			logger.Debug("resolve: declaring function %q", s.Name)
			decl := r.ctx.Arena.Add(ctx.DeclFunction, s.Name)
			decl.Func = s
			r.ctx.Bind(s.Name, decl.ID)
		case *ast.TableDef:
			logger.Debug("resolve: resolving table %q", s.Name)
			np, err := r.resolveTableDef(s)
			if err != nil {
				return nil, err
			}
			q.Tables = append(q.Tables, *np)
		case *ast.ExprStmt:
			logger.Debug("resolve: resolving main pipeline")
			transforms, _, err := r.resolvePipeline(s.X, ctx.NewFrame())
			if err != nil {
				return nil, err
			}
			q.Main = append(q.Main, transforms...)
		default:
			return nil, r.errf(ast.InternalError, stmt.Span(), "unhandled statement type %T", stmt)
		}
	}
	return q, nil
}

func (r *Resolver) resolvePrologue(p *ast.Prologue, q *ir.Query) error {
	if p.Dialect != "" {
		name := strings.ToLower(p.Dialect)
		if _, ok := dialect.Lookup(name); !ok {
			return r.errf(ast.UnsupportedDialect, p.Span(), "unsupported dialect %q", p.Dialect)
		}
		q.Dialect = name
		r.dialect = name
	}
	if p.Version != "" {
		requested := p.Version
		if !strings.HasPrefix(requested, "v") {
			requested = "v" + requested
		}
		if !semver.IsValid(requested) {
			return r.errf(ast.VersionMismatch, p.Span(), "invalid version %q", p.Version)
		}
		if semver.Major(requested) != semver.Major(r.version) {
			return r.errf(ast.VersionMismatch, p.Span(),
				"query requires PRQL version %s, compiler implements %s", p.Version, r.version)
		}
	}
	return nil
}

func (r *Resolver) resolveTableDef(td *ast.TableDef) (*ir.NamedPipeline, error) {
	r.ctx.Push()
	transforms, frame, err := r.resolvePipeline(td.Body, ctx.NewFrame())
	r.ctx.Pop()
	if err != nil {
		return nil, err
	}

	decl := r.ctx.Arena.Add(ctx.DeclTable, td.Name)
	decl.Columns = frame.ColumnNames()
	r.ctx.Bind(td.Name, decl.ID)

	return &ir.NamedPipeline{Name: td.Name, Transforms: transforms}, nil
}

func (r *Resolver) errf(kind ast.Kind, span ast.Span, format string, args ...interface{}) *ast.Error {
	return ast.NewError(kind, fmt.Sprintf(format, args...), r.source, span)
}
