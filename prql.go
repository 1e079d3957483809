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
	"fmt"

	"github.com/prql-go/prqlgo/ast"
	"github.com/prql-go/prqlgo/dialect"
	"github.com/prql-go/prqlgo/gen"
	"github.com/prql-go/prqlgo/logger"
	"github.com/prql-go/prqlgo/resolve"
	"github.com/prql-go/prqlgo/stdlib"
)

// Compiler is a reusable PRQL-to-SQL compiler. Every Compile call is
// independent: no state is shared across calls except the process-wide
// stdlib registry, which is loaded once (spec.md §5).
//
// The zero value is not usable; construct with New.
type Compiler struct {
	defaultDialect string
	version        string
}

// New creates a Compiler with options applied over the defaults (dialect
// "generic", this package's own CompilerVersion).
func New(options ...Option) *Compiler {
	c := &Compiler{
		defaultDialect: resolve.DefaultDialect,
		version:        resolve.CompilerVersion,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Compile parses, resolves, and renders source into a single SQL string, or
// returns the first structured *ast.Error encountered (spec.md §7:
// "Propagation: each stage returns on first error; no partial SQL is
// emitted").
func (c *Compiler) Compile(source string) (sql string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &ast.Error{Kind: ast.InternalError, Message: fmt.Sprintf("panic: %v", rec)}
		}
	}()

	logger.Debug("compile: parsing")
	p := ast.NewParser(source)
	stmts := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return "", errs[0]
	}

	logger.Debug("compile: loading stdlib")
	std, err := stdlib.Load()
	if err != nil {
		return "", &ast.Error{Kind: ast.InternalError, Message: err.Error()}
	}

	logger.Debug("compile: resolving")
	r := resolve.New(source, c.defaultDialect, std)
	r.SetCompilerVersion(c.version)
	query, err := r.Resolve(stmts)
	if err != nil {
		return "", err
	}

	logger.Debug("compile: atomizing and generating SQL for dialect %q", query.Dialect)
	d, ok := dialect.Lookup(query.Dialect)
	if !ok {
		return "", &ast.Error{Kind: ast.UnsupportedDialect, Message: fmt.Sprintf("unsupported dialect %q", query.Dialect)}
	}
	sql, genErr := gen.Generate(query, d, std)
	if genErr != nil {
		return "", &ast.Error{Kind: ast.InternalError, Message: genErr.Error()}
	}
	return sql, nil
}

// defaultCompiler backs the package-level Compile/Format/ToJSON/FromJSON
// convenience functions.
var defaultCompiler = New()

// Compile is shorthand for New().Compile(source).
func Compile(source string, options ...Option) (string, error) {
	if len(options) == 0 {
		return defaultCompiler.Compile(source)
	}
	return New(options...).Compile(source)
}
