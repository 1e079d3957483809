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

package ctx

import "github.com/prql-go/prqlgo/ast"

// DeclKind tags what a Declaration stands for.
type DeclKind int

const (
	DeclTable DeclKind = iota
	DeclColumn
	DeclFunction
	DeclVariable
)

// Declaration is one entry of the declaration arena: every table, column,
// function and local variable the resolver creates gets a stable integer
// id here, so later stages (atomize, gen) can refer to it without
// re-resolving names.
type Declaration struct {
	ID   int
	Kind DeclKind
	Name string

	// SourceTableID, for DeclColumn, names the table this column is
	// physically read from (as opposed to Alias, its current visible name).
	SourceTableID int

	// Func, for DeclFunction, is the definition; Expr, for DeclVariable and
	// computed DeclColumn entries, is the expression that produces it.
	Func *ast.FuncDef
	Expr ast.Expr

	// IsFromStdlib marks a DeclFunction sourced from the stdlib registry
	// rather than a user `func` statement.
	IsFromStdlib bool

	// Columns, for DeclTable, lists the final frame's column aliases in
	// order, so a later `from other_table` can report unknown-column
	// lookups precisely.
	Columns []string
}

// Arena is the append-only store of Declarations for one compilation.
type Arena struct {
	decls []*Declaration
}

// NewArena creates an empty declaration arena.
func NewArena() *Arena { return &Arena{} }

// Add appends a new declaration and assigns it the next stable id.
func (a *Arena) Add(kind DeclKind, name string) *Declaration {
	d := &Declaration{ID: len(a.decls), Kind: kind, Name: name}
	a.decls = append(a.decls, d)
	return d
}

// Get retrieves a declaration by id.
func (a *Arena) Get(id int) *Declaration {
	if id < 0 || id >= len(a.decls) {
		return nil
	}
	return a.decls[id]
}

// Len reports how many declarations the arena holds.
func (a *Arena) Len() int { return len(a.decls) }
