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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prql-go/prqlgo/ast"
	"github.com/prql-go/prqlgo/ir"
	"github.com/prql-go/prqlgo/stdlib"
)

func mustResolve(t *testing.T, source string) *ir.Query {
	t.Helper()
	std, err := stdlib.Load()
	require.NoError(t, err)
	p := ast.NewParser(source)
	stmts := p.ParseProgram()
	require.Empty(t, p.Errors(), "parse errors: %v", p.Errors())
	q, err := New(source, DefaultDialect, std).Resolve(stmts)
	require.NoError(t, err)
	return q
}

func TestResolveFromAssignsFrameAll(t *testing.T) {
	q := mustResolve(t, `from employees`)
	require.Len(t, q.Main, 1)
	from, ok := q.Main[0].(*ir.From)
	require.True(t, ok)
	assert.Equal(t, "employees", from.Name)
	assert.Equal(t, "", from.Alias)
}

func TestResolveFilterKeepsConditionAsOneBinary(t *testing.T) {
	q := mustResolve(t, `from employees | filter age > 25`)
	require.Len(t, q.Main, 2)
	filter, ok := q.Main[1].(*ir.Filter)
	require.True(t, ok)
	bin, ok := filter.Condition.(*ast.Binary)
	require.True(t, ok, "condition should be a single Binary(GT, age, 25), got %T", filter.Condition)
	assert.Equal(t, ast.GT, bin.Op)
	ident, ok := bin.L.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "age", ident.Name())
}

func TestResolveFilterRejectsList(t *testing.T) {
	std, err := stdlib.Load()
	require.NoError(t, err)
	source := `from employees | filter [age > 1, age < 2]`
	p := ast.NewParser(source)
	stmts := p.ParseProgram()
	require.Empty(t, p.Errors())
	_, err = New(source, DefaultDialect, std).Resolve(stmts)
	require.Error(t, err)
	prqlErr, ok := err.(*ast.Error)
	require.True(t, ok)
	assert.Equal(t, ast.InvalidFilter, prqlErr.Kind)
}

func TestResolveSelectNarrowsFrame(t *testing.T) {
	q := mustResolve(t, `from employees | select [first_name, last_name]`)
	require.Len(t, q.Main, 2)
	sel, ok := q.Main[1].(*ir.Compute)
	require.True(t, ok)
	assert.True(t, sel.Narrow)
	require.Len(t, sel.Columns, 2)
	assert.Equal(t, "", sel.Columns[0].Alias, "bare select items render with no alias")
}

func TestResolveAggregateBareItemHasNoAlias(t *testing.T) {
	q := mustResolve(t, `from employees | aggregate (min order_id)`)
	agg, ok := q.Main[1].(*ir.Aggregate)
	require.True(t, ok)
	require.Len(t, agg.Columns, 1)
	assert.Equal(t, "", agg.Columns[0].Alias)
	call, ok := agg.Columns[0].Expr.(*ast.FuncCall)
	require.True(t, ok)
	fn, ok := call.Func.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "min", fn.Name())
}

func TestResolveJoinTildeShorthandExpandsToEquality(t *testing.T) {
	q := mustResolve(t, `from x | join y [~id]`)
	join, ok := q.Main[1].(*ir.Join)
	require.True(t, ok)
	assert.Equal(t, ir.JoinInner, join.Side)
	bin, ok := join.Filter.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.EQ, bin.Op)
	l, ok := bin.L.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "x.id", l.Name())
	rr, ok := bin.R.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "y.id", rr.Name())
}

func TestResolveJoinRejectsQualifiedTildeColumn(t *testing.T) {
	std, err := stdlib.Load()
	require.NoError(t, err)
	source := `from x | join y [~x.id]`
	p := ast.NewParser(source)
	stmts := p.ParseProgram()
	require.Empty(t, p.Errors())
	_, err = New(source, DefaultDialect, std).Resolve(stmts)
	require.Error(t, err)
	prqlErr, ok := err.(*ast.Error)
	require.True(t, ok)
	assert.Equal(t, ast.InvalidJoinPredicate, prqlErr.Kind)
}

func TestResolveGroupTakeOneWithoutSelectIsDistinctOverAll(t *testing.T) {
	q := mustResolve(t, `from employees | group [first_name, last_name] (take 1)`)
	uniq, ok := q.Main[1].(*ir.Unique)
	require.True(t, ok)
	assert.Nil(t, uniq.Columns)
}

func TestResolveGroupTakeOneAfterSelectIsDistinctOverColumns(t *testing.T) {
	q := mustResolve(t, `from employees | select [first_name, last_name] | group [first_name, last_name] (take 1)`)
	uniq, ok := q.Main[2].(*ir.Unique)
	require.True(t, ok)
	require.Len(t, uniq.Columns, 2)
}

func TestResolveGroupTakeNLowersToWindowAndFilter(t *testing.T) {
	q := mustResolve(t, `from employees | group department (take 3)`)
	require.Len(t, q.Main, 3)
	win, ok := q.Main[1].(*ir.Window)
	require.True(t, ok)
	require.Len(t, win.PartitionBy, 1)
	filter, ok := q.Main[2].(*ir.Filter)
	require.True(t, ok)
	bin, ok := filter.Condition.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.LE, bin.Op)
}

func TestResolveGroupSortTakeRangeLowersToBetween(t *testing.T) {
	q := mustResolve(t, `from employees | group department (sort salary | take 2..3)`)
	win, ok := q.Main[1].(*ir.Window)
	require.True(t, ok)
	require.Len(t, win.OrderBy, 1)
	filter, ok := q.Main[2].(*ir.Filter)
	require.True(t, ok)
	bin, ok := filter.Condition.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.AND, bin.Op)
}

func TestResolveGroupAggregatePartitionsOnGroupColumns(t *testing.T) {
	q := mustResolve(t, `from employees | group [title, country] (aggregate [average salary])`)
	agg, ok := q.Main[1].(*ir.Aggregate)
	require.True(t, ok)
	assert.Len(t, agg.Partition, 2)
	assert.Len(t, agg.Columns, 1)
}

func TestResolveUnknownTransformErrors(t *testing.T) {
	std, err := stdlib.Load()
	require.NoError(t, err)
	source := `from employees | notareal thing`
	p := ast.NewParser(source)
	stmts := p.ParseProgram()
	require.Empty(t, p.Errors())
	_, err = New(source, DefaultDialect, std).Resolve(stmts)
	require.Error(t, err)
}

func TestResolveUserFunctionSubstitution(t *testing.T) {
	q := mustResolve(t, "func double x -> x * 2\nfrom employees | derive [y = double salary]")
	compute, ok := q.Main[1].(*ir.Compute)
	require.True(t, ok)
	require.Len(t, compute.Columns, 1)
	bin, ok := compute.Columns[0].Expr.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.ASTERISK, bin.Op)
}

func TestResolvePrologueDialect(t *testing.T) {
	q := mustResolve(t, "prql dialect:postgres\nfrom employees")
	assert.Equal(t, "postgres", q.Dialect)
}

func TestResolvePrologueUnsupportedDialectErrors(t *testing.T) {
	std, err := stdlib.Load()
	require.NoError(t, err)
	source := "prql dialect:oracle\nfrom employees"
	p := ast.NewParser(source)
	stmts := p.ParseProgram()
	require.Empty(t, p.Errors())
	_, err = New(source, DefaultDialect, std).Resolve(stmts)
	require.Error(t, err)
	prqlErr, ok := err.(*ast.Error)
	require.True(t, ok)
	assert.Equal(t, ast.UnsupportedDialect, prqlErr.Kind)
}

func TestResolveTableNameVisibleInLaterStatement(t *testing.T) {
	q := mustResolve(t, `
table t = (from employees | select [name, salary])
from t
`)
	require.Len(t, q.Tables, 1)
	assert.Equal(t, "t", q.Tables[0].Name)
	require.Len(t, q.Main, 1)
	from, ok := q.Main[0].(*ir.From)
	require.True(t, ok)
	assert.Equal(t, "t", from.Name)
}

func TestResolveFromReusesDeclaredTableDecl(t *testing.T) {
	std, err := stdlib.Load()
	require.NoError(t, err)
	source := `
table t = (from employees | select [name, salary])
from t
`
	p := ast.NewParser(source)
	stmts := p.ParseProgram()
	require.Empty(t, p.Errors())
	r := New(source, DefaultDialect, std)
	_, err = r.Resolve(stmts)
	require.NoError(t, err)

	id, ok := r.ctx.Resolve("t")
	require.True(t, ok, "table name should stay bound after its own statement resolves")
	decl := r.ctx.Arena.Get(id)
	require.NotNil(t, decl)
	assert.Equal(t, []string{"name", "salary"}, decl.Columns)
}

func TestResolveJoinReusesDeclaredTableColumns(t *testing.T) {
	std, err := stdlib.Load()
	require.NoError(t, err)
	source := `
table t = (from departments | select [name])
from employees |
join t [~department_id]
`
	p := ast.NewParser(source)
	stmts := p.ParseProgram()
	require.Empty(t, p.Errors())
	r := New(source, DefaultDialect, std)
	q, err := r.Resolve(stmts)
	require.NoError(t, err)
	require.Len(t, q.Tables, 1)

	join, ok := q.Main[len(q.Main)-1].(*ir.Join)
	require.True(t, ok)
	assert.Equal(t, "t", join.With.Name)

	id, ok := r.ctx.Resolve("t")
	require.True(t, ok)
	decl := r.ctx.Arena.Get(id)
	require.NotNil(t, decl)
	assert.Equal(t, []string{"name"}, decl.Columns)
}
