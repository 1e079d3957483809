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
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prql-go/prqlgo/ast"
)

var spaceRun = regexp.MustCompile(`\s+`)

func normalizeSQL(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

func assertSQL(t *testing.T, want, got string) {
	t.Helper()
	assert.Equal(t, normalizeSQL(want), normalizeSQL(got))
}

func TestCompileFromSelect(t *testing.T) {
	sql, err := Compile(`from employees`)
	require.NoError(t, err)
	assertSQL(t, `SELECT * FROM employees`, sql)
}

func TestCompileSelectDerive(t *testing.T) {
	sql, err := Compile(`
from employees |
select [name, salary] |
derive bonus = salary * 0.1
`)
	require.NoError(t, err)
	assertSQL(t, `SELECT name, salary, salary * 0.1 AS bonus FROM employees`, sql)
}

func TestCompileIntervalLiteral(t *testing.T) {
	sql, err := Compile(`
from projects |
derive first_check_in = start + 10days
`)
	require.NoError(t, err)
	assert.Contains(t, normalizeSQL(sql), "INTERVAL 10 DAY")
}

func TestCompileFilterSort(t *testing.T) {
	sql, err := Compile(`
from employees |
filter salary > 50000 |
sort salary
`)
	require.NoError(t, err)
	assertSQL(t, `SELECT * FROM employees WHERE salary > 50000 ORDER BY salary`, sql)
}

func TestCompileTakeRange(t *testing.T) {
	sql, err := Compile(`
from employees |
take 5..10
`)
	require.NoError(t, err)
	assertSQL(t, `SELECT * FROM employees LIMIT 6 OFFSET 4`, sql)
}

func TestCompileTakeRangeMssqlTop(t *testing.T) {
	sql, err := Compile(`
prql dialect:mssql
from employees |
take 3
`)
	require.NoError(t, err)
	assertSQL(t, `SELECT TOP (3) * FROM employees`, sql)
}

func TestCompileAggregate(t *testing.T) {
	sql, err := Compile(`
from employees |
group department (
  aggregate [total = sum salary, n = count]
)
`)
	require.NoError(t, err)
	assert.Contains(t, normalizeSQL(sql), "GROUP BY department")
	assert.Contains(t, normalizeSQL(sql), "SUM(salary) AS total")
}

func TestCompilePostAggregateFilterBecomesHaving(t *testing.T) {
	sql, err := Compile(`
from employees |
group department (
  aggregate [total = sum salary]
) |
filter total > 100000
`)
	require.NoError(t, err)
	assert.Contains(t, normalizeSQL(sql), "HAVING SUM(salary) > 100000")
}

func TestCompileJoin(t *testing.T) {
	sql, err := Compile(`
from employees |
join departments [~department_id]
`)
	require.NoError(t, err)
	assert.Contains(t, normalizeSQL(sql), "JOIN departments")
}

func TestCompileUnsupportedDialect(t *testing.T) {
	_, err := Compile(`
prql dialect:nosuchdb
from employees
`)
	require.Error(t, err)
	var perr *ast.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ast.UnsupportedDialect, perr.Kind)
}

func TestCompileVersionMismatchMajor(t *testing.T) {
	_, err := Compile(`
prql version:"99.0"
from employees
`)
	require.Error(t, err)
	var perr *ast.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ast.VersionMismatch, perr.Kind)
}

func TestCompileWithCompilerVersionOption(t *testing.T) {
	_, err := Compile(`
prql version:"0.1"
from employees
`, WithCompilerVersion("v0.1.0"))
	require.NoError(t, err)
}

func TestCompileFilterListIsInvalid(t *testing.T) {
	_, err := Compile(`
from employees |
filter [a > 1, b < 2]
`)
	require.Error(t, err)
	var perr *ast.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ast.InvalidFilter, perr.Kind)
}

func TestCompileFilterRangeIsInvalid(t *testing.T) {
	_, err := Compile(`
from employees |
filter (age | in ..40)
`)
	require.Error(t, err)
	var perr *ast.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ast.InvalidRange, perr.Kind)
}

func TestCompileJoinTildePredicateIsInvalid(t *testing.T) {
	_, err := Compile(`
from x |
join y [~x.id]
`)
	require.Error(t, err)
	var perr *ast.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ast.InvalidJoinPredicate, perr.Kind)
}

func TestCompileWithDefaultDialect(t *testing.T) {
	sql, err := Compile(`
from employees |
take 3
`, WithDefaultDialect("mssql"))
	require.NoError(t, err)
	assertSQL(t, `SELECT TOP (3) * FROM employees`, sql)
}

func TestCompilerIsReusable(t *testing.T) {
	c := New(WithDefaultDialect("postgres"))
	sql1, err := c.Compile(`from a`)
	require.NoError(t, err)
	sql2, err := c.Compile(`from b`)
	require.NoError(t, err)
	assertSQL(t, `SELECT * FROM a`, sql1)
	assertSQL(t, `SELECT * FROM b`, sql2)
}
