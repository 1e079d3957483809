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

/*
Package prql is a PRQL-to-SQL compiler core.

PRQL (Pipelined Relational Query Language) is a pipelined alternative to SQL.
This package parses a PRQL source string, resolves it against its standard
library into a relational intermediate representation, and renders that IR
as a dialect-specific SQL string.

# Core Features

  - Pipelined transforms - from, select, derive, filter, aggregate, group,
    window, sort, take, join, unique
  - Curried user-defined functions and a fixed standard library of
    aggregate/window/scalar builtins
  - Frame-based name resolution across joins, tables, and nested pipelines
  - Six SQL dialects - generic, postgres, mysql, mssql, bigquery, clickhouse
  - An atomizer that coalesces transforms into the fewest possible SELECTs,
    splitting into CTEs only where SQL clause semantics require it

# Getting Started

Compiling a query:

	package main

	import (
		"fmt"

		"github.com/prql-go/prqlgo"
	)

	func main() {
		sql, err := prql.Compile(`
			from employees
			filter age > 25
			aggregate [salary_usd = min salary]
		`)
		if err != nil {
			panic(err)
		}
		fmt.Println(sql)
	}

A dialect is selected with a `prql dialect:...` prologue in the source, or
with WithDefaultDialect when no prologue is present:

	sql, err := prql.Compile(src, prql.WithDefaultDialect("postgres"))

# Scope

This package only compiles PRQL text to SQL text: it never executes SQL,
never validates against a live schema, and never touches the filesystem or
network. A command-line driver, diagnostic pretty-printing, and the PRQL
standard-library asset loader's packaging concerns are intentionally left to
callers (spec.md §1).
*/
package prql
