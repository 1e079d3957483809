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

// Package gen renders a resolved ir.Query to a single SQL string: every
// NamedPipeline and every intermediate split the atomizer introduces
// becomes one CTE, stitched ahead of the main pipeline's own SELECT.
//
// CTE naming is global across the whole Query (spec.md §4.4's "table_N"
// naming), assigned from one shared counter as pipelines are emitted in
// order: a NamedPipeline's own declared name always names its pipeline's
// final block, and every other split gets a synthetic "table_N", built up
// in one shared pass from a flat instruction list into a chain of SELECTs
// instead of a single execution graph.
package gen

import (
	"fmt"
	"strings"

	"github.com/prql-go/prqlgo/atomize"
	"github.com/prql-go/prqlgo/dialect"
	"github.com/prql-go/prqlgo/ir"
	"github.com/prql-go/prqlgo/stdlib"
)

// Generate renders q to a single SQL statement under dialect d, using reg to
// classify and bind stdlib function calls.
func Generate(q *ir.Query, d *dialect.Dialect, reg *stdlib.Registry) (string, error) {
	a := &assembler{g: &exprRenderer{dialect: d, stdlib: reg}}

	for _, np := range q.Tables {
		if err := a.emitTablePipeline(np); err != nil {
			return "", fmt.Errorf("gen: table %q: %w", np.Name, err)
		}
	}

	main, err := a.emitMainPipeline(q.Main)
	if err != nil {
		return "", fmt.Errorf("gen: %w", err)
	}

	if len(a.ctes) == 0 {
		return main, nil
	}
	return "WITH " + strings.Join(a.ctes, ",\n") + "\n" + main, nil
}

// assembler accumulates CTE fragments across an entire Query, handing out
// synthetic names from one counter shared by every pipeline.
type assembler struct {
	g       *exprRenderer
	ctes    []string
	counter int
}

func (a *assembler) nextName() string {
	name := fmt.Sprintf("table_%d", a.counter)
	a.counter++
	return name
}

// emitTablePipeline atomizes one `table name = (...)` pipeline and appends
// every resulting block as a CTE; its final block is named np.Name so later
// pipelines and the main query can FROM it by name.
func (a *assembler) emitTablePipeline(np ir.NamedPipeline) error {
	plan := atomize.Atomize(np.Transforms)
	prevRef := ""
	for i, b := range plan.Blocks {
		name := a.nextName()
		if i == len(plan.Blocks)-1 {
			name = np.Name
		}
		sql, err := a.g.renderBlock(b, prevRef)
		if err != nil {
			return err
		}
		a.ctes = append(a.ctes, a.g.dialect.QuoteIdent(name)+" AS (\n  "+sql+"\n)")
		prevRef = name
	}
	return nil
}

// emitMainPipeline atomizes the query's result pipeline, appending every
// block but the last as a CTE and returning the last block's own SELECT
// text as the query's outer statement.
func (a *assembler) emitMainPipeline(transforms []ir.Transform) (string, error) {
	plan := atomize.Atomize(transforms)
	prevRef := ""
	for i, b := range plan.Blocks {
		sql, err := a.g.renderBlock(b, prevRef)
		if err != nil {
			return "", err
		}
		if i == len(plan.Blocks)-1 {
			return sql, nil
		}
		name := a.nextName()
		a.ctes = append(a.ctes, a.g.dialect.QuoteIdent(name)+" AS (\n  "+sql+"\n)")
		prevRef = name
	}
	return "", fmt.Errorf("empty pipeline")
}
