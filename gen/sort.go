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
	"fmt"
	"strings"

	"github.com/prql-go/prqlgo/ast"
	"github.com/prql-go/prqlgo/ir"
)

func (g *exprRenderer) renderSortKeys(keys []ir.SortKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		text := g.expr(k.Expr, parenCtx{}, nil, false)
		if k.Descending {
			text += " DESC"
		}
		parts[i] = text
	}
	return strings.Join(parts, ", ")
}

// renderFrame renders a window's explicit ROWS/RANGE framing. PRQL's own
// window-frame fixtures are marked incomplete upstream, so this sticks to a
// general-purpose bound mapping rather than chasing one dialect's exact
// spelling.
func (g *exprRenderer) renderFrame(wf *ir.WindowFrame) string {
	if wf == nil {
		return ""
	}
	if wf.Rows != nil {
		return "ROWS BETWEEN " + g.renderFrameBound(wf.Rows.Start, true) + " AND " + g.renderFrameBound(wf.Rows.End, false)
	}
	if wf.Range != nil {
		return "RANGE BETWEEN " + g.renderFrameBound(wf.Range.Start, true) + " AND " + g.renderFrameBound(wf.Range.End, false)
	}
	return ""
}

func (g *exprRenderer) renderFrameBound(e ast.Expr, isStart bool) string {
	if e == nil {
		if isStart {
			return "UNBOUNDED PRECEDING"
		}
		return "UNBOUNDED FOLLOWING"
	}
	if lit, ok := e.(*ast.Literal); ok && lit.Kind == ast.LitInt {
		switch {
		case lit.Int == 0:
			return "CURRENT ROW"
		case lit.Int < 0:
			return fmt.Sprintf("%d PRECEDING", -lit.Int)
		default:
			return fmt.Sprintf("%d FOLLOWING", lit.Int)
		}
	}
	return g.expr(e, parenCtx{}, nil, false)
}
