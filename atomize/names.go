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

package atomize

import "github.com/prql-go/prqlgo/ast"

// collectIdentNames walks e and appends every Ident's name (both the full
// dotted name and its final segment, since a bare aggregate-output alias is
// never dotted but a filter might still reference it unqualified inside a
// qualified context) into names.
func collectIdentNames(e ast.Expr, out map[string]bool) {
	if e == nil {
		return
	}
	switch v := e.(type) {
	case *ast.Ident:
		if v.Opaque {
			return
		}
		out[v.Name()] = true
		out[v.Parts[len(v.Parts)-1]] = true
	case *ast.Binary:
		collectIdentNames(v.L, out)
		collectIdentNames(v.R, out)
	case *ast.Unary:
		collectIdentNames(v.X, out)
	case *ast.Range:
		collectIdentNames(v.Start, out)
		collectIdentNames(v.End, out)
	case *ast.List:
		for _, item := range v.Items {
			collectIdentNames(item, out)
		}
	case *ast.Assign:
		collectIdentNames(v.Value, out)
	case *ast.FuncCall:
		collectIdentNames(v.Func, out)
		for _, a := range v.Args {
			collectIdentNames(a, out)
		}
		for _, n := range v.Named {
			collectIdentNames(n.Value, out)
		}
	case *ast.FString:
		for _, p := range v.Parts {
			if p.IsHole {
				collectIdentNames(p.Expr, out)
			}
		}
	case *ast.SString:
		for _, p := range v.Parts {
			if p.IsHole {
				collectIdentNames(p.Expr, out)
			}
		}
	}
}

// referencesAny reports whether e mentions any name in names.
func referencesAny(e ast.Expr, names map[string]bool) bool {
	if len(names) == 0 {
		return false
	}
	found := map[string]bool{}
	collectIdentNames(e, found)
	for n := range found {
		if names[n] {
			return true
		}
	}
	return false
}

// referencesOtherThan reports whether e mentions any Ident not in names —
// used to detect a filter mixing aggregate-output and pre-aggregate columns
// (spec.md §4.4 split rule 2).
func referencesOtherThan(e ast.Expr, names map[string]bool) bool {
	found := map[string]bool{}
	collectIdentNames(e, found)
	for n := range found {
		if !names[n] {
			return true
		}
	}
	return false
}
