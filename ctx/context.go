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

// scope is one lexical level of name bindings: table aliases, function
// parameters, and `table`/`func` statement names all live here, keyed by
// their visible name and pointing at a Declaration id.
type scope struct {
	bindings map[string]int
}

func newScope() *scope { return &scope{bindings: make(map[string]int)} }

// Context is the resolver's working state for one compilation: the
// declaration arena plus a stack of lexical scopes. The root scope holds
// every `table` and `func` statement; nested scopes hold a pipeline's
// current frame-derived bindings and, inside a curried call, its
// parameters.
type Context struct {
	Arena  *Arena
	scopes []*scope

	// RowNumberCounter assigns the monotonic `_rn_N` suffix used when a
	// `group ... (take N>1)` lowers to ROW_NUMBER() + filter (spec.md's
	// take/group threshold policy, resolved in SPEC_FULL.md's supplemented
	// feature 3).
	RowNumberCounter int
}

// New creates a Context with one root scope.
func New() *Context {
	return &Context{Arena: NewArena(), scopes: []*scope{newScope()}}
}

// Push opens a new lexical scope (entering a function body, a table
// definition, or a group/window sub-pipeline).
func (c *Context) Push() { c.scopes = append(c.scopes, newScope()) }

// Pop closes the innermost lexical scope.
func (c *Context) Pop() { c.scopes = c.scopes[:len(c.scopes)-1] }

// Bind associates name with a declaration id in the innermost scope.
func (c *Context) Bind(name string, declID int) {
	c.scopes[len(c.scopes)-1].bindings[name] = declID
}

// Resolve looks up name from the innermost scope outward, implementing
// lexical shadowing.
func (c *Context) Resolve(name string) (int, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if id, ok := c.scopes[i].bindings[name]; ok {
			return id, true
		}
	}
	return 0, false
}

// NextRowNumberAlias returns the next `_rn_N` column alias and advances the
// counter.
func (c *Context) NextRowNumberAlias() string {
	c.RowNumberCounter++
	return rowNumberAlias(c.RowNumberCounter)
}

func rowNumberAlias(n int) string {
	// matches original_source's observed `_rn_81`/`_rn_82` naming: a single
	// counter shared by the whole query, not reset per table.
	return "_rn_" + itoa(n)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
