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

// Package dialect carries the per-target-database rendering rules the SQL
// generator needs: identifier quoting, row-limiting syntax, and interval
// literal spelling. Every dialect is a plain value built once by Builder and
// looked up by name; there is no dialect-specific code path elsewhere in the
// generator beyond calling these methods.
package dialect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// LimitStyle selects how a Dialect renders a row-limiting clause.
type LimitStyle int

const (
	// LimitOffset renders `LIMIT n OFFSET m`.
	LimitOffset LimitStyle = iota
	// TopNoOffset renders `SELECT TOP (n) ...`; OFFSET requires an ORDER BY
	// and is otherwise an error (mssql has no OFFSET-without-FETCH form
	// worth emitting here).
	TopNoOffset
)

// Dialect is the immutable rendering configuration for one SQL target.
type Dialect struct {
	Name string

	quoteStart string
	quoteEnd   string
	escape     string

	limitStyle   LimitStyle
	supportsUsing bool
}

var plainIdent = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// QuoteIdent renders name quoted per this dialect's identifier rules if it
// is anything other than a plain lowercase identifier (spec.md's case-
// sensitivity invariant means `UPPER`, `t.col`-qualifying dots, and hyphens
// all need quoting to round-trip), otherwise returns it bare.
func (d *Dialect) QuoteIdent(name string) string {
	if plainIdent.MatchString(name) {
		return name
	}
	escaped := strings.ReplaceAll(name, d.quoteEnd, d.escape)
	return d.quoteStart + escaped + d.quoteEnd
}

// QuoteRelation renders a (possibly schema-qualified) relation name. ANSI
// double-quote dialects treat an internal dot as a literal schema.table
// separator and quote each segment on its own (`some_schema.tablename`
// round-trips bare, a segment needing quoting is quoted on its own);
// backtick dialects (bigquery, mysql, clickhouse) have no such separator in
// their identifier grammar, so the whole dotted path quotes as one opaque
// unit instead — confirmed by bigquery's `db.schema.table` rendering as a
// single backtick-quoted identifier where postgres renders the same shape
// of name bare, segment by segment.
func (d *Dialect) QuoteRelation(name string) string {
	if d.quoteStart != "`" || !strings.Contains(name, ".") {
		segs := strings.Split(name, ".")
		for i, s := range segs {
			segs[i] = d.QuoteIdent(s)
		}
		return strings.Join(segs, ".")
	}
	return d.QuoteIdent(name)
}

// SupportsUsing reports whether this dialect accepts `JOIN ... USING (...)`.
// The generator does not consult it: the resolver never emits USING (see
// ir.Join's doc comment), so every join renders as `ON <expr>`.
func (d *Dialect) SupportsUsing() bool { return d.supportsUsing }

// RenderLimit renders a row-limiting clause fragment. limit/offset are
// rendered SQL literals (already stringified by the expression renderer);
// hasOffset/hasSort report whether an OFFSET and a preceding ORDER BY were
// given, since TopNoOffset dialects (mssql) can't express OFFSET without an
// explicit sort (spec.md §4.4).
//
// Returns the clause to place in the SELECT's trailing position, and
// (for TopNoOffset) the `TOP (n)` fragment to place right after SELECT.
func (d *Dialect) RenderLimit(limit, offset string, hasOffset, hasSort bool) (trailing string, top string, err error) {
	switch d.limitStyle {
	case TopNoOffset:
		if hasOffset {
			if !hasSort {
				return "", "", fmt.Errorf("dialect %s: OFFSET requires an ORDER BY", d.Name)
			}
			return fmt.Sprintf("OFFSET %s ROWS FETCH NEXT %s ROWS ONLY", offset, limit), "", nil
		}
		return "", fmt.Sprintf("TOP (%s)", limit), nil
	default:
		var b strings.Builder
		if limit != "" {
			b.WriteString("LIMIT ")
			b.WriteString(limit)
		}
		if hasOffset {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString("OFFSET ")
			b.WriteString(offset)
		}
		return b.String(), "", nil
	}
}

// RenderInterval renders an interval literal (spec.md's `Ndays` tokens),
// coercing the count through cast so a literal parsed as either an int or a
// float token still yields a clean integer count.
func (d *Dialect) RenderInterval(count interface{}, unit string) string {
	n := cast.ToInt64(count)
	return fmt.Sprintf("INTERVAL %d %s", n, strings.ToUpper(singularizeIntervalUnit(unit)))
}

func singularizeIntervalUnit(unit string) string {
	unit = strings.TrimSuffix(unit, "s")
	return unit
}

// Builder constructs a Dialect with sane defaults (double-quote identifiers,
// LIMIT/OFFSET, no USING) that each registered dialect below overrides as
// needed.
type Builder struct {
	d *Dialect
}

// New starts a Builder for a dialect named name.
func New(name string) *Builder {
	return &Builder{d: &Dialect{
		Name:          name,
		quoteStart:    `"`,
		quoteEnd:      `"`,
		escape:        `""`,
		limitStyle:    LimitOffset,
		supportsUsing: false,
	}}
}

// Quoting sets the identifier quote characters and escape sequence.
func (b *Builder) Quoting(start, end, escape string) *Builder {
	b.d.quoteStart, b.d.quoteEnd, b.d.escape = start, end, escape
	return b
}

// Limit sets the row-limiting style.
func (b *Builder) Limit(style LimitStyle) *Builder {
	b.d.limitStyle = style
	return b
}

// Using marks whether this dialect accepts JOIN ... USING (...).
func (b *Builder) Using(supported bool) *Builder {
	b.d.supportsUsing = supported
	return b
}

// Build returns the assembled Dialect.
func (b *Builder) Build() *Dialect { return b.d }

var registry = map[string]*Dialect{
	"generic": New("generic").
		Quoting(`"`, `"`, `""`).
		Limit(LimitOffset).
		Using(true).
		Build(),
	"postgres": New("postgres").
		Quoting(`"`, `"`, `""`).
		Limit(LimitOffset).
		Using(true).
		Build(),
	"mysql": New("mysql").
		Quoting("`", "`", "``").
		Limit(LimitOffset).
		Using(true).
		Build(),
	"mssql": New("mssql").
		Quoting(`"`, `"`, `""`).
		Limit(TopNoOffset).
		Using(false).
		Build(),
	"bigquery": New("bigquery").
		Quoting("`", "`", "``").
		Limit(LimitOffset).
		Using(false).
		Build(),
	"clickhouse": New("clickhouse").
		Quoting("`", "`", "``").
		Limit(LimitOffset).
		Using(false).
		Build(),
}

// Lookup returns the registered Dialect for name, case-insensitively.
func Lookup(name string) (*Dialect, bool) {
	d, ok := registry[strings.ToLower(name)]
	return d, ok
}

// Names lists every registered dialect name, in no particular order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
