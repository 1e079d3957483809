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

package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownDialects(t *testing.T) {
	for _, name := range []string{"generic", "mssql", "mysql", "postgres", "bigquery", "clickhouse"} {
		d, ok := Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, name, d.Name)
	}
}

func TestLookupUnknownDialect(t *testing.T) {
	_, ok := Lookup("oracle")
	assert.False(t, ok)
}

func TestQuoteIdentPlainNamePassesThrough(t *testing.T) {
	d, _ := Lookup("generic")
	assert.Equal(t, "salary", d.QuoteIdent("salary"))
}

func TestQuoteIdentCaseSensitiveNameIsQuoted(t *testing.T) {
	d, _ := Lookup("generic")
	assert.Equal(t, `"UPPER"`, d.QuoteIdent("UPPER"))
}

func TestQuoteIdentMySQLUsesBackticks(t *testing.T) {
	d, _ := Lookup("mysql")
	assert.Equal(t, "`last name`", d.QuoteIdent("last name"))
}

func TestRenderLimitGenericOffset(t *testing.T) {
	d, _ := Lookup("generic")
	trailing, top, err := d.RenderLimit("6", "4", true, false)
	require.NoError(t, err)
	assert.Equal(t, "", top)
	assert.Equal(t, "LIMIT 6 OFFSET 4", trailing)
}

func TestRenderLimitMSSQLTop(t *testing.T) {
	d, _ := Lookup("mssql")
	trailing, top, err := d.RenderLimit("3", "", false, false)
	require.NoError(t, err)
	assert.Equal(t, "TOP (3)", top)
	assert.Equal(t, "", trailing)
}

func TestRenderLimitMSSQLOffsetWithoutSortErrors(t *testing.T) {
	d, _ := Lookup("mssql")
	_, _, err := d.RenderLimit("3", "2", true, false)
	assert.Error(t, err)
}

func TestRenderLimitMSSQLOffsetWithSort(t *testing.T) {
	d, _ := Lookup("mssql")
	trailing, top, err := d.RenderLimit("3", "2", true, true)
	require.NoError(t, err)
	assert.Equal(t, "", top)
	assert.Equal(t, "OFFSET 2 ROWS FETCH NEXT 3 ROWS ONLY", trailing)
}

func TestRenderIntervalSingularizesUnit(t *testing.T) {
	d, _ := Lookup("generic")
	assert.Equal(t, "INTERVAL 10 DAY", d.RenderInterval(10, "days"))
}

func TestSupportsUsing(t *testing.T) {
	generic, _ := Lookup("generic")
	assert.True(t, generic.SupportsUsing())
	bq, _ := Lookup("bigquery")
	assert.False(t, bq.SupportsUsing())
}
