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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSimplePipeline(t *testing.T) {
	out, err := Format(`from employees | filter age > 25 | sort salary`)
	require.NoError(t, err)
	assert.Equal(t, "from employees |\nfilter age > 25 |\nsort salary\n", out)
}

func TestFormatIdempotent(t *testing.T) {
	sources := []string{
		`from employees`,
		`from employees | filter age > 25 | select [first_name, last_name]`,
		`from employees | derive bonus = salary * 0.1 + 5`,
		`from employees | filter (a - b) - c > 0`,
		`from x | join y [~id]`,
		`prql dialect:postgres
from employees
table t = (
  from x | filter a > 1
)`,
		`func double x -> x * 2
from employees | derive y = double salary`,
	}
	for _, src := range sources {
		once, err := Format(src)
		require.NoError(t, err, src)
		twice, err := Format(once)
		require.NoError(t, err, once)
		assert.Equal(t, once, twice, "format(format(p)) should equal format(p) for %q", src)
	}
}

func TestFormatMinimalParensAdditiveLeftAssoc(t *testing.T) {
	out, err := Format(`from t | derive y = a - b - c`)
	require.NoError(t, err)
	assert.Contains(t, out, "a - b - c")
}

func TestFormatParensWhenAssociativityWouldChangeMeaning(t *testing.T) {
	out, err := Format(`from t | derive y = a - (b - c)`)
	require.NoError(t, err)
	assert.Contains(t, out, "a - (b - c)")
}

func TestFormatCoalescePrecedenceBelowAdd(t *testing.T) {
	out, err := Format(`from t | derive y = amount + 2 ?? 3 * 5`)
	require.NoError(t, err)
	assert.Contains(t, out, "amount + 2 ?? 3 * 5")
}

func TestFormatFuncCallArgumentPrecedence(t *testing.T) {
	out, err := Format(`from employees | filter age > 25`)
	require.NoError(t, err)
	assert.Contains(t, out, "filter age > 25")
	assert.NotContains(t, out, "filter (age > 25)")
}

func TestFormatPipelineArgumentIsReparenthesized(t *testing.T) {
	out, err := Format(`from employees | group department (sort salary | take 1)`)
	require.NoError(t, err)
	assert.Contains(t, out, "(sort salary | take 1)")
}

func TestFormatQuotedIdentAndString(t *testing.T) {
	out, err := Format("from t | select [`my col`] | filter name == \"o'brien\"")
	require.NoError(t, err)
	assert.Contains(t, out, "`my col`")
	assert.Contains(t, out, `"o'brien"`)
}

func TestFormatTableDefIndented(t *testing.T) {
	out, err := Format(`table t = (
  from x | filter a > 1
)`)
	require.NoError(t, err)
	assert.Equal(t, "table t = (\n  from x |\n  filter a > 1\n)\n", out)
}
