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

func TestToJSONProducesArray(t *testing.T) {
	out, err := ToJSON(`from employees | filter age > 25`)
	require.NoError(t, err)
	assert.Contains(t, out, `"expr_stmt"`)
	assert.Contains(t, out, `"pipeline"`)
	assert.Contains(t, out, `"binary"`)
}

func TestFromJSONRoundTripsThroughFormat(t *testing.T) {
	sources := []string{
		`from employees`,
		`from employees | filter age > 25 | select [first_name, last_name]`,
		`from employees | derive bonus = salary * 0.1`,
		`prql dialect:postgres
from employees`,
		`func double x -> x * 2
from employees | derive y = double salary`,
	}
	for _, src := range sources {
		want, err := Format(src)
		require.NoError(t, err, src)

		j, err := ToJSON(src)
		require.NoError(t, err, src)

		got, err := FromJSON(j)
		require.NoError(t, err, j)

		assert.Equal(t, want, got, "format(from_json(to_json(p))) should equal format(p) for %q", src)
	}
}

func TestFromJSONRejectsUnknownKind(t *testing.T) {
	_, err := FromJSON(`[{"kind": "not_a_real_stmt"}]`)
	require.Error(t, err)
}

func TestFromJSONRejectsInvalidJSON(t *testing.T) {
	_, err := FromJSON(`not json`)
	require.Error(t, err)
}
