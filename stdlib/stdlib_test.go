package stdlib

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prql-go/prqlgo/ast"
)

func TestLoadIsIdempotent(t *testing.T) {
	r1, err := Load()
	require.NoError(t, err)
	r2, err := Load()
	require.NoError(t, err)
	assert.Same(t, r1, r2)
}

func TestLoadConcurrentFirstCallers(t *testing.T) {
	global = nil
	globalOnce = sync.Once{}

	const n = 16
	results := make(chan *Registry, n)
	for i := 0; i < n; i++ {
		go func() {
			r, err := Load()
			require.NoError(t, err)
			results <- r
		}()
	}
	first := <-results
	for i := 1; i < n; i++ {
		assert.Same(t, first, <-results)
	}
}

func TestAggregateClassification(t *testing.T) {
	r, err := build(builtinsSource, signaturesYAML)
	require.NoError(t, err)

	sig, ok := r.Lookup("min")
	require.True(t, ok)
	assert.True(t, sig.IsAggregate())
	assert.False(t, sig.IsWindow())

	sig, ok = r.Lookup("avg") // alias for average
	require.True(t, ok)
	assert.Equal(t, "average", sig.Name)
	assert.True(t, sig.IsAggregate())
}

func TestWindowClassification(t *testing.T) {
	r, err := build(builtinsSource, signaturesYAML)
	require.NoError(t, err)

	sig, ok := r.Lookup("row_number")
	require.True(t, ok)
	assert.True(t, sig.IsWindow())

	sig, ok = r.Lookup("rn") // alias
	require.True(t, ok)
	assert.Equal(t, "row_number", sig.Name)
}

func TestTransformParams(t *testing.T) {
	r, err := build(builtinsSource, signaturesYAML)
	require.NoError(t, err)

	sig, ok := r.Lookup("join")
	require.True(t, ok)
	assert.True(t, sig.IsTransform())
	names := paramNames(sig.Params)
	assert.Equal(t, []string{"side", "with", "filter"}, names)

	sig, ok = r.Lookup("window")
	require.True(t, ok)
	names = paramNames(sig.Params)
	assert.Equal(t, []string{"rows", "range", "expanding", "rolling", "pipeline"}, names)
}

func TestTransformsListsAllStdlibTransforms(t *testing.T) {
	r, err := build(builtinsSource, signaturesYAML)
	require.NoError(t, err)
	names := r.Transforms()
	assert.Contains(t, names, "from")
	assert.Contains(t, names, "aggregate")
	assert.Contains(t, names, "join")
	assert.NotContains(t, names, "min")
}

func paramNames(params []ast.Param) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}
