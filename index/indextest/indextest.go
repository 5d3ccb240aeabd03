// Package indextest holds shared tests for index backends.
package indextest

import (
	"context"
	"fmt"
	"testing"

	"github.com/jeffreytso/contourdex/index"
	"github.com/jeffreytso/contourdex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunConformance exercises the query semantics every Index backend must
// share. Backends call it from their own tests with a fresh, empty index.
func RunConformance(t *testing.T, idx index.Index) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, idx.Clear(ctx))
	require.NoError(t, idx.Insert(ctx, model.CorpusEntry{ID: "a", Contour: "*UUD", MetadataRef: "a.ly"}))
	require.NoError(t, idx.Insert(ctx, model.CorpusEntry{ID: "b", Contour: "*DDU", MetadataRef: "b.ly"}))

	ids := func(entries []model.CorpusEntry) []string {
		out := make([]string, 0, len(entries))
		for _, e := range entries {
			out = append(out, e.ID)
		}
		return out
	}

	tests := []struct {
		pattern string
		limit   int
		want    []string
	}{
		{"UD", 10, []string{"a"}},
		{"ud", 10, []string{"a"}},
		{"DD", 10, []string{"b"}},
		{"Z", 10, []string{}},
		{"*", 10, []string{"a", "b"}},
		{"*", 1, []string{"a"}},
		{"U", 0, []string{}},
		{"U", -3, []string{}},
		{"", 10, []string{}},
		{".*", 10, []string{}},
		{"%", 10, []string{}},
		{"[UD]", 10, []string{}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q limit %d", tt.pattern, tt.limit), func(t *testing.T) {
			res, err := idx.Query(ctx, tt.pattern, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(res))
			for _, e := range res {
				assert.NotEmpty(t, e.MetadataRef)
			}
		})
	}

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, idx.Clear(ctx))
	n, err = idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	res, err := idx.Query(ctx, "U", 10)
	require.NoError(t, err)
	assert.Empty(t, res)
}
