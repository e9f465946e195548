package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/citadel/internal/adapter/source/fixture"
	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/store"
)

func setupSearch(t *testing.T) *Queries {
	t.Helper()
	st := store.NewMemoryStore()
	require.NoError(t, st.UpsertCharacters([]domain.Character{
		{ID: 1, Name: "Rick Sanchez"},
		{ID: 2, Name: "Morty Smith"},
		{ID: 3, Name: "Summer Smith"},
		{ID: 4, Name: "Beth Smith"},
		{ID: 5, Name: "Jerry Smith"},
		{ID: 7, Name: "Abradolf Lincler"},
	}))
	return NewService(fixture.New(nil, nil), st, nil).Queries
}

func resultIDs(results []SearchResult) []int {
	out := make([]int, len(results))
	for i, r := range results {
		out[i] = r.Character.ID
	}
	return out
}

func TestSearch(t *testing.T) {
	q := setupSearch(t)

	tests := []struct {
		name        string
		query       string
		limit       int
		wantFirst   int
		wantLen     int
		approximate bool
	}{
		{name: "exact", query: "Rick Sanchez", wantFirst: 1, wantLen: 1},
		{name: "subsequence", query: "abrlin", wantFirst: 7, wantLen: 1},
		{name: "shared surname", query: "smith", wantLen: 4},
		{name: "limit", query: "smith", limit: 2, wantLen: 2},
		{name: "typo", query: "mroty", wantFirst: 2, wantLen: 1, approximate: true},
		{name: "no match", query: "zzzzzzzz", wantLen: 0},
		{name: "blank", query: "   ", wantLen: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := q.Search(tt.query, tt.limit)
			require.Len(t, results, tt.wantLen, "got %v", resultIDs(results))
			if tt.wantLen == 0 {
				return
			}
			if tt.wantFirst != 0 {
				assert.Equal(t, tt.wantFirst, results[0].Character.ID)
			}
			assert.Equal(t, tt.approximate, results[0].Approximate)
		})
	}
}

func TestSearch_MatchedIndexes(t *testing.T) {
	q := setupSearch(t)

	results := q.Search("rs", 0)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.NotEmpty(t, r.MatchedIndexes, r.Character.Name)
	}
}

func TestSearch_EmptyCache(t *testing.T) {
	q := NewQueries(store.NewMemoryStore(), nil)
	assert.Nil(t, q.Search("rick", 0))
}
