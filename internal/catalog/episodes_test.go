package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/citadel/internal/domain"
)

func TestService_GetEpisodesStampsAndSorts(t *testing.T) {
	svc, src, _ := setupService(t, 10)
	require.NoError(t, svc.MarkWatched(8))

	episodes, err := svc.GetEpisodes(context.Background(), []int{15, 1, 8})
	require.NoError(t, err)
	assert.Equal(t, 1, src.Calls("FetchEpisodes"))

	got := make([]int, len(episodes))
	for i, e := range episodes {
		got[i] = e.ID
	}
	assert.Equal(t, []int{1, 8, 15}, got)
	assert.False(t, episodes[0].IsWatched)
	assert.True(t, episodes[1].IsWatched)
	assert.False(t, episodes[2].IsWatched)

	p := ProgressOf(episodes)
	assert.Equal(t, WatchProgress{Watched: 1, Total: 3}, p)
	assert.InDelta(t, 1.0/3.0, p.Ratio(), 1e-9)
	assert.False(t, p.Complete())
}

func TestService_GetEpisodesEmpty(t *testing.T) {
	svc, src, _ := setupService(t, 10)

	episodes, err := svc.GetEpisodes(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, episodes)
	assert.Zero(t, src.Calls("FetchEpisodes"))
}

func TestService_GetEpisodesPropagatesTransportErrors(t *testing.T) {
	svc, src, _ := setupService(t, 10)
	src.FailNext(&domain.TransportError{Kind: domain.TransportDecode})

	_, err := svc.GetEpisodes(context.Background(), []int{1})
	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, domain.TransportDecode, te.Kind)
}

func TestService_WatchedToggles(t *testing.T) {
	svc, _, _ := setupService(t, 10)

	watched, err := svc.ToggleWatched(3, false)
	require.NoError(t, err)
	assert.True(t, watched)
	assert.True(t, svc.IsWatched(3))

	// Idempotent marks
	require.NoError(t, svc.MarkWatched(3))
	watched, err = svc.ToggleWatched(3, true)
	require.NoError(t, err)
	assert.False(t, watched)
	assert.False(t, svc.IsWatched(3))
	require.NoError(t, svc.UnmarkWatched(3))

	require.NoError(t, svc.MarkAllWatched([]int{1, 2, 3}))
	episodes, err := svc.GetEpisodes(context.Background(), []int{1, 2, 3})
	require.NoError(t, err)
	assert.True(t, ProgressOf(episodes).Complete())

	require.NoError(t, svc.UnmarkAllWatched([]int{1, 2, 3}))
	episodes, err = svc.GetEpisodes(context.Background(), []int{1, 2, 3})
	require.NoError(t, err)
	assert.Zero(t, ProgressOf(episodes).Watched)
}

func TestWatchProgress_Empty(t *testing.T) {
	var p WatchProgress
	assert.Zero(t, p.Ratio())
	assert.False(t, p.Complete())
}
