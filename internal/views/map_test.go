package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/citadel/internal/domain"
)

func TestMap_PinsFromCache(t *testing.T) {
	h := setup(t, 25)
	h.warmCache(t)
	favorite(t, h, 12)

	v := NewMap(h.svc.Queries, h.bus, h.loop, nil)
	t.Cleanup(v.Close)
	v.Load()

	s := v.Snapshot()
	require.Len(t, s.Pins, 25)
	assert.Equal(t, domain.MapBounds, s.Region)
	for _, p := range s.Pins {
		assert.Equal(t, domain.CoordinatesFor(p.CharacterID), p.Coordinates)
		assert.True(t, s.Region.Contains(p.Coordinates))
		assert.Equal(t, p.CharacterID == 12, p.IsFavorite)
	}
	assert.Nil(t, s.Selected)
}

func TestMap_Selection(t *testing.T) {
	h := setup(t, 5)
	h.warmCache(t)
	v := NewMap(h.svc.Queries, h.bus, h.loop, nil)
	t.Cleanup(v.Close)
	v.Load()

	assert.False(t, v.Select(42))
	require.True(t, v.Select(3))
	s := v.Snapshot()
	require.NotNil(t, s.Selected)
	assert.Equal(t, "Character 3", s.Selected.Name)

	h.bus.PublishFavoriteChanged(domain.FavoriteEvent{CharacterID: 3, IsFavorite: true})
	assert.True(t, v.Snapshot().Selected.IsFavorite)

	v.Deselect()
	assert.Nil(t, v.Snapshot().Selected)
}

func TestMap_ListChangedReloads(t *testing.T) {
	h := setup(t, 0)
	v := NewMap(h.svc.Queries, h.bus, h.loop, nil)
	t.Cleanup(v.Close)
	v.Load()
	require.Empty(t, v.Snapshot().Pins)

	require.NoError(t, h.store.UpsertCharacters([]domain.Character{{ID: 4, Name: "Summer Smith"}}))
	h.bus.PublishListChanged()
	h.settle(&v.bg)

	pins := v.Snapshot().Pins
	require.Len(t, pins, 1)
	assert.Equal(t, 4, pins[0].CharacterID)
}
