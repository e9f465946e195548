package favorites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/runloop"
)

func setupBus(t *testing.T) (*Bus, *runloop.Loop) {
	t.Helper()
	loop := runloop.New()
	t.Cleanup(loop.Close)
	return NewBus(loop, nil), loop
}

func TestBus_DeliversInRegistrationOrder(t *testing.T) {
	bus, loop := setupBus(t)

	var order []string
	bus.OnFavoriteChanged(func(domain.FavoriteEvent) { order = append(order, "a") })
	bus.OnFavoriteChanged(func(domain.FavoriteEvent) { order = append(order, "b") })
	bus.OnFavoriteChanged(func(domain.FavoriteEvent) { order = append(order, "c") })

	bus.PublishFavoriteChanged(domain.FavoriteEvent{CharacterID: 1, IsFavorite: true})
	loop.Flush()

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestBus_FanOutCarriesSnapshot(t *testing.T) {
	bus, loop := setupBus(t)

	snapshot := &domain.Character{ID: 7, Name: "Abradolf Lincler", IsFavorite: true}
	var list, detail []domain.FavoriteEvent
	bus.OnFavoriteChanged(func(ev domain.FavoriteEvent) { list = append(list, ev) })
	bus.OnFavoriteChanged(func(ev domain.FavoriteEvent) { detail = append(detail, ev) })

	bus.PublishFavoriteChanged(domain.FavoriteEvent{CharacterID: 7, IsFavorite: true, Character: snapshot})
	loop.Flush()

	require.Len(t, list, 1)
	require.Len(t, detail, 1)
	assert.Equal(t, 7, list[0].CharacterID)
	assert.True(t, list[0].IsFavorite)
	require.NotNil(t, list[0].Character)
	assert.Equal(t, "Abradolf Lincler", list[0].Character.Name)
	assert.Equal(t, list[0], detail[0])
}

func TestBus_NoReplayForLateSubscribers(t *testing.T) {
	bus, loop := setupBus(t)

	early := 0
	bus.OnFavoriteChanged(func(domain.FavoriteEvent) { early++ })
	bus.PublishFavoriteChanged(domain.FavoriteEvent{CharacterID: 1, IsFavorite: true})

	late := 0
	bus.OnFavoriteChanged(func(domain.FavoriteEvent) { late++ })
	loop.Flush()

	assert.Equal(t, 1, early)
	assert.Equal(t, 0, late)

	bus.PublishFavoriteChanged(domain.FavoriteEvent{CharacterID: 1, IsFavorite: false})
	loop.Flush()
	assert.Equal(t, 2, early)
	assert.Equal(t, 1, late)
}

func TestBus_CancelStopsDelivery(t *testing.T) {
	bus, loop := setupBus(t)

	kept, cancelled := 0, 0
	bus.OnFavoriteChanged(func(domain.FavoriteEvent) { kept++ })
	sub := bus.OnFavoriteChanged(func(domain.FavoriteEvent) { cancelled++ })

	// Published before Cancel but delivered after: still dropped
	bus.PublishFavoriteChanged(domain.FavoriteEvent{CharacterID: 2})
	sub.Cancel()
	sub.Cancel()
	loop.Flush()

	assert.False(t, sub.Active())
	assert.Equal(t, 1, kept)
	assert.Equal(t, 0, cancelled)
	assert.Len(t, bus.snapshot(KindFavoriteChanged), 1)
}

func TestBus_ListChangedIsSeparateChannel(t *testing.T) {
	bus, loop := setupBus(t)

	changed, listed := 0, 0
	bus.OnFavoriteChanged(func(domain.FavoriteEvent) { changed++ })
	sub := bus.OnListChanged(func() { listed++ })
	assert.Equal(t, KindListChanged, sub.Kind)

	bus.PublishListChanged()
	bus.PublishListChanged()
	loop.Flush()

	assert.Equal(t, 0, changed)
	assert.Equal(t, 2, listed)
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus, loop := setupBus(t)
	bus.PublishFavoriteChanged(domain.FavoriteEvent{CharacterID: 3})
	bus.PublishListChanged()
	loop.Flush()
}
