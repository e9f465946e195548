package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/citadel/internal/domain"
)

const reason = "Unlock your favorite characters"

func newFavorites(t *testing.T, h *harness) *FavoritesList {
	t.Helper()
	v := NewFavoritesList(h.svc, h.bus, h.session, reason, h.loop, nil)
	t.Cleanup(v.Close)
	return v
}

func favorite(t *testing.T, h *harness, ids ...int) {
	t.Helper()
	for _, id := range ids {
		toggle, err := h.svc.ToggleFavorite(id)
		require.NoError(t, err)
		require.True(t, toggle.IsFavorite)
	}
}

func TestFavoritesList_UnlockLoads(t *testing.T) {
	h := setup(t, 10)
	h.warmCache(t)
	favorite(t, h, 9, 2)
	v := newFavorites(t, h)

	assert.ErrorIs(t, v.Load(), domain.ErrSessionInactive)
	assert.Empty(t, v.Snapshot().Favorites)

	listChanged := 0
	h.bus.OnListChanged(func() { listChanged++ })

	require.NoError(t, v.Unlock(t.Context()))
	h.settle(&v.bg)

	s := v.Snapshot()
	assert.True(t, s.Authenticated)
	assert.Equal(t, PhaseLoaded, s.State.Phase)
	// "Character 2" collates before "Character 9"
	assert.Equal(t, []int{2, 9}, characterIDs(s.Favorites))
	assert.Equal(t, 1, listChanged)
	assert.Equal(t, []string{reason}, h.auth.Reasons())
}

func TestFavoritesList_UnlockFailures(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(h *harness)
		wantPhase Phase
	}{
		{
			name:      "user cancel shows nothing",
			setup:     func(h *harness) { h.auth.Enqueue(domain.NewAuthError(domain.AuthUserCancelled)) },
			wantPhase: PhaseIdle,
		},
		{
			name:      "challenge failure is surfaced",
			setup:     func(h *harness) { h.auth.Enqueue(domain.NewAuthError(domain.AuthChallengeFailed)) },
			wantPhase: PhaseError,
		},
		{
			name:      "unavailable is surfaced",
			setup:     func(h *harness) { h.auth.SetAvailability(false, domain.AuthKindNone) },
			wantPhase: PhaseError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setup(t, 5)
			h.warmCache(t)
			favorite(t, h, 1)
			v := newFavorites(t, h)
			tt.setup(h)

			err := v.Unlock(t.Context())
			require.Error(t, err)
			_, ok := domain.AsAuthError(err)
			assert.True(t, ok)

			h.settle(&v.bg)
			s := v.Snapshot()
			assert.Equal(t, tt.wantPhase, s.State.Phase)
			assert.False(t, s.Authenticated)
			assert.Empty(t, s.Favorites)
		})
	}
}

func TestFavoritesList_ClearedOnLockAndExpiry(t *testing.T) {
	tests := []struct {
		name string
		end  func(h *harness, v *FavoritesList)
	}{
		{"lock", func(h *harness, v *FavoritesList) { v.Lock() }},
		{"resign active", func(h *harness, v *FavoritesList) { h.session.ResignActive() }},
		{"expiry", func(h *harness, v *FavoritesList) { h.clock.Advance(5*time.Minute + time.Second) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setup(t, 5)
			h.warmCache(t)
			favorite(t, h, 1, 3)
			v := newFavorites(t, h)

			require.NoError(t, v.Unlock(t.Context()))
			h.settle(&v.bg)
			require.Len(t, v.Snapshot().Favorites, 2)

			tt.end(h, v)
			h.settle(&v.bg)

			s := v.Snapshot()
			assert.Empty(t, s.Favorites)
			assert.False(t, s.Authenticated)
			assert.Equal(t, domain.AuthStateUnauthenticated, h.session.State())
		})
	}
}

func TestFavoritesList_MergeRule(t *testing.T) {
	rick := domain.Character{ID: 1, Name: "Rick Sanchez"}
	abradolf := domain.Character{ID: 7, Name: "Abradolf Lincler"}
	morty := domain.Character{ID: 2, Name: "Morty Smith", IsFavorite: true}

	tests := []struct {
		name  string
		event domain.FavoriteEvent
		want  []int
	}{
		{"insert sorted", domain.FavoriteEvent{CharacterID: 7, IsFavorite: true, Character: &abradolf}, []int{7, 2, 1}},
		{"insert without snapshot is ignored", domain.FavoriteEvent{CharacterID: 7, IsFavorite: true}, []int{2, 1}},
		{"already present", domain.FavoriteEvent{CharacterID: 2, IsFavorite: true, Character: &morty}, []int{2, 1}},
		{"remove", domain.FavoriteEvent{CharacterID: 2, IsFavorite: false}, []int{1}},
		{"remove absent", domain.FavoriteEvent{CharacterID: 99, IsFavorite: false}, []int{2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setup(t, 0)
			v := newFavorites(t, h)
			h.loop.Do(func() {
				r := rick
				r.IsFavorite = true
				v.authenticated = true
				v.favorites = []domain.Character{morty, r}
			})

			h.bus.PublishFavoriteChanged(tt.event)
			s := v.Snapshot()
			assert.Equal(t, tt.want, characterIDs(s.Favorites))
			for _, c := range s.Favorites {
				assert.True(t, c.IsFavorite)
			}
		})
	}
}

func TestFavoritesList_EventsIgnoredWhileLocked(t *testing.T) {
	h := setup(t, 0)
	v := newFavorites(t, h)

	snapshot := domain.Character{ID: 7, Name: "Abradolf Lincler"}
	h.bus.PublishFavoriteChanged(domain.FavoriteEvent{CharacterID: 7, IsFavorite: true, Character: &snapshot})

	assert.Empty(t, v.Snapshot().Favorites)
}

func TestFavoritesList_Toggle(t *testing.T) {
	h := setup(t, 5)
	h.warmCache(t)
	favorite(t, h, 4)
	v := newFavorites(t, h)

	_, err := v.Toggle(4)
	assert.ErrorIs(t, err, domain.ErrSessionInactive)

	require.NoError(t, v.Unlock(t.Context()))
	h.settle(&v.bg)

	var events []domain.FavoriteEvent
	h.bus.OnFavoriteChanged(func(ev domain.FavoriteEvent) { events = append(events, ev) })

	toggle, err := v.Toggle(4)
	require.NoError(t, err)
	assert.False(t, toggle.IsFavorite)
	h.settle(&v.bg)

	assert.Empty(t, v.Snapshot().Favorites)
	require.Len(t, events, 1)
	assert.Equal(t, 4, events[0].CharacterID)
	require.NotNil(t, events[0].Character)
	assert.False(t, events[0].Character.IsFavorite)
}
