package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/citadel/internal/adapter/biometric"
	"github.com/mmcdole/citadel/internal/adapter/source/fixture"
	"github.com/mmcdole/citadel/internal/catalog"
	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/favorites"
	"github.com/mmcdole/citadel/internal/runloop"
	"github.com/mmcdole/citadel/internal/session"
	"github.com/mmcdole/citadel/internal/store"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setupModel(t *testing.T) (Model, *runloop.Loop) {
	t.Helper()
	m, loop, _ := setupModelWithClock(t)
	return m, loop
}

func setupModelWithClock(t *testing.T) (Model, *runloop.Loop, *session.ManualClock) {
	t.Helper()
	loop := runloop.New()
	t.Cleanup(loop.Close)

	clock := session.NewManualClock(t0)
	svc := catalog.NewService(fixture.Generate(30), store.NewMemoryStore(), nil)
	m := NewModel(Deps{
		Service: svc,
		Bus:     favorites.NewBus(loop, nil),
		Session: session.NewCoordinator(biometric.NewScripted(), session.Config{
			Timeout:  5 * time.Minute,
			Clock:    clock,
			Executor: loop,
		}, nil),
		UI:     loop,
		Reason: "unlock",
	})
	t.Cleanup(m.Close)
	return m, loop, clock
}

// unlockWithFavorite favorites the first character and unlocks favorites
func unlockWithFavorite(t *testing.T, m Model, loop *runloop.Loop) Model {
	t.Helper()
	m = run(t, m, loadInitialCmd(m.list))
	m, cmd := update(t, m, keyRune("f"))
	m = run(t, m, cmd)
	loop.Flush()

	require.NoError(t, m.favs.Unlock(t.Context()))
	loop.Flush()
	require.True(t, m.favs.Snapshot().Authenticated)
	require.Len(t, m.favs.Snapshot().Favorites, 1)
	return m
}

func keyRune(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

// run applies cmd's message, if any, to m
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	next, _ := m.Update(cmd())
	return next.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModel_InitialLoad(t *testing.T) {
	m, _ := setupModel(t)
	m = run(t, m, loadInitialCmd(m.list))

	view := m.View()
	assert.Contains(t, view, "Characters")
	assert.Contains(t, view, "Character 1")
	assert.Contains(t, view, "page 1/2")
}

func TestModel_TabsCycle(t *testing.T) {
	m, _ := setupModel(t)
	m = run(t, m, loadInitialCmd(m.list))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabFavorites, m.tab)
	assert.Contains(t, m.View(), "Favorites are locked")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabMap, m.tab)
	m = run(t, m, cmd)
	assert.Len(t, m.pins.Snapshot().Pins, 20)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabCharacters, m.tab)
}

func TestModel_FavoriteRemovalNeedsSecondPress(t *testing.T) {
	m, loop := setupModel(t)
	m = run(t, m, loadInitialCmd(m.list))

	m, cmd := update(t, m, keyRune("f"))
	require.NotNil(t, cmd)
	m = run(t, m, cmd)
	loop.Flush()
	assert.Equal(t, "Added to favorites", m.status)
	assert.True(t, m.list.Snapshot().Characters[0].IsFavorite)

	m, cmd = update(t, m, keyRune("f"))
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.pendingRemoval)

	m, cmd = update(t, m, keyRune("f"))
	require.NotNil(t, cmd)
	m = run(t, m, cmd)
	loop.Flush()
	assert.Equal(t, "Removed from favorites", m.status)
	assert.False(t, m.list.Snapshot().Characters[0].IsFavorite)
	assert.Zero(t, m.pendingRemoval)
}

func TestModel_DetailWatchedProgress(t *testing.T) {
	m, _ := setupModel(t)
	m = run(t, m, loadInitialCmd(m.list))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.detail)
	m = run(t, m, cmd)
	assert.Contains(t, m.View(), "0/3 watched")

	m, cmd = update(t, m, keyRune("a"))
	m = run(t, m, cmd)
	assert.Contains(t, m.View(), "3/3 watched")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.detail)
}

func TestModel_LoadMoreAtEnd(t *testing.T) {
	m, _ := setupModel(t)
	m = run(t, m, loadInitialCmd(m.list))

	var cmd tea.Cmd
	for range 19 {
		m, cmd = update(t, m, keyRune("j"))
	}
	require.NotNil(t, cmd)
	m = run(t, m, cmd)
	assert.Len(t, m.list.Snapshot().Characters, 30)
}

func TestWindow(t *testing.T) {
	rows := []string{"a", "b", "c", "d", "e"}

	assert.Len(t, window(rows, 0, 3), 3)
	assert.Len(t, window(rows, 4, 3), 3)
	assert.Len(t, window(rows, 2, 10), 5)
	assert.Len(t, window(nil, 0, 3), 0)
}

func TestModel_BlurLocksFavorites(t *testing.T) {
	m, loop := setupModel(t)
	m = unlockWithFavorite(t, m, loop)

	m, _ = update(t, m, tea.BlurMsg{})
	loop.Flush()

	assert.Equal(t, domain.AuthStateUnauthenticated, m.deps.Session.State())
	snap := m.favs.Snapshot()
	assert.False(t, snap.Authenticated)
	assert.Empty(t, snap.Favorites)
}

func TestModel_SuspendLocksFavorites(t *testing.T) {
	m, loop := setupModel(t)
	m = unlockWithFavorite(t, m, loop)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.SuspendMsg{}, cmd())
	loop.Flush()

	assert.False(t, m.deps.Session.IsActive())
	assert.Empty(t, m.favs.Snapshot().Favorites)
}

func TestModel_ActivityOnFavoritesExtendsSession(t *testing.T) {
	m, loop, clock := setupModelWithClock(t)
	m = unlockWithFavorite(t, m, loop)

	// Keys on another tab do not count
	clock.Advance(4 * time.Minute)
	m, _ = update(t, m, keyRune("j"))
	expires, ok := m.deps.Session.ExpiresAt()
	require.True(t, ok)
	assert.Equal(t, t0.Add(5*time.Minute), expires)

	m.tab = TabFavorites
	m, _ = update(t, m, keyRune("j"))
	expires, ok = m.deps.Session.ExpiresAt()
	require.True(t, ok)
	assert.Equal(t, t0.Add(9*time.Minute), expires)

	clock.Advance(4 * time.Minute)
	assert.True(t, m.deps.Session.IsActive())
}
