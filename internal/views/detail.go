package views

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmcdole/citadel/internal/catalog"
	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/favorites"
	"github.com/mmcdole/citadel/internal/runloop"
)

// ErrConfirmRemoval is returned when unfavoriting without confirmation
var ErrConfirmRemoval = errors.New("removing a favorite requires confirmation")

// DetailSnapshot is a copy of the detail screen state
type DetailSnapshot struct {
	Character     domain.Character
	Episodes      []domain.Episode
	EpisodesState ViewState
	Progress      catalog.WatchProgress
}

// Detail is the screen for a single character and its episodes
type Detail struct {
	svc    *catalog.Service
	bus    *favorites.Bus
	ui     runloop.Dispatcher
	logger *slog.Logger
	sub    *favorites.Subscription

	// Owned by ui
	character     domain.Character
	episodes      []domain.Episode
	episodesState ViewState
	toggling      bool
}

// NewDetail creates the detail screen for character
func NewDetail(character domain.Character, svc *catalog.Service, bus *favorites.Bus, ui runloop.Dispatcher, logger *slog.Logger) *Detail {
	v := &Detail{
		svc:       svc,
		bus:       bus,
		ui:        ui,
		logger:    orDefault(logger),
		character: character,
	}
	v.sub = bus.OnFavoriteChanged(v.onFavoriteChanged)
	return v
}

// Close drops the bus subscription
func (v *Detail) Close() {
	v.sub.Cancel()
}

// Coordinates returns the map position of the character
func (v *Detail) Coordinates() domain.Coordinates {
	var c domain.Coordinates
	v.ui.Do(func() { c = v.character.Coordinates() })
	return c
}

// LoadEpisodes fetches the character's episodes once
func (v *Detail) LoadEpisodes(ctx context.Context) error {
	var (
		ids  []int
		idle bool
	)
	v.ui.Do(func() {
		idle = v.episodesState.Phase == PhaseIdle || v.episodesState.Phase == PhaseError
		if !idle {
			return
		}
		ids = v.character.EpisodeIDs()
		if len(ids) == 0 {
			v.episodesState = ViewState{Phase: PhaseEmpty}
			return
		}
		v.episodesState = ViewState{Phase: PhaseLoading}
	})
	if !idle || len(ids) == 0 {
		return nil
	}

	episodes, err := v.svc.GetEpisodes(ctx, ids)
	v.ui.Do(func() {
		if err != nil {
			v.episodesState = errorState(err)
			return
		}
		v.episodes = episodes
		v.episodesState = loadedOrEmpty(len(episodes))
	})
	if err != nil {
		v.logger.Error("failed to load episodes", "character", v.character.ID, "error", err)
	}
	return err
}

// ToggleFavorite flips the favorite flag and broadcasts the change.
// Unfavoriting needs confirmed set, otherwise ErrConfirmRemoval is returned.
func (v *Detail) ToggleFavorite(confirmed bool) (domain.FavoriteToggle, error) {
	var (
		snapshot domain.Character
		busy     bool
	)
	v.ui.Do(func() {
		busy = v.toggling
		snapshot = v.character
		if !busy && (!snapshot.IsFavorite || confirmed) {
			v.toggling = true
		}
	})
	if busy {
		return domain.FavoriteToggle{}, nil
	}
	if snapshot.IsFavorite && !confirmed {
		return domain.FavoriteToggle{}, ErrConfirmRemoval
	}

	toggle, err := v.svc.ToggleFavorite(snapshot.ID)
	v.ui.Do(func() {
		v.toggling = false
		if err == nil && toggle.Applied {
			v.character.IsFavorite = toggle.IsFavorite
		}
	})
	if err != nil {
		v.logger.Error("failed to toggle favorite", "id", snapshot.ID, "error", err)
		return toggle, err
	}
	if toggle.Applied {
		v.bus.PublishFavoriteChanged(toggle.Event(&snapshot))
	}
	return toggle, nil
}

// ToggleEpisodeWatched flips the watched mark of one loaded episode
func (v *Detail) ToggleEpisodeWatched(episodeID int) error {
	var (
		current bool
		found   bool
	)
	v.ui.Do(func() {
		for _, e := range v.episodes {
			if e.ID == episodeID {
				current, found = e.IsWatched, true
				return
			}
		}
	})
	if !found {
		return nil
	}

	watched, err := v.svc.ToggleWatched(episodeID, current)
	if err != nil {
		return err
	}
	v.ui.Do(func() { v.setWatched(func(id int) bool { return id == episodeID }, watched) })
	return nil
}

// MarkAllWatched marks every loaded episode watched
func (v *Detail) MarkAllWatched() error {
	return v.markAll(true)
}

// UnmarkAllWatched clears the watched mark of every loaded episode
func (v *Detail) UnmarkAllWatched() error {
	return v.markAll(false)
}

func (v *Detail) markAll(watched bool) error {
	var ids []int
	v.ui.Do(func() {
		for _, e := range v.episodes {
			ids = append(ids, e.ID)
		}
	})
	if len(ids) == 0 {
		return nil
	}

	var err error
	if watched {
		err = v.svc.MarkAllWatched(ids)
	} else {
		err = v.svc.UnmarkAllWatched(ids)
	}
	if err != nil {
		return err
	}
	v.ui.Do(func() { v.setWatched(func(int) bool { return true }, watched) })
	return nil
}

// Snapshot returns a copy of the current state
func (v *Detail) Snapshot() DetailSnapshot {
	var s DetailSnapshot
	v.ui.Do(func() {
		s = DetailSnapshot{
			Character:     v.character,
			Episodes:      append([]domain.Episode(nil), v.episodes...),
			EpisodesState: v.episodesState,
			Progress:      catalog.ProgressOf(v.episodes),
		}
	})
	return s
}

func (v *Detail) setWatched(match func(int) bool, watched bool) {
	for i := range v.episodes {
		if match(v.episodes[i].ID) {
			v.episodes[i].IsWatched = watched
		}
	}
}

func (v *Detail) onFavoriteChanged(ev domain.FavoriteEvent) {
	if ev.CharacterID == v.character.ID {
		v.character.IsFavorite = ev.IsFavorite
	}
}
