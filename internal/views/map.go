package views

import (
	"log/slog"

	"github.com/mmcdole/citadel/internal/catalog"
	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/favorites"
	"github.com/mmcdole/citadel/internal/runloop"
)

// Pin is one character placed on the map
type Pin struct {
	CharacterID int
	Name        string
	Coordinates domain.Coordinates
	IsFavorite  bool
}

// MapSnapshot is a copy of the map screen state
type MapSnapshot struct {
	Pins     []Pin
	Selected *Pin
	Region   domain.Bounds
}

// Map places every cached character at its deterministic coordinates
type Map struct {
	queries *catalog.Queries
	ui      runloop.Dispatcher
	logger  *slog.Logger
	subs    []*favorites.Subscription
	bg      background

	// Owned by ui
	pins     []Pin
	selected int // Character id, 0 when nothing is selected
}

// NewMap creates the map screen and subscribes it to bus
func NewMap(queries *catalog.Queries, bus *favorites.Bus, ui runloop.Dispatcher, logger *slog.Logger) *Map {
	v := &Map{
		queries: queries,
		ui:      ui,
		logger:  orDefault(logger),
	}
	v.subs = []*favorites.Subscription{
		bus.OnFavoriteChanged(v.onFavoriteChanged),
		bus.OnListChanged(v.onListChanged),
	}
	return v
}

// Close drops the bus subscriptions and waits for background reloads
func (v *Map) Close() {
	for _, s := range v.subs {
		s.Cancel()
	}
	v.bg.Close()
}

// Load rebuilds the pins from the local cache
func (v *Map) Load() {
	chars := v.queries.GetCachedCharacters()
	pins := make([]Pin, len(chars))
	for i, c := range chars {
		pins[i] = Pin{
			CharacterID: c.ID,
			Name:        c.Name,
			Coordinates: c.Coordinates(),
			IsFavorite:  c.IsFavorite,
		}
	}
	v.logger.Debug("map loaded", "pins", len(pins))

	v.ui.Do(func() {
		v.pins = pins
		if v.indexOf(v.selected) < 0 {
			v.selected = 0
		}
	})
}

// Select highlights id's pin. It reports false when id has no pin.
func (v *Map) Select(id int) bool {
	ok := false
	v.ui.Do(func() {
		if v.indexOf(id) >= 0 {
			v.selected = id
			ok = true
		}
	})
	return ok
}

// Deselect clears the selection
func (v *Map) Deselect() {
	v.ui.Do(func() { v.selected = 0 })
}

// Snapshot returns a copy of the current state
func (v *Map) Snapshot() MapSnapshot {
	var s MapSnapshot
	v.ui.Do(func() {
		s = MapSnapshot{
			Pins:   append([]Pin(nil), v.pins...),
			Region: domain.MapBounds,
		}
		if i := v.indexOf(v.selected); i >= 0 {
			p := v.pins[i]
			s.Selected = &p
		}
	})
	return s
}

func (v *Map) indexOf(id int) int {
	if id == 0 {
		return -1
	}
	for i := range v.pins {
		if v.pins[i].CharacterID == id {
			return i
		}
	}
	return -1
}

func (v *Map) onFavoriteChanged(ev domain.FavoriteEvent) {
	if i := v.indexOf(ev.CharacterID); i >= 0 {
		v.pins[i].IsFavorite = ev.IsFavorite
	}
}

func (v *Map) onListChanged() {
	v.bg.Go(v.Load)
}
