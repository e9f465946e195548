package views

import (
	"context"
	"log/slog"

	"github.com/mmcdole/citadel/internal/catalog"
	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/favorites"
	"github.com/mmcdole/citadel/internal/runloop"
)

// CharacterListSnapshot is a copy of the list screen state
type CharacterListSnapshot struct {
	Characters    []domain.Character
	State         ViewState
	Filter        domain.CharacterFilter
	CurrentPage   int
	TotalPages    int
	HasMorePages  bool
	IsLoadingMore bool
}

// CharacterList is the paginated, filterable catalog screen
type CharacterList struct {
	svc    *catalog.Service
	ui     runloop.Dispatcher
	logger *slog.Logger
	subs   []*favorites.Subscription
	bg     background

	// Owned by ui
	characters    []domain.Character
	state         ViewState
	filter        domain.CharacterFilter
	currentPage   int
	totalPages    int
	hasMorePages  bool
	isLoadingMore bool
	generation    uint64 // Bumped by every reset load so stale pages are dropped
}

// NewCharacterList creates the list screen and subscribes it to bus
func NewCharacterList(svc *catalog.Service, bus *favorites.Bus, ui runloop.Dispatcher, logger *slog.Logger) *CharacterList {
	v := &CharacterList{
		svc:         svc,
		ui:          ui,
		logger:      orDefault(logger),
		currentPage: 1,
	}
	v.subs = []*favorites.Subscription{
		bus.OnFavoriteChanged(v.onFavoriteChanged),
		bus.OnListChanged(v.onListChanged),
	}
	return v
}

// Close drops the bus subscriptions and waits for background reloads
func (v *CharacterList) Close() {
	for _, s := range v.subs {
		s.Cancel()
	}
	v.bg.Close()
}

// LoadInitial loads the first page unless a load already happened
func (v *CharacterList) LoadInitial(ctx context.Context) error {
	idle := false
	v.ui.Do(func() { idle = v.state.Phase == PhaseIdle })
	if !idle {
		return nil
	}
	return v.Refresh(ctx)
}

// Refresh reloads from page 1 keeping the current filter and rows until
// the new page arrives
func (v *CharacterList) Refresh(ctx context.Context) error {
	return v.reset(ctx, nil)
}

// ApplyFilter replaces the filter, clears the rows and loads page 1
func (v *CharacterList) ApplyFilter(ctx context.Context, filter domain.CharacterFilter) error {
	return v.reset(ctx, &filter)
}

// ClearFilters is ApplyFilter with an empty filter
func (v *CharacterList) ClearFilters(ctx context.Context) error {
	return v.ApplyFilter(ctx, domain.CharacterFilter{})
}

func (v *CharacterList) reset(ctx context.Context, filter *domain.CharacterFilter) error {
	var (
		gen uint64
		f   domain.CharacterFilter
	)
	v.ui.Do(func() {
		if filter != nil {
			v.filter = *filter
			v.characters = nil
		}
		v.generation++
		gen = v.generation
		f = v.filter
		v.currentPage = 1
		v.isLoadingMore = false
		v.state = ViewState{Phase: PhaseLoading}
	})

	page, err := v.svc.GetPage(ctx, 1, f)

	var cached []domain.Character
	if err != nil && !domain.IsNotFound(err) {
		cached = v.svc.GetCachedCharacters()
	}

	v.ui.Do(func() {
		if gen != v.generation {
			return
		}
		switch {
		case err == nil:
			v.characters = page.Characters
			v.totalPages = page.Info.TotalPages
			v.hasMorePages = page.Info.HasNextPage
			v.state = loadedOrEmpty(len(page.Characters))
		case domain.IsNotFound(err):
			// The remote answers an unmatched filter with 404
			v.characters = nil
			v.totalPages = 0
			v.hasMorePages = false
			v.state = ViewState{Phase: PhaseEmpty}
		case len(cached) > 0:
			v.characters = cached
			v.totalPages = 1
			v.hasMorePages = false
			v.state = ViewState{Phase: PhaseLoaded, Offline: true}
		default:
			v.state = errorState(err)
		}
	})

	switch {
	case err == nil, domain.IsNotFound(err):
		return nil
	case len(cached) > 0:
		v.logger.Warn("showing cached characters", "count", len(cached), "error", err)
		return nil
	default:
		v.logger.Error("failed to load characters", "error", err)
		return err
	}
}

// LoadMore appends the next page. It does nothing while another page is
// loading or when the last page is already shown.
func (v *CharacterList) LoadMore(ctx context.Context) error {
	var (
		ok   bool
		next int
		gen  uint64
		f    domain.CharacterFilter
	)
	v.ui.Do(func() {
		if v.isLoadingMore || !v.hasMorePages || v.currentPage >= v.totalPages {
			return
		}
		ok = true
		v.isLoadingMore = true
		v.currentPage++
		next = v.currentPage
		gen = v.generation
		f = v.filter
	})
	if !ok {
		return nil
	}

	page, err := v.svc.GetPage(ctx, next, f)

	v.ui.Do(func() {
		if gen != v.generation {
			return
		}
		v.isLoadingMore = false
		if err != nil {
			v.currentPage--
			return
		}
		v.characters = append(v.characters, page.Characters...)
		v.totalPages = page.Info.TotalPages
		v.hasMorePages = page.Info.HasNextPage
	})
	if err != nil {
		v.logger.Error("failed to load more characters", "page", next, "error", err)
	}
	return err
}

// Snapshot returns a copy of the current state
func (v *CharacterList) Snapshot() CharacterListSnapshot {
	var s CharacterListSnapshot
	v.ui.Do(func() {
		s = CharacterListSnapshot{
			Characters:    append([]domain.Character(nil), v.characters...),
			State:         v.state,
			Filter:        v.filter,
			CurrentPage:   v.currentPage,
			TotalPages:    v.totalPages,
			HasMorePages:  v.hasMorePages,
			IsLoadingMore: v.isLoadingMore,
		}
	})
	return s
}

func (v *CharacterList) onFavoriteChanged(ev domain.FavoriteEvent) {
	for i := range v.characters {
		if v.characters[i].ID == ev.CharacterID {
			v.characters[i].IsFavorite = ev.IsFavorite
		}
	}
}

func (v *CharacterList) onListChanged() {
	if v.state.Phase == PhaseIdle {
		return
	}
	v.bg.Go(func() {
		_ = v.Refresh(context.Background())
	})
}
