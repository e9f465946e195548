package views

import (
	"context"
	"log/slog"

	"github.com/mmcdole/citadel/internal/catalog"
	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/favorites"
	"github.com/mmcdole/citadel/internal/runloop"
	"github.com/mmcdole/citadel/internal/session"
)

// FavoritesSnapshot is a copy of the favorites screen state
type FavoritesSnapshot struct {
	Favorites     []domain.Character
	State         ViewState
	Authenticated bool
}

// FavoritesList is the session-gated favorites screen. Rows are only held
// while the session is authenticated.
type FavoritesList struct {
	svc     *catalog.Service
	bus     *favorites.Bus
	session *session.Coordinator
	reason  string
	ui      runloop.Dispatcher
	logger  *slog.Logger
	subs    []*favorites.Subscription
	unobs   func()
	bg      background

	// Owned by ui
	favorites     []domain.Character
	state         ViewState
	authenticated bool
}

// NewFavoritesList creates the favorites screen. reason is shown by the
// authenticator when unlocking.
func NewFavoritesList(svc *catalog.Service, bus *favorites.Bus, coord *session.Coordinator, reason string, ui runloop.Dispatcher, logger *slog.Logger) *FavoritesList {
	v := &FavoritesList{
		svc:     svc,
		bus:     bus,
		session: coord,
		reason:  reason,
		ui:      ui,
		logger:  orDefault(logger),
	}
	v.subs = []*favorites.Subscription{
		bus.OnFavoriteChanged(v.onFavoriteChanged),
		bus.OnListChanged(v.onListChanged),
	}
	v.unobs = coord.Observe(v.onSessionChanged)
	return v
}

// Close drops the subscriptions and waits for background reloads
func (v *FavoritesList) Close() {
	for _, s := range v.subs {
		s.Cancel()
	}
	v.unobs()
	v.bg.Close()
}

// Unlock authenticates, loads the favorites and announces the list.
// A cancelled prompt returns its error without setting an error state.
func (v *FavoritesList) Unlock(ctx context.Context) error {
	if !v.session.Availability().CanAuthenticate() {
		err := domain.NewAuthError(domain.AuthUnavailable)
		v.ui.Do(func() { v.state = errorState(err) })
		return err
	}

	if err := v.session.Authenticate(ctx, v.reason); err != nil {
		v.ui.Do(func() {
			if ae, ok := domain.AsAuthError(err); ok && ae.Kind == domain.AuthUserCancelled {
				return
			}
			v.state = errorState(err)
		})
		v.logger.Info("favorites unlock failed", "error", err)
		return err
	}

	v.ui.Do(func() { v.authenticated = true })
	if err := v.Load(); err != nil {
		return err
	}
	v.bus.PublishListChanged()
	return nil
}

// Load reads the favorites from the store. It requires an active session.
func (v *FavoritesList) Load() error {
	if !v.session.IsActive() {
		v.ui.Do(v.clear)
		return domain.ErrSessionInactive
	}
	v.ui.Do(func() { v.state = ViewState{Phase: PhaseLoading} })

	favs := v.svc.GetFavoriteCharacters()

	v.ui.Do(func() {
		if !v.authenticated {
			return
		}
		v.favorites = favs
		v.state = loadedOrEmpty(len(favs))
	})
	return nil
}

// Toggle flips id's favorite flag, announces it and reloads
func (v *FavoritesList) Toggle(id int) (domain.FavoriteToggle, error) {
	if !v.session.IsActive() {
		return domain.FavoriteToggle{}, domain.ErrSessionInactive
	}

	var snapshot *domain.Character
	v.ui.Do(func() {
		for i := range v.favorites {
			if v.favorites[i].ID == id {
				c := v.favorites[i]
				snapshot = &c
				return
			}
		}
	})
	if snapshot == nil {
		if c, ok := v.svc.GetCachedCharacter(id); ok {
			snapshot = &c
		}
	}

	toggle, err := v.svc.ToggleFavorite(id)
	if err != nil {
		v.logger.Error("failed to toggle favorite", "id", id, "error", err)
		return toggle, err
	}
	if !toggle.Applied {
		return toggle, nil
	}
	v.bus.PublishFavoriteChanged(toggle.Event(snapshot))
	return toggle, v.Load()
}

// Lock ends the session; the session observer clears the rows
func (v *FavoritesList) Lock() {
	v.session.Lock()
}

// Snapshot returns a copy of the current state
func (v *FavoritesList) Snapshot() FavoritesSnapshot {
	var s FavoritesSnapshot
	v.ui.Do(func() {
		s = FavoritesSnapshot{
			Favorites:     append([]domain.Character(nil), v.favorites...),
			State:         v.state,
			Authenticated: v.authenticated,
		}
	})
	return s
}

// clear drops every row; runs on ui
func (v *FavoritesList) clear() {
	v.favorites = nil
	v.authenticated = false
	v.state = ViewState{Phase: PhaseIdle}
}

func (v *FavoritesList) onSessionChanged(s domain.AuthState) {
	switch s {
	case domain.AuthStateAuthenticated:
		v.authenticated = true
	case domain.AuthStateUnauthenticated:
		v.clear()
	}
}

// onFavoriteChanged merges an event without touching the store: a new
// favorite is inserted in name order, an unfavorited one is removed
func (v *FavoritesList) onFavoriteChanged(ev domain.FavoriteEvent) {
	if !v.authenticated {
		return
	}
	idx := -1
	for i := range v.favorites {
		if v.favorites[i].ID == ev.CharacterID {
			idx = i
			break
		}
	}

	switch {
	case ev.IsFavorite && idx < 0 && ev.Character != nil:
		c := *ev.Character
		c.IsFavorite = true
		v.favorites = append(v.favorites, c)
		catalog.SortByName(v.favorites)
	case !ev.IsFavorite && idx >= 0:
		v.favorites = append(v.favorites[:idx], v.favorites[idx+1:]...)
	default:
		return
	}
	v.state = loadedOrEmpty(len(v.favorites))
}

func (v *FavoritesList) onListChanged() {
	if !v.authenticated {
		return
	}
	v.bg.Go(func() {
		_ = v.Load()
	})
}
