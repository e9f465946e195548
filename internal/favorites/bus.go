// Package favorites distributes favorite-state changes to every interested view.
package favorites

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/runloop"
)

// EventKind identifies the variant a subscription listens to
type EventKind int

const (
	// KindFavoriteChanged carries a domain.FavoriteEvent
	KindFavoriteChanged EventKind = iota
	// KindListChanged carries no payload; subscribers reload from scratch
	KindListChanged
)

// Subscription is a handle returned by the On* methods
type Subscription struct {
	ID   uuid.UUID
	Kind EventKind

	bus    *Bus
	active atomic.Bool

	onChanged func(domain.FavoriteEvent)
	onList    func()
}

// Cancel unregisters the subscription. Events not yet delivered are dropped for it.
func (s *Subscription) Cancel() {
	if s == nil || !s.active.CompareAndSwap(true, false) {
		return
	}
	s.bus.remove(s)
}

// Active reports whether the subscription still receives events
func (s *Subscription) Active() bool {
	return s.active.Load()
}

// Bus is a typed in-process publish/subscribe channel.
// Publishing never blocks. Callbacks run on the executor, in registration
// order; subscribers only see events published after they registered.
type Bus struct {
	exec   runloop.Executor
	logger *slog.Logger

	mu      sync.Mutex
	changed []*Subscription
	listed  []*Subscription
}

// NewBus creates a bus delivering on exec
func NewBus(exec runloop.Executor, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{exec: exec, logger: logger}
}

// OnFavoriteChanged registers fn for per-character changes
func (b *Bus) OnFavoriteChanged(fn func(domain.FavoriteEvent)) *Subscription {
	sub := &Subscription{ID: uuid.New(), Kind: KindFavoriteChanged, bus: b, onChanged: fn}
	sub.active.Store(true)

	b.mu.Lock()
	b.changed = append(b.changed, sub)
	b.mu.Unlock()
	return sub
}

// OnListChanged registers fn for coarse "reload everything" signals
func (b *Bus) OnListChanged(fn func()) *Subscription {
	sub := &Subscription{ID: uuid.New(), Kind: KindListChanged, bus: b, onList: fn}
	sub.active.Store(true)

	b.mu.Lock()
	b.listed = append(b.listed, sub)
	b.mu.Unlock()
	return sub
}

// PublishFavoriteChanged announces a per-character change
func (b *Bus) PublishFavoriteChanged(ev domain.FavoriteEvent) {
	subs := b.snapshot(KindFavoriteChanged)
	b.logger.Debug("favorite changed", "characterID", ev.CharacterID, "isFavorite", ev.IsFavorite, "subscribers", len(subs))
	if len(subs) == 0 {
		return
	}
	b.exec.Post(func() {
		for _, s := range subs {
			if s.active.Load() {
				s.onChanged(ev)
			}
		}
	})
}

// PublishListChanged announces a bulk change
func (b *Bus) PublishListChanged() {
	subs := b.snapshot(KindListChanged)
	b.logger.Debug("favorites list changed", "subscribers", len(subs))
	if len(subs) == 0 {
		return
	}
	b.exec.Post(func() {
		for _, s := range subs {
			if s.active.Load() {
				s.onList()
			}
		}
	})
}

// snapshot copies the current subscriber list so later registrations are not replayed
func (b *Bus) snapshot(kind EventKind) []*Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	src := b.changed
	if kind == KindListChanged {
		src = b.listed
	}
	return append([]*Subscription(nil), src...)
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := &b.changed
	if sub.Kind == KindListChanged {
		list = &b.listed
	}
	for i, s := range *list {
		if s == sub {
			*list = append((*list)[:i:i], (*list)[i+1:]...)
			return
		}
	}
}
