package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/favorites"
	"github.com/mmcdole/citadel/internal/session"
)

// ChannelObserver forwards bus and session notifications to a channel for Bubble Tea.
type ChannelObserver struct {
	ch   chan tea.Msg
	subs []*favorites.Subscription
	stop func()
}

// NewChannelObserver subscribes to bus and coord
func NewChannelObserver(bus *favorites.Bus, coord *session.Coordinator) *ChannelObserver {
	o := &ChannelObserver{ch: make(chan tea.Msg, 16)}
	o.subs = []*favorites.Subscription{
		bus.OnFavoriteChanged(func(ev domain.FavoriteEvent) { o.send(favoriteChangedMsg{Event: ev}) }),
		bus.OnListChanged(func() { o.send(listChangedMsg{}) }),
	}
	o.stop = coord.Observe(func(s domain.AuthState) { o.send(sessionChangedMsg{State: s}) })
	return o
}

// send forwards msg (non-blocking if full)
func (o *ChannelObserver) send(msg tea.Msg) {
	select {
	case o.ch <- msg:
	default: // A redraw is already pending
	}
}

// Wait returns a command that delivers the next notification
func (o *ChannelObserver) Wait() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-o.ch
		if !ok {
			return nil
		}
		return msg
	}
}

// Close unsubscribes
func (o *ChannelObserver) Close() {
	for _, s := range o.subs {
		s.Cancel()
	}
	o.stop()
}
