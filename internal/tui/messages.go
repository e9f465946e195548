package tui

import (
	"github.com/mmcdole/citadel/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// charactersLoadedMsg signals a list load (initial, refresh, filter or more) finished
type charactersLoadedMsg struct {
	Err error
}

// episodesLoadedMsg signals the open detail finished loading episodes
type episodesLoadedMsg struct {
	CharacterID int
	Err         error
}

// favoritesUnlockedMsg signals the unlock prompt returned
type favoritesUnlockedMsg struct {
	Err error
}

// toggledMsg signals a favorite toggle finished
type toggledMsg struct {
	Toggle domain.FavoriteToggle
	Err    error
}

// favoriteChangedMsg mirrors a bus favorite event
type favoriteChangedMsg struct {
	Event domain.FavoriteEvent
}

// listChangedMsg mirrors a bus list-changed event
type listChangedMsg struct{}

// sessionChangedMsg mirrors a session state change
type sessionChangedMsg struct {
	State domain.AuthState
}

// statusMsg sets the footer status line
type statusMsg struct {
	Text string
}
