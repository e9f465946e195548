package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/views"
)

// Commands run the view operations off the Bubble Tea goroutine

func loadInitialCmd(list *views.CharacterList) tea.Cmd {
	return func() tea.Msg {
		return charactersLoadedMsg{Err: list.LoadInitial(context.Background())}
	}
}

func refreshCmd(list *views.CharacterList) tea.Cmd {
	return func() tea.Msg {
		return charactersLoadedMsg{Err: list.Refresh(context.Background())}
	}
}

func loadMoreCmd(list *views.CharacterList) tea.Cmd {
	return func() tea.Msg {
		return charactersLoadedMsg{Err: list.LoadMore(context.Background())}
	}
}

func applyFilterCmd(list *views.CharacterList, filter domain.CharacterFilter) tea.Cmd {
	return func() tea.Msg {
		return charactersLoadedMsg{Err: list.ApplyFilter(context.Background(), filter)}
	}
}

func loadEpisodesCmd(detail *views.Detail, id int) tea.Cmd {
	return func() tea.Msg {
		return episodesLoadedMsg{CharacterID: id, Err: detail.LoadEpisodes(context.Background())}
	}
}

func loadPinsCmd(pins *views.Map) tea.Cmd {
	return func() tea.Msg {
		pins.Load()
		return nil
	}
}

func toggleDetailCmd(detail *views.Detail, confirmed bool) tea.Cmd {
	return func() tea.Msg {
		t, err := detail.ToggleFavorite(confirmed)
		return toggledMsg{Toggle: t, Err: err}
	}
}

func toggleFavoritesCmd(favs *views.FavoritesList, id int) tea.Cmd {
	return func() tea.Msg {
		t, err := favs.Toggle(id)
		return toggledMsg{Toggle: t, Err: err}
	}
}

func episodeCmd(err error, what string) tea.Cmd {
	return func() tea.Msg {
		if err != nil {
			return ErrMsg{Err: err, Context: what}
		}
		return statusMsg{Text: what}
	}
}

func openCmd(open func(string) error, url string) tea.Cmd {
	return func() tea.Msg {
		if url == "" {
			return statusMsg{Text: "No image for this character"}
		}
		if err := open(url); err != nil {
			return ErrMsg{Err: err, Context: "open image"}
		}
		return statusMsg{Text: "Opened " + url}
	}
}

// unlockCommand runs the favorites unlock with the terminal released
// so the authenticator can prompt on it
type unlockCommand struct {
	favs   *views.FavoritesList
	stdout io.Writer
}

func (c *unlockCommand) Run() error {
	if c.stdout != nil {
		fmt.Fprintln(c.stdout)
	}
	return c.favs.Unlock(context.Background())
}

func (c *unlockCommand) SetStdin(io.Reader)    {}
func (c *unlockCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *unlockCommand) SetStderr(io.Writer)   {}

func unlockCmd(favs *views.FavoritesList) tea.Cmd {
	return tea.Exec(&unlockCommand{favs: favs}, func(err error) tea.Msg {
		return favoritesUnlockedMsg{Err: err}
	})
}

// describe renders err for the status line
func describe(err error) string {
	if ae, ok := domain.AsAuthError(err); ok {
		return ae.Message()
	}
	if errors.Is(err, domain.ErrSessionInactive) {
		return "Favorites are locked"
	}
	return err.Error()
}
