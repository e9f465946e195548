package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mmcdole/citadel/internal/catalog"
	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/tui/styles"
	"github.com/mmcdole/citadel/internal/views"
)

var headerStyle = styles.TitleStyle.Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.DimStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func characterTable(chars []domain.Character) string {
	t := newTable("", "ID", "Name", "Status", "Species", "Location")
	for _, c := range chars {
		t.Row(
			styles.Star(c.IsFavorite),
			strconv.Itoa(c.ID),
			c.Name,
			styles.Status(c.Status.DisplayName()),
			c.Species,
			styles.Truncate(c.Location.Name, 28),
		)
	}
	return t.Render()
}

func episodeTable(episodes []domain.Episode) string {
	t := newTable("", "ID", "Code", "Name", "Air date")
	for _, e := range episodes {
		t.Row(styles.Watched(e.IsWatched), strconv.Itoa(e.ID), e.Code, e.Name, e.AirDate)
	}
	return t.Render()
}

func searchTable(results []catalog.SearchResult) string {
	t := newTable("", "ID", "Name", "Status", "Match")
	for _, r := range results {
		match := "fuzzy"
		if r.Approximate {
			match = "typo"
		}
		t.Row(
			styles.Star(r.Character.IsFavorite),
			strconv.Itoa(r.Character.ID),
			styles.Highlight(r.Character.Name, r.MatchedIndexes),
			styles.Status(r.Character.Status.DisplayName()),
			styles.DimStyle.Render(match),
		)
	}
	return t.Render()
}

func pinTable(pins []views.Pin) string {
	t := newTable("", "ID", "Name", "Latitude", "Longitude")
	for _, p := range pins {
		t.Row(
			styles.Star(p.IsFavorite),
			strconv.Itoa(p.CharacterID),
			p.Name,
			fmt.Sprintf("%.5f", p.Coordinates.Latitude),
			fmt.Sprintf("%.5f", p.Coordinates.Longitude),
		)
	}
	return t.Render()
}

func characterCard(c domain.Character) string {
	lines := []string{
		styles.Star(c.IsFavorite) + " " + styles.TitleStyle.Render(c.Name) + styles.DimStyle.Render(fmt.Sprintf("  #%d", c.ID)),
		styles.Status(c.Status.DisplayName()) + styles.DimStyle.Render(" · "+c.Species+" · "+c.Gender.DisplayName()),
	}
	if c.Type != "" {
		lines = append(lines, styles.SubtitleStyle.Render("Type: "+c.Type))
	}
	coords := c.Coordinates()
	lines = append(lines,
		styles.SubtitleStyle.Render("Origin: "+c.Origin.Name),
		styles.SubtitleStyle.Render("Location: "+c.Location.Name),
		styles.SubtitleStyle.Render(fmt.Sprintf("Map: %.5f, %.5f", coords.Latitude, coords.Longitude)),
		styles.SubtitleStyle.Render(fmt.Sprintf("Episodes: %d", len(c.EpisodeIDs()))),
	)
	if c.ImageURL != "" {
		lines = append(lines, styles.DimStyle.Render(c.ImageURL))
	}
	return styles.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// describe renders err for the terminal
func describe(err error) string {
	if ae, ok := domain.AsAuthError(err); ok {
		return ae.Message()
	}
	if errors.Is(err, domain.ErrSessionInactive) {
		return "favorites are locked"
	}
	var te *domain.TransportError
	if errors.As(err, &te) && te.Kind == domain.TransportUnreachable {
		return "unable to reach the catalog: " + err.Error()
	}
	return err.Error()
}
