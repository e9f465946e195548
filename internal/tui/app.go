// Package tui is the interactive catalog browser. It renders the screens
// from internal/views and forwards key presses to them.
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/citadel/internal/catalog"
	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/favorites"
	"github.com/mmcdole/citadel/internal/runloop"
	"github.com/mmcdole/citadel/internal/session"
	"github.com/mmcdole/citadel/internal/tui/styles"
	"github.com/mmcdole/citadel/internal/views"
)

// Tab identifies a top-level screen
type Tab int

const (
	TabCharacters Tab = iota
	TabFavorites
	TabMap
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabCharacters:
		return "Characters"
	case TabFavorites:
		return "Favorites"
	case TabMap:
		return "Map"
	default:
		return ""
	}
}

// Deps are the services the browser drives
type Deps struct {
	Service *catalog.Service
	Bus     *favorites.Bus
	Session *session.Coordinator
	UI      runloop.Dispatcher
	Reason  string
	Open    func(url string) error // Launches an image URL; nil disables it
	Logger  *slog.Logger
}

// Model is the Bubble Tea model of the browser
type Model struct {
	deps     Deps
	list     *views.CharacterList
	favs     *views.FavoritesList
	pins     *views.Map
	detail   *views.Detail
	observer *ChannelObserver

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	filter  textinput.Model

	tab            Tab
	cursor         [tabCount]int
	episodeCursor  int
	filtering      bool
	showHelp       bool
	pendingRemoval int // Character id awaiting a second press to unfavorite
	status         string
	statusIsError  bool
	width, height  int
}

// NewModel creates the browser and its screens
func NewModel(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	fi := textinput.New()
	fi.Prompt = "/ "
	fi.Placeholder = "name"
	fi.PromptStyle = styles.AccentStyle

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.SpinnerStyle

	return Model{
		deps:     deps,
		list:     views.NewCharacterList(deps.Service, deps.Bus, deps.UI, deps.Logger),
		favs:     views.NewFavoritesList(deps.Service, deps.Bus, deps.Session, deps.Reason, deps.UI, deps.Logger),
		pins:     views.NewMap(deps.Service.Queries, deps.Bus, deps.UI, deps.Logger),
		observer: NewChannelObserver(deps.Bus, deps.Session),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		filter:   fi,
		width:    80,
		height:   24,
	}
}

// Close releases the screens' subscriptions
func (m Model) Close() {
	m.observer.Close()
	if m.detail != nil {
		m.detail.Close()
	}
	m.list.Close()
	m.favs.Close()
	m.pins.Close()
}

// Init starts the first load
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadInitialCmd(m.list),
		m.observer.Wait(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.BlurMsg:
		// Losing focus ends the session at once
		m.deps.Session.ResignActive()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case charactersLoadedMsg:
		if msg.Err != nil {
			m.setError(msg.Err)
		}
		// Pins come from the cache the load just filled
		return m, loadPinsCmd(m.pins)

	case episodesLoadedMsg:
		if msg.Err != nil {
			m.setError(msg.Err)
		}
		return m, nil

	case favoritesUnlockedMsg:
		if msg.Err != nil {
			if ae, ok := domain.AsAuthError(msg.Err); ok && ae.Kind == domain.AuthUserCancelled {
				return m, nil
			}
			m.setError(msg.Err)
			return m, nil
		}
		m.tab = TabFavorites
		m.setStatus("Favorites unlocked")
		return m, nil

	case toggledMsg:
		m.pendingRemoval = 0
		switch {
		case msg.Err != nil:
			m.setError(msg.Err)
		case !msg.Toggle.Applied:
			m.setStatus("Character is not cached yet")
		case msg.Toggle.IsFavorite:
			m.setStatus("Added to favorites")
		default:
			m.setStatus("Removed from favorites")
		}
		return m, nil

	case favoriteChangedMsg, listChangedMsg:
		// Screens already applied the change; redraw
		return m, m.observer.Wait()

	case sessionChangedMsg:
		if msg.State == domain.AuthStateUnauthenticated && m.tab == TabFavorites {
			m.setStatus("Favorites locked")
		}
		return m, m.observer.Wait()

	case statusMsg:
		m.setStatus(msg.Text)
		return m, nil

	case ErrMsg:
		m.setError(msg)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.tab == TabFavorites && m.favs.Snapshot().Authenticated {
		// Activity on unlocked favorites keeps the session alive
		_ = m.deps.Session.ExtendSession()
	}

	if m.filtering {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Suspend):
		m.deps.Session.ResignActive()
		return m, tea.Suspend

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.detail != nil {
			m.detail.Close()
			m.detail = nil
			m.pendingRemoval = 0
		} else if m.tab == TabMap {
			m.pins.Deselect()
		}
		return m, nil
	}

	if m.detail != nil {
		return m.handleDetailKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % tabCount
		m.pendingRemoval = 0
		if m.tab == TabMap {
			return m, loadPinsCmd(m.pins)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor[m.tab] > 0 {
			m.cursor[m.tab]--
		}
		m.pendingRemoval = 0
		return m, nil

	case key.Matches(msg, m.keys.Down):
		return m.moveDown()

	case key.Matches(msg, m.keys.Enter):
		return m.openSelected()

	case key.Matches(msg, m.keys.Favorite):
		return m.toggleSelected()

	case key.Matches(msg, m.keys.Filter):
		if m.tab != TabCharacters {
			return m, nil
		}
		m.filtering = true
		m.filter.SetValue(m.list.Snapshot().Filter.Name)
		return m, m.filter.Focus()

	case key.Matches(msg, m.keys.Refresh):
		m.cursor[TabCharacters] = 0
		return m, refreshCmd(m.list)

	case key.Matches(msg, m.keys.Unlock):
		if m.favs.Snapshot().Authenticated {
			m.tab = TabFavorites
			return m, nil
		}
		return m, unlockCmd(m.favs)

	case key.Matches(msg, m.keys.Lock):
		m.favs.Lock()
		return m, nil
	}
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		m.cursor[TabCharacters] = 0
		f := m.list.Snapshot().Filter
		f.Name = strings.TrimSpace(m.filter.Value())
		return m, applyFilterCmd(m.list, f)
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.detail.Snapshot()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.episodeCursor > 0 {
			m.episodeCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.episodeCursor < len(snap.Episodes)-1 {
			m.episodeCursor++
		}
	case key.Matches(msg, m.keys.Favorite):
		if snap.Character.IsFavorite && m.pendingRemoval != snap.Character.ID {
			m.pendingRemoval = snap.Character.ID
			m.setStatus("Press f again to remove from favorites")
			return m, nil
		}
		return m, toggleDetailCmd(m.detail, m.pendingRemoval == snap.Character.ID)
	case key.Matches(msg, m.keys.Watch):
		if m.episodeCursor < len(snap.Episodes) {
			ep := snap.Episodes[m.episodeCursor]
			return m, episodeCmd(m.detail.ToggleEpisodeWatched(ep.ID), "")
		}
	case key.Matches(msg, m.keys.MarkAll):
		return m, episodeCmd(m.detail.MarkAllWatched(), "Marked all episodes watched")
	case key.Matches(msg, m.keys.UnmarkAll):
		return m, episodeCmd(m.detail.UnmarkAllWatched(), "Cleared watched episodes")
	case key.Matches(msg, m.keys.Open):
		if m.deps.Open != nil {
			return m, openCmd(m.deps.Open, snap.Character.ImageURL)
		}
	}
	return m, nil
}

func (m Model) moveDown() (tea.Model, tea.Cmd) {
	m.pendingRemoval = 0
	n := m.rowCount()
	if m.cursor[m.tab] < n-1 {
		m.cursor[m.tab]++
	}
	if m.tab != TabCharacters {
		return m, nil
	}
	snap := m.list.Snapshot()
	if m.cursor[m.tab] >= n-1 && snap.HasMorePages && !snap.IsLoadingMore {
		return m, loadMoreCmd(m.list)
	}
	return m, nil
}

func (m Model) openSelected() (tea.Model, tea.Cmd) {
	if m.tab == TabMap {
		pins := m.pins.Snapshot().Pins
		if i := m.cursor[TabMap]; i < len(pins) {
			m.pins.Select(pins[i].CharacterID)
		}
		return m, nil
	}

	c, ok := m.selected()
	if !ok {
		return m, nil
	}
	m.detail = views.NewDetail(c, m.deps.Service, m.deps.Bus, m.deps.UI, m.deps.Logger)
	m.episodeCursor = 0
	return m, loadEpisodesCmd(m.detail, c.ID)
}

func (m Model) toggleSelected() (tea.Model, tea.Cmd) {
	c, ok := m.selected()
	if !ok {
		return m, nil
	}
	if m.tab == TabFavorites {
		return m, toggleFavoritesCmd(m.favs, c.ID)
	}
	if c.IsFavorite && m.pendingRemoval != c.ID {
		m.pendingRemoval = c.ID
		m.setStatus("Press f again to remove from favorites")
		return m, nil
	}
	detail := views.NewDetail(c, m.deps.Service, m.deps.Bus, m.deps.UI, m.deps.Logger)
	return m, func() tea.Msg {
		defer detail.Close()
		t, err := detail.ToggleFavorite(true)
		return toggledMsg{Toggle: t, Err: err}
	}
}

// selected returns the character under the cursor on a list tab
func (m Model) selected() (domain.Character, bool) {
	var rows []domain.Character
	switch m.tab {
	case TabCharacters:
		rows = m.list.Snapshot().Characters
	case TabFavorites:
		rows = m.favs.Snapshot().Favorites
	case TabMap:
		pins := m.pins.Snapshot().Pins
		if i := m.cursor[TabMap]; i < len(pins) {
			return m.deps.Service.GetCachedCharacter(pins[i].CharacterID)
		}
		return domain.Character{}, false
	}
	i := m.cursor[m.tab]
	if i >= len(rows) {
		return domain.Character{}, false
	}
	return rows[i], true
}

func (m Model) rowCount() int {
	switch m.tab {
	case TabCharacters:
		return len(m.list.Snapshot().Characters)
	case TabFavorites:
		return len(m.favs.Snapshot().Favorites)
	default:
		return len(m.pins.Snapshot().Pins)
	}
}

func (m *Model) setStatus(s string) {
	m.status, m.statusIsError = s, false
}

func (m *Model) setError(err error) {
	m.deps.Logger.Error("browser error", "error", err)
	m.status, m.statusIsError = describe(err), true
}

// View renders the model
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	bodyHeight := max(m.height-6, 3)
	if m.detail != nil {
		b.WriteString(m.renderDetail(bodyHeight))
	} else {
		switch m.tab {
		case TabCharacters:
			b.WriteString(m.renderCharacters(bodyHeight))
		case TabFavorites:
			b.WriteString(m.renderFavorites(bodyHeight))
		case TabMap:
			b.WriteString(m.renderMap(bodyHeight))
		}
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, tabCount)
	for t := Tab(0); t < tabCount; t++ {
		style := styles.InactiveTabStyle
		if t == m.tab {
			style = styles.ActiveTabStyle
		}
		tabs = append(tabs, style.Render(t.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderCharacters(height int) string {
	snap := m.list.Snapshot()
	var lines []string
	if snap.State.Offline {
		lines = append(lines, styles.BannerStyle.Render("Offline: showing cached characters"))
	}
	if m.filtering {
		lines = append(lines, m.filter.View())
	} else if snap.Filter.Name != "" {
		lines = append(lines, styles.DimStyle.Render("filter: "+snap.Filter.Name))
	}

	switch snap.State.Phase {
	case views.PhaseIdle, views.PhaseLoading:
		if len(snap.Characters) == 0 {
			lines = append(lines, m.spinner.View()+" Loading characters...")
			return strings.Join(lines, "\n")
		}
	case views.PhaseEmpty:
		lines = append(lines, styles.DimStyle.Render("No characters found"))
		return strings.Join(lines, "\n")
	case views.PhaseError:
		lines = append(lines, styles.ErrorStyle.Render(snap.State.Message))
		return strings.Join(lines, "\n")
	}

	rows := make([]string, len(snap.Characters))
	for i, c := range snap.Characters {
		rows[i] = characterLine(c, m.width)
	}
	lines = append(lines, window(rows, m.cursor[TabCharacters], height-len(lines)-1)...)

	footer := fmt.Sprintf("page %d/%d", snap.CurrentPage, snap.TotalPages)
	if snap.IsLoadingMore {
		footer += " " + m.spinner.View()
	}
	lines = append(lines, styles.DimStyle.Render(footer))
	return strings.Join(lines, "\n")
}

func (m Model) renderFavorites(height int) string {
	snap := m.favs.Snapshot()
	if !snap.Authenticated {
		lines := []string{styles.SubtitleStyle.Render("Favorites are locked. Press u to unlock.")}
		if snap.State.Phase == views.PhaseError {
			lines = append(lines, styles.ErrorStyle.Render(snap.State.Message))
		}
		return strings.Join(lines, "\n")
	}
	if len(snap.Favorites) == 0 {
		return styles.DimStyle.Render("No favorites yet. Press f on a character.")
	}
	rows := make([]string, len(snap.Favorites))
	for i, c := range snap.Favorites {
		rows[i] = characterLine(c, m.width)
	}
	lines := window(rows, m.cursor[TabFavorites], height)
	if exp, ok := m.deps.Session.ExpiresAt(); ok {
		lines = append(lines, styles.DimStyle.Render("locks at "+exp.Local().Format("15:04:05")))
	}
	return strings.Join(lines, "\n")
}

// renderMap plots the pins on a character grid spanning MapBounds
func (m Model) renderMap(height int) string {
	snap := m.pins.Snapshot()
	if len(snap.Pins) == 0 {
		return styles.DimStyle.Render("No cached characters to place")
	}

	cols := max(m.width-4, 10)
	rows := max(height-4, 5)
	grid := make([][]string, rows)
	for r := range grid {
		grid[r] = make([]string, cols)
		for c := range grid[r] {
			grid[r][c] = " "
		}
	}
	cursorID := 0
	if i := m.cursor[TabMap]; i < len(snap.Pins) {
		cursorID = snap.Pins[i].CharacterID
	}
	b := snap.Region
	for _, p := range snap.Pins {
		x := int((p.Coordinates.Longitude - b.MinLongitude) / (b.MaxLongitude - b.MinLongitude) * float64(cols-1))
		y := int((b.MaxLatitude - p.Coordinates.Latitude) / (b.MaxLatitude - b.MinLatitude) * float64(rows-1))
		style := styles.DimStyle
		switch {
		case p.CharacterID == cursorID:
			style = styles.AccentStyle.Bold(true)
		case p.IsFavorite:
			style = styles.WarningStyle
		}
		grid[y][x] = style.Render(styles.PinChar)
	}

	lines := make([]string, 0, rows+2)
	for _, r := range grid {
		lines = append(lines, strings.Join(r, ""))
	}
	body := styles.PanelStyle.Render(strings.Join(lines, "\n"))

	info := ""
	if p := snap.Selected; p != nil {
		info = fmt.Sprintf("%s %s  %.4f, %.4f", styles.Star(p.IsFavorite), styles.TitleStyle.Render(p.Name),
			p.Coordinates.Latitude, p.Coordinates.Longitude)
	} else if i := m.cursor[TabMap]; i < len(snap.Pins) {
		info = styles.DimStyle.Render(fmt.Sprintf("%s (enter to select)", snap.Pins[i].Name))
	}
	return body + "\n" + info
}

func (m Model) renderDetail(height int) string {
	snap := m.detail.Snapshot()
	c := snap.Character

	lines := []string{
		styles.Star(c.IsFavorite) + " " + styles.TitleStyle.Render(c.Name),
		styles.Status(c.Status.DisplayName()) + styles.DimStyle.Render(" · "+c.Species+" · "+c.Gender.DisplayName()),
		styles.SubtitleStyle.Render("Origin: " + c.Origin.Name),
		styles.SubtitleStyle.Render("Location: " + c.Location.Name),
		"",
	}

	switch snap.EpisodesState.Phase {
	case views.PhaseLoading, views.PhaseIdle:
		lines = append(lines, m.spinner.View()+" Loading episodes...")
	case views.PhaseEmpty:
		lines = append(lines, styles.DimStyle.Render("No episodes"))
	case views.PhaseError:
		lines = append(lines, styles.ErrorStyle.Render(snap.EpisodesState.Message))
	default:
		p := snap.Progress
		lines = append(lines, fmt.Sprintf("%s %d/%d watched", styles.ProgressBar(p.Ratio(), 20), p.Watched, p.Total))
		rows := make([]string, len(snap.Episodes))
		for i, e := range snap.Episodes {
			rows[i] = fmt.Sprintf("%s %s %s", styles.Watched(e.IsWatched), styles.DimStyle.Render(e.Code),
				styles.Truncate(e.Name, max(m.width-16, 10)))
		}
		lines = append(lines, window(rows, m.episodeCursor, height-len(lines))...)
	}
	return styles.PanelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderFooter() string {
	var parts []string
	if m.status != "" {
		style := styles.SuccessStyle
		if m.statusIsError {
			style = styles.ErrorStyle
		}
		parts = append(parts, style.Render(m.status))
	}
	parts = append(parts, m.help.View(m.keys))
	return strings.Join(parts, "\n")
}

func characterLine(c domain.Character, width int) string {
	name := styles.Truncate(c.Name, max(width-30, 12))
	return fmt.Sprintf("%s %-*s %s %s", styles.Star(c.IsFavorite), max(width-30, 12), name,
		styles.Status(c.Status.DisplayName()), styles.DimStyle.Render(c.Species))
}

// window returns at most height rows around cursor, with the cursor row highlighted
func window(rows []string, cursor, height int) []string {
	height = max(height, 1)
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	end := min(start+height, len(rows))
	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		if i == cursor {
			out = append(out, styles.SelectedItemStyle.Render(rows[i]))
		} else {
			out = append(out, styles.NormalItemStyle.Render(rows[i]))
		}
	}
	return out
}
