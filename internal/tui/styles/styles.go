package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	PortalGreen = lipgloss.Color("#97CE4C")
	MortyYellow = lipgloss.Color("#F0E14A")
	SlateDark   = lipgloss.Color("#1F2937")
	SlateLight  = lipgloss.Color("#374151")
	DimGray     = lipgloss.Color("#6B7280")
	LightGray   = lipgloss.Color("#9CA3AF")
	White       = lipgloss.Color("#F9FAFB")
	Red         = lipgloss.Color("#EF4444")
	Blue        = lipgloss.Color("#44A6C6")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(PortalGreen)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(PortalGreen)

	WarningStyle = lipgloss.NewStyle().
			Foreground(MortyYellow)
)

// Status characters (unstyled)
const (
	FavoriteChar  = "★"
	PlainChar     = "☆"
	WatchedChar   = "✓"
	UnwatchedChar = "●"
	PinChar       = "◉"
)

// Pre-rendered indicators
var (
	FavoriteStar = lipgloss.NewStyle().Foreground(MortyYellow).Render(FavoriteChar)
	PlainStar    = DimStyle.Render(PlainChar)
	WatchedMark  = SuccessStyle.Render(WatchedChar)
	UnwatchedDot = AccentStyle.Render(UnwatchedChar)
)

// Status badge styles
var (
	AliveStyle   = lipgloss.NewStyle().Foreground(PortalGreen)
	DeadStyle    = lipgloss.NewStyle().Foreground(Red)
	UnknownStyle = lipgloss.NewStyle().Foreground(LightGray)
)

// Tab styles
var (
	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(SlateDark).
			Background(PortalGreen).
			Bold(true).
			Padding(0, 1)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(LightGray).
				Padding(0, 1)
)

// List item styles
var (
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SlateLight).
				Padding(0, 1)

	NormalItemStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1)
)

// Panel styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray).
			Padding(0, 1)

	BannerStyle = lipgloss.NewStyle().
			Foreground(SlateDark).
			Background(MortyYellow).
			Padding(0, 1)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(PortalGreen)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Progress bar styles
var (
	ProgressFullStyle = lipgloss.NewStyle().
				Foreground(PortalGreen)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(DimGray)
)

// Match highlight style for search results
var MatchHighlightStyle = lipgloss.NewStyle().
	Foreground(PortalGreen).
	Bold(true)

// SpinnerStyle colors the loading spinner
var SpinnerStyle = lipgloss.NewStyle().
	Foreground(PortalGreen)

// SpinnerFrames animates command-line waits
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Helper functions

// Truncate truncates a string to the given width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 1 {
		return string(runes[:width])
	}
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// Star renders the favorite indicator
func Star(favorite bool) string {
	if favorite {
		return FavoriteStar
	}
	return PlainStar
}

// Watched renders the watched indicator
func Watched(watched bool) string {
	if watched {
		return WatchedMark
	}
	return UnwatchedDot
}

// Status colors a character status name
func Status(name string) string {
	switch strings.ToLower(name) {
	case "alive":
		return AliveStyle.Render(name)
	case "dead":
		return DeadStyle.Render(name)
	default:
		return UnknownStyle.Render(name)
	}
}

// ProgressBar renders ratio (0..1) as a bar of width cells
func ProgressBar(ratio float64, width int) string {
	if width <= 0 {
		return ""
	}
	ratio = min(max(ratio, 0), 1)
	filled := int(ratio*float64(width) + 0.5)
	return ProgressFullStyle.Render(strings.Repeat("█", filled)) +
		ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// Highlight renders s with the runes starting at the byte offsets in indexes emphasized
func Highlight(s string, indexes []int) string {
	if len(indexes) == 0 {
		return s
	}
	hit := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		hit[i] = true
	}
	var b strings.Builder
	for i, r := range s {
		if hit[i] {
			b.WriteString(MatchHighlightStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
