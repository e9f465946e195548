package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Rick Sanchez", 20, "Rick Sanchez"},
		{"Rick Sanchez", 8, "Rick Sa…"},
		{"Rick", 0, ""},
		{"Rick", 1, "R"},
		{"Señor Poopybutthole", 6, "Señor…"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Truncate(tt.in, tt.width)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, lipgloss.Width(got), max(tt.width, 0))
		})
	}
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, 10, lipgloss.Width(ProgressBar(0.5, 10)))
	assert.Equal(t, 10, lipgloss.Width(ProgressBar(1.7, 10)))
	assert.Equal(t, 10, lipgloss.Width(ProgressBar(-1, 10)))
	assert.Empty(t, ProgressBar(0.5, 0))
}

func TestHighlightKeepsText(t *testing.T) {
	got := Highlight("Morty Smith", []int{0, 6})
	assert.Equal(t, 11, lipgloss.Width(got))
	assert.Equal(t, "Morty", Highlight("Morty", nil))
}
