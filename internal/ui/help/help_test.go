package help

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/rebeliceyang/multifilter/internal/ui/theme"
)

func TestFilterKeys_Match(t *testing.T) {
	keys := DefaultFilterKeys()

	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("!")}, keys.ToggleNot))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("K")}, keys.MoveUp))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, keys.Apply))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlS}, keys.Save))
	assert.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}, keys.MoveUp))
}

func TestRender_ListsEveryFilterBinding(t *testing.T) {
	out := Render(100, 60, theme.DefaultTheme())

	assert.Contains(t, out, "multifilter - Keyboard Shortcuts")
	for _, group := range DefaultFilterKeys().FullHelp() {
		for _, b := range group {
			assert.Contains(t, out, b.Help().Desc)
		}
	}
}
