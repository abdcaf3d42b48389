package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/multifilter/internal/ui/theme"
)

// FilterKeyMap holds the bindings of the filter window
type FilterKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	AddRow    key.Binding
	AddInside key.Binding
	AddSet    key.Binding
	Delete    key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	ToggleOr  key.Binding
	ToggleNot key.Binding
	Edit      key.Binding
	Apply     key.Binding
	Save      key.Binding
	Copy      key.Binding
	Clear     key.Binding
	Close     key.Binding
	Help      key.Binding
}

// DefaultFilterKeys returns the default filter window bindings
func DefaultFilterKeys() FilterKeyMap {
	return FilterKeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
		AddRow:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add row")),
		AddInside: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "add row inside set")),
		AddSet:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "add set")),
		Delete:    key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete row")),
		MoveUp:    key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move row up")),
		MoveDown:  key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move row down")),
		ToggleOr:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "toggle and/or")),
		ToggleNot: key.NewBinding(key.WithKeys("!"), key.WithHelp("!", "toggle not")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit condition")),
		Apply:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save as")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy JSON")),
		Clear:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "clear")),
		Close:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	}
}

// ShortHelp implements help.KeyMap
func (k FilterKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.AddRow, k.AddSet, k.ToggleOr, k.Edit, k.Apply, k.Close, k.Help}
}

// FullHelp implements help.KeyMap
func (k FilterKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.MoveUp, k.MoveDown},
		{k.AddRow, k.AddInside, k.AddSet, k.Delete},
		{k.ToggleOr, k.ToggleNot, k.Edit, k.Clear},
		{k.Apply, k.Save, k.Copy, k.Close},
	}
}

// AppKeyMap holds the bindings of the main window
type AppKeyMap struct {
	Filter  key.Binding
	Saved   key.Binding
	History key.Binding
	Reload  key.Binding
	Up      key.Binding
	Down    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultAppKeys returns the default main window bindings
func DefaultAppKeys() AppKeyMap {
	return AppKeyMap{
		Filter:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "open filter")),
		Saved:   key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "saved filters")),
		History: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "filter history")),
		Reload:  key.NewBinding(key.WithKeys("r", "f5"), key.WithHelp("r", "reload")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k AppKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Filter, k.Saved, k.History, k.Reload, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k AppKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Filter, k.Saved, k.History, k.Reload},
		{k.Up, k.Down, k.Help, k.Quit},
	}
}

type section struct {
	title    string
	bindings []key.Binding
}

// Render creates the full help view
func Render(width, height int, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderFocused).
		Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	appKeys := DefaultAppKeys()
	filterKeys := DefaultFilterKeys()
	sections := []section{
		{"Global", []key.Binding{appKeys.Help, appKeys.Quit, appKeys.Reload}},
		{"Results", []key.Binding{appKeys.Up, appKeys.Down, appKeys.Filter, appKeys.Saved, appKeys.History}},
		{"Filter", flatten(filterKeys.FullHelp())},
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("multifilter - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, s := range sections {
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, kb := range s.bindings {
			h := kb.Help()
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(descStyle.Render(h.Desc))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press '?' or Esc to close help"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2).
		Width(max(width-4, 20)).
		Height(max(height-4, 10))

	return boxStyle.Render(b.String())
}

func flatten(groups [][]key.Binding) []key.Binding {
	var out []key.Binding
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
