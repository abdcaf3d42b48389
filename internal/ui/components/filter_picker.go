package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/multifilter/internal/history"
	"github.com/rebeliceyang/multifilter/internal/models"
	"github.com/rebeliceyang/multifilter/internal/ui/theme"
)

// PickerSource tells what a FilterPicker lists
type PickerSource int

const (
	PickerSaved PickerSource = iota
	PickerHistory
)

// PickerItem is one selectable filter
type PickerItem struct {
	ID     string
	Title  string
	Detail string
	Filter string // encoded tree JSON
}

// PickFilterMsg is sent when a filter is chosen from the picker
type PickFilterMsg struct {
	Source PickerSource
	Item   PickerItem
}

// DeletePickedMsg is sent when the selected item should be removed
type DeletePickedMsg struct {
	Source PickerSource
	Item   PickerItem
}

// ClosePickerMsg is sent when the picker should close
type ClosePickerMsg struct{}

// FilterPicker lists saved filters or previously applied filters
type FilterPicker struct {
	Width  int
	Height int
	Theme  theme.Theme

	source   PickerSource
	items    []PickerItem
	selected int
	offset   int
}

// NewFilterPicker creates an empty picker
func NewFilterPicker(th theme.Theme) *FilterPicker {
	return &FilterPicker{
		Width:  80,
		Height: 24,
		Theme:  th,
	}
}

// SetSaved lists saved filters
func (fp *FilterPicker) SetSaved(filters []models.SavedFilter) {
	items := make([]PickerItem, 0, len(filters))
	for _, f := range filters {
		detail := f.Description
		if len(f.Tags) > 0 {
			detail = strings.TrimSpace(fmt.Sprintf("%s [%s]", detail, strings.Join(f.Tags, ", ")))
		}
		items = append(items, PickerItem{ID: f.ID, Title: f.Name, Detail: detail, Filter: f.Filter})
	}
	fp.setItems(PickerSaved, items)
}

// SetHistory lists history entries
func (fp *FilterPicker) SetHistory(entries []history.HistoryEntry) {
	items := make([]PickerItem, 0, len(entries))
	for _, e := range entries {
		detail := fmt.Sprintf("%d rows in %s", e.RowsReturned, e.Duration)
		if !e.Success {
			detail = "failed: " + e.ErrorMessage
		}
		items = append(items, PickerItem{
			ID:     fmt.Sprintf("%d", e.ID),
			Title:  e.AppliedAt.Local().Format("2006-01-02 15:04:05"),
			Detail: detail,
			Filter: e.Filter,
		})
	}
	fp.setItems(PickerHistory, items)
}

func (fp *FilterPicker) setItems(source PickerSource, items []PickerItem) {
	fp.source = source
	fp.items = items
	fp.selected = 0
	fp.offset = 0
}

// Selected returns the highlighted item
func (fp *FilterPicker) Selected() (PickerItem, bool) {
	if fp.selected < 0 || fp.selected >= len(fp.items) {
		return PickerItem{}, false
	}
	return fp.items[fp.selected], true
}

func (fp *FilterPicker) visibleHeight() int {
	return max(1, (fp.Height-8)/2)
}

// Update handles keyboard input
func (fp *FilterPicker) Update(msg tea.KeyMsg) (*FilterPicker, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return fp, func() tea.Msg {
			return ClosePickerMsg{}
		}
	case "up", "k":
		if fp.selected > 0 {
			fp.selected--
			if fp.selected < fp.offset {
				fp.offset = fp.selected
			}
		}
	case "down", "j":
		if fp.selected < len(fp.items)-1 {
			fp.selected++
			if fp.selected >= fp.offset+fp.visibleHeight() {
				fp.offset = fp.selected - fp.visibleHeight() + 1
			}
		}
	case "enter":
		if item, ok := fp.Selected(); ok {
			source := fp.source
			return fp, func() tea.Msg {
				return PickFilterMsg{Source: source, Item: item}
			}
		}
	case "d", "x":
		if item, ok := fp.Selected(); ok && fp.source == PickerSaved {
			return fp, func() tea.Msg {
				return DeletePickedMsg{Source: PickerSaved, Item: item}
			}
		}
	}
	return fp, nil
}

// View renders the picker
func (fp *FilterPicker) View() string {
	var sections []string

	title := "Saved Filters"
	instructions := "↑↓: Navigate  Enter: Load  d: Delete  Esc: Close"
	empty := "No saved filters yet. Press ctrl+s in the filter window to save one."
	if fp.source == PickerHistory {
		title = "Filter History"
		instructions = "↑↓: Navigate  Enter: Load  Esc: Close"
		empty = "No filters applied yet."
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(fp.Theme.Foreground).
		Background(fp.Theme.Info).
		Padding(0, 1).
		Bold(true)
	sections = append(sections, titleStyle.Render(title))

	instrStyle := lipgloss.NewStyle().
		Foreground(fp.Theme.Metadata).
		Padding(0, 1)
	sections = append(sections, instrStyle.Render(instructions))

	if len(fp.items) == 0 {
		sections = append(sections, "\n"+empty)
	} else {
		sections = append(sections, "")
		end := min(fp.offset+fp.visibleHeight(), len(fp.items))
		for i := fp.offset; i < end; i++ {
			item := fp.items[i]
			line := fmt.Sprintf("%s\n  %s", truncate(item.Title, 40), truncate(item.Detail, 60))

			style := lipgloss.NewStyle().Padding(0, 1)
			if i == fp.selected {
				style = style.Background(fp.Theme.Selection).Foreground(fp.Theme.Foreground)
			}
			sections = append(sections, style.Render(line))
		}
	}

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(fp.Theme.Border).
		Width(fp.Width).
		Height(fp.Height).
		Padding(1)

	return containerStyle.Render(strings.Join(sections, "\n"))
}
