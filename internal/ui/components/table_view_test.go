package components

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rebeliceyang/multifilter/internal/ui/theme"
)

func TestTableView_SetDataAndSelection(t *testing.T) {
	tv := NewTableView(theme.DefaultTheme())
	tv.Width, tv.Height = 80, 5
	tv.SetData([]string{"id", "name"}, [][]string{{"1", "ann"}, {"2", "bob"}, {"3", "cy"}, {"4", "di"}})

	assert.Equal(t, []int{6, 6}, tv.ColumnWidths)

	out := tv.View()
	assert.Contains(t, out, "id")
	assert.Contains(t, out, "1-2 of 4 rows")

	tv.MoveSelection(3)
	assert.Equal(t, 3, tv.SelectedRow)
	assert.Equal(t, 2, tv.TopRow)

	tv.MoveSelection(10)
	assert.Equal(t, 3, tv.SelectedRow)
	tv.MoveSelection(-10)
	assert.Equal(t, 0, tv.SelectedRow)
	assert.Equal(t, 0, tv.TopRow)
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab    ", pad("ab", 6))
	assert.Equal(t, "abc...", pad("abcdefghij", 6))
	assert.Equal(t, "a b   ", pad("a\nb", 6))
	assert.Equal(t, "日... ", pad("日本語テキスト", 6))
}

func TestPanel_View(t *testing.T) {
	p := Panel{Title: "Rows", Content: "hello", Theme: theme.DefaultTheme()}
	assert.Empty(t, p.View())

	p.Width, p.Height = 20, 3
	out := p.View()
	assert.Contains(t, out, "Rows")
	assert.Contains(t, out, "hello")
}
