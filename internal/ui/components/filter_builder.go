package components

import (
	"fmt"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/multifilter/internal/filter"
	"github.com/rebeliceyang/multifilter/internal/models"
	uihelp "github.com/rebeliceyang/multifilter/internal/ui/help"
	"github.com/rebeliceyang/multifilter/internal/ui/theme"
)

// ApplyFilterMsg is sent when the filter should be applied
type ApplyFilterMsg struct {
	Nodes []*filter.Node
	JSON  string
}

// CloseFilterBuilderMsg is sent when the filter builder should close
type CloseFilterBuilderMsg struct{}

// SaveFilterMsg asks for the current filter to be stored under Name
type SaveFilterMsg struct {
	Name string
	JSON string
}

type editStep int

const (
	stepNone editStep = iota
	stepField
	stepOperator
	stepValue
	stepName
)

// visibleRow is a row of the tree flattened for display
type visibleRow struct {
	row   *filter.Row
	depth int
}

// FilterBuilder edits a nested AND/OR filter tree
type FilterBuilder struct {
	Width  int
	Height int
	Theme  theme.Theme

	keys    uihelp.FilterKeyMap
	help    help.Model
	builder *filter.Builder
	ops     *filter.Operators
	root    *filter.Group

	fields []string
	schema string
	table  string

	// State
	rows            []visibleRow
	cursor          int
	step            editStep
	editing         *filter.Row
	input           textinput.Model
	operatorIndex   int
	validationError string
	status          string

	previewJSON string
	previewSQL  string
	sqlFailed   bool

	copyText func(string) error
}

// NewFilterBuilder creates a new filter builder using ops for labels and
// symbols
func NewFilterBuilder(th theme.Theme, ops *filter.Operators) *FilterBuilder {
	if ops == nil {
		ops = filter.DefaultOperators()
	}

	input := textinput.New()
	input.CharLimit = 256
	input.Width = 40
	input.ShowSuggestions = true
	input.Cursor.SetMode(cursor.CursorStatic)

	fb := &FilterBuilder{
		Width:    80,
		Height:   30,
		Theme:    th,
		keys:     uihelp.DefaultFilterKeys(),
		help:     help.New(),
		builder:  filter.NewBuilder(ops),
		ops:      ops,
		root:     filter.NewGroup(filter.WithOperators(ops)),
		input:    input,
		copyText: clipboard.WriteAll,
	}
	fb.root.OnChange(func(*filter.Group) { fb.refresh() })
	fb.refresh()
	return fb
}

// SetFields updates the fields offered when editing a condition
func (fb *FilterBuilder) SetFields(fields []string) {
	fb.fields = fields
}

// SetTable sets the table being filtered
func (fb *FilterBuilder) SetTable(schema, table string) {
	fb.schema = schema
	fb.table = table
	fb.refresh()
}

// Group returns the edited tree
func (fb *FilterBuilder) Group() *filter.Group {
	return fb.root
}

// Load replaces the current rows with a serialized tree
func (fb *FilterBuilder) Load(data []byte) error {
	nodes, err := filter.Parse(data)
	if err != nil {
		return err
	}
	fb.root.Clear()
	fb.root.Decode(nodes)
	fb.cursor = 0
	fb.step = stepNone
	fb.validationError = ""
	fb.refresh()
	return nil
}

// JSON returns the encoded tree
func (fb *FilterBuilder) JSON() string {
	return fb.previewJSON
}

// Editing reports whether a text prompt currently owns the keyboard
func (fb *FilterBuilder) Editing() bool {
	return fb.step != stepNone
}

// Update handles input
func (fb *FilterBuilder) Update(msg tea.Msg) (*FilterBuilder, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if fb.step == stepNone {
			return fb, nil
		}
		var cmd tea.Cmd
		fb.input, cmd = fb.input.Update(msg)
		return fb, cmd
	}

	switch fb.step {
	case stepField:
		return fb.handleFieldStep(keyMsg)
	case stepOperator:
		return fb.handleOperatorStep(keyMsg)
	case stepValue:
		return fb.handleValueStep(keyMsg)
	case stepName:
		return fb.handleNameStep(keyMsg)
	}
	return fb.handleNavigation(keyMsg)
}

func (fb *FilterBuilder) handleNavigation(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	fb.validationError = ""
	fb.status = ""
	cur := fb.current()

	switch {
	case key.Matches(msg, fb.keys.Up):
		if fb.cursor > 0 {
			fb.cursor--
		}
	case key.Matches(msg, fb.keys.Down):
		if fb.cursor < len(fb.rows)-1 {
			fb.cursor++
		}
	case key.Matches(msg, fb.keys.AddRow):
		return fb, fb.startEdit(fb.insertAfter(cur, false))
	case key.Matches(msg, fb.keys.AddInside):
		if cur != nil && cur.IsGroup() {
			return fb, fb.startEdit(cur.Group().AddLeafRow())
		}
		return fb, fb.startEdit(fb.insertAfter(cur, false))
	case key.Matches(msg, fb.keys.AddSet):
		set := fb.insertAfter(cur, true)
		return fb, fb.startEdit(set.Group().AddLeafRow())
	case key.Matches(msg, fb.keys.Delete):
		if cur != nil {
			cur.Parent().RemoveRow(cur)
		}
	case key.Matches(msg, fb.keys.MoveUp):
		if cur != nil && cur.CanMoveUp() {
			cur.Parent().MoveRow(cur, -1)
			fb.focus(cur)
		}
	case key.Matches(msg, fb.keys.MoveDown):
		if cur != nil && cur.CanMoveDown() {
			cur.Parent().MoveRow(cur, 1)
			fb.focus(cur)
		}
	case key.Matches(msg, fb.keys.ToggleOr):
		if cur == nil {
			break
		}
		if !cur.ShowsConnector() {
			fb.validationError = "The first row of a set has no connector"
			break
		}
		cur.SetOr(!cur.IsOr())
		fb.refresh()
	case key.Matches(msg, fb.keys.ToggleNot):
		if cur != nil {
			cur.SetNegated(!cur.Negated())
			fb.refresh()
		}
	case key.Matches(msg, fb.keys.Edit):
		if cur != nil && !cur.IsGroup() {
			return fb, fb.startEdit(cur)
		}
	case key.Matches(msg, fb.keys.Clear):
		fb.root.Clear()
	case key.Matches(msg, fb.keys.Copy):
		if err := fb.copyText(fb.previewJSON); err != nil {
			fb.validationError = fmt.Sprintf("Copy failed: %v", err)
		} else {
			fb.status = "Filter JSON copied to clipboard"
		}
	case key.Matches(msg, fb.keys.Save):
		fb.step = stepName
		fb.input.Reset()
		fb.input.Placeholder = "filter name"
		fb.input.SetSuggestions(nil)
		return fb, fb.input.Focus()
	case key.Matches(msg, fb.keys.Apply):
		nodes := fb.root.Encode()
		if _, _, err := fb.builder.BuildWhere(nodes); err != nil {
			fb.validationError = err.Error()
			return fb, nil
		}
		out := fb.previewJSON
		return fb, func() tea.Msg {
			return ApplyFilterMsg{Nodes: nodes, JSON: out}
		}
	case key.Matches(msg, fb.keys.Close):
		return fb, func() tea.Msg {
			return CloseFilterBuilderMsg{}
		}
	case key.Matches(msg, fb.keys.Help):
		fb.help.ShowAll = !fb.help.ShowAll
	}
	return fb, nil
}

// insertAfter adds a row right after cur in cur's group, or at the end of
// the root group when nothing is selected
func (fb *FilterBuilder) insertAfter(cur *filter.Row, set bool) *filter.Row {
	g, pos := fb.root, fb.root.Len()
	if cur != nil {
		g = cur.Parent()
		pos = g.Index(cur) + 1
	}
	if set {
		return g.InsertGroupRow(pos)
	}
	return g.InsertLeafRow(pos)
}

func (fb *FilterBuilder) startEdit(r *filter.Row) tea.Cmd {
	fb.focus(r)
	fb.editing = r
	fb.step = stepField
	fb.input.Reset()
	fb.input.Placeholder = "field"
	fb.input.SetSuggestions(fb.fields)
	fb.input.SetValue(r.Leaf().Field)
	fb.input.CursorEnd()
	return fb.input.Focus()
}

func (fb *FilterBuilder) handleFieldStep(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		fb.endEdit()
		return fb, nil
	case tea.KeyEnter:
		field := strings.TrimSpace(fb.input.Value())
		if field == "" {
			fb.validationError = "Field cannot be empty"
			return fb, nil
		}
		if len(fb.fields) > 0 {
			i := slices.IndexFunc(fb.fields, func(f string) bool { return strings.EqualFold(f, field) })
			if i < 0 {
				fb.validationError = fmt.Sprintf("Field '%s' not found", field)
				return fb, nil
			}
			field = fb.fields[i]
		}
		fb.validationError = ""
		fb.editing.Leaf().Field = field
		fb.step = stepOperator
		fb.operatorIndex = max(0, slices.Index(fb.ops.Choices(), fb.editing.Leaf().Label()))
		fb.input.Blur()
		fb.refresh()
		return fb, nil
	}

	var cmd tea.Cmd
	fb.input, cmd = fb.input.Update(msg)
	return fb, cmd
}

func (fb *FilterBuilder) handleOperatorStep(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	choices := fb.ops.Choices()
	switch msg.String() {
	case "esc":
		fb.step = stepField
		return fb, fb.input.Focus()
	case "up", "k":
		if fb.operatorIndex > 0 {
			fb.operatorIndex--
		}
	case "down", "j":
		if fb.operatorIndex < len(choices)-1 {
			fb.operatorIndex++
		}
	case "enter":
		if len(choices) == 0 {
			return fb, nil
		}
		leaf := fb.editing.Leaf()
		leaf.SetOperator(choices[fb.operatorIndex])
		fb.refresh()

		// No value needed
		if op := models.FilterOperator(strings.ToUpper(leaf.Operator)); op == models.OpIsNull || op == models.OpIsNotNull {
			leaf.Value = ""
			fb.endEdit()
			return fb, nil
		}

		fb.step = stepValue
		fb.input.Reset()
		fb.input.Placeholder = "value"
		fb.input.SetSuggestions(nil)
		fb.input.SetValue(leaf.Value)
		fb.input.CursorEnd()
		return fb, fb.input.Focus()
	}
	return fb, nil
}

func (fb *FilterBuilder) handleValueStep(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		fb.step = stepOperator
		fb.input.Blur()
		return fb, nil
	case tea.KeyEnter:
		fb.editing.Leaf().Value = fb.input.Value()
		fb.endEdit()
		return fb, nil
	}

	var cmd tea.Cmd
	fb.input, cmd = fb.input.Update(msg)
	return fb, cmd
}

func (fb *FilterBuilder) handleNameStep(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		fb.endEdit()
		return fb, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(fb.input.Value())
		if name == "" {
			fb.validationError = "Name cannot be empty"
			return fb, nil
		}
		fb.endEdit()
		out := fb.previewJSON
		return fb, func() tea.Msg {
			return SaveFilterMsg{Name: name, JSON: out}
		}
	}

	var cmd tea.Cmd
	fb.input, cmd = fb.input.Update(msg)
	return fb, cmd
}

func (fb *FilterBuilder) endEdit() {
	fb.step = stepNone
	fb.editing = nil
	fb.validationError = ""
	fb.input.Blur()
	fb.refresh()
}

func (fb *FilterBuilder) current() *filter.Row {
	if fb.cursor < 0 || fb.cursor >= len(fb.rows) {
		return nil
	}
	return fb.rows[fb.cursor].row
}

// focus moves the cursor onto r
func (fb *FilterBuilder) focus(r *filter.Row) {
	fb.refresh()
	for i, v := range fb.rows {
		if v.row == r {
			fb.cursor = i
			return
		}
	}
}

// refresh flattens the tree and updates the previews
func (fb *FilterBuilder) refresh() {
	fb.rows = fb.rows[:0]
	fb.flatten(fb.root, 0)
	fb.cursor = max(0, min(fb.cursor, len(fb.rows)-1))

	fb.sqlFailed = true
	data, err := fb.root.MarshalJSON()
	if err != nil {
		fb.previewJSON = ""
		fb.previewSQL = fmt.Sprintf("Error: %s", err.Error())
		return
	}
	fb.previewJSON = string(data)

	nodes := fb.root.Encode()
	var sql string
	if fb.table != "" {
		sql, _, err = fb.builder.BuildQuery(fb.schema, fb.table, nodes, 0)
	} else {
		sql, _, err = fb.builder.BuildWhere(nodes)
	}
	if err != nil {
		fb.previewSQL = fmt.Sprintf("Error: %s", err.Error())
		return
	}
	fb.previewSQL = sql
	fb.sqlFailed = false
}

func (fb *FilterBuilder) flatten(g *filter.Group, depth int) {
	for _, r := range g.Rows() {
		fb.rows = append(fb.rows, visibleRow{row: r, depth: depth})
		if r.IsGroup() {
			fb.flatten(r.Group(), depth+1)
		}
	}
}

// View renders the filter builder
func (fb *FilterBuilder) View() string {
	var sections []string

	titleStyle := lipgloss.NewStyle().
		Foreground(fb.Theme.Foreground).
		Background(fb.Theme.Info).
		Padding(0, 1).
		Bold(true)
	title := "Filter"
	if fb.table != "" {
		title = fmt.Sprintf("Filter %s.%s", fb.schema, fb.table)
	}
	sections = append(sections, titleStyle.Render(title))

	instructionStyle := lipgloss.NewStyle().
		Foreground(fb.Theme.Metadata).
		Padding(0, 1)

	switch fb.step {
	case stepField:
		sections = append(sections, instructionStyle.Render("Type a field, Tab to complete, Enter to confirm, Esc to cancel"))
	case stepOperator:
		sections = append(sections, instructionStyle.Render("↑↓ Select condition, Enter to confirm, Esc to go back"))
	case stepValue:
		sections = append(sections, instructionStyle.Render("Type value, Enter to confirm, Esc to go back"))
	case stepName:
		sections = append(sections, instructionStyle.Render("Name this filter, Enter to save, Esc to cancel"))
	default:
		sections = append(sections, fb.help.View(fb.keys))
	}

	if fb.validationError != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(fb.Theme.Error).
			Padding(0, 1).
			Bold(true)
		sections = append(sections, errorStyle.Render("Error: "+fb.validationError))
	}
	if fb.status != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(fb.Theme.Success).Padding(0, 1).Render(fb.status))
	}

	sections = append(sections, "")
	if len(fb.rows) == 0 {
		sections = append(sections, instructionStyle.Render("No conditions. Press a to add a row or s to add a set."))
	}
	for i, v := range fb.rows {
		sections = append(sections, fb.renderRow(v, i == fb.cursor && fb.step == stepNone))
	}

	switch fb.step {
	case stepField:
		sections = append(sections, "", "Field: "+fb.input.View())
	case stepOperator:
		sections = append(sections, "", "Field: "+fb.editing.Leaf().Field, "Condition:")
		for i, op := range fb.ops.Choices() {
			style := lipgloss.NewStyle().Padding(0, 1)
			if i == fb.operatorIndex {
				style = style.Background(fb.Theme.Selection).Foreground(fb.Theme.Foreground)
			}
			sections = append(sections, style.Render("  "+op))
		}
	case stepValue:
		leaf := fb.editing.Leaf()
		sections = append(sections, "", fmt.Sprintf("Field: %s %s", leaf.Field, leaf.Label()), "Value: "+fb.input.View())
	case stepName:
		sections = append(sections, "", "Name: "+fb.input.View())
	}

	previewStyle := lipgloss.NewStyle().
		Foreground(fb.Theme.Preview).
		Padding(0, 1).
		Italic(true)
	sections = append(sections, "", "JSON:", previewStyle.Render(fb.previewJSON))
	switch {
	case fb.sqlFailed:
		sections = append(sections, "SQL Preview:", previewStyle.Foreground(fb.Theme.Error).Render(fb.previewSQL))
	case fb.previewSQL != "":
		sections = append(sections, "SQL Preview:", lipgloss.NewStyle().Padding(0, 1).Render(highlightSQL(fb.previewSQL)))
	}

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(fb.Theme.BorderFocused).
		Foreground(fb.Theme.Foreground).
		Width(fb.Width).
		Padding(1)

	return containerStyle.Render(strings.Join(sections, "\n"))
}

func (fb *FilterBuilder) renderRow(v visibleRow, selected bool) string {
	r := v.row
	connector := "   "
	if r.ShowsConnector() {
		connector = strings.ToUpper(r.Connector().String())
		if len(connector) < 3 {
			connector += " "
		}
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("  ", v.depth))
	b.WriteString(lipgloss.NewStyle().Foreground(fb.Theme.Connector).Bold(true).Render(connector))
	b.WriteString(" ")
	if r.Negated() {
		b.WriteString(lipgloss.NewStyle().Foreground(fb.Theme.Negation).Render("NOT "))
	}

	if r.IsGroup() {
		b.WriteString(fmt.Sprintf("( set of %d )", r.Group().Len()))
	} else {
		leaf := r.Leaf()
		field := leaf.Field
		if field == "" {
			field = "<field>"
		}
		b.WriteString(lipgloss.NewStyle().Foreground(fb.Theme.Field).Render(field))
		b.WriteString(" ")
		b.WriteString(lipgloss.NewStyle().Foreground(fb.Theme.Operator).Render(leaf.Label()))
		b.WriteString(" ")
		b.WriteString(lipgloss.NewStyle().Foreground(fb.Theme.Value).Render(fmt.Sprintf("%q", leaf.Value)))
	}

	var arrows string
	if r.CanMoveUp() {
		arrows += "↑"
	}
	if r.CanMoveDown() {
		arrows += "↓"
	}
	if arrows != "" {
		b.WriteString("  ")
		b.WriteString(lipgloss.NewStyle().Foreground(fb.Theme.Metadata).Faint(true).Render(arrows))
	}

	style := lipgloss.NewStyle().Padding(0, 1)
	if selected {
		style = style.Background(fb.Theme.Selection).Foreground(fb.Theme.Foreground)
	}
	return style.Render(b.String())
}
