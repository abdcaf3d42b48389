package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/multifilter/internal/config"
	"github.com/rebeliceyang/multifilter/internal/filter"
	"github.com/rebeliceyang/multifilter/internal/history"
	"github.com/rebeliceyang/multifilter/internal/models"
	"github.com/rebeliceyang/multifilter/internal/saved"
	"github.com/rebeliceyang/multifilter/internal/ui/components"
	uihelp "github.com/rebeliceyang/multifilter/internal/ui/help"
	"github.com/rebeliceyang/multifilter/internal/ui/theme"
)

// Executor runs a filter tree against a table
type Executor interface {
	Execute(ctx context.Context, schema, table string, nodes []*filter.Node, limit int) models.QueryResult
}

// HistoryStore records applied filters
type HistoryStore interface {
	Add(entry history.HistoryEntry) error
	ForTable(schema, table string, limit int) ([]history.HistoryEntry, error)
}

// Options wires the application to its collaborators. Executor, History and
// Saved are optional.
type Options struct {
	Config   *config.Config
	Logger   *slog.Logger
	Executor Executor
	History  HistoryStore
	Saved    *saved.Manager
	Fields   []string
}

type viewMode int

const (
	modeResults viewMode = iota
	modeFilter
	modePicker
	modeHelp
)

// FilterResultMsg carries the outcome of applying a filter
type FilterResultMsg struct {
	JSON   string
	Result models.QueryResult
}

// App is the main application model
type App struct {
	config   *config.Config
	logger   *slog.Logger
	theme    theme.Theme
	keys     uihelp.AppKeyMap
	help     help.Model
	executor Executor
	history  HistoryStore
	saved    *saved.Manager
	ops      *filter.Operators

	schema string
	table  string
	limit  int

	width  int
	height int
	mode   viewMode

	filterBuilder *components.FilterBuilder
	picker        *components.FilterPicker
	tableView     *components.TableView
	panel         components.Panel

	activeFilter string
	lastSQL      string
	status       string
	errMsg       string
}

// New creates a new App instance
func New(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	th := theme.GetTheme(cfg.UI.Theme)
	ops := filter.NewOperators(cfg.Filter.ConditionMap, cfg.Filter.Operators)

	fields := opts.Fields
	if len(fields) == 0 {
		fields = cfg.Filter.Fields
	}

	fb := components.NewFilterBuilder(th, ops)
	fb.SetFields(fields)
	fb.SetTable(cfg.Database.Schema, cfg.Database.Table)

	a := &App{
		config:        cfg,
		logger:        logger,
		theme:         th,
		keys:          uihelp.DefaultAppKeys(),
		help:          help.New(),
		executor:      opts.Executor,
		history:       opts.History,
		saved:         opts.Saved,
		ops:           ops,
		schema:        cfg.Database.Schema,
		table:         cfg.Database.Table,
		limit:         cfg.Database.DefaultLimit,
		width:         cfg.UI.Width,
		height:        cfg.UI.Height,
		filterBuilder: fb,
		picker:        components.NewFilterPicker(th),
		tableView:     components.NewTableView(th),
		activeFilter:  "[]",
		panel: components.Panel{
			Title:   "Rows",
			Focused: true,
			Theme:   th,
		},
	}
	a.updateDimensions()
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	if a.executor == nil || a.table == "" {
		return nil
	}
	return a.runFilter(nil, a.activeFilter)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateDimensions()
		return a, nil

	case components.ApplyFilterMsg:
		a.mode = modeResults
		a.activeFilter = msg.JSON
		return a, a.runFilter(msg.Nodes, msg.JSON)

	case components.CloseFilterBuilderMsg:
		// discard edits: restore the applied filter
		if err := a.filterBuilder.Load([]byte(a.activeFilter)); err != nil {
			a.logger.Warn("failed to restore applied filter", "error", err)
		}
		a.mode = modeResults
		return a, nil

	case components.SaveFilterMsg:
		a.saveFilter(msg)
		return a, nil

	case components.PickFilterMsg:
		if msg.Source == components.PickerSaved && a.saved != nil {
			if err := a.saved.RecordUsage(msg.Item.ID); err != nil {
				a.logger.Warn("failed to record saved filter usage", "id", msg.Item.ID, "error", err)
			}
		}
		if err := a.filterBuilder.Load([]byte(msg.Item.Filter)); err != nil {
			a.errMsg = fmt.Sprintf("Could not load filter: %v", err)
			a.mode = modeResults
			return a, nil
		}
		a.mode = modeFilter
		return a, nil

	case components.DeletePickedMsg:
		if a.saved != nil {
			if err := a.saved.Delete(msg.Item.ID); err != nil {
				a.errMsg = err.Error()
			}
			a.picker.SetSaved(a.saved.ForTable(a.schema, a.table))
		}
		return a, nil

	case components.ClosePickerMsg:
		a.mode = modeResults
		return a, nil

	case FilterResultMsg:
		a.handleResult(msg)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	if a.mode == modeFilter {
		var cmd tea.Cmd
		a.filterBuilder, cmd = a.filterBuilder.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeFilter:
		var cmd tea.Cmd
		a.filterBuilder, cmd = a.filterBuilder.Update(msg)
		return a, cmd
	case modePicker:
		var cmd tea.Cmd
		a.picker, cmd = a.picker.Update(msg)
		return a, cmd
	case modeHelp:
		if msg.String() == "esc" || key.Matches(msg, a.keys.Help) || key.Matches(msg, a.keys.Quit) {
			a.mode = modeResults
		}
		return a, nil
	}

	if a.errMsg != "" && msg.String() == "esc" {
		a.errMsg = ""
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.mode = modeHelp
	case key.Matches(msg, a.keys.Filter):
		a.mode = modeFilter
	case key.Matches(msg, a.keys.Saved):
		if a.saved == nil {
			a.errMsg = "Saved filters are not available"
			return a, nil
		}
		a.picker.SetSaved(a.saved.ForTable(a.schema, a.table))
		a.mode = modePicker
	case key.Matches(msg, a.keys.History):
		if a.history == nil {
			a.errMsg = "Filter history is disabled"
			return a, nil
		}
		entries, err := a.history.ForTable(a.schema, a.table, 50)
		if err != nil {
			a.errMsg = fmt.Sprintf("Could not read history: %v", err)
			return a, nil
		}
		a.picker.SetHistory(entries)
		a.mode = modePicker
	case key.Matches(msg, a.keys.Reload):
		nodes, err := filter.Parse([]byte(a.activeFilter))
		if err != nil {
			a.errMsg = err.Error()
			return a, nil
		}
		return a, a.runFilter(nodes, a.activeFilter)
	case key.Matches(msg, a.keys.Up):
		a.tableView.MoveSelection(-1)
	case key.Matches(msg, a.keys.Down):
		a.tableView.MoveSelection(1)
	}
	return a, nil
}

// runFilter executes the tree in the background. Without a database the
// result only carries the generated SQL.
func (a *App) runFilter(nodes []*filter.Node, encoded string) tea.Cmd {
	if a.executor == nil || a.table == "" {
		sql, _, err := filter.NewBuilder(a.ops).BuildWhere(nodes)
		return func() tea.Msg {
			return FilterResultMsg{JSON: encoded, Result: models.QueryResult{SQL: sql, Error: err}}
		}
	}

	executor, schema, table, limit := a.executor, a.schema, a.table, a.limit
	return func() tea.Msg {
		result := executor.Execute(context.Background(), schema, table, nodes, limit)
		return FilterResultMsg{JSON: encoded, Result: result}
	}
}

func (a *App) handleResult(msg FilterResultMsg) {
	result := msg.Result
	a.lastSQL = result.SQL

	if a.history != nil && a.executor != nil && a.table != "" {
		entry := history.HistoryEntry{
			Schema:       a.schema,
			Table:        a.table,
			Filter:       msg.JSON,
			Query:        result.SQL,
			Duration:     result.Duration,
			RowsReturned: result.RowsAffected,
			Success:      result.Error == nil,
		}
		if result.Error != nil {
			entry.ErrorMessage = result.Error.Error()
		}
		if err := a.history.Add(entry); err != nil {
			a.logger.Warn("failed to record filter history", "error", err)
		}
	}

	if result.Error != nil {
		a.errMsg = fmt.Sprintf("Filter failed: %v", result.Error)
		return
	}
	a.errMsg = ""

	if a.executor == nil || a.table == "" {
		a.status = "No database configured"
		return
	}
	a.tableView.SetData(result.Columns, result.Rows)
	a.status = fmt.Sprintf("%d rows in %s", result.RowsAffected, result.Duration.Round(time.Millisecond))
}

func (a *App) saveFilter(msg components.SaveFilterMsg) {
	if a.saved == nil {
		a.errMsg = "Saved filters are not available"
		return
	}
	f, err := a.saved.Add(msg.Name, "", a.schema, a.table, msg.JSON, nil)
	if err != nil {
		a.errMsg = fmt.Sprintf("Could not save filter: %v", err)
		return
	}
	a.status = fmt.Sprintf("Saved filter '%s'", f.Name)
}

func (a *App) updateDimensions() {
	w := max(a.width, 40)
	h := max(a.height, 12)

	a.panel.Width = w - 2
	a.panel.Height = h - 4
	a.tableView.Width = a.panel.Width
	a.tableView.Height = a.panel.Height - 1
	a.filterBuilder.Width = min(w-4, 100)
	a.picker.Width = min(w-4, 80)
	a.picker.Height = h - 4
	a.help.Width = w
}

// View implements tea.Model
func (a *App) View() string {
	switch a.mode {
	case modeHelp:
		return uihelp.Render(a.width, a.height, a.theme)
	case modeFilter:
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.filterBuilder.View())
	case modePicker:
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.picker.View())
	}
	return a.renderResults()
}

func (a *App) renderResults() string {
	target := "no table"
	if a.table != "" {
		target = a.schema + "." + a.table
	}

	topBar := lipgloss.NewStyle().
		Width(a.width).
		Background(a.theme.BorderFocused).
		Foreground(a.theme.Foreground).
		Padding(0, 2).
		Render(a.formatStatusBar("multifilter  "+target, truncate(a.activeFilter, max(a.width/2, 10))))

	if a.table == "" || a.executor == nil {
		a.panel.Content = lipgloss.NewStyle().Foreground(a.theme.Metadata).Render(
			"Filter preview only.\n\n" + a.lastSQL)
	} else {
		a.panel.Content = a.tableView.View()
	}

	bottom := a.help.View(a.keys)
	if a.errMsg != "" {
		bottom = lipgloss.NewStyle().Foreground(a.theme.Error).Bold(true).Render(a.errMsg + "  (esc to dismiss)")
	} else if a.status != "" {
		bottom = lipgloss.NewStyle().Foreground(a.theme.Success).Render(a.status) + "  " + bottom
	}

	return lipgloss.JoinVertical(lipgloss.Left, topBar, a.panel.View(), bottom)
}

func (a *App) formatStatusBar(left, right string) string {
	available := max(a.width-4, 0)
	leftLen, rightLen := lipgloss.Width(left), lipgloss.Width(right)

	if leftLen+rightLen >= available {
		return truncate(left+" "+right, available)
	}
	return left + strings.Repeat(" ", available-leftLen-rightLen) + right
}

func truncate(s string, n int) string {
	return runewidth.Truncate(s, n, "...")
}
