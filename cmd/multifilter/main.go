package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rebeliceyang/multifilter/internal/app"
	"github.com/rebeliceyang/multifilter/internal/config"
	"github.com/rebeliceyang/multifilter/internal/db/connection"
	"github.com/rebeliceyang/multifilter/internal/db/metadata"
	"github.com/rebeliceyang/multifilter/internal/db/query"
	"github.com/rebeliceyang/multifilter/internal/filter"
	"github.com/rebeliceyang/multifilter/internal/history"
	"github.com/rebeliceyang/multifilter/internal/saved"
)

// cli carries state shared by every command
type cli struct {
	configPath  string
	databaseURL string
	schema      string
	table       string

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "multifilter",
		Short:         "Build nested AND/OR filters and run them against PostgreSQL tables",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTUI(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/multifilter/config.yaml)")
	flags.StringVar(&c.databaseURL, "database-url", "", "PostgreSQL connection URL")
	flags.StringVar(&c.schema, "schema", "", "schema of the filtered table")
	flags.StringVar(&c.table, "table", "", "filtered table")

	root.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Open the interactive filter window (default)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.runTUI(cmd.Context())
			},
		},
		newEncodeCmd(c),
		newSQLCmd(c),
		newServeCmd(c),
		newSavedCmd(c),
	)

	return root
}

// load reads configuration and applies flag overrides
func (c *cli) load(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		if c.configPath != "" {
			return err
		}
		log.Printf("Warning: Could not load config: %v (using defaults)\n", err)
		cfg = config.GetDefaults()
	}

	if c.databaseURL != "" {
		cfg.Database.URL = c.databaseURL
	}
	if c.schema != "" {
		cfg.Database.Schema = c.schema
	}
	if c.table != "" {
		cfg.Database.Table = c.table
	}

	c.cfg = cfg
	c.logger = cfg.NewLogger(cmd.ErrOrStderr())
	return nil
}

func (c *cli) operators() *filter.Operators {
	return filter.NewOperators(c.cfg.Filter.ConditionMap, c.cfg.Filter.Operators)
}

// openPool connects when a database URL is configured; it returns nil
// without one
func (c *cli) openPool(ctx context.Context) (*connection.Pool, error) {
	if c.cfg.Database.URL == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return connection.NewPool(ctx, c.cfg.Database.URL, connection.Options{MaxConns: c.cfg.Database.MaxConns})
}

func (c *cli) newExecutor(pool *connection.Pool) *query.Executor {
	return query.NewExecutor(pool, filter.NewBuilder(c.operators()),
		query.WithLimit(c.cfg.Database.DefaultLimit),
		query.WithTimeout(time.Duration(c.cfg.Database.QueryTimeout)*time.Millisecond),
		query.WithLogger(c.logger),
	)
}

func (c *cli) openSaved() (*saved.Manager, error) {
	path, err := c.cfg.SavedPath()
	if err != nil {
		return nil, err
	}
	return saved.NewManager(path)
}

func (c *cli) runTUI(ctx context.Context) error {
	// keep log records off the alternate screen
	c.logger = c.cfg.NewLogger(io.Discard)

	opts := app.Options{Config: c.cfg, Logger: c.logger}

	pool, err := c.openPool(ctx)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
		opts.Executor = c.newExecutor(pool)

		if c.cfg.Database.Table != "" {
			fields, err := metadata.ColumnNames(ctx, pool, c.cfg.Database.Schema, c.cfg.Database.Table)
			if err != nil {
				return err
			}
			opts.Fields = fields
		}
	}

	if c.cfg.History.Enabled {
		path, err := c.cfg.HistoryPath()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
		store, err := history.NewStore(path, c.cfg.History.MaxEntries)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer func() { _ = store.Close() }()
		opts.History = store
	}

	mgr, err := c.openSaved()
	if err != nil {
		return err
	}
	opts.Saved = mgr

	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if c.cfg.UI.MouseEnabled {
		progOpts = append(progOpts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(app.New(opts), progOpts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
