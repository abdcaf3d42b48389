package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rebeliceyang/multifilter/internal/filter"
	"github.com/rebeliceyang/multifilter/internal/models"
)

// Runner executes SQL and returns text rows. *connection.Pool satisfies it.
type Runner interface {
	QueryStrings(ctx context.Context, sql string, args ...any) ([]string, [][]string, error)
}

// Executor runs filter trees against a table
type Executor struct {
	db      Runner
	builder *filter.Builder
	limit   int
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures an Executor
type Option func(*Executor)

// WithLimit sets the row limit applied when the caller does not pass one
func WithLimit(limit int) Option {
	return func(e *Executor) { e.limit = limit }
}

// WithTimeout bounds every query
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) { e.timeout = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// NewExecutor creates an executor building SQL with the given builder
func NewExecutor(db Runner, builder *filter.Builder, opts ...Option) *Executor {
	e := &Executor{
		db:      db,
		builder: builder,
		limit:   100,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs a filtered SELECT against schema.table. A limit of zero or
// less falls back to the configured default. Failures are reported in
// QueryResult.Error alongside the generated SQL.
func (e *Executor) Execute(ctx context.Context, schema, table string, nodes []*filter.Node, limit int) models.QueryResult {
	start := time.Now()

	if limit <= 0 {
		limit = e.limit
	}

	sql, args, err := e.builder.BuildQuery(schema, table, nodes, limit)
	if err != nil {
		return models.QueryResult{
			Error:    fmt.Errorf("failed to build query: %w", err),
			Duration: time.Since(start),
		}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	e.logger.Debug("executing filter query", "sql", sql, "args", len(args))

	columns, rows, err := e.db.QueryStrings(ctx, sql, args...)
	if err != nil {
		e.logger.Warn("filter query failed", "table", table, "error", err)
		return models.QueryResult{
			SQL:      sql,
			Args:     args,
			Error:    err,
			Duration: time.Since(start),
		}
	}

	return models.QueryResult{
		Columns:      columns,
		Rows:         rows,
		RowsAffected: int64(len(rows)),
		Duration:     time.Since(start),
		SQL:          sql,
		Args:         args,
	}
}

// ExecuteGroup encodes g and runs it
func (e *Executor) ExecuteGroup(ctx context.Context, schema, table string, g *filter.Group, limit int) models.QueryResult {
	return e.Execute(ctx, schema, table, g.Encode(), limit)
}
