package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/klauspost/compress/gzhttp"

	"github.com/rebeliceyang/multifilter/internal/filter"
	"github.com/rebeliceyang/multifilter/internal/models"
	"github.com/rebeliceyang/multifilter/internal/saved"
)

// FilterParam is the query parameter carrying an encoded filter tree
const FilterParam = "multifilter"

const maxBodyBytes = 1 << 20

// Executor runs a filter tree against a table
type Executor interface {
	Execute(ctx context.Context, schema, table string, nodes []*filter.Node, limit int) models.QueryResult
}

// SavedFilters is the read side of the saved filter library
type SavedFilters interface {
	GetAll() []models.SavedFilter
	ForTable(schema, table string) []models.SavedFilter
	Get(id string) (*models.SavedFilter, error)
}

// Config configures the HTTP API
type Config struct {
	Addr string
	// ValidateInput checks incoming filters against the tree schema before
	// decoding; decoding alone skips unrecognized nodes.
	ValidateInput bool
}

// Server exposes filtering over HTTP
type Server struct {
	config   Config
	router   *httprouter.Router
	executor Executor
	saved    SavedFilters
	ops      *filter.Operators
	builder  *filter.Builder
	metrics  *metrics
	logger   *slog.Logger
}

// New creates a server. executor and savedFilters may be nil, in which case
// the routes depending on them answer 503.
func New(cfg Config, executor Executor, savedFilters SavedFilters, ops *filter.Operators, logger *slog.Logger) *Server {
	if ops == nil {
		ops = filter.DefaultOperators()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:   cfg,
		router:   httprouter.New(),
		executor: executor,
		saved:    savedFilters,
		ops:      ops,
		builder:  filter.NewBuilder(ops),
		metrics:  newMetrics(),
		logger:   logger,
	}

	m := s.metrics
	s.router.GET("/healthz", s.handleHealth)
	s.router.Handler(http.MethodGet, "/metrics", m.handler())
	s.router.GET("/api/tables/:schema/:table/rows", m.instrument("rows", s.handleRows))
	s.router.POST("/api/filters/normalize", m.instrument("normalize", s.handleNormalize))
	s.router.GET("/api/filters", m.instrument("saved_list", s.handleListSaved))
	s.router.GET("/api/filters/:id", m.instrument("saved_get", s.handleGetSaved))
	s.router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		s.logger.Error("handler panic", "path", r.URL.Path, "panic", v)
		writeError(w, http.StatusInternalServerError, "internal error")
	}

	return s
}

// Handler returns the router wrapped with response compression
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.router)
}

// Start serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// RowsResponse is the body of a rows request
type RowsResponse struct {
	Filter     json.RawMessage `json:"filter"`
	SQL        string          `json:"sql"`
	Columns    []string        `json:"columns"`
	Rows       [][]string      `json:"rows"`
	Count      int64           `json:"count"`
	DurationMS int64           `json:"duration_ms"`
}

// NormalizeResponse is the body of a normalize request
type NormalizeResponse struct {
	Filter json.RawMessage `json:"filter"`
	Where  string          `json:"where"`
	Args   []any           `json:"args"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	if s.executor == nil {
		writeError(w, http.StatusServiceUnavailable, "no database configured")
		return
	}

	query := r.URL.Query()
	limit := 0
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	g, err := s.decode([]byte(query.Get(FilterParam)))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	encoded, err := g.MarshalJSON()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	schema, table := params.ByName("schema"), params.ByName("table")
	result := s.executor.Execute(r.Context(), schema, table, g.Encode(), limit)
	s.metrics.observeQuery(result.Duration, result.Error)
	if result.Error != nil {
		s.logger.Warn("filtered query failed", "schema", schema, "table", table, "error", result.Error)
		status := http.StatusBadGateway
		if errors.Is(result.Error, filter.ErrEmptyField) || result.SQL == "" {
			status = http.StatusBadRequest
		}
		writeError(w, status, result.Error.Error())
		return
	}

	rows := result.Rows
	if rows == nil {
		rows = [][]string{}
	}
	writeJSON(w, http.StatusOK, RowsResponse{
		Filter:     encoded,
		SQL:        result.SQL,
		Columns:    result.Columns,
		Rows:       rows,
		Count:      result.RowsAffected,
		DurationMS: result.Duration.Milliseconds(),
	})
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read body: %v", err))
		return
	}

	g, err := s.decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	encoded, err := g.MarshalJSON()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	where, args, err := s.builder.BuildWhere(g.Encode())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if args == nil {
		args = []any{}
	}

	writeJSON(w, http.StatusOK, NormalizeResponse{Filter: encoded, Where: where, Args: args})
}

func (s *Server) handleListSaved(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.saved == nil {
		writeError(w, http.StatusServiceUnavailable, "saved filters are not available")
		return
	}

	var filters []models.SavedFilter
	if table := r.URL.Query().Get("table"); table != "" {
		filters = s.saved.ForTable(r.URL.Query().Get("schema"), table)
	} else {
		filters = s.saved.GetAll()
	}
	if filters == nil {
		filters = []models.SavedFilter{}
	}
	writeJSON(w, http.StatusOK, filters)
}

func (s *Server) handleGetSaved(w http.ResponseWriter, _ *http.Request, params httprouter.Params) {
	if s.saved == nil {
		writeError(w, http.StatusServiceUnavailable, "saved filters are not available")
		return
	}

	f, err := s.saved.Get(params.ByName("id"))
	if err != nil {
		if errors.Is(err, saved.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// decode turns an incoming document into a group. An empty document is an
// empty filter.
func (s *Server) decode(data []byte) (*filter.Group, error) {
	g := filter.NewGroup(filter.WithOperators(s.ops), filter.WithLogger(s.logger))
	if len(data) == 0 {
		return g, nil
	}
	if s.config.ValidateInput {
		if err := filter.Validate(data); err != nil {
			return nil, err
		}
	}
	if err := g.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FilterParam, err)
	}
	return g, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
