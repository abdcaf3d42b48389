package saved

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/multifilter/internal/export"
	"github.com/rebeliceyang/multifilter/internal/filter"
	"github.com/rebeliceyang/multifilter/internal/models"
)

var (
	ErrEmptyName = errors.New("filter name cannot be empty")
	ErrNotFound  = errors.New("saved filter not found")
)

// Manager manages the saved filter library
type Manager struct {
	path    string
	filters []models.SavedFilter
	now     func() time.Time
}

// NewManager creates a manager backed by the YAML file at path, loading it
// when it exists
func NewManager(path string) (*Manager, error) {
	m := &Manager{
		path:    path,
		filters: []models.SavedFilter{},
		now:     time.Now,
	}

	if _, err := os.Stat(path); err == nil {
		if err := m.Load(); err != nil {
			return nil, fmt.Errorf("failed to load saved filters: %w", err)
		}
	}

	return m, nil
}

// Path returns the backing file
func (m *Manager) Path() string {
	return m.path
}

// Load loads saved filters from the YAML file
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("failed to read saved filters file: %w", err)
	}

	var filters []models.SavedFilter
	if err := yaml.Unmarshal(data, &filters); err != nil {
		return fmt.Errorf("failed to parse saved filters: %w", err)
	}
	if filters == nil {
		filters = []models.SavedFilter{}
	}
	m.filters = filters

	return nil
}

// Save writes saved filters to the YAML file
func (m *Manager) Save() error {
	return m.write(m.filters)
}

// commit writes next and makes it the current list only once the file is
// written
func (m *Manager) commit(next []models.SavedFilter) error {
	if err := m.write(next); err != nil {
		return err
	}
	m.filters = next
	return nil
}

// mutable returns a copy of the current list for commit
func (m *Manager) mutable() []models.SavedFilter {
	return slices.Clone(m.filters)
}

func (m *Manager) write(filters []models.SavedFilter) error {
	data, err := yaml.Marshal(filters)
	if err != nil {
		return fmt.Errorf("failed to marshal saved filters: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write saved filters file: %w", err)
	}

	return nil
}

// normalize validates a filter document and returns its canonical encoding
func normalize(doc string) (string, error) {
	if err := filter.Validate([]byte(doc)); err != nil {
		return "", err
	}
	g := filter.NewGroup()
	if err := g.UnmarshalJSON([]byte(doc)); err != nil {
		return "", err
	}
	data, err := g.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Add stores a new named filter. The document is validated and stored in
// its canonical encoding.
func (m *Manager) Add(name, description, schema, table, doc string, tags []string) (*models.SavedFilter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	// Check for duplicate names (case-insensitive)
	for _, f := range m.filters {
		if strings.EqualFold(f.Name, name) {
			return nil, fmt.Errorf("a saved filter named '%s' already exists (names are case-insensitive)", name)
		}
	}

	canonical, err := normalize(doc)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}

	now := m.now()
	saved := models.SavedFilter{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Schema:      schema,
		Table:       table,
		Filter:      canonical,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := m.commit(append(m.mutable(), saved)); err != nil {
		return nil, fmt.Errorf("failed to save filter: %w", err)
	}

	return &saved, nil
}

// Update replaces the name, description, document and tags of a saved filter
func (m *Manager) Update(id, name, description, doc string, tags []string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	for _, f := range m.filters {
		if f.ID != id && strings.EqualFold(f.Name, name) {
			return fmt.Errorf("a saved filter named '%s' already exists (names are case-insensitive)", name)
		}
	}

	canonical, err := normalize(doc)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := m.mutable()
	next[i].Name = name
	next[i].Description = strings.TrimSpace(description)
	next[i].Filter = canonical
	next[i].Tags = tags
	next[i].UpdatedAt = m.now()

	if err := m.commit(next); err != nil {
		return fmt.Errorf("failed to save filter: %w", err)
	}
	return nil
}

// Delete deletes a saved filter by ID
func (m *Manager) Delete(id string) error {
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := m.commit(slices.Delete(m.mutable(), i, i+1)); err != nil {
		return fmt.Errorf("failed to save filters after deletion: %w", err)
	}
	return nil
}

// Get returns a saved filter by ID
func (m *Manager) Get(id string) (*models.SavedFilter, error) {
	i := m.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	f := m.filters[i]
	return &f, nil
}

// GetByName returns a saved filter by case-insensitive name
func (m *Manager) GetByName(name string) (*models.SavedFilter, error) {
	for _, f := range m.filters {
		if strings.EqualFold(f.Name, strings.TrimSpace(name)) {
			return &f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// GetAll returns all saved filters
func (m *Manager) GetAll() []models.SavedFilter {
	out := make([]models.SavedFilter, len(m.filters))
	copy(out, m.filters)
	return out
}

// ForTable returns the filters saved for schema.table plus those not bound
// to any table
func (m *Manager) ForTable(schema, table string) []models.SavedFilter {
	var results []models.SavedFilter
	for _, f := range m.filters {
		if f.Table == "" || (f.Table == table && (f.Schema == "" || f.Schema == schema)) {
			results = append(results, f)
		}
	}
	return results
}

// Search searches saved filters by name, description, or tags
func (m *Manager) Search(query string) []models.SavedFilter {
	if query == "" {
		return m.GetAll()
	}

	query = strings.ToLower(query)
	var results []models.SavedFilter

	for _, f := range m.filters {
		if strings.Contains(strings.ToLower(f.Name), query) ||
			strings.Contains(strings.ToLower(f.Description), query) {
			results = append(results, f)
			continue
		}

		for _, tag := range f.Tags {
			if strings.Contains(strings.ToLower(tag), query) {
				results = append(results, f)
				break
			}
		}
	}

	return results
}

// Restore decodes a saved filter into a fresh group using ops
func (m *Manager) Restore(id string, ops *filter.Operators) (*filter.Group, error) {
	f, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	g := filter.NewGroup(filter.WithOperators(ops))
	if err := g.UnmarshalJSON([]byte(f.Filter)); err != nil {
		return nil, fmt.Errorf("failed to decode saved filter '%s': %w", f.Name, err)
	}
	return g, nil
}

// RecordUsage updates usage statistics for a saved filter
func (m *Manager) RecordUsage(id string) error {
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := m.mutable()
	next[i].UsageCount++
	next[i].LastUsed = m.now()
	if err := m.commit(next); err != nil {
		return fmt.Errorf("failed to save usage statistics: %w", err)
	}
	return nil
}

// GetMostUsed returns the most frequently used filters
func (m *Manager) GetMostUsed(limit int) []models.SavedFilter {
	sorted := m.GetAll()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UsageCount > sorted[j].UsageCount
	})

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted
}

// Import reads a JSON export and adds every filter whose name is not taken.
// It returns the number of filters added.
func (m *Manager) Import(path string) (int, error) {
	incoming, err := export.ImportJSON(path)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, f := range incoming {
		if _, err := m.GetByName(f.Name); err == nil {
			continue
		}
		if _, err := m.Add(f.Name, f.Description, f.Schema, f.Table, f.Filter, f.Tags); err != nil {
			return added, fmt.Errorf("failed to import '%s': %w", f.Name, err)
		}
		added++
	}
	return added, nil
}

// ExportToCSV exports all saved filters to a CSV file
func (m *Manager) ExportToCSV(customPath ...string) (string, error) {
	path, err := m.exportPath("filters.csv", customPath)
	if err != nil {
		return "", err
	}

	if err := export.ExportToCSV(m.filters, path); err != nil {
		return "", fmt.Errorf("failed to export filters to CSV: %w", err)
	}
	return path, nil
}

// ExportToJSON exports all saved filters to a JSON file
func (m *Manager) ExportToJSON(customPath ...string) (string, error) {
	path, err := m.exportPath("filters.json", customPath)
	if err != nil {
		return "", err
	}

	if err := export.ExportToJSON(m.filters, path); err != nil {
		return "", fmt.Errorf("failed to export filters to JSON: %w", err)
	}
	return path, nil
}

func (m *Manager) exportPath(name string, customPath []string) (string, error) {
	if len(m.filters) == 0 {
		return "", fmt.Errorf("no saved filters to export")
	}
	if len(customPath) > 0 && customPath[0] != "" {
		return customPath[0], nil
	}
	return filepath.Join(filepath.Dir(m.path), name), nil
}

func (m *Manager) index(id string) int {
	for i, f := range m.filters {
		if f.ID == id {
			return i
		}
	}
	return -1
}
