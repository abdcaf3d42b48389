package models

import "time"

// FilterOperator is a symbolic comparison operator as stored on the wire
type FilterOperator string

const (
	OpEqual          FilterOperator = "="
	OpNotEqual       FilterOperator = "!="
	OpGreaterThan    FilterOperator = ">"
	OpGreaterOrEqual FilterOperator = ">="
	OpLessThan       FilterOperator = "<"
	OpLessOrEqual    FilterOperator = "<="
	OpLike           FilterOperator = "LIKE"
	OpILike          FilterOperator = "ILIKE"
	OpIsNull         FilterOperator = "IS NULL"
	OpIsNotNull      FilterOperator = "IS NOT NULL"
)

// Human-readable operator labels offered by the condition picker.
// Only the first two have a symbolic form in the default condition map;
// the rest are stored verbatim.
const (
	LabelEqual       = "is equal to"
	LabelNotEqual    = "is not equal to"
	LabelGreaterThan = "is greater than"
	LabelLessThan    = "is less than"
	LabelContains    = "contains"
)

// SavedFilter is a named filter tree kept in the saved filter library
type SavedFilter struct {
	ID          string    `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Schema      string    `yaml:"schema,omitempty" json:"schema,omitempty"`
	Table       string    `yaml:"table,omitempty" json:"table,omitempty"`
	Filter      string    `yaml:"filter" json:"filter"` // encoded tree JSON
	Tags        []string  `yaml:"tags,omitempty" json:"tags,omitempty"`
	CreatedAt   time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time `yaml:"updated_at" json:"updated_at"`
	LastUsed    time.Time `yaml:"last_used,omitempty" json:"last_used,omitempty"`
	UsageCount  int       `yaml:"usage_count" json:"usage_count"`
}

// QueryResult holds the rows returned for a filtered table scan
type QueryResult struct {
	Columns      []string      `json:"columns"`
	Rows         [][]string    `json:"rows"`
	RowsAffected int64         `json:"rows_affected"`
	Duration     time.Duration `json:"duration"`
	SQL          string        `json:"sql"`
	Args         []interface{} `json:"args,omitempty"`
	Error        error         `json:"-"`
}

// ColumnInfo describes a filterable column
type ColumnInfo struct {
	Name     string
	DataType string
	IsArray  bool
	IsJsonb  bool
}
