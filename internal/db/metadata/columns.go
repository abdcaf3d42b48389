package metadata

import (
	"context"
	"fmt"

	"github.com/rebeliceyang/multifilter/internal/models"
)

// Querier is the subset of the connection pool used for catalog lookups
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) ([]map[string]any, error)
}

// GetTableColumns retrieves column metadata for a table
func GetTableColumns(ctx context.Context, db Querier, schema, table string) ([]models.ColumnInfo, error) {
	query := `
		SELECT
			column_name,
			data_type,
			udt_name,
			CASE WHEN data_type = 'ARRAY' THEN true ELSE false END as is_array
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := db.Query(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	columns := make([]models.ColumnInfo, 0, len(rows))
	for _, row := range rows {
		var col models.ColumnInfo
		col.Name = toString(row["column_name"])
		col.DataType = toString(row["data_type"])

		if isArray, ok := row["is_array"].(bool); ok {
			col.IsArray = isArray
		}
		col.IsJsonb = toString(row["udt_name"]) == "jsonb"

		columns = append(columns, col)
	}

	return columns, nil
}

// ColumnNames returns the column names of a table in ordinal order, ready
// to be offered as filter fields
func ColumnNames(ctx context.Context, db Querier, schema, table string) ([]string, error) {
	cols, err := GetTableColumns(ctx, db, schema, table)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names, nil
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
