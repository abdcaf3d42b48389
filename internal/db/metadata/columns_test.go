package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuerier struct {
	rows []map[string]any
	err  error
	args []any
}

func (f *fakeQuerier) Query(_ context.Context, _ string, args ...any) ([]map[string]any, error) {
	f.args = args
	return f.rows, f.err
}

func TestGetTableColumns(t *testing.T) {
	db := &fakeQuerier{rows: []map[string]any{
		{"column_name": "id", "data_type": "integer", "udt_name": "int4", "is_array": false},
		{"column_name": "tags", "data_type": "ARRAY", "udt_name": "_text", "is_array": true},
		{"column_name": "doc", "data_type": "jsonb", "udt_name": "jsonb", "is_array": false},
	}}

	cols, err := GetTableColumns(context.Background(), db, "public", "items")
	require.NoError(t, err)
	require.Len(t, cols, 3)

	assert.Equal(t, []any{"public", "items"}, db.args)
	assert.Equal(t, "integer", cols[0].DataType)
	assert.True(t, cols[1].IsArray)
	assert.True(t, cols[2].IsJsonb)
	assert.False(t, cols[0].IsJsonb)
}

func TestColumnNames(t *testing.T) {
	db := &fakeQuerier{rows: []map[string]any{
		{"column_name": "id"},
		{"column_name": "name"},
	}}

	names, err := ColumnNames(context.Background(), db, "public", "people")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, names)

	_, err = ColumnNames(context.Background(), &fakeQuerier{err: errors.New("down")}, "public", "people")
	assert.ErrorContains(t, err, "failed to get columns")
}
