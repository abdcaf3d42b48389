package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/multifilter/internal/models"
)

func testFilters() []models.SavedFilter {
	return []models.SavedFilter{
		{
			ID:          "test-1",
			Name:        "Active adults",
			Description: "People with commas, quotes \"and\" special chars",
			Schema:      "public",
			Table:       "people",
			Filter:      `[{"-or":[[{"age":{">":"18"}}],{"status":{"=":"active"}}]}]`,
			Tags:        []string{"people", "audit"},
			CreatedAt:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC),
			LastUsed:    time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC),
			UsageCount:  5,
		},
		{
			ID:        "test-2",
			Name:      "Big orders",
			Table:     "orders",
			Filter:    `[{"total":{">":"1000"}}]`,
			Tags:      []string{"orders"},
			CreatedAt: time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2024, 1, 2, 13, 0, 0, 0, time.UTC),
		},
	}
}

func TestExportToCSV(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "test.csv")

	require.NoError(t, ExportToCSV(testFilters(), csvPath))

	info, err := os.Stat(csvPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm()&0644)

	file, err := os.Open(csvPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 rows

	assert.Equal(t, CSVHeader, records[0])

	row1 := records[1]
	assert.Equal(t, "Active adults", row1[0])
	assert.Equal(t, `[{"-or":[[{"age":{">":"18"}}],{"status":{"=":"active"}}]}]`, row1[4])
	assert.Equal(t, "people, audit", row1[5])
	assert.Equal(t, "2024-01-03 12:00:00", row1[8])
	assert.Equal(t, "5", row1[9])

	assert.Empty(t, records[2][8], "never used filters have no last used timestamp")
}

func TestExportToJSON_RoundTrip(t *testing.T) {
	jsonPath := filepath.Join(t.TempDir(), "test.json")

	require.NoError(t, ExportToJSON(testFilters(), jsonPath))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "\n  "), "JSON should be indented")

	parsed, err := ImportJSON(jsonPath)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, "Active adults", parsed[0].Name)
	assert.Equal(t, testFilters()[0].Filter, parsed[0].Filter)
	assert.True(t, testFilters()[0].CreatedAt.Equal(parsed[0].CreatedAt))
}

func TestExportEmpty(t *testing.T) {
	tmpDir := t.TempDir()

	csvPath := filepath.Join(tmpDir, "empty.csv")
	require.NoError(t, ExportToCSV(nil, csvPath))

	file, err := os.Open(csvPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1) // only header

	jsonPath := filepath.Join(tmpDir, "empty.json")
	require.NoError(t, ExportToJSON(nil, jsonPath))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestImportJSON_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ImportJSON(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = ImportJSON(bad)
	assert.ErrorContains(t, err, "failed to parse JSON file")
}
