package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rebeliceyang/multifilter/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

// CSVHeader is the first record of every CSV export
var CSVHeader = []string{"Name", "Description", "Schema", "Table", "Filter", "Tags", "Created", "Updated", "Last Used", "Usage Count"}

// ExportToCSV exports saved filters to a CSV file
func ExportToCSV(filters []models.SavedFilter, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)

	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, f := range filters {
		lastUsed := ""
		if !f.LastUsed.IsZero() {
			lastUsed = f.LastUsed.Format(timestampLayout)
		}

		row := []string{
			f.Name,
			f.Description,
			f.Schema,
			f.Table,
			f.Filter,
			strings.Join(f.Tags, ", "),
			f.CreatedAt.Format(timestampLayout),
			f.UpdatedAt.Format(timestampLayout),
			lastUsed,
			strconv.Itoa(f.UsageCount),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportToJSON exports saved filters to a pretty-printed JSON file
func ExportToJSON(filters []models.SavedFilter, path string) error {
	if filters == nil {
		filters = []models.SavedFilter{}
	}
	data, err := json.MarshalIndent(filters, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal filters to JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	return nil
}

// ImportJSON reads saved filters previously written by ExportToJSON
func ImportJSON(path string) ([]models.SavedFilter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}

	var filters []models.SavedFilter
	if err := json.Unmarshal(data, &filters); err != nil {
		return nil, fmt.Errorf("failed to parse JSON file: %w", err)
	}
	return filters, nil
}
