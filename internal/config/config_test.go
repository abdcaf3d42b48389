package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
filter:
  fields: [name, age]
  condition_map:
    equals: "="
database:
  table: people
  default_limit: 25
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age"}, cfg.Filter.Fields)
	assert.Equal(t, "=", cfg.Filter.ConditionMap["equals"])
	assert.Equal(t, "people", cfg.Database.Table)
	assert.Equal(t, 25, cfg.Database.DefaultLimit)
	assert.Equal(t, "public", cfg.Database.Schema)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
	assert.Len(t, cfg.Filter.Operators, 5)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfig_Paths(t *testing.T) {
	cfg := GetDefaults()
	cfg.History.Path = "/tmp/h.db"

	path, err := cfg.HistoryPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/h.db", path)

	cfg.Log.Level = "bogus"
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
}
