package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlightSQL(t *testing.T) {
	sql := `SELECT * FROM "public"."people" WHERE "age" > $1`
	out := highlightSQL(sql)

	assert.NotEqual(t, sql, out)
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "SELECT")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghijkl", 7))
}
