package components

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/mattn/go-runewidth"
)

var (
	sqlLexer     = chroma.Coalesce(sqlLexerOrFallback())
	sqlStyle     = styleOrFallback("monokai")
	sqlFormatter = formatterOrFallback("terminal256")
)

func sqlLexerOrFallback() chroma.Lexer {
	for _, name := range []string{"postgresql", "sql"} {
		if l := lexers.Get(name); l != nil {
			return l
		}
	}
	return lexers.Fallback
}

func styleOrFallback(name string) *chroma.Style {
	if s := styles.Get(name); s != nil {
		return s
	}
	return styles.Fallback
}

func formatterOrFallback(name string) chroma.Formatter {
	if f := formatters.Get(name); f != nil {
		return f
	}
	return formatters.Fallback
}

// highlightSQL colors a generated statement for the terminal. The input is
// returned unchanged if highlighting fails.
func highlightSQL(sql string) string {
	iterator, err := sqlLexer.Tokenise(nil, sql)
	if err != nil {
		return sql
	}

	var buf bytes.Buffer
	if err := sqlFormatter.Format(&buf, sqlStyle, iterator); err != nil {
		return sql
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// truncate shortens s to at most n terminal cells
func truncate(s string, n int) string {
	return runewidth.Truncate(s, n, "...")
}
