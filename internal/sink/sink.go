// Package sink persists transcript segments as they are scraped.
package sink

import (
	"context"
	"path/filepath"
	"strings"
	"transcript-scraper/internal/transcript"
)

// Sink is a transcript.Sink that holds on to a resource.
type Sink interface {
	transcript.Sink
	Close() error
}

type Options struct {
	// Output is a file path or a database url, it selects the sink:
	//   - postgres://... or postgresql://... for Postgres
	//   - libsql://..., sqlite:<path>, or a path ending in .db/.sqlite/.sqlite3 for SQLite
	//   - anything else is a JSON file
	Output string
	// Append keeps whatever the output already contains, otherwise it is
	// cleared when opened.
	Append bool
	// Pretty indents JSON output.
	Pretty bool
}

type Kind int

const (
	KindJSON Kind = iota
	KindSQLite
	KindPostgres
)

func (k Kind) String() string {
	switch k {
	case KindSQLite:
		return "sqlite"
	case KindPostgres:
		return "postgres"
	default:
		return "json"
	}
}

func KindOf(output string) Kind {
	switch {
	case strings.HasPrefix(output, "postgres://"), strings.HasPrefix(output, "postgresql://"):
		return KindPostgres
	case strings.HasPrefix(output, "libsql://"), strings.HasPrefix(output, "sqlite:"):
		return KindSQLite
	}
	switch strings.ToLower(filepath.Ext(output)) {
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	}
	return KindJSON
}

func Open(ctx context.Context, opts Options) (Sink, error) {
	switch KindOf(opts.Output) {
	case KindPostgres:
		return OpenPostgres(ctx, opts.Output, opts.Append)
	case KindSQLite:
		return OpenSQLite(ctx, opts.Output, opts.Append)
	default:
		return OpenJSONFile(opts.Output, opts.Append, opts.Pretty)
	}
}
