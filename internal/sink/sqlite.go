package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"transcript-scraper/internal/transcript"

	_ "embed"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

const (
	upsertPage = `
insert into transcript_page (url, title, position)
values (?, ?, (select coalesce(max(position), -1) + 1 from transcript_page))
on conflict (url) do update set title = excluded.title`

	upsertSpeaker = `
insert into transcript_speaker (id, name) values (?, ?)
on conflict (id) do update set name = excluded.name`

	upsertMessage = `
insert into transcript_message (
    id, page_url, block, position, speaker_id,
    content, has_onebox, is_edited, is_deleted, stars
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
on conflict (id) do update set
    page_url = excluded.page_url,
    block = excluded.block,
    position = excluded.position,
    speaker_id = excluded.speaker_id,
    content = excluded.content,
    has_onebox = excluded.has_onebox,
    is_edited = excluded.is_edited,
    is_deleted = excluded.is_deleted,
    stars = excluded.stars`
)

// SQLite writes segments into a local sqlite file or a remote libsql
// database. Rewriting a page replaces its rows, so scraping the same range
// twice is harmless.
type SQLite struct {
	db *sql.DB
}

// openSQLiteDB picks the driver for a dsn: libsql:// urls go to libsql, the
// rest is treated as a local file (an optional sqlite: prefix is dropped).
func openSQLiteDB(dsn string) (*sql.DB, error) {
	if strings.HasPrefix(dsn, "libsql://") {
		return sql.Open("libsql", dsn)
	}
	path := strings.TrimPrefix(dsn, "sqlite:")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps :memory: databases from splitting
	db.SetMaxOpenConns(1)
	return db, nil
}

func OpenSQLite(ctx context.Context, dsn string, appendExisting bool) (*SQLite, error) {
	db, err := openSQLiteDB(dsn)
	if err != nil {
		return nil, err
	}
	s, err := NewSQLite(ctx, db, appendExisting)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite creates the schema on db and clears it unless appendExisting.
func NewSQLite(ctx context.Context, db *sql.DB, appendExisting bool) (*SQLite, error) {
	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if !appendExisting {
		for _, table := range []string{"transcript_message", "transcript_speaker", "transcript_page"} {
			_, err = db.ExecContext(ctx, "delete from "+table)
			if err != nil {
				return nil, fmt.Errorf("clear %s: %w", table, err)
			}
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Write(ctx context.Context, segment transcript.Segment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, upsertPage, segment.URL, segment.Title)
	if err != nil {
		return fmt.Errorf("upsert page: %w", err)
	}

	for blockIdx, block := range segment.Blocks {
		_, err = tx.ExecContext(ctx, upsertSpeaker, block.Speaker.ID, block.Speaker.Name)
		if err != nil {
			return fmt.Errorf("upsert speaker %d: %w", block.Speaker.ID, err)
		}
		for msgIdx, msg := range block.Messages {
			_, err = tx.ExecContext(
				ctx, upsertMessage,
				msg.ID, segment.URL, blockIdx, msgIdx, block.Speaker.ID,
				msg.Content, msg.HasOnebox, msg.IsEdited, msg.IsDeleted, msg.Stars,
			)
			if err != nil {
				return fmt.Errorf("upsert message %d: %w", msg.ID, err)
			}
		}
	}

	return tx.Commit()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
