package sink

import (
	"context"
	"fmt"
	"transcript-scraper/internal/transcript"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
create table if not exists transcript_page (
    url text primary key,
    title text not null,
    position bigint not null
);

create table if not exists transcript_speaker (
    id bigint primary key,
    name text not null
);

create table if not exists transcript_message (
    id bigint primary key,
    page_url text not null references transcript_page(url),
    block integer not null,
    position integer not null,
    speaker_id bigint not null references transcript_speaker(id),
    content text not null,
    has_onebox boolean not null,
    is_edited boolean not null,
    is_deleted boolean not null,
    stars integer not null
);

create index if not exists transcript_message_page on transcript_message(page_url);
create index if not exists transcript_message_speaker on transcript_message(speaker_id);`

const (
	pgUpsertPage = `
insert into transcript_page (url, title, position)
values ($1, $2, (select coalesce(max(position), -1) + 1 from transcript_page))
on conflict (url) do update set title = excluded.title`

	pgUpsertSpeaker = `
insert into transcript_speaker (id, name) values ($1, $2)
on conflict (id) do update set name = excluded.name`

	pgUpsertMessage = `
insert into transcript_message (
    id, page_url, block, position, speaker_id,
    content, has_onebox, is_edited, is_deleted, stars
) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
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

type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Postgres writes every segment as a single pgx batch, a batch runs in an
// implicit transaction so a page is either stored completely or not at all.
type Postgres struct {
	pool   *pgxpool.Pool
	sender batchSender
}

func OpenPostgres(ctx context.Context, dsn string, appendExisting bool) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	_, err = pool.Exec(ctx, postgresSchema)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if !appendExisting {
		_, err = pool.Exec(ctx, "truncate transcript_message, transcript_speaker, transcript_page")
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("truncate: %w", err)
		}
	}

	p := newPostgres(pool)
	p.pool = pool
	return p, nil
}

func newPostgres(sender batchSender) *Postgres {
	return &Postgres{sender: sender}
}

func queueSegment(batch *pgx.Batch, segment transcript.Segment) {
	batch.Queue(pgUpsertPage, segment.URL, segment.Title)
	for blockIdx, block := range segment.Blocks {
		batch.Queue(pgUpsertSpeaker, block.Speaker.ID, block.Speaker.Name)
		for msgIdx, msg := range block.Messages {
			batch.Queue(
				pgUpsertMessage,
				msg.ID, segment.URL, blockIdx, msgIdx, block.Speaker.ID,
				msg.Content, msg.HasOnebox, msg.IsEdited, msg.IsDeleted, msg.Stars,
			)
		}
	}
}

func (p *Postgres) Write(ctx context.Context, segment transcript.Segment) error {
	batch := &pgx.Batch{}
	queueSegment(batch, segment)

	results := p.sender.SendBatch(ctx, batch)
	for range batch.QueuedQueries {
		_, err := results.Exec()
		if err != nil {
			results.Close()
			return fmt.Errorf("write segment %s: %w", segment.URL, err)
		}
	}
	return results.Close()
}

func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
