package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"solaintel/internal/domain"
	"solaintel/internal/ports"
)

// schema mirrors the agent's history model: every stored article keyed
// by URL, every digest run with its delivery status, and a link table
// recording which articles each digest carried.
const schema = `
CREATE TABLE IF NOT EXISTS articles (
    url             TEXT PRIMARY KEY,
    title           TEXT NOT NULL,
    publisher       TEXT NOT NULL DEFAULT '',
    published_at    TIMESTAMPTZ,
    summary         TEXT NOT NULL DEFAULT '',
    relevance_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS digests (
    id           BIGSERIAL PRIMARY KEY,
    run_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    period       TEXT NOT NULL CHECK (period IN ('daily', 'weekly')),
    content_text TEXT NOT NULL,
    content_html TEXT NOT NULL DEFAULT '',
    sent_status  TEXT NOT NULL DEFAULT 'pending'
);

CREATE TABLE IF NOT EXISTS article_digest_map (
    digest_id   BIGINT NOT NULL REFERENCES digests (id),
    article_url TEXT NOT NULL REFERENCES articles (url),
    PRIMARY KEY (digest_id, article_url)
);`

// PostgresRepository persists articles and digests into Postgres.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.DigestRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates the tables on first run.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SeenURLs returns a map with the URLs that already exist in storage.
func (r *PostgresRepository) SeenURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	if r.db == nil || len(urls) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := r.builder.
		Select("url").
		From("articles").
		Where(sq.Eq{"url": urls}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build seen query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query seen urls: %w", err)
	}
	defer rows.Close()

	result := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		result[url] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// SaveArticle upserts one article snapshot keyed by URL.
func (r *PostgresRepository) SaveArticle(ctx context.Context, article domain.Article) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert("articles").
		Columns("url", "title", "publisher", "published_at", "summary", "relevance_score").
		Values(article.URL, article.Title, article.Publisher, nullableTime(article), article.Summary, article.RelevanceScore).
		Suffix(`ON CONFLICT (url) DO UPDATE
            SET relevance_score = EXCLUDED.relevance_score,
                summary = EXCLUDED.summary`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build article insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert article: %w", err)
	}

	return nil
}

// SaveDigest stores the rendered digest and links its articles,
// returning the new digest identifier.
func (r *PostgresRepository) SaveDigest(ctx context.Context, digest domain.Digest, articleURLs []string) (int64, error) {
	if r.db == nil {
		return 0, nil
	}

	var id int64
	err := r.builder.
		Insert("digests").
		Columns("run_at", "period", "content_text", "content_html", "sent_status").
		Values(digest.RunAt, string(digest.Period), digest.Text, digest.HTML, string(digest.SentStatus)).
		Suffix("RETURNING id").
		RunWith(r.db).
		QueryRowContext(ctx).
		Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert digest: %w", err)
	}

	for _, url := range articleURLs {
		query, args, err := r.builder.
			Insert("article_digest_map").
			Columns("digest_id", "article_url").
			Values(id, url).
			Suffix("ON CONFLICT DO NOTHING").
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("build link insert: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("link article %s: %w", url, err)
		}
	}

	return id, nil
}

// UpdateDigestStatus records the delivery outcome for a stored digest.
func (r *PostgresRepository) UpdateDigestStatus(ctx context.Context, digestID int64, status domain.SentStatus) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Update("digests").
		Set("sent_status", string(status)).
		Where(sq.Eq{"id": digestID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build status update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update digest status: %w", err)
	}

	return nil
}

func nullableTime(article domain.Article) interface{} {
	if article.PublishedAt.IsZero() {
		return nil
	}
	return article.PublishedAt
}
