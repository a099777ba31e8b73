package ports

import (
	"context"
	"time"

	"solaintel/internal/domain"
)

// ArticleSource pulls fresh articles from upstream feeds and pages.
type ArticleSource interface {
	Fetch(ctx context.Context, now time.Time) ([]domain.Article, error)
}

// DigestRepository persists articles and digests for history and reruns.
type DigestRepository interface {
	SeenURLs(ctx context.Context, urls []string) (map[string]bool, error)
	SaveArticle(ctx context.Context, article domain.Article) error
	SaveDigest(ctx context.Context, digest domain.Digest, articleURLs []string) (int64, error)
	UpdateDigestStatus(ctx context.Context, digestID int64, status domain.SentStatus) error
}

// DigestWriter produces digest prose from the selected articles.
// Implementations may call an external model; callers fall back to the
// extractive renderer on any error.
type DigestWriter interface {
	WriteDigest(ctx context.Context, articles []domain.Article, period domain.Period) (string, error)
}

// Mailer delivers an assembled email payload and returns the provider
// message identifier.
type Mailer interface {
	Send(ctx context.Context, payload domain.EmailPayload) (string, error)
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
