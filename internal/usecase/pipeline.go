package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"solaintel/internal/dedupe"
	"solaintel/internal/digest"
	"solaintel/internal/domain"
	"solaintel/internal/ports"
	"solaintel/internal/relevance"
)

// Settings carries the thresholds and delivery targets for one pipeline,
// resolved from configuration by the caller.
type Settings struct {
	Period            domain.Period
	MaxArticles       int
	MaxAgeDays        int
	MinRelevanceScore float64
	Recipients        []string
	From              string
	FetchOnly         bool
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
// Every adapter is optional except Source; a nil repository, writer or
// mailer degrades the corresponding step instead of failing the run.
type PipelineDeps struct {
	Source     ports.ArticleSource
	Repository ports.DigestRepository
	Writer     ports.DigestWriter
	Mailer     ports.Mailer
	Settings   Settings
	Logger     *slog.Logger
}

// noTransportReason marks runs where the digest was printed instead of
// mailed because no transport was configured.
const noTransportReason = "no mail transport configured"

// Pipeline implements the digest workflow: fetch, age-filter, dedupe,
// score, rank, render, persist, deliver.
type Pipeline struct {
	source     ports.ArticleSource
	repository ports.DigestRepository
	writer     ports.DigestWriter
	mailer     ports.Mailer
	settings   Settings
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:     deps.Source,
		repository: deps.Repository,
		writer:     deps.Writer,
		mailer:     deps.Mailer,
		settings:   deps.Settings,
		logger:     deps.Logger,
	}
}

// Run executes one digest generation. A fetch failure is the only hard
// error; delivery problems are reported through the SendResult so the
// digest itself is never lost to a transport outage.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (domain.SendResult, error) {
	if p.source == nil {
		return domain.SendResult{}, fmt.Errorf("article source is not configured")
	}

	raw, err := p.source.Fetch(ctx, now)
	if err != nil {
		return domain.SendResult{}, fmt.Errorf("fetch articles: %w", err)
	}
	p.debug("fetched articles", "count", len(raw))

	recent := filterByAge(raw, now, p.settings.MaxAgeDays)
	p.debug("within age window", "count", len(recent), "max_age_days", p.settings.MaxAgeDays)

	unique := dedupe.Dedupe(recent)
	p.debug("after deduplication", "count", len(unique))

	scored := relevance.ScoreAll(unique, now)

	relevant := make([]domain.Article, 0, len(scored))
	for _, article := range scored {
		if article.RelevanceScore >= p.settings.MinRelevanceScore {
			relevant = append(relevant, article)
		}
	}
	p.debug("above relevance threshold", "count", len(relevant), "min_score", p.settings.MinRelevanceScore)

	// Stable sort keeps ingestion order among equal scores.
	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].RelevanceScore > relevant[j].RelevanceScore
	})

	p.persistArticles(ctx, relevant)

	if p.settings.FetchOnly {
		p.debug("fetch-only mode, skipping digest generation")
		return domain.SendResult{Success: false, Error: "fetch-only mode"}, nil
	}

	top := relevant
	if p.settings.MaxArticles > 0 && len(top) > p.settings.MaxArticles {
		top = top[:p.settings.MaxArticles]
	}

	if len(top) == 0 {
		p.debug("no relevant articles, skipping digest")
		return domain.SendResult{Success: false, Error: "no relevant articles"}, nil
	}

	digestText := p.renderDigest(ctx, top, now)
	digestHTML := digest.FormatForEmail(digestText, p.settings.Period)

	digestID := p.persistDigest(ctx, digestText, digestHTML, top, now)

	result := p.deliver(ctx, digestText, digestHTML, now)
	p.recordDeliveryStatus(ctx, digestID, result)

	return result, nil
}

// renderDigest prefers the configured LLM writer and falls back to the
// extractive renderer on any failure, so a run never depends on an
// inference service being reachable.
func (p *Pipeline) renderDigest(ctx context.Context, articles []domain.Article, now time.Time) string {
	if p.writer != nil {
		text, err := p.writer.WriteDigest(ctx, articles, p.settings.Period)
		if err == nil && text != "" {
			return text
		}
		p.warn("digest writer failed, falling back to extractive", "error", err)
	}
	return digest.GenerateDigestText(articles, p.settings.Period, now)
}

func (p *Pipeline) deliver(ctx context.Context, digestText, digestHTML string, now time.Time) domain.SendResult {
	if p.mailer == nil || len(p.settings.Recipients) == 0 {
		p.warn("no mail transport configured, printing digest")
		p.printDigest(digestText)
		return domain.SendResult{Success: false, Error: noTransportReason}
	}

	payload := digest.BuildEmailPayload(digestText, digestHTML, p.settings.Period, p.settings.Recipients, p.settings.From, now)

	messageID, err := p.mailer.Send(ctx, payload)
	if err != nil {
		p.warn("send failed, printing digest", "error", err)
		p.printDigest(digestText)
		return domain.SendResult{Success: false, Error: err.Error()}
	}

	p.debug("digest sent", "message_id", messageID, "recipients", len(p.settings.Recipients))
	return domain.SendResult{Success: true, MessageID: messageID}
}

func (p *Pipeline) persistArticles(ctx context.Context, articles []domain.Article) {
	if p.repository == nil || len(articles) == 0 {
		return
	}

	urls := make([]string, len(articles))
	for i, article := range articles {
		urls[i] = article.URL
	}

	seen, err := p.repository.SeenURLs(ctx, urls)
	if err != nil {
		p.warn("seen-url lookup failed, storing all", "error", err)
		seen = map[string]bool{}
	}

	stored := 0
	for _, article := range articles {
		if seen[article.URL] {
			continue
		}
		if err := p.repository.SaveArticle(ctx, article); err != nil {
			p.warn("persist article failed", "url", article.URL, "error", err)
			continue
		}
		stored++
	}
	p.debug("articles stored", "count", stored)
}

func (p *Pipeline) persistDigest(ctx context.Context, text, html string, articles []domain.Article, now time.Time) int64 {
	if p.repository == nil {
		return 0
	}

	urls := make([]string, len(articles))
	for i, article := range articles {
		urls[i] = article.URL
	}

	id, err := p.repository.SaveDigest(ctx, domain.Digest{
		Period:     p.settings.Period,
		Text:       text,
		HTML:       html,
		SentStatus: domain.StatusPending,
		RunAt:      now,
	}, urls)
	if err != nil {
		p.warn("persist digest failed", "error", err)
		return 0
	}
	return id
}

func (p *Pipeline) recordDeliveryStatus(ctx context.Context, digestID int64, result domain.SendResult) {
	if p.repository == nil || digestID == 0 {
		return
	}

	status := domain.StatusFailed
	switch {
	case result.Success:
		status = domain.StatusSent
	case result.Error == noTransportReason:
		status = domain.StatusPrinted
	}

	if err := p.repository.UpdateDigestStatus(ctx, digestID, status); err != nil {
		p.warn("update digest status failed", "error", err)
	}
}

// filterByAge drops articles older than maxAgeDays, comparing UTC
// calendar days so the cutoff does not drift with the run's wall-clock
// hour. Articles without a publication date are kept.
func filterByAge(articles []domain.Article, now time.Time, maxAgeDays int) []domain.Article {
	if maxAgeDays <= 0 {
		return articles
	}

	today := now.UTC().Truncate(24 * time.Hour)

	recent := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		if article.PublishedAt.IsZero() {
			recent = append(recent, article)
			continue
		}
		day := article.PublishedAt.UTC().Truncate(24 * time.Hour)
		if int(today.Sub(day).Hours()/24) <= maxAgeDays {
			recent = append(recent, article)
		}
	}
	return recent
}

func (p *Pipeline) printDigest(text string) {
	if p.logger != nil {
		p.logger.Info("digest output\n" + text)
	}
}

func (p *Pipeline) debug(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
