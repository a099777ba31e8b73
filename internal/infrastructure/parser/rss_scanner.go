package parser

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"solaintel/internal/domain"
	"solaintel/internal/scanner"
)

// RSSScanner ingests articles from RSS/Atom feeds. Feed summaries are
// stripped to plain text before they enter the pipeline, and fetches are
// rate limited to stay polite with upstream publishers.
type RSSScanner struct {
	parser   *gofeed.Parser
	limiter  *rate.Limiter
	stripper *bluemonday.Policy
}

// NewRSSScanner wires an HTTP client; a nil client gets sane timeouts.
func NewRSSScanner(client *http.Client) *RSSScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	feedParser := gofeed.NewParser()
	feedParser.Client = client
	feedParser.UserAgent = "SolaIntel/1.0"

	return &RSSScanner{
		parser:   feedParser,
		limiter:  rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		stripper: bluemonday.StrictPolicy(),
	}
}

// Name identifies the strategy inside the registry.
func (s *RSSScanner) Name() string {
	return "rss"
}

// Scan fetches and parses one feed URL into domain articles.
func (s *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no feed url provided for source %s", req.SourceName)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	feed, err := s.parser.ParseURLWithContext(req.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", req.URL, err)
	}

	articles := make([]domain.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Link == "" {
			continue
		}

		published := time.Time{}
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		articles = append(articles, domain.Article{
			URL:         item.Link,
			Title:       strings.TrimSpace(item.Title),
			Publisher:   req.SourceName,
			PublishedAt: published,
			Summary:     s.stripHTML(summary),
		})
	}

	return articles, nil
}

// stripHTML reduces feed markup to whitespace-normalized plain text.
func (s *RSSScanner) stripHTML(raw string) string {
	text := s.stripper.Sanitize(raw)
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}
