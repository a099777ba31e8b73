package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"solaintel/internal/domain"
	"solaintel/internal/scanner"
)

// Option keys understood by the blog scanner. Selectors come from the
// per-source configuration because every blog lays out its index page
// differently.
const (
	optItemSelector    = "itemSelector"
	optTitleSelector   = "titleSelector"
	optLinkSelector    = "linkSelector"
	optSummarySelector = "summarySelector"
	optDateSelector    = "dateSelector"
	optDateLayout      = "dateLayout"
)

// BlogScanner scrapes article lists from blogs that publish no usable
// feed, driven by CSS selectors from source options.
type BlogScanner struct {
	client *http.Client
}

// NewBlogScanner wires an HTTP client; a nil client gets sane timeouts.
func NewBlogScanner(client *http.Client) *BlogScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &BlogScanner{client: client}
}

// Name identifies the strategy inside the registry.
func (b *BlogScanner) Name() string {
	return "html"
}

// Scan fetches the index page and extracts one article per item selector
// match. Items without a resolvable link are skipped.
func (b *BlogScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no page url provided for source %s", req.SourceName)
	}

	itemSelector := req.Options[optItemSelector]
	if itemSelector == "" {
		return nil, fmt.Errorf("source %s: missing %s option", req.SourceName, optItemSelector)
	}

	base, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %s: %w", req.URL, err)
	}

	doc, err := b.fetchDocument(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", req.SourceName, err)
	}

	var articles []domain.Article
	doc.Find(itemSelector).Each(func(i int, item *goquery.Selection) {
		article, ok := parseItem(item, req, base)
		if !ok {
			return
		}
		articles = append(articles, article)
	})

	return articles, nil
}

func (b *BlogScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "SolaIntel/1.0")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func parseItem(item *goquery.Selection, req scanner.Request, base *url.URL) (domain.Article, bool) {
	linkSelection := item.Find(req.Options[optLinkSelector]).First()
	href, _ := linkSelection.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" {
		return domain.Article{}, false
	}

	link, err := base.Parse(href)
	if err != nil {
		return domain.Article{}, false
	}

	title := strings.TrimSpace(item.Find(req.Options[optTitleSelector]).First().Text())
	if title == "" {
		title = strings.TrimSpace(linkSelection.Text())
	}

	summary := ""
	if sel := req.Options[optSummarySelector]; sel != "" {
		summary = strings.Join(strings.Fields(item.Find(sel).First().Text()), " ")
	}

	published := time.Time{}
	if sel := req.Options[optDateSelector]; sel != "" {
		layout := req.Options[optDateLayout]
		if layout == "" {
			layout = "January 2, 2006"
		}
		dateText := strings.TrimSpace(item.Find(sel).First().Text())
		if parsed, err := time.Parse(layout, dateText); err == nil {
			published = parsed
		}
	}

	return domain.Article{
		URL:         link.String(),
		Title:       title,
		Publisher:   req.SourceName,
		PublishedAt: published,
		Summary:     summary,
	}, true
}
