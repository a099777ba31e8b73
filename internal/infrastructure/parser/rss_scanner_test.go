package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"solaintel/internal/scanner"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Skift</title>
    <link>https://skift.com</link>
    <item>
      <title>AI Travel Agent Startup Raises $50M</title>
      <link>https://skift.com/1</link>
      <description><![CDATA[<p>The startup builds <b>trip planning</b> software.</p>]]></description>
      <pubDate>Sat, 29 Aug 2026 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Airlines Embrace Biometric Boarding</title>
      <link>https://skift.com/2</link>
      <description>Biometrics roll out at more airports.</description>
      <pubDate>Fri, 28 Aug 2026 08:30:00 +0000</pubDate>
    </item>
    <item>
      <title>Item Without Link Is Skipped</title>
      <description>no link</description>
    </item>
  </channel>
</rss>`

func TestRSSScannerScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	sc := NewRSSScanner(server.Client())

	req := scanner.Request{
		SourceName: "Skift",
		Category:   "travel-industry",
		URL:        server.URL + "/feed/",
	}

	articles, err := sc.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.URL != "https://skift.com/1" {
		t.Fatalf("unexpected url: %s", first.URL)
	}
	if first.Title != "AI Travel Agent Startup Raises $50M" {
		t.Fatalf("unexpected title: %s", first.Title)
	}
	if first.Publisher != "Skift" {
		t.Fatalf("unexpected publisher: %s", first.Publisher)
	}
	if first.Summary != "The startup builds trip planning software." {
		t.Fatalf("summary should be stripped to plain text, got %q", first.Summary)
	}
	if first.PublishedAt.IsZero() {
		t.Fatalf("published date not parsed")
	}
	if first.PublishedAt.UTC().Format("2006-01-02") != "2026-08-29" {
		t.Fatalf("unexpected published date: %v", first.PublishedAt)
	}
}

func TestRSSScannerMissingURL(t *testing.T) {
	t.Parallel()

	sc := NewRSSScanner(nil)

	if _, err := sc.Scan(context.Background(), scanner.Request{SourceName: "Skift"}); err == nil {
		t.Fatalf("expected error for missing feed url")
	}
}

func TestRSSScannerBadFeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sc := NewRSSScanner(server.Client())

	if _, err := sc.Scan(context.Background(), scanner.Request{SourceName: "Skift", URL: server.URL}); err == nil {
		t.Fatalf("expected error for broken feed")
	}
}
