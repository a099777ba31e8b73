package digest

import (
	"strings"
	"testing"
	"time"

	"solaintel/internal/domain"
)

var testNow = time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC)

func sampleArticles() []domain.Article {
	return []domain.Article{
		{
			URL:            "https://skift.com/1",
			Title:          "AI Travel Agent Startup Raises $50M",
			Publisher:      "Skift",
			PublishedAt:    testNow.AddDate(0, 0, -1),
			Summary:        "The startup builds itinerary planning software for independent travelers. Its latest round was led by a growth fund.",
			RelevanceScore: 0.82,
		},
		{
			URL:            "https://kate.com/2",
			Title:          "Best Safety Apps for Solo Female Travelers in 2026",
			Publisher:      "Adventurous Kate",
			PublishedAt:    testNow.AddDate(0, 0, -2),
			Summary:        "A practical roundup of safety tools for women traveling alone.",
			RelevanceScore: 0.74,
		},
	}
}

func TestGenerateDigestTextURLFidelity(t *testing.T) {
	t.Parallel()

	articles := sampleArticles()
	text := GenerateDigestText(articles, domain.PeriodDaily, testNow)

	for _, article := range articles {
		if !strings.Contains(text, article.URL) {
			t.Fatalf("digest missing verbatim url %s", article.URL)
		}
	}
}

func TestGenerateDigestTextSectionsAlwaysPresent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		articles []domain.Article
	}{
		{name: "mixed", articles: sampleArticles()},
		{name: "opportunities only", articles: sampleArticles()[:1]},
		{name: "risks only", articles: sampleArticles()[1:]},
		{name: "empty", articles: nil},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			text := GenerateDigestText(tc.articles, domain.PeriodWeekly, testNow)
			if !strings.Contains(text, "OPPORTUNITIES") {
				t.Fatalf("digest missing OPPORTUNITIES label:\n%s", text)
			}
			if !strings.Contains(text, "RISKS") {
				t.Fatalf("digest missing RISKS label:\n%s", text)
			}
		})
	}
}

func TestGenerateDigestTextPeriodBanner(t *testing.T) {
	t.Parallel()

	weekly := GenerateDigestText(sampleArticles(), domain.PeriodWeekly, testNow)
	if !strings.Contains(weekly, "WEEKLY INTELLIGENCE BRIEF") {
		t.Fatalf("weekly digest missing banner:\n%s", weekly)
	}

	daily := GenerateDigestText(sampleArticles(), domain.PeriodDaily, testNow)
	if strings.Contains(daily, "WEEKLY INTELLIGENCE BRIEF") {
		t.Fatalf("daily digest must not carry the weekly banner:\n%s", daily)
	}
	if !strings.Contains(daily, Brand) && !strings.Contains(daily, strings.ToUpper(Brand)) {
		t.Fatalf("daily digest missing brand:\n%s", daily)
	}
}

func TestGenerateDigestTextRiskPartition(t *testing.T) {
	t.Parallel()

	text := GenerateDigestText(sampleArticles(), domain.PeriodDaily, testNow)

	risksAt := strings.Index(text, "RISKS")
	safetyAt := strings.Index(text, "Best Safety Apps for Solo Female Travelers in 2026")
	fundingAt := strings.Index(text, "AI Travel Agent Startup Raises $50M")

	if safetyAt < risksAt {
		t.Fatalf("safety article should render under RISKS (risks at %d, article at %d)", risksAt, safetyAt)
	}
	if fundingAt > risksAt {
		t.Fatalf("funding article should render under OPPORTUNITIES (risks at %d, article at %d)", risksAt, fundingAt)
	}
}

func TestGenerateDigestTextEmptySummary(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{{
		URL:   "https://a.com/1",
		Title: "Headline Without Summary",
	}}

	text := GenerateDigestText(articles, domain.PeriodDaily, testNow)
	if !strings.Contains(text, "Headline Without Summary") {
		t.Fatalf("title missing from digest:\n%s", text)
	}
	if !strings.Contains(text, "https://a.com/1") {
		t.Fatalf("url missing from digest:\n%s", text)
	}
}

func TestFormatForEmail(t *testing.T) {
	t.Parallel()

	text := GenerateDigestText(sampleArticles(), domain.PeriodWeekly, testNow)
	html := FormatForEmail(text, domain.PeriodWeekly)

	if !strings.Contains(html, "<html>") {
		t.Fatalf("missing html root:\n%s", html)
	}
	if !strings.Contains(html, Brand) {
		t.Fatalf("missing brand name:\n%s", html)
	}
	if !strings.Contains(html, "https://skift.com/1") {
		t.Fatalf("digest content not embedded:\n%s", html)
	}
}

func TestFormatForEmailEscapesContent(t *testing.T) {
	t.Parallel()

	html := FormatForEmail("<script>alert(1)</script>", domain.PeriodDaily)
	if strings.Contains(html, "<script>") {
		t.Fatalf("digest content must be escaped:\n%s", html)
	}
}

func TestBuildEmailPayload(t *testing.T) {
	t.Parallel()

	recipients := []string{"ana@example.com", "maya@example.com"}
	payload := BuildEmailPayload("text body", "<html>body</html>", domain.PeriodWeekly, recipients, "Sola Intel <intel@sola.app>", testNow)

	if len(payload.To) != 2 || payload.To[0] != "ana@example.com" || payload.To[1] != "maya@example.com" {
		t.Fatalf("recipients must pass through in order, got %v", payload.To)
	}
	if !strings.Contains(payload.From, "sola.app") {
		t.Fatalf("from must carry the sending domain, got %q", payload.From)
	}
	if !strings.Contains(payload.Subject, Brand) || !strings.Contains(payload.Subject, "Weekly") {
		t.Fatalf("subject must carry brand and period, got %q", payload.Subject)
	}
	if !strings.Contains(payload.Subject, "Aug 30") {
		t.Fatalf("subject must carry a short date, got %q", payload.Subject)
	}
	if payload.Text != "text body" || payload.HTML != "<html>body</html>" {
		t.Fatalf("text/html must pass through unmodified")
	}

	daily := BuildEmailPayload("t", "h", domain.PeriodDaily, recipients, "intel@sola.app", testNow)
	if !strings.Contains(daily.Subject, "Daily") {
		t.Fatalf("daily subject must say Daily, got %q", daily.Subject)
	}
}
