// Package digest renders ranked articles into the plain-text brief and
// its HTML email wrapper. Rendering is extractive: every line is derived
// from article fields by deterministic text operations, so a digest can
// always be produced offline.
package digest

import (
	"fmt"
	"html"
	"strings"
	"time"

	"solaintel/internal/domain"
)

// Brand is the product name embedded in digests and email subjects.
const Brand = "Sola Intel"

const (
	weeklyBanner = "WEEKLY INTELLIGENCE BRIEF"
	dailyBanner  = "DAILY DIGEST"

	opportunitiesLabel = "OPPORTUNITIES"
	risksLabel         = "RISKS"
)

// riskKeywords tag an article as a cautionary signal for the RISKS
// section; everything else lands under OPPORTUNITIES.
var riskKeywords = []string{
	"safety", "scam", "warning", "advisory", "risk", "alert",
	"danger", "emergency", "theft", "assault", "fraud", "harass",
}

// GenerateDigestText renders the plain-text digest. Articles are assumed
// already filtered and sorted best-first; their URLs are reproduced
// verbatim. Both section labels appear even when a section is empty.
func GenerateDigestText(articles []domain.Article, period domain.Period, now time.Time) string {
	var b strings.Builder

	writeHeader(&b, period, now)

	opportunities, risks := partition(articles)

	writeSection(&b, opportunitiesLabel, opportunities, "Nothing notable this period.")
	b.WriteString("\n")
	writeSection(&b, risksLabel, risks, "No new risk signals this period.")

	b.WriteString("\n—\n")
	fmt.Fprintf(&b, "%s · %d stories · generated %s\n", Brand, len(articles), now.Format("2006-01-02"))

	return b.String()
}

func writeHeader(b *strings.Builder, period domain.Period, now time.Time) {
	rule := strings.Repeat("=", 56)
	b.WriteString(rule + "\n")
	if period == domain.PeriodWeekly {
		fmt.Fprintf(b, "  %s — %s\n", strings.ToUpper(Brand), weeklyBanner)
		fmt.Fprintf(b, "  Week ending %s\n", now.Format("Jan 2, 2006"))
	} else {
		fmt.Fprintf(b, "  %s — %s\n", strings.ToUpper(Brand), dailyBanner)
		fmt.Fprintf(b, "  %s\n", now.Format("Jan 2, 2006"))
	}
	b.WriteString(rule + "\n\n")
}

func writeSection(b *strings.Builder, label string, articles []domain.Article, emptyNote string) {
	b.WriteString(label + "\n")
	b.WriteString(strings.Repeat("-", len(label)) + "\n")

	if len(articles) == 0 {
		b.WriteString(emptyNote + "\n")
		return
	}

	for _, article := range articles {
		fmt.Fprintf(b, "\n* %s\n", article.Title)
		fmt.Fprintf(b, "  %s | %s | relevance %.2f\n",
			article.Publisher,
			article.PublishedAt.Format("2006-01-02"),
			article.RelevanceScore)
		if extract := extractSummary(article); extract != "" {
			fmt.Fprintf(b, "  %s\n", extract)
		}
		fmt.Fprintf(b, "  %s\n", article.URL)
	}
}

// partition splits articles into opportunity and risk items by keyword,
// preserving relative order inside each section.
func partition(articles []domain.Article) (opportunities, risks []domain.Article) {
	for _, article := range articles {
		text := strings.ToLower(article.Title + " " + article.Summary)
		isRisk := false
		for _, keyword := range riskKeywords {
			if strings.Contains(text, keyword) {
				isRisk = true
				break
			}
		}
		if isRisk {
			risks = append(risks, article)
		} else {
			opportunities = append(opportunities, article)
		}
	}
	return opportunities, risks
}

// extractSummary picks up to two substantial sentences from the
// article's own summary. Empty summaries yield an empty extract rather
// than an error.
func extractSummary(article domain.Article) string {
	summary := strings.TrimSpace(article.Summary)
	if summary == "" {
		return ""
	}

	sentences := strings.Split(summary, ".")
	var picked []string
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < 25 {
			continue
		}
		picked = append(picked, sentence)
		if len(picked) == 2 {
			break
		}
	}

	extract := summary
	if len(picked) > 0 {
		extract = strings.Join(picked, ". ") + "."
	}

	if len(extract) > 280 {
		extract = extract[:280] + "..."
	}
	return extract
}

// FormatForEmail wraps the text digest in a complete HTML document for
// email delivery. The digest body is escaped and rendered preformatted
// so URLs and banners survive byte-for-byte.
func FormatForEmail(digestText string, period domain.Period) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html>\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s — %s Brief</title>\n", Brand, period.Label())
	b.WriteString("</head>\n")
	b.WriteString("<body style=\"margin:0;padding:24px;background:#faf7f2;font-family:Georgia,serif;color:#2b2b2b;\">\n")
	fmt.Fprintf(&b, "<h1 style=\"font-size:20px;\">%s</h1>\n", Brand)
	b.WriteString("<pre style=\"white-space:pre-wrap;font-family:'SF Mono',Menlo,monospace;font-size:13px;line-height:1.5;\">\n")
	b.WriteString(html.EscapeString(digestText))
	b.WriteString("\n</pre>\n")
	fmt.Fprintf(&b, "<p style=\"color:#8a8578;font-size:12px;\">You are receiving this because you subscribe to the %s %s brief.</p>\n", Brand, strings.ToLower(period.Label()))
	b.WriteString("</body>\n</html>\n")

	return b.String()
}

// BuildEmailPayload assembles the outbound message. Recipients are used
// verbatim and in order; text and html are passed through unmodified.
func BuildEmailPayload(digestText, digestHTML string, period domain.Period, recipients []string, from string, now time.Time) domain.EmailPayload {
	return domain.EmailPayload{
		From:    from,
		To:      recipients,
		Subject: fmt.Sprintf("%s — %s Brief — %s", Brand, period.Label(), now.Format("Jan 2")),
		HTML:    digestHTML,
		Text:    digestText,
	}
}
