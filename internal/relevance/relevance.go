// Package relevance scores articles against the digest's fixed audience
// profile: AI in travel, travel-tech funding, and solo-female-travel
// safety. The rule set is a plain data table so individual rules stay
// inspectable and testable.
package relevance

import (
	"math"
	"regexp"
	"strings"
	"time"

	"solaintel/internal/domain"
)

// keywordGroup is one scoring rule: matching any keyword in the group
// contributes the group weight exactly once.
type keywordGroup struct {
	name     string
	keywords []string
	weight   float64
}

var keywordGroups = []keywordGroup{
	{
		name: "solo-female-travel",
		keywords: []string{
			"solo female travel", "women travel", "solo women", "female traveler",
			"women safety", "woman travel", "solo travel safety", "female-only",
			"women-only tour", "women-only hostel", "female dorm",
		},
		weight: 1.0,
	},
	{
		name: "ai-travel",
		keywords: []string{
			"travel ai", "ai travel", "travel tech", "itinerary ai", "trip planning ai",
			"travel agent ai", "booking ai", "travel recommendation",
			"personalized travel", "travel chatbot",
		},
		weight: 0.9,
	},
	{
		name: "safety-tech",
		keywords: []string{
			"safety app", "trust and safety", "identity verification", "travel safety",
			"scam alert", "travel advisory", "emergency sos", "traveler safety",
			"safety tech",
		},
		weight: 0.85,
	},
	{
		name: "ai-general",
		keywords: []string{
			"llm", "large language model", "rag", "retrieval augmented", "ai agent",
			"ai personalization", "recommendation system", "generative ai",
			"claude", "gpt", "anthropic", "openai",
		},
		weight: 0.6,
	},
	{
		name: "destinations",
		keywords: []string{
			"southeast asia", "bali", "thailand", "vietnam", "philippines", "indonesia",
			"cambodia", "laos", "myanmar", "malaysia", "singapore", "japan", "morocco",
			"portugal", "colombia", "mexico",
		},
		weight: 0.5,
	},
	{
		name: "app-growth",
		keywords: []string{
			"app store", "mobile growth", "app retention", "user acquisition",
			"app launch", "travel app", "mobile app", "app download", "aso",
			"app store optimization",
		},
		weight: 0.5,
	},
	{
		name: "travel-industry",
		keywords: []string{
			"travel trend", "airline", "hostel", "booking platform", "travel insurance",
			"travel creator", "ugc travel", "travel affiliate", "digital nomad",
			"solo travel",
		},
		weight: 0.4,
	},
}

// publisherBoost rewards sources with a track record on the digest's
// topics. Boosts are secondary: they can never lift a zero-keyword
// article past the off-topic band.
var publisherBoost = map[string]float64{
	"Skift":                0.15,
	"Phocuswire":           0.12,
	"TechCrunch AI":        0.10,
	"TechCrunch Apps":      0.10,
	"MIT Tech Review AI":   0.10,
	"The Verge AI":         0.08,
	"Condé Nast Traveler":  0.08,
	"Lonely Planet News":   0.08,
	"Reuters Travel":       0.08,
	"Adventurous Kate":     0.10,
	"Be My Travel Muse":    0.10,
	"Solo Traveler Blog":   0.10,
}

// keywordShare caps how much of the final score the keyword signal can
// contribute; the remainder is left for publisher and recency modifiers.
const keywordShare = 0.75

// saturationFraction of the total table weight at which the keyword
// signal saturates; a handful of strong groups is enough to max out.
const saturationFraction = 0.4

// Score maps one article to a relevance score in [0,1]. Pure: the only
// inputs are the article fields and the caller-supplied reference time.
func Score(article domain.Article, now time.Time) float64 {
	text := strings.ToLower(article.Title + " " + article.Summary)

	keywordScore := 0.0
	totalWeight := 0.0
	for _, group := range keywordGroups {
		totalWeight += group.weight
		if matchesAny(text, group.keywords) {
			keywordScore += group.weight
		}
	}

	normalized := math.Min(keywordScore/(totalWeight*saturationFraction), 1.0)

	score := normalized*keywordShare + publisherBoost[article.Publisher] + recencyBoost(article.PublishedAt, now)
	score = math.Min(score, 1.0)
	if score < 0 {
		score = 0
	}

	// Two decimals, matching what gets persisted and displayed.
	return math.Round(score*100) / 100
}

// ScoreAll assigns RelevanceScore to every article. Input order is
// preserved; ranking is the orchestrator's concern.
func ScoreAll(articles []domain.Article, now time.Time) []domain.Article {
	scored := make([]domain.Article, len(articles))
	for i, article := range articles {
		article.RelevanceScore = Score(article, now)
		scored[i] = article
	}
	return scored
}

// shortKeywordExpr caches word-boundary patterns for keywords short
// enough to hide inside ordinary words ("aso" in "season", "rag" in
// "storage"). Longer keywords and phrases match as plain substrings.
var shortKeywordExpr = map[string]*regexp.Regexp{}

func init() {
	for _, group := range keywordGroups {
		for _, keyword := range group.keywords {
			if len(keyword) <= 3 && !strings.Contains(keyword, " ") {
				shortKeywordExpr[keyword] = regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
			}
		}
	}
}

func matchesAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if expr, ok := shortKeywordExpr[keyword]; ok {
			if expr.MatchString(text) {
				return true
			}
			continue
		}
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// recencyBoost favors fresh stories: same-day 0.10, yesterday 0.05,
// up to three days 0.02, nothing beyond that.
func recencyBoost(publishedAt, now time.Time) float64 {
	if publishedAt.IsZero() {
		return 0
	}

	days := int(math.Floor(now.Sub(publishedAt).Hours() / 24))
	switch {
	case days <= 0:
		return 0.10
	case days <= 1:
		return 0.05
	case days <= 3:
		return 0.02
	default:
		return 0
	}
}
