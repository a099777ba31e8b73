// Package dedupe removes exact and near-duplicate articles from a
// candidate batch. Earlier entries always win, so output order is a
// stable subsequence of the input.
package dedupe

import (
	"strings"
	"unicode"

	"solaintel/internal/domain"
)

// similarityThreshold is the normalized-title Jaccard score at or above
// which two articles are treated as the same story.
const similarityThreshold = 0.8

// Dedupe returns the input articles with duplicates removed. An article
// is dropped when its URL was already kept, or when its normalized title
// is at least similarityThreshold similar to any kept title.
func Dedupe(articles []domain.Article) []domain.Article {
	kept := make([]domain.Article, 0, len(articles))
	keptTokens := make([]map[string]struct{}, 0, len(articles))
	seenURLs := make(map[string]struct{}, len(articles))

	for _, article := range articles {
		if _, dup := seenURLs[article.URL]; dup {
			continue
		}

		tokens := titleTokens(article.Title)
		similar := false
		for _, prev := range keptTokens {
			if jaccard(tokens, prev) >= similarityThreshold {
				similar = true
				break
			}
		}
		if similar {
			continue
		}

		seenURLs[article.URL] = struct{}{}
		kept = append(kept, article)
		keptTokens = append(keptTokens, tokens)
	}

	return kept
}

// titleTokens normalizes a title into a set of lowercase alphanumeric
// word tokens.
func titleTokens(title string) map[string]struct{} {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', unicode.IsSpace(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	tokens := make(map[string]struct{})
	for _, word := range strings.Fields(b.String()) {
		tokens[word] = struct{}{}
	}
	return tokens
}

// jaccard computes intersection over union of the token sets. Two empty
// sets score 0, not 1, so titleless articles never collapse into each other.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
