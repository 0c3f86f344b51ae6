package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/leakwatch/assistant/internal/core/domain"
)

const (
	lexicalFullMatchBoost = 0.9
	lexicalWordBudget     = 0.3
	lexicalTitleBoost     = 0.2
	lexicalTagBoost       = 0.15
	lexicalScoreFloor     = 0.1
)

// LexicalScore rates one entry against a query with additive substring
// heuristics, clamped to 1.0. It is pure and independent of any embedding
// dependency; its scale is not comparable to cosine similarity.
func LexicalScore(query string, entry domain.KnowledgeEntry) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	var b strings.Builder
	b.WriteString(entry.Title)
	b.WriteByte(' ')
	b.WriteString(entry.TitleAr)
	b.WriteByte(' ')
	b.WriteString(entry.Content)
	b.WriteByte(' ')
	b.WriteString(entry.ContentAr)
	for _, tag := range entry.Tags {
		b.WriteByte(' ')
		b.WriteString(tag)
	}
	haystack := strings.ToLower(b.String())

	score := 0.0
	if strings.Contains(haystack, q) {
		score += lexicalFullMatchBoost
	}

	words := distinctQueryWords(q)
	if len(words) > 0 {
		perWord := lexicalWordBudget / float64(len(words))
		for _, word := range words {
			if strings.Contains(haystack, word) {
				score += perWord
			}
		}
	}

	title := strings.ToLower(entry.Title + " " + entry.TitleAr)
	if strings.Contains(title, q) {
		score += lexicalTitleBoost
	}

	for _, tag := range entry.Tags {
		lowered := strings.ToLower(strings.TrimSpace(tag))
		if lowered == "" {
			continue
		}
		if strings.Contains(lowered, q) || strings.Contains(q, lowered) {
			score += lexicalTagBoost
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// LexicalSearch scores every candidate, drops scores at or below the floor,
// and returns the top entries ranked from 1.
func LexicalSearch(query string, entries []domain.KnowledgeEntry, topK int) []domain.SemanticSearchResult {
	if topK <= 0 {
		topK = domain.DefaultSearchTopK
	}

	out := make([]domain.SemanticSearchResult, 0, len(entries))
	for _, entry := range entries {
		score := LexicalScore(query, entry)
		if score <= lexicalScoreFloor {
			continue
		}
		out = append(out, domain.SemanticSearchResult{
			Entry:      entry,
			Similarity: score,
			Source:     domain.ScoreLexical,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Entry.ID < out[j].Entry.ID
	})

	if len(out) > topK {
		out = out[:topK]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func distinctQueryWords(query string) []string {
	fields := strings.Fields(query)
	seen := make(map[string]struct{}, len(fields))
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		if utf8.RuneCountInString(field) <= 2 {
			continue
		}
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		words = append(words, field)
	}
	return words
}
