package search

import (
	"math"
	"testing"

	"github.com/leakwatch/assistant/internal/core/domain"
)

func TestLexicalScoreFullQueryMatch(t *testing.T) {
	entry := domain.KnowledgeEntry{
		ID:      "kb-1",
		Title:   "About nothing",
		Content: "The personal data protection law applies to all controllers.",
	}
	got := LexicalScore("personal data protection law", entry)
	// full match 0.9 + 4 word hits 0.3 = clamped at 1.0 territory
	if got < 0.9 {
		t.Fatalf("expected full-query match to score at least 0.9, got %v", got)
	}
	if got > 1.0 {
		t.Fatalf("expected score clamped to 1.0, got %v", got)
	}
}

func TestLexicalScoreClampedToOne(t *testing.T) {
	// Title match implies full-text match, so the additive total exceeds
	// 1.0 and must be clamped.
	entry := domain.KnowledgeEntry{ID: "a", Title: "PDPL overview", Tags: []string{"pdpl"}}
	if got := LexicalScore("pdpl overview", entry); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected clamped score 1.0, got %v", got)
	}
}

func TestLexicalScoreTagContainedByQuery(t *testing.T) {
	// "compliance" tag is contained by the query string; one of the two
	// long query words hits the haystack through the tag text.
	entry := domain.KnowledgeEntry{
		ID:    "kb-2",
		Title: "unrelated",
		Tags:  []string{"compliance"},
	}
	got := LexicalScore("compliance audit", entry)
	want := 0.15 + 0.15 // one word hit (0.3/2) + one tag boost
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected score %v, got %v", want, got)
	}
}

func TestLexicalScoreShortWordsIgnored(t *testing.T) {
	entry := domain.KnowledgeEntry{ID: "kb-4", Content: "is it on at"}
	if got := LexicalScore("is it on", entry); got > 0.9 {
		// Only the full-query substring can match; two-letter words carry
		// no per-word score.
		t.Fatalf("expected no per-word contribution for short words, got %v", got)
	}
}

func TestLexicalSearchDropsFloorScores(t *testing.T) {
	// One of three long words matching contributes exactly 0.1, which the
	// floor discards.
	entry := domain.KnowledgeEntry{ID: "kb-5", Content: "monitoring"}
	results := LexicalSearch("seller channels monitoring", []domain.KnowledgeEntry{entry}, 5)
	if len(results) != 0 {
		t.Fatalf("expected score at floor to be discarded, got %d results", len(results))
	}
}

func TestLexicalSearchOrderingAndRanks(t *testing.T) {
	entries := []domain.KnowledgeEntry{
		{ID: "weak", Content: "data retention is mentioned once"},
		{ID: "strong", Title: "data leak response playbook", Content: "data leak escalation steps"},
	}
	results := LexicalSearch("data leak", entries, 5)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Entry.ID != "strong" {
		t.Fatalf("expected strongest match first, got %q", results[0].Entry.ID)
	}
	for i, result := range results {
		if result.Rank != i+1 {
			t.Fatalf("expected rank %d, got %d", i+1, result.Rank)
		}
		if result.Source != domain.ScoreLexical {
			t.Fatalf("expected lexical source, got %q", result.Source)
		}
		if result.Similarity <= 0 || result.Similarity > 1 {
			t.Fatalf("expected lexical score in (0,1], got %v", result.Similarity)
		}
	}
}

func TestLexicalSearchTopK(t *testing.T) {
	entries := []domain.KnowledgeEntry{
		{ID: "a", Title: "leak report guide"},
		{ID: "b", Title: "leak report template"},
		{ID: "c", Title: "leak report checklist"},
	}
	results := LexicalSearch("leak report", entries, 2)
	if len(results) != 2 {
		t.Fatalf("expected topK to cap results at 2, got %d", len(results))
	}
}
