package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/leakwatch/assistant/internal/core/domain"
	"github.com/leakwatch/assistant/internal/core/ports"
)

// Engine ranks knowledge entries against a query: cosine similarity over
// precomputed entry embeddings, with a lexical fallback when vectors are
// unavailable or too thin.
type Engine struct {
	embedder ports.EmbeddingProvider
}

func NewEngine(embedder ports.EmbeddingProvider) *Engine {
	return &Engine{embedder: embedder}
}

func (e *Engine) Search(
	ctx context.Context,
	query string,
	entries []domain.KnowledgeEntry,
	opts domain.SearchOptions,
) ([]domain.SemanticSearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrEmptyInput, "semantic search", fmt.Errorf("query is required"))
	}
	opts = opts.Normalize()

	candidates := filterByCategory(entries, opts.Category)
	if len(candidates) == 0 {
		return []domain.SemanticSearchResult{}, nil
	}

	embedded := make([]domain.KnowledgeEntry, 0, len(candidates))
	for _, entry := range candidates {
		if len(entry.Embedding) > 0 {
			embedded = append(embedded, entry)
		}
	}

	// Without any stored vectors there is nothing to compare against, so
	// skip the query embedding call entirely.
	if len(embedded) == 0 {
		return LexicalSearch(query, candidates, opts.TopK), nil
	}

	queryVector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		if domain.IsKind(err, domain.ErrEmptyInput) || domain.IsKind(err, domain.ErrDimensionMismatch) {
			return nil, err
		}
		slog.Warn("semantic_search_degraded", "reason", "embed_query_failed", "error", err)
		return LexicalSearch(query, candidates, opts.TopK), nil
	}

	vectorResults := e.scoreByVector(queryVector, embedded, opts)

	if len(vectorResults) >= opts.MinVectorResults || len(vectorResults) >= opts.TopK {
		return vectorResults, nil
	}
	return backfillLexical(query, candidates, vectorResults, opts.TopK), nil
}

func (e *Engine) scoreByVector(
	queryVector []float32,
	entries []domain.KnowledgeEntry,
	opts domain.SearchOptions,
) []domain.SemanticSearchResult {
	out := make([]domain.SemanticSearchResult, 0, len(entries))
	for _, entry := range entries {
		similarity, err := CosineSimilarity(queryVector, entry.Embedding)
		if err != nil {
			// A stored vector with the wrong dimension means the entry was
			// embedded under a different model; it cannot be scored.
			slog.Warn("semantic_search_skip_entry", "entry_id", entry.ID, "error", err)
			continue
		}
		if similarity < opts.Threshold {
			continue
		}
		out = append(out, domain.SemanticSearchResult{
			Entry:      entry,
			Similarity: similarity,
			Source:     domain.ScoreVector,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Entry.ID < out[j].Entry.ID
	})

	if len(out) > opts.TopK {
		out = out[:opts.TopK]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// backfillLexical appends non-duplicate lexical results after the vector
// segment. Vector results always precede lexical ones; the two score scales
// are never re-sorted into one blend.
func backfillLexical(
	query string,
	candidates []domain.KnowledgeEntry,
	vectorResults []domain.SemanticSearchResult,
	topK int,
) []domain.SemanticSearchResult {
	seen := make(map[string]struct{}, len(vectorResults))
	for _, result := range vectorResults {
		seen[result.Entry.ID] = struct{}{}
	}

	out := vectorResults
	for _, fallback := range LexicalSearch(query, candidates, topK) {
		if len(out) >= topK {
			break
		}
		if _, ok := seen[fallback.Entry.ID]; ok {
			continue
		}
		seen[fallback.Entry.ID] = struct{}{}
		fallback.Rank = len(out) + 1
		out = append(out, fallback)
	}
	return out
}

func filterByCategory(entries []domain.KnowledgeEntry, category domain.KnowledgeCategory) []domain.KnowledgeEntry {
	if category == "" {
		return entries
	}
	out := make([]domain.KnowledgeEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Category == category {
			out = append(out, entry)
		}
	}
	return out
}

// Service combines the knowledge-base collaborator with the ranking engine
// and implements the inbound KnowledgeSearcher contract. Deployment-level
// defaults fill in whatever the caller leaves at zero.
type Service struct {
	knowledge ports.KnowledgeBase
	engine    *Engine
	defaults  domain.SearchOptions
}

func NewService(knowledge ports.KnowledgeBase, engine *Engine, defaults domain.SearchOptions) *Service {
	return &Service{knowledge: knowledge, engine: engine, defaults: defaults}
}

func (s *Service) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SemanticSearchResult, error) {
	if opts.TopK <= 0 {
		opts.TopK = s.defaults.TopK
	}
	if opts.Threshold <= 0 {
		opts.Threshold = s.defaults.Threshold
	}
	if opts.MinVectorResults <= 0 {
		opts.MinVectorResults = s.defaults.MinVectorResults
	}

	entries, err := s.knowledge.ListEntries(ctx, opts.Category)
	if err != nil {
		return nil, fmt.Errorf("list knowledge entries: %w", err)
	}
	return s.engine.Search(ctx, query, entries, opts)
}
