package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leakwatch/assistant/internal/core/domain"
	"github.com/leakwatch/assistant/internal/core/ports"
)

const indexBatchSize = 32

// Indexer backfills embeddings for knowledge entries that have none yet.
// Entries with a stored vector are left alone; re-embedding after a model
// change means clearing the column first.
type Indexer struct {
	knowledge ports.KnowledgeBase
	index     ports.KnowledgeIndex
	embedder  ports.EmbeddingProvider
}

func NewIndexer(knowledge ports.KnowledgeBase, index ports.KnowledgeIndex, embedder ports.EmbeddingProvider) *Indexer {
	return &Indexer{knowledge: knowledge, index: index, embedder: embedder}
}

// Reindex embeds every unindexed entry and reports how many were updated.
func (ix *Indexer) Reindex(ctx context.Context) (int, error) {
	entries, err := ix.knowledge.ListEntries(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("list knowledge entries: %w", err)
	}

	pending := make([]domain.KnowledgeEntry, 0, len(entries))
	for _, entry := range entries {
		if len(entry.Embedding) == 0 {
			pending = append(pending, entry)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	indexed := 0
	for start := 0; start < len(pending); start += indexBatchSize {
		end := start + indexBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		texts := make([]string, 0, len(batch))
		for _, entry := range batch {
			texts = append(texts, indexText(entry))
		}
		vectors, err := ix.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return indexed, fmt.Errorf("embed batch: %w", err)
		}
		if len(vectors) != len(batch) {
			return indexed, fmt.Errorf("embed batch: expected %d vectors, got %d", len(batch), len(vectors))
		}

		for i, entry := range batch {
			if err := ix.index.SaveEmbedding(ctx, entry.ID, vectors[i]); err != nil {
				slog.Warn("knowledge_index_save_failed", "entry_id", entry.ID, "error", err)
				continue
			}
			indexed++
		}
	}

	slog.Info("knowledge_reindex_complete", "pending", len(pending), "indexed", indexed)
	return indexed, nil
}

// indexText concatenates both locales so one vector serves Arabic and
// English queries alike.
func indexText(entry domain.KnowledgeEntry) string {
	parts := make([]string, 0, 5)
	for _, part := range []string{entry.Title, entry.TitleAr, entry.Content, entry.ContentAr} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimSpace(part))
		}
	}
	if len(entry.Tags) > 0 {
		parts = append(parts, strings.Join(entry.Tags, " "))
	}
	return strings.Join(parts, "\n")
}
