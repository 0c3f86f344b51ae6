package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/leakwatch/assistant/internal/core/domain"
)

// KnowledgeRepository reads the knowledge base the search engine scores.
// Embeddings are stored as JSONB float arrays next to the content; a NULL
// embedding means the entry has not been indexed yet.
type KnowledgeRepository struct {
	db *sql.DB
}

func NewKnowledgeRepository(db *sql.DB) *KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

func (r *KnowledgeRepository) ListEntries(ctx context.Context, category domain.KnowledgeCategory) ([]domain.KnowledgeEntry, error) {
	query := `
SELECT id, category, title, COALESCE(title_ar, ''), content, COALESCE(content_ar, ''), tags, embedding, view_count, helpful_count
FROM knowledge_entries
`
	args := []any{}
	if category != "" {
		query += "WHERE category = $1\n"
		args = append(args, string(category))
	}
	query += "ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query knowledge entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.KnowledgeEntry, 0)
	for rows.Next() {
		var entry domain.KnowledgeEntry
		var cat string
		var tagsRaw []byte
		var embeddingRaw []byte
		err := rows.Scan(
			&entry.ID, &cat, &entry.Title, &entry.TitleAr, &entry.Content, &entry.ContentAr,
			&tagsRaw, &embeddingRaw, &entry.ViewCount, &entry.HelpfulCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan knowledge entry: %w", err)
		}
		entry.Category = domain.KnowledgeCategory(cat)
		if len(tagsRaw) > 0 {
			if err := json.Unmarshal(tagsRaw, &entry.Tags); err != nil {
				return nil, fmt.Errorf("unmarshal tags for %s: %w", entry.ID, err)
			}
		}
		if len(embeddingRaw) > 0 {
			if err := json.Unmarshal(embeddingRaw, &entry.Embedding); err != nil {
				return nil, fmt.Errorf("unmarshal embedding for %s: %w", entry.ID, err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate knowledge entries: %w", err)
	}
	return entries, nil
}

// SaveEmbedding persists a freshly computed vector for one entry. Used by
// the indexing path, never by search.
func (r *KnowledgeRepository) SaveEmbedding(ctx context.Context, id string, embedding []float32) error {
	raw, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE knowledge_entries
SET embedding = $2
WHERE id = $1
`, id, raw)
	if err != nil {
		return fmt.Errorf("update embedding: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("embedding rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "save embedding", fmt.Errorf("entry %s", id))
	}
	return nil
}
