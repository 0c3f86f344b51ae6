package ports

import (
	"context"

	"github.com/leakwatch/assistant/internal/core/domain"
)

// AssistantService is the inbound contract for one conversation turn.
type AssistantService interface {
	Respond(ctx context.Context, req domain.AssistantRequest) (*domain.AssistantReply, error)
}

// KnowledgeSearcher is the inbound contract for direct semantic search.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SemanticSearchResult, error)
}
