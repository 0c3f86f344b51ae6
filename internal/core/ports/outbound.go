package ports

import (
	"context"

	"github.com/leakwatch/assistant/internal/core/domain"
)

// ChatModel is the opaque language-model boundary. One Complete call is one
// request/response exchange; tool calls come back as structured data.
type ChatModel interface {
	Complete(ctx context.Context, req domain.ModelRequest) (*domain.ModelResponse, error)
}

// EmbeddingProvider converts text into fixed-length vectors.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// KnowledgeBase supplies knowledge entries, with or without precomputed
// embeddings. The assistant core never writes to it.
type KnowledgeBase interface {
	ListEntries(ctx context.Context, category domain.KnowledgeCategory) ([]domain.KnowledgeEntry, error)
}

// KnowledgeIndex persists computed vectors back onto knowledge entries.
type KnowledgeIndex interface {
	SaveEmbedding(ctx context.Context, id string, embedding []float32) error
}

// LeakDirectory reads leak state and platform summary statistics.
type LeakDirectory interface {
	QueryLeaks(ctx context.Context, filter domain.LeakFilter) ([]domain.Leak, error)
	GetLeakByID(ctx context.Context, id string) (*domain.LeakDetail, error)
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
}

// PlatformDirectory reads the remaining platform listings consumed by tools.
type PlatformDirectory interface {
	ListSellers(ctx context.Context, limit int) ([]domain.Seller, error)
	ListChannels(ctx context.Context, limit int) ([]domain.Channel, error)
	ListMonitoringJobs(ctx context.Context, limit int) ([]domain.MonitoringJob, error)
	ListEvidence(ctx context.Context, leakID string) ([]domain.Evidence, error)
	ListReports(ctx context.Context, limit int) ([]domain.Report, error)
	ListUsers(ctx context.Context, limit int) ([]domain.PlatformUser, error)
}

// AuditTrail reads persisted audit records for the list_audit_logs tool and
// accepts writes from the audit worker.
type AuditTrail interface {
	ListRecords(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditTurn, error)
	InsertTurn(ctx context.Context, turn domain.AuditTurn) error
}

// AuditSink receives one event per completed assistant turn. Publish
// failures must never fail the turn.
type AuditSink interface {
	PublishTurn(ctx context.Context, turn domain.AuditTurn) error
}
