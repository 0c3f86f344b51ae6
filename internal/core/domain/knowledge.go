package domain

type KnowledgeCategory string

const (
	CategoryRegulation  KnowledgeCategory = "regulation"
	CategoryPlaybook    KnowledgeCategory = "playbook"
	CategoryThreatIntel KnowledgeCategory = "threat_intel"
	CategoryFAQ         KnowledgeCategory = "faq"
	CategoryPlatform    KnowledgeCategory = "platform"
)

// KnowledgeEntry is owned by the knowledge-base collaborator; the search
// engine only reads it. Embedding is computed externally and may be stale
// relative to content edits; the engine trusts the stored vector.
type KnowledgeEntry struct {
	ID           string            `json:"id"`
	Category     KnowledgeCategory `json:"category"`
	Title        string            `json:"title"`
	TitleAr      string            `json:"title_ar,omitempty"`
	Content      string            `json:"content"`
	ContentAr    string            `json:"content_ar,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	Embedding    []float32         `json:"-"`
	ViewCount    int               `json:"view_count"`
	HelpfulCount int               `json:"helpful_count"`
}

// ScoreSource tags which stage produced a result score. Cosine and lexical
// scores live on different scales and are never re-blended into one order.
type ScoreSource string

const (
	ScoreVector  ScoreSource = "vector"
	ScoreLexical ScoreSource = "lexical"
)

type SemanticSearchResult struct {
	Entry      KnowledgeEntry `json:"entry"`
	Similarity float64        `json:"similarity"`
	Source     ScoreSource    `json:"source"`
	Rank       int            `json:"rank"`
}

// SearchOptions tunes one semantic search. Zero values select the
// documented defaults (top 5, threshold 0.65, backfill below 2 vector
// results).
type SearchOptions struct {
	TopK             int
	Threshold        float64
	Category         KnowledgeCategory
	MinVectorResults int
}

const (
	DefaultSearchTopK             = 5
	DefaultSearchThreshold        = 0.65
	DefaultMinVectorResults       = 2
	DefaultLexicalScoreFloor      = 0.1
	DefaultLexicalFullMatchWeight = 0.9
)

func (o SearchOptions) Normalize() SearchOptions {
	out := o
	if out.TopK <= 0 {
		out.TopK = DefaultSearchTopK
	}
	if out.Threshold <= 0 {
		out.Threshold = DefaultSearchThreshold
	}
	if out.MinVectorResults <= 0 {
		out.MinVectorResults = DefaultMinVectorResults
	}
	return out
}
