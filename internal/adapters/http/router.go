package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/leakwatch/assistant/internal/core/agent"
	"github.com/leakwatch/assistant/internal/core/domain"
	"github.com/leakwatch/assistant/internal/core/ports"
	"github.com/leakwatch/assistant/internal/core/search"
	"github.com/leakwatch/assistant/internal/observability/metrics"
)

const serviceName = "assistant-api"

type Router struct {
	assistant ports.AssistantService
	searcher  ports.KnowledgeSearcher
	indexer   *search.Indexer
	catalog   []domain.ToolDescriptor
	metrics   *metrics.HTTPServerMetrics
	traffic   *TrafficControl
}

func NewRouter(
	assistant ports.AssistantService,
	searcher ports.KnowledgeSearcher,
	indexer *search.Indexer,
	catalog []domain.ToolDescriptor,
	m *metrics.HTTPServerMetrics,
	traffic *TrafficControl,
) *Router {
	return &Router{
		assistant: assistant,
		searcher:  searcher,
		indexer:   indexer,
		catalog:   catalog,
		metrics:   m,
		traffic:   traffic,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/assistant/chat", rt.chat)
	mux.HandleFunc("/v1/assistant/tools", rt.tools)
	mux.HandleFunc("/v1/knowledge/search", rt.searchKnowledge)
	mux.HandleFunc("/v1/knowledge/reindex", rt.reindexKnowledge)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.traffic != nil {
		handler = rt.traffic.middleware(handler)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req domain.AssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	reply, err := rt.assistant.Respond(r.Context(), req)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordAssistantRun(serviceName, "error", 0)
		}
		writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordAssistantRun(serviceName, "ok", reply.Iterations)
		for _, tool := range reply.ToolsUsed {
			rt.metrics.RecordAssistantToolCall(serviceName, tool)
		}
	}
	writeJSON(w, http.StatusOK, reply)
}

func (rt *Router) tools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"version": agent.CatalogVersion,
		"tools":   rt.catalog,
	})
}

func (rt *Router) searchKnowledge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query    string  `json:"query"`
		Category string  `json:"category"`
		Limit    int     `json:"limit"`
		MinScore float64 `json:"min_score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	start := time.Now()
	results, err := rt.searcher.Search(r.Context(), req.Query, domain.SearchOptions{
		TopK:      req.Limit,
		Threshold: req.MinScore,
		Category:  domain.KnowledgeCategory(strings.ToLower(strings.TrimSpace(req.Category))),
	})
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordSearch(serviceName, "error", 0, time.Since(start))
		}
		writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordSearch(serviceName, "ok", len(results), time.Since(start))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

func (rt *Router) reindexKnowledge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.indexer == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "indexing is not configured"})
		return
	}

	indexed, err := rt.indexer.Reindex(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"indexed": indexed})
}

func statusForError(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput), domain.IsKind(err, domain.ErrEmptyInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
