package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/leakwatch/assistant/internal/core/domain"
)

type fakeLeakDirectory struct {
	leaks      []domain.Leak
	detail     *domain.LeakDetail
	stats      *domain.DashboardStats
	err        error
	lastFilter domain.LeakFilter
}

func (f *fakeLeakDirectory) QueryLeaks(_ context.Context, filter domain.LeakFilter) ([]domain.Leak, error) {
	f.lastFilter = filter
	return f.leaks, f.err
}

func (f *fakeLeakDirectory) GetLeakByID(_ context.Context, id string) (*domain.LeakDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.detail == nil || f.detail.ID != id {
		return nil, domain.WrapError(domain.ErrNotFound, "get leak", errors.New(id))
	}
	return f.detail, nil
}

func (f *fakeLeakDirectory) DashboardStats(context.Context) (*domain.DashboardStats, error) {
	return f.stats, f.err
}

type fakePlatformDirectory struct {
	sellers   []domain.Seller
	channels  []domain.Channel
	jobs      []domain.MonitoringJob
	evidence  []domain.Evidence
	reports   []domain.Report
	users     []domain.PlatformUser
	err       error
	lastLimit int
}

func (f *fakePlatformDirectory) ListSellers(_ context.Context, limit int) ([]domain.Seller, error) {
	f.lastLimit = limit
	return f.sellers, f.err
}

func (f *fakePlatformDirectory) ListChannels(_ context.Context, limit int) ([]domain.Channel, error) {
	f.lastLimit = limit
	return f.channels, f.err
}

func (f *fakePlatformDirectory) ListMonitoringJobs(_ context.Context, limit int) ([]domain.MonitoringJob, error) {
	f.lastLimit = limit
	return f.jobs, f.err
}

func (f *fakePlatformDirectory) ListEvidence(_ context.Context, leakID string) ([]domain.Evidence, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Evidence, 0, len(f.evidence))
	for _, item := range f.evidence {
		if item.LeakID == leakID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakePlatformDirectory) ListReports(_ context.Context, limit int) ([]domain.Report, error) {
	f.lastLimit = limit
	return f.reports, f.err
}

func (f *fakePlatformDirectory) ListUsers(_ context.Context, limit int) ([]domain.PlatformUser, error) {
	f.lastLimit = limit
	return f.users, f.err
}

type fakeAuditTrail struct {
	records    []domain.AuditTurn
	inserted   []domain.AuditTurn
	err        error
	lastFilter domain.AuditFilter
}

func (f *fakeAuditTrail) ListRecords(_ context.Context, filter domain.AuditFilter) ([]domain.AuditTurn, error) {
	f.lastFilter = filter
	return f.records, f.err
}

func (f *fakeAuditTrail) InsertTurn(_ context.Context, turn domain.AuditTurn) error {
	f.inserted = append(f.inserted, turn)
	return f.err
}

type fakeSearcher struct {
	results  []domain.SemanticSearchResult
	err      error
	lastOpts domain.SearchOptions
	queries  []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SemanticSearchResult, error) {
	f.queries = append(f.queries, query)
	f.lastOpts = opts
	return f.results, f.err
}

func newTestToolset() (*Toolset, *fakeLeakDirectory, *fakePlatformDirectory, *fakeAuditTrail, *fakeSearcher) {
	leaks := &fakeLeakDirectory{}
	directory := &fakePlatformDirectory{}
	audit := &fakeAuditTrail{}
	searcher := &fakeSearcher{}
	return NewToolset(leaks, directory, audit, searcher), leaks, directory, audit, searcher
}

func TestHandlersCoverCatalog(t *testing.T) {
	toolset, _, _, _, _ := newTestToolset()
	if _, err := NewDispatcher(Catalog(), toolset.Handlers()); err != nil {
		t.Fatalf("catalog and handlers must line up: %v", err)
	}
}

func TestQueryLeaksNormalizesFilter(t *testing.T) {
	toolset, leaks, _, _, _ := newTestToolset()
	leaks.leaks = []domain.Leak{{ID: "lk-1"}, {ID: "lk-2"}}

	payload, summary, err := toolset.queryLeaks(context.Background(), map[string]any{
		"status":   "Confirmed",
		"severity": "HIGH",
		"query":    "  hospital  ",
		"limit":    float64(5),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if leaks.lastFilter.Status != domain.LeakStatusConfirmed {
		t.Fatalf("expected lowered status, got %q", leaks.lastFilter.Status)
	}
	if leaks.lastFilter.Severity != domain.SeverityHigh {
		t.Fatalf("expected lowered severity, got %q", leaks.lastFilter.Severity)
	}
	if leaks.lastFilter.Query != "hospital" {
		t.Fatalf("expected trimmed query, got %q", leaks.lastFilter.Query)
	}
	if leaks.lastFilter.Limit != 5 {
		t.Fatalf("expected limit 5, got %d", leaks.lastFilter.Limit)
	}
	result := payload.(map[string]any)
	if result["count"] != 2 {
		t.Fatalf("expected count 2, got %v", result["count"])
	}
	if summary != "2 leaks found" {
		t.Fatalf("unexpected summary: %q", summary)
	}
}

func TestGetLeakDetailsRequiresID(t *testing.T) {
	toolset, _, _, _, _ := newTestToolset()
	if _, _, err := toolset.getLeakDetails(context.Background(), map[string]any{}); err == nil {
		t.Fatal("expected error for missing leak_id")
	}
}

func TestGetDashboardStats(t *testing.T) {
	toolset, leaks, _, _, _ := newTestToolset()
	leaks.stats = &domain.DashboardStats{TotalLeaks: 42, NewLeaksLast7Days: 3}

	payload, summary, err := toolset.getDashboardStats(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats := payload.(*domain.DashboardStats)
	if stats.TotalLeaks != 42 {
		t.Fatalf("expected 42 total leaks, got %d", stats.TotalLeaks)
	}
	if summary != "42 leaks total, 3 new in 7 days" {
		t.Fatalf("unexpected summary: %q", summary)
	}
}

func TestSearchKnowledgePassesCategoryAndLimit(t *testing.T) {
	toolset, _, _, _, searcher := newTestToolset()
	searcher.results = []domain.SemanticSearchResult{{Rank: 1}}

	_, summary, err := toolset.searchKnowledge(context.Background(), map[string]any{
		"query":    "pdpl notification window",
		"category": "Regulation",
		"limit":    float64(2),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if searcher.lastOpts.Category != domain.CategoryRegulation {
		t.Fatalf("expected regulation category, got %q", searcher.lastOpts.Category)
	}
	if searcher.lastOpts.TopK != 2 {
		t.Fatalf("expected topK 2, got %d", searcher.lastOpts.TopK)
	}
	if summary != "1 match found" {
		t.Fatalf("unexpected summary: %q", summary)
	}
}

func TestSearchKnowledgeRequiresQuery(t *testing.T) {
	toolset, _, _, _, searcher := newTestToolset()
	if _, _, err := toolset.searchKnowledge(context.Background(), map[string]any{"query": "   "}); err == nil {
		t.Fatal("expected error for blank query")
	}
	if len(searcher.queries) != 0 {
		t.Fatal("searcher must not be called for blank query")
	}
}

func TestListEvidenceFiltersByLeak(t *testing.T) {
	toolset, _, directory, _, _ := newTestToolset()
	directory.evidence = []domain.Evidence{
		{ID: "ev-1", LeakID: "lk-1"},
		{ID: "ev-2", LeakID: "lk-2"},
	}

	payload, _, err := toolset.listEvidence(context.Background(), map[string]any{"leak_id": "lk-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := payload.(map[string]any)
	if result["count"] != 1 {
		t.Fatalf("expected 1 artifact, got %v", result["count"])
	}
}

func TestListToolsDefaultLimit(t *testing.T) {
	toolset, _, directory, audit, _ := newTestToolset()

	if _, _, err := toolset.listSellers(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if directory.lastLimit != defaultListLimit {
		t.Fatalf("expected default limit %d, got %d", defaultListLimit, directory.lastLimit)
	}

	if _, _, err := toolset.listAuditLogs(context.Background(), map[string]any{"user_id": " u-7 "}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if audit.lastFilter.UserID != "u-7" {
		t.Fatalf("expected trimmed user filter, got %q", audit.lastFilter.UserID)
	}
	if audit.lastFilter.Limit != defaultListLimit {
		t.Fatalf("expected default limit %d, got %d", defaultListLimit, audit.lastFilter.Limit)
	}
}

func TestIntArgCoercion(t *testing.T) {
	args := map[string]any{
		"float":  float64(7),
		"int":    3,
		"string": " 11 ",
		"junk":   "eleven",
	}
	if got := intArg(args, "float", 0); got != 7 {
		t.Fatalf("float64: expected 7, got %d", got)
	}
	if got := intArg(args, "int", 0); got != 3 {
		t.Fatalf("int: expected 3, got %d", got)
	}
	if got := intArg(args, "string", 0); got != 11 {
		t.Fatalf("numeric string: expected 11, got %d", got)
	}
	if got := intArg(args, "junk", 9); got != 9 {
		t.Fatalf("junk string: expected fallback 9, got %d", got)
	}
	if got := intArg(args, "missing", 4); got != 4 {
		t.Fatalf("missing key: expected fallback 4, got %d", got)
	}
}
