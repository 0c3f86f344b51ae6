package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/leakwatch/assistant/internal/core/domain"
	"github.com/leakwatch/assistant/internal/core/ports"
)

const defaultListLimit = 20

// Toolset binds the catalog handlers to the platform data collaborators.
type Toolset struct {
	leaks     ports.LeakDirectory
	directory ports.PlatformDirectory
	audit     ports.AuditTrail
	searcher  ports.KnowledgeSearcher
}

func NewToolset(
	leaks ports.LeakDirectory,
	directory ports.PlatformDirectory,
	audit ports.AuditTrail,
	searcher ports.KnowledgeSearcher,
) *Toolset {
	return &Toolset{
		leaks:     leaks,
		directory: directory,
		audit:     audit,
		searcher:  searcher,
	}
}

// Handlers returns one handler per catalog tool.
func (t *Toolset) Handlers() map[string]Handler {
	return map[string]Handler{
		ToolQueryLeaks:         t.queryLeaks,
		ToolGetLeakDetails:     t.getLeakDetails,
		ToolGetDashboardStats:  t.getDashboardStats,
		ToolSearchKnowledge:    t.searchKnowledge,
		ToolListSellers:        t.listSellers,
		ToolListChannels:       t.listChannels,
		ToolListMonitoringJobs: t.listMonitoringJobs,
		ToolListEvidence:       t.listEvidence,
		ToolListAuditLogs:      t.listAuditLogs,
		ToolListReports:        t.listReports,
		ToolListUsers:          t.listUsers,
	}
}

func (t *Toolset) queryLeaks(ctx context.Context, args map[string]any) (any, string, error) {
	filter := domain.LeakFilter{
		Status:   domain.LeakStatus(strings.ToLower(stringArg(args, "status", ""))),
		Severity: domain.LeakSeverity(strings.ToLower(stringArg(args, "severity", ""))),
		Source:   strings.ToLower(stringArg(args, "source", "")),
		Query:    strings.TrimSpace(stringArg(args, "query", "")),
		Limit:    intArg(args, "limit", defaultListLimit),
	}
	leaks, err := t.leaks.QueryLeaks(ctx, filter)
	if err != nil {
		return nil, "", fmt.Errorf("query leaks: %w", err)
	}
	return map[string]any{"leaks": leaks, "count": len(leaks)}, countSummary(len(leaks), "leak"), nil
}

func (t *Toolset) getLeakDetails(ctx context.Context, args map[string]any) (any, string, error) {
	id := strings.TrimSpace(stringArg(args, "leak_id", ""))
	if id == "" {
		return nil, "", fmt.Errorf("leak_id is required")
	}
	detail, err := t.leaks.GetLeakByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("get leak %s: %w", id, err)
	}
	return detail, fmt.Sprintf("leak %s (%s, %d records)", detail.ID, detail.Severity, detail.RecordCount), nil
}

func (t *Toolset) getDashboardStats(ctx context.Context, _ map[string]any) (any, string, error) {
	stats, err := t.leaks.DashboardStats(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, fmt.Sprintf("%d leaks total, %d new in 7 days", stats.TotalLeaks, stats.NewLeaksLast7Days), nil
}

func (t *Toolset) searchKnowledge(ctx context.Context, args map[string]any) (any, string, error) {
	query := strings.TrimSpace(stringArg(args, "query", ""))
	if query == "" {
		return nil, "", fmt.Errorf("query is required")
	}
	results, err := t.searcher.Search(ctx, query, domain.SearchOptions{
		TopK:     intArg(args, "limit", domain.DefaultSearchTopK),
		Category: domain.KnowledgeCategory(strings.ToLower(stringArg(args, "category", ""))),
	})
	if err != nil {
		return nil, "", fmt.Errorf("search knowledge: %w", err)
	}
	return map[string]any{"results": results, "count": len(results)}, countSummary(len(results), "match"), nil
}

func (t *Toolset) listSellers(ctx context.Context, args map[string]any) (any, string, error) {
	sellers, err := t.directory.ListSellers(ctx, intArg(args, "limit", defaultListLimit))
	if err != nil {
		return nil, "", fmt.Errorf("list sellers: %w", err)
	}
	return map[string]any{"sellers": sellers, "count": len(sellers)}, countSummary(len(sellers), "seller"), nil
}

func (t *Toolset) listChannels(ctx context.Context, args map[string]any) (any, string, error) {
	channels, err := t.directory.ListChannels(ctx, intArg(args, "limit", defaultListLimit))
	if err != nil {
		return nil, "", fmt.Errorf("list channels: %w", err)
	}
	return map[string]any{"channels": channels, "count": len(channels)}, countSummary(len(channels), "channel"), nil
}

func (t *Toolset) listMonitoringJobs(ctx context.Context, args map[string]any) (any, string, error) {
	jobs, err := t.directory.ListMonitoringJobs(ctx, intArg(args, "limit", defaultListLimit))
	if err != nil {
		return nil, "", fmt.Errorf("list monitoring jobs: %w", err)
	}
	return map[string]any{"jobs": jobs, "count": len(jobs)}, countSummary(len(jobs), "job"), nil
}

func (t *Toolset) listEvidence(ctx context.Context, args map[string]any) (any, string, error) {
	leakID := strings.TrimSpace(stringArg(args, "leak_id", ""))
	if leakID == "" {
		return nil, "", fmt.Errorf("leak_id is required")
	}
	evidence, err := t.directory.ListEvidence(ctx, leakID)
	if err != nil {
		return nil, "", fmt.Errorf("list evidence for %s: %w", leakID, err)
	}
	return map[string]any{"evidence": evidence, "count": len(evidence)}, countSummary(len(evidence), "artifact"), nil
}

func (t *Toolset) listAuditLogs(ctx context.Context, args map[string]any) (any, string, error) {
	records, err := t.audit.ListRecords(ctx, domain.AuditFilter{
		UserID: strings.TrimSpace(stringArg(args, "user_id", "")),
		Limit:  intArg(args, "limit", defaultListLimit),
	})
	if err != nil {
		return nil, "", fmt.Errorf("list audit records: %w", err)
	}
	return map[string]any{"records": records, "count": len(records)}, countSummary(len(records), "record"), nil
}

func (t *Toolset) listReports(ctx context.Context, args map[string]any) (any, string, error) {
	reports, err := t.directory.ListReports(ctx, intArg(args, "limit", defaultListLimit))
	if err != nil {
		return nil, "", fmt.Errorf("list reports: %w", err)
	}
	return map[string]any{"reports": reports, "count": len(reports)}, countSummary(len(reports), "report"), nil
}

func (t *Toolset) listUsers(ctx context.Context, args map[string]any) (any, string, error) {
	users, err := t.directory.ListUsers(ctx, intArg(args, "limit", defaultListLimit))
	if err != nil {
		return nil, "", fmt.Errorf("list users: %w", err)
	}
	return map[string]any{"users": users, "count": len(users)}, countSummary(len(users), "user"), nil
}

func countSummary(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s found", noun)
	}
	return fmt.Sprintf("%d %ss found", n, noun)
}

func stringArg(args map[string]any, key, fallback string) string {
	if args == nil {
		return fallback
	}
	value, ok := args[key]
	if !ok || value == nil {
		return fallback
	}
	switch typed := value.(type) {
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}

func intArg(args map[string]any, key string, fallback int) int {
	if args == nil {
		return fallback
	}
	value, ok := args[key]
	if !ok || value == nil {
		return fallback
	}
	switch typed := value.(type) {
	case float64:
		return int(typed)
	case int:
		return typed
	case int64:
		return int(typed)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return fallback
		}
		return n
	default:
		return fallback
	}
}
