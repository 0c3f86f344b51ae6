package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/leakwatch/assistant/internal/core/domain"
)

const defaultQueryLimit = 50

type LeakRepository struct {
	db *sql.DB
}

func NewLeakRepository(db *sql.DB) *LeakRepository {
	return &LeakRepository{db: db}
}

func (r *LeakRepository) QueryLeaks(ctx context.Context, filter domain.LeakFilter) ([]domain.Leak, error) {
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Severity != "" {
		args = append(args, string(filter.Severity))
		conditions = append(conditions, fmt.Sprintf("severity = $%d", len(args)))
	}
	if filter.Source != "" {
		args = append(args, filter.Source)
		conditions = append(conditions, fmt.Sprintf("source = $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		conditions = append(conditions, fmt.Sprintf("title ILIKE $%d", len(args)))
	}

	query := `
SELECT id, title, source, severity, status, record_count, COALESCE(seller_handle, ''), discovered_at
FROM leaks
`
	if len(conditions) > 0 {
		query += "WHERE " + strings.Join(conditions, " AND ") + "\n"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf("ORDER BY discovered_at DESC\nLIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leaks: %w", err)
	}
	defer rows.Close()

	leaks := make([]domain.Leak, 0)
	for rows.Next() {
		var leak domain.Leak
		var severity, status string
		if err := rows.Scan(&leak.ID, &leak.Title, &leak.Source, &severity, &status, &leak.RecordCount, &leak.SellerHandle, &leak.DiscoveredAt); err != nil {
			return nil, fmt.Errorf("scan leak: %w", err)
		}
		leak.Severity = domain.LeakSeverity(severity)
		leak.Status = domain.LeakStatus(status)
		leaks = append(leaks, leak)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaks: %w", err)
	}
	return leaks, nil
}

func (r *LeakRepository) GetLeakByID(ctx context.Context, id string) (*domain.LeakDetail, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, source, severity, status, record_count, COALESCE(seller_handle, ''),
	COALESCE(description, ''), affected_domains, discovered_at
FROM leaks
WHERE id = $1
`, id)

	var detail domain.LeakDetail
	var severity, status string
	var domainsRaw []byte
	err := row.Scan(
		&detail.ID, &detail.Title, &detail.Source, &severity, &status, &detail.RecordCount,
		&detail.SellerHandle, &detail.Description, &domainsRaw, &detail.DiscoveredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get leak", fmt.Errorf("leak %s", id))
		}
		return nil, fmt.Errorf("scan leak: %w", err)
	}
	detail.Severity = domain.LeakSeverity(severity)
	detail.Status = domain.LeakStatus(status)
	if len(domainsRaw) > 0 {
		if err := json.Unmarshal(domainsRaw, &detail.AffectedDomains); err != nil {
			return nil, fmt.Errorf("unmarshal affected domains: %w", err)
		}
	}

	evidence, err := r.listEvidence(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Evidence = evidence
	return &detail, nil
}

func (r *LeakRepository) listEvidence(ctx context.Context, leakID string) ([]domain.Evidence, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, leak_id, kind, sha256, captured_at
FROM evidence
WHERE leak_id = $1
ORDER BY captured_at DESC
`, leakID)
	if err != nil {
		return nil, fmt.Errorf("query evidence: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Evidence, 0)
	for rows.Next() {
		var item domain.Evidence
		if err := rows.Scan(&item.ID, &item.LeakID, &item.Kind, &item.SHA256, &item.CapturedAt); err != nil {
			return nil, fmt.Errorf("scan evidence: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evidence: %w", err)
	}
	return items, nil
}

func (r *LeakRepository) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT
	(SELECT COUNT(*) FROM leaks),
	(SELECT COUNT(*) FROM leaks WHERE discovered_at >= NOW() - INTERVAL '7 days'),
	(SELECT COUNT(*) FROM leaks WHERE status = 'confirmed'),
	(SELECT COUNT(*) FROM sellers),
	(SELECT COUNT(*) FROM channels WHERE monitored),
	(SELECT COUNT(*) FROM reports WHERE status = 'open'),
	(SELECT COALESCE(SUM(record_count), 0) FROM leaks)
`)

	var stats domain.DashboardStats
	err := row.Scan(
		&stats.TotalLeaks, &stats.NewLeaksLast7Days, &stats.ConfirmedLeaks,
		&stats.ActiveSellers, &stats.MonitoredChannels, &stats.OpenReports,
		&stats.TotalRecordsExposed,
	)
	if err != nil {
		return nil, fmt.Errorf("scan dashboard stats: %w", err)
	}
	return &stats, nil
}
