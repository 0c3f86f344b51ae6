package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leakwatch/assistant/internal/core/domain"
)

// DirectoryRepository serves the read-only platform listings behind the
// directory tools.
type DirectoryRepository struct {
	db *sql.DB
}

func NewDirectoryRepository(db *sql.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultQueryLimit
	}
	return limit
}

func (r *DirectoryRepository) ListSellers(ctx context.Context, limit int) ([]domain.Seller, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, handle, marketplace, reputation, listing_count, first_seen_at, last_seen_at
FROM sellers
ORDER BY last_seen_at DESC
LIMIT $1
`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query sellers: %w", err)
	}
	defer rows.Close()

	sellers := make([]domain.Seller, 0)
	for rows.Next() {
		var seller domain.Seller
		if err := rows.Scan(&seller.ID, &seller.Handle, &seller.Marketplace, &seller.Reputation, &seller.ListingCount, &seller.FirstSeenAt, &seller.LastSeenAt); err != nil {
			return nil, fmt.Errorf("scan seller: %w", err)
		}
		sellers = append(sellers, seller)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sellers: %w", err)
	}
	return sellers, nil
}

func (r *DirectoryRepository) ListChannels(ctx context.Context, limit int) ([]domain.Channel, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, platform, monitored, leak_count
FROM channels
ORDER BY leak_count DESC
LIMIT $1
`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	channels := make([]domain.Channel, 0)
	for rows.Next() {
		var channel domain.Channel
		if err := rows.Scan(&channel.ID, &channel.Name, &channel.Platform, &channel.Monitored, &channel.LeakCount); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, channel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channels: %w", err)
	}
	return channels, nil
}

func (r *DirectoryRepository) ListMonitoringJobs(ctx context.Context, limit int) ([]domain.MonitoringJob, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, channel_id, schedule, status, last_run_at
FROM monitoring_jobs
ORDER BY id
LIMIT $1
`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query monitoring jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]domain.MonitoringJob, 0)
	for rows.Next() {
		var job domain.MonitoringJob
		if err := rows.Scan(&job.ID, &job.ChannelID, &job.Schedule, &job.Status, &job.LastRunAt); err != nil {
			return nil, fmt.Errorf("scan monitoring job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monitoring jobs: %w", err)
	}
	return jobs, nil
}

func (r *DirectoryRepository) ListEvidence(ctx context.Context, leakID string) ([]domain.Evidence, error) {
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

func (r *DirectoryRepository) ListReports(ctx context.Context, limit int) ([]domain.Report, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, kind, status, requested_by, created_at
FROM reports
ORDER BY created_at DESC
LIMIT $1
`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	reports := make([]domain.Report, 0)
	for rows.Next() {
		var report domain.Report
		if err := rows.Scan(&report.ID, &report.Title, &report.Kind, &report.Status, &report.RequestedBy, &report.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

func (r *DirectoryRepository) ListUsers(ctx context.Context, limit int) ([]domain.PlatformUser, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, email, role, last_active_at
FROM platform_users
ORDER BY name
LIMIT $1
`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.PlatformUser, 0)
	for rows.Next() {
		var user domain.PlatformUser
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.RoleName, &user.LastActiveAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}
