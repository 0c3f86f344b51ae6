package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/leakwatch/assistant/internal/core/domain"
)

func newLeakRepoWithMock(t *testing.T) (*LeakRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &LeakRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestQueryLeaksAppliesFilters(t *testing.T) {
	repo, mock, done := newLeakRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "title", "source", "severity", "status", "record_count", "seller_handle", "discovered_at"}).
		AddRow("lk-1", "hospital dump", "forum", "high", "confirmed", int64(120000), "ghost", now)

	mock.ExpectQuery("SELECT id, title, source, severity, status, record_count").
		WithArgs("confirmed", "high", "%hospital%", 10).
		WillReturnRows(rows)

	leaks, err := repo.QueryLeaks(context.Background(), domain.LeakFilter{
		Status:   domain.LeakStatusConfirmed,
		Severity: domain.SeverityHigh,
		Query:    "hospital",
		Limit:    10,
	})
	if err != nil {
		t.Fatalf("QueryLeaks() error = %v", err)
	}
	if len(leaks) != 1 {
		t.Fatalf("expected 1 leak, got %d", len(leaks))
	}
	if leaks[0].Severity != domain.SeverityHigh || leaks[0].Status != domain.LeakStatusConfirmed {
		t.Fatalf("unexpected leak: %#v", leaks[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestQueryLeaksDefaultsLimit(t *testing.T) {
	repo, mock, done := newLeakRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, title, source, severity, status, record_count").
		WithArgs(defaultQueryLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "source", "severity", "status", "record_count", "seller_handle", "discovered_at"}))

	leaks, err := repo.QueryLeaks(context.Background(), domain.LeakFilter{})
	if err != nil {
		t.Fatalf("QueryLeaks() error = %v", err)
	}
	if len(leaks) != 0 {
		t.Fatalf("expected no leaks, got %d", len(leaks))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetLeakByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newLeakRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, title, source, severity, status, record_count").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetLeakByID(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetLeakByIDLoadsEvidence(t *testing.T) {
	repo, mock, done := newLeakRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	leakRows := sqlmock.NewRows([]string{"id", "title", "source", "severity", "status", "record_count", "seller_handle", "description", "affected_domains", "discovered_at"}).
		AddRow("lk-1", "hospital dump", "forum", "high", "confirmed", int64(120000), "ghost", "patient records", []byte(`["clinic.example"]`), now)
	evidenceRows := sqlmock.NewRows([]string{"id", "leak_id", "kind", "sha256", "captured_at"}).
		AddRow("ev-1", "lk-1", "screenshot", "abc123", now)

	mock.ExpectQuery("SELECT id, title, source, severity, status, record_count").
		WithArgs("lk-1").
		WillReturnRows(leakRows)
	mock.ExpectQuery("SELECT id, leak_id, kind, sha256, captured_at").
		WithArgs("lk-1").
		WillReturnRows(evidenceRows)

	detail, err := repo.GetLeakByID(context.Background(), "lk-1")
	if err != nil {
		t.Fatalf("GetLeakByID() error = %v", err)
	}
	if len(detail.AffectedDomains) != 1 || detail.AffectedDomains[0] != "clinic.example" {
		t.Fatalf("unexpected affected domains: %v", detail.AffectedDomains)
	}
	if len(detail.Evidence) != 1 || detail.Evidence[0].ID != "ev-1" {
		t.Fatalf("unexpected evidence: %#v", detail.Evidence)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDashboardStatsScansAggregates(t *testing.T) {
	repo, mock, done := newLeakRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"total", "new7", "confirmed", "sellers", "channels", "reports", "records"}).
		AddRow(int64(42), int64(3), int64(17), int64(9), int64(12), int64(2), int64(5800000))
	mock.ExpectQuery(`SELECT`).WillReturnRows(rows)

	stats, err := repo.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats() error = %v", err)
	}
	if stats.TotalLeaks != 42 || stats.TotalRecordsExposed != 5800000 {
		t.Fatalf("unexpected stats: %#v", stats)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
