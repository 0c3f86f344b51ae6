package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/leakwatch/assistant/internal/core/domain"
)

func newAuditRepoWithMock(t *testing.T) (*AuditRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &AuditRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestInsertTurnSerializesTools(t *testing.T) {
	repo, mock, done := newAuditRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO assistant_audit").
		WithArgs("turn-1", "u-1", "Sara", "how many leaks?", []byte(`["query_leaks","get_dashboard_stats"]`), 2, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.InsertTurn(context.Background(), domain.AuditTurn{
		ID:        "turn-1",
		UserID:    "u-1",
		UserName:  "Sara",
		Query:     "how many leaks?",
		ToolsUsed: []string{"query_leaks", "get_dashboard_stats"},
		StepCount: 2,
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("InsertTurn() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListRecordsFiltersByUser(t *testing.T) {
	repo, mock, done := newAuditRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "user_name", "query", "tools_used", "step_count", "created_at"}).
		AddRow("turn-1", "u-1", "Sara", "leaks?", []byte(`["query_leaks"]`), 1, now)

	mock.ExpectQuery("SELECT id, user_id").
		WithArgs("u-1", 5).
		WillReturnRows(rows)

	records, err := repo.ListRecords(context.Background(), domain.AuditFilter{UserID: "u-1", Limit: 5})
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if len(records[0].ToolsUsed) != 1 || records[0].ToolsUsed[0] != "query_leaks" {
		t.Fatalf("unexpected tools: %v", records[0].ToolsUsed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
