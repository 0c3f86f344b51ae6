package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/leakwatch/assistant/internal/core/domain"
)

// AuditRepository persists assistant turns. Writes come from the audit
// worker; reads serve the list_audit_logs tool.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) InsertTurn(ctx context.Context, turn domain.AuditTurn) error {
	toolsJSON, err := json.Marshal(turn.ToolsUsed)
	if err != nil {
		return fmt.Errorf("marshal tools used: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO assistant_audit (id, user_id, user_name, query, tools_used, step_count, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO NOTHING
`, turn.ID, turn.UserID, turn.UserName, turn.Query, toolsJSON, turn.StepCount, turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit turn: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListRecords(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditTurn, error) {
	query := `
SELECT id, user_id, COALESCE(user_name, ''), query, tools_used, step_count, created_at
FROM assistant_audit
`
	args := []any{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		query += fmt.Sprintf("WHERE user_id = $%d\n", len(args))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf("ORDER BY created_at DESC\nLIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.AuditTurn, 0)
	for rows.Next() {
		var record domain.AuditTurn
		var toolsRaw []byte
		if err := rows.Scan(&record.ID, &record.UserID, &record.UserName, &record.Query, &toolsRaw, &record.StepCount, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		if len(toolsRaw) > 0 {
			if err := json.Unmarshal(toolsRaw, &record.ToolsUsed); err != nil {
				return nil, fmt.Errorf("unmarshal tools used for %s: %w", record.ID, err)
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}
