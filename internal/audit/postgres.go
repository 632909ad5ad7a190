package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"caselens/internal/analysis"
)

// PostgresStore keeps audit records in Postgres as JSONB documents. The
// database assigns the creation timestamp.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects and ensures the audit table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to audit database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS audit_records (
		id         TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		agent      TEXT NOT NULL,
		issue_type TEXT NOT NULL,
		risk_level TEXT NOT NULL,
		body       JSONB NOT NULL
	)`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize audit schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Append implements Store.
func (p *PostgresStore) Append(ctx context.Context, rec *analysis.AuditRecord) (string, error) {
	if rec.Agent == "" {
		rec.Agent = "unknown"
	}
	rec.ID = uuid.NewString()

	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode audit record: %w", err)
	}

	row := p.pool.QueryRow(ctx,
		`INSERT INTO audit_records (id, agent, issue_type, risk_level, body)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		rec.ID, rec.Agent, rec.IssueType, rec.RiskLevel, body)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		return "", fmt.Errorf("append audit record: %w", err)
	}
	return rec.ID, nil
}

// Recent implements Store.
func (p *PostgresStore) Recent(ctx context.Context, n int) ([]analysis.AuditRecord, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := p.pool.Query(ctx,
		`SELECT body, created_at FROM audit_records ORDER BY created_at DESC LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var recs []analysis.AuditRecord
	for rows.Next() {
		var body []byte
		var rec analysis.AuditRecord
		if err := rows.Scan(&body, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		createdAt := rec.CreatedAt
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, fmt.Errorf("decode audit record: %w", err)
		}
		rec.CreatedAt = createdAt
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Close implements Store.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
