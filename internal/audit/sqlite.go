package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"caselens/internal/analysis"
)

// sqliteTimeFormat is fixed-width so that the lexicographic ORDER BY on the
// created_at column matches chronological order. RFC3339Nano would trim
// trailing zeros and break the ordering at whole-second boundaries.
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps audit records in a local SQLite database. Each record is
// stored as a JSON document with a few promoted columns for listing.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	// Single writer; SQLite handles concurrency poorly beyond that.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure audit database: %w", err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS audit_records (
		id         TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		agent      TEXT NOT NULL,
		issue_type TEXT NOT NULL,
		risk_level TEXT NOT NULL,
		body       TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_created ON audit_records(created_at);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize audit schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, rec *analysis.AuditRecord) (string, error) {
	if rec.Agent == "" {
		rec.Agent = "unknown"
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()

	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode audit record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audit_records (id, created_at, agent, issue_type, risk_level, body)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.Format(sqliteTimeFormat), rec.Agent, rec.IssueType, rec.RiskLevel, string(body))
	if err != nil {
		return "", fmt.Errorf("append audit record: %w", err)
	}
	return rec.ID, nil
}

// Recent implements Store.
func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]analysis.AuditRecord, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM audit_records ORDER BY created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var recs []analysis.AuditRecord
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		var rec analysis.AuditRecord
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			return nil, fmt.Errorf("decode audit record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error { return s.db.Close() }
