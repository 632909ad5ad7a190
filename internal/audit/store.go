// Package audit persists one record per completed analysis. The store is
// append-only: records are created once and never updated or deleted. Recent
// exists only for the review CLI; the analysis pipeline itself never reads.
package audit

import (
	"context"
	"fmt"

	"caselens/internal/analysis"
	"caselens/internal/config"
)

// Store is the append-only audit record store.
type Store interface {
	// Append writes one record, assigns its id and creation timestamp, and
	// returns the id.
	Append(ctx context.Context, rec *analysis.AuditRecord) (string, error)
	// Recent returns up to n records, newest first.
	Recent(ctx context.Context, n int) ([]analysis.AuditRecord, error)
	Close() error
}

// Open selects a backend from configuration.
func Open(ctx context.Context, cfg config.Audit) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLiteStore(cfg.Path)
	case "postgres":
		return NewPostgresStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown audit driver: %q", cfg.Driver)
	}
}
