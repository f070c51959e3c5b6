package repository

import (
	"context"
	"fmt"
)

// Timestamps are stored as fixed-width UTC text so both dialects order
// them lexically.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS extract_jobs (
		id            TEXT PRIMARY KEY,
		source_name   TEXT NOT NULL,
		content_hash  TEXT NOT NULL,
		format        TEXT NOT NULL,
		status        TEXT NOT NULL,
		extractor     TEXT,
		invoice_id    TEXT,
		error_message TEXT,
		started_at    TEXT NOT NULL,
		finished_at   TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS extract_jobs_content_hash_idx ON extract_jobs (content_hash)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id             TEXT PRIMARY KEY,
		job_id         TEXT,
		source_name    TEXT NOT NULL,
		content_hash   TEXT NOT NULL,
		extractor      TEXT NOT NULL,
		supplier_cuit  TEXT,
		supplier_name  TEXT,
		invoice_number TEXT,
		invoice_type   TEXT,
		currency       TEXT NOT NULL,
		amount         TEXT,
		document_date  TEXT,
		record_json    TEXT NOT NULL,
		source_text    TEXT NOT NULL DEFAULT '',
		created_at     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS invoices_content_hash_idx ON invoices (content_hash)`,
	`CREATE INDEX IF NOT EXISTS invoices_document_date_idx ON invoices (document_date)`,
}

// Migrate creates the tables and indexes when missing.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if err := db.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	db.logger.Info("db.migrate.ok", "statements", len(schema))
	return nil
}
