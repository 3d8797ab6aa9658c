package gateway

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/vitacasa-care/community-service/internal/collection"
)

// EnsureSchema creates the backend schema, one table per collection and the
// clinic registry. The table shape is identical everywhere; the record itself
// lives in the data column.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, fmt.Sprintf(
		"CREATE SCHEMA IF NOT EXISTS %s", pq.QuoteIdentifier(SchemaName),
	)); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	for _, table := range collection.All() {
		stmt := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				clinic_id TEXT NOT NULL,
				data JSONB NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ
			)
		`, tableRef(table))
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}

		idx := fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s ON %s (clinic_id, created_at DESC)",
			pq.QuoteIdentifier(string(table)+"_clinic_idx"), tableRef(table),
		)
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to index table %s: %w", table, err)
		}
	}

	// The clinic registry shares the table shape but is not clinic-scoped,
	// which is why it stays out of collection.All() and the store's load set.
	registry := pq.QuoteIdentifier(SchemaName) + "." + pq.QuoteIdentifier("clinics")
	stmt := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			clinic_id TEXT NOT NULL,
			data JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ
		)
	`, registry)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create clinics table: %w", err)
	}
	idx := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS clinics_created_idx ON %s (created_at DESC)",
		registry,
	)
	if _, err := db.ExecContext(ctx, idx); err != nil {
		return fmt.Errorf("failed to index clinics table: %w", err)
	}
	return nil
}
