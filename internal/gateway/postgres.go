package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/vitacasa-care/community-service/internal/collection"
)

// SchemaName is the Postgres schema holding all collection tables.
const SchemaName = "vitacasa"

// Postgres implements Gateway over a relational backend. Each collection is a
// table with (id, clinic_id, data jsonb, created_at, updated_at); the data
// column carries the full record, so updates are a jsonb concatenation, which
// gives the same last-writer-wins-per-field semantics the store's merge uses.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func tableRef(table collection.Name) string {
	return pq.QuoteIdentifier(SchemaName) + "." + pq.QuoteIdentifier(string(table))
}

func (g *Postgres) List(ctx context.Context, clinicID string, table collection.Name) ([]collection.Record, error) {
	if !collection.Valid(table) {
		return nil, ErrUnknownCollection
	}

	query := fmt.Sprintf(`
		SELECT data
		FROM %s
		WHERE clinic_id = $1
		ORDER BY created_at DESC
	`, tableRef(table))

	rows, err := g.db.QueryContext(ctx, query, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var recs []collection.Record
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		var rec collection.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode %s row: %w", table, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", table, err)
	}
	return recs, nil
}

func (g *Postgres) Insert(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error) {
	if !collection.Valid(table) {
		return nil, ErrUnknownCollection
	}

	rec = rec.Clone()
	if rec.ID() == "" {
		rec["id"] = uuid.New().String()
	}
	if _, ok := rec["created_at"]; !ok {
		rec["created_at"] = time.Now().UTC().Format(time.RFC3339)
	}
	rec["clinic_id"] = clinicID

	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s record: %w", table, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, clinic_id, data, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING data
	`, tableRef(table))

	var raw []byte
	err = g.db.QueryRowContext(ctx, query, rec.ID(), clinicID, payload).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	var out collection.Record
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode inserted %s record: %w", table, err)
	}
	return out, nil
}

func (g *Postgres) Update(ctx context.Context, clinicID string, table collection.Name, id string, patch collection.Record) (collection.Record, error) {
	if !collection.Valid(table) {
		return nil, ErrUnknownCollection
	}

	patch = patch.Clone()
	delete(patch, "id")
	delete(patch, "clinic_id")

	payload, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s patch: %w", table, err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET data = data || $3::jsonb, updated_at = now()
		WHERE clinic_id = $1 AND id = $2
		RETURNING data
	`, tableRef(table))

	var raw []byte
	err = g.db.QueryRowContext(ctx, query, clinicID, id, payload).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", table, err)
	}

	var out collection.Record
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode updated %s record: %w", table, err)
	}
	return out, nil
}

func (g *Postgres) Delete(ctx context.Context, clinicID string, table collection.Name, id string) error {
	if !collection.Valid(table) {
		return ErrUnknownCollection
	}

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE clinic_id = $1 AND id = $2
	`, tableRef(table))

	result, err := g.db.ExecContext(ctx, query, clinicID, id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
