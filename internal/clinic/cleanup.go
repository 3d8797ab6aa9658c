package clinic

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/vitacasa-care/community-service/internal/collection"
	"github.com/vitacasa-care/community-service/internal/gateway"
)

// RetentionPeriod defines how long soft-deleted clinics are retained (3 years)
const RetentionPeriod = 3 * 365 * 24 * time.Hour

// CleanupService handles permanent deletion of expired soft-deleted clinics
// and all of their collection rows.
type CleanupService struct {
	db *sql.DB
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(db *sql.DB) *CleanupService {
	return &CleanupService{db: db}
}

// GetExpiredClinicsCount returns how many clinics are past the retention
// window and eligible for permanent deletion.
func (s *CleanupService) GetExpiredClinicsCount(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-RetentionPeriod)
	query := `
		SELECT COUNT(*)
		FROM vitacasa.clinics
		WHERE data->>'deleted_at' IS NOT NULL
		AND (data->>'deleted_at')::timestamptz < $1
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, cutoff).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count expired clinics: %w", err)
	}
	return count, nil
}

// CleanupExpiredClinics permanently deletes clinics soft-deleted longer ago
// than the retention period, along with every collection row they own.
func (s *CleanupService) CleanupExpiredClinics(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-RetentionPeriod)
	log.Printf("Starting cleanup of clinics deleted before %s", cutoff.Format(time.RFC3339))

	query := `
		SELECT id
		FROM vitacasa.clinics
		WHERE data->>'deleted_at' IS NOT NULL
		AND (data->>'deleted_at')::timestamptz < $1
		ORDER BY data->>'deleted_at' ASC
	`
	rows, err := s.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to query expired clinics: %w", err)
	}
	defer rows.Close()

	var expired []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to scan clinic: %w", err)
		}
		expired = append(expired, id)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating clinics: %w", err)
	}

	if len(expired) == 0 {
		log.Println("No expired clinics found for cleanup")
		return 0, nil
	}

	log.Printf("Found %d clinics to permanently delete", len(expired))

	deleted := 0
	for _, id := range expired {
		if err := s.permanentlyDeleteClinic(ctx, id); err != nil {
			log.Printf("Failed to delete clinic %s: %v", id, err)
			continue
		}
		deleted++
	}

	log.Printf("Successfully cleaned up %d/%d expired clinics", deleted, len(expired))
	return deleted, nil
}

// permanentlyDeleteClinic hard-deletes the clinic row and all of its
// collection rows in one transaction.
func (s *CleanupService) permanentlyDeleteClinic(ctx context.Context, clinicID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range collection.All() {
		query := fmt.Sprintf("DELETE FROM %s.%s WHERE clinic_id = $1",
			pq.QuoteIdentifier(gateway.SchemaName), pq.QuoteIdentifier(string(table)))
		if _, err := tx.ExecContext(ctx, query, clinicID); err != nil {
			return fmt.Errorf("failed to purge %s for clinic %s: %w", table, clinicID, err)
		}
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM vitacasa.clinics
		WHERE id = $1 AND data->>'deleted_at' IS NOT NULL
	`, clinicID)
	if err != nil {
		return fmt.Errorf("failed to delete clinic record: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("clinic not found or not soft-deleted")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cleanup: %w", err)
	}

	log.Printf("✓ Permanently deleted clinic %s", clinicID)
	return nil
}
