package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/lib/pq"

	"github.com/vitacasa-care/community-service/internal/collection"
	"github.com/vitacasa-care/community-service/internal/gateway"
)

// SetupTestDB creates a connection to the local vitacasa_test database and
// ensures the schema exists. Tests are skipped when the database is not
// reachable so the suite passes without local infrastructure.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	connStr := "host=localhost port=5432 user=localadmin password=localadmin dbname=vitacasa_test sslmode=disable"

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Skipf("Skipping: failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("Skipping: test database not reachable: %v", err)
	}

	if err := gateway.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("Failed to ensure test schema: %v", err)
	}

	return db
}

// CleanupTestDB truncates every collection table plus the clinic registry.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()

	for _, table := range collection.All() {
		if _, err := db.Exec(fmt.Sprintf("TRUNCATE TABLE %s.%s", gateway.SchemaName, table)); err != nil {
			t.Logf("Warning: Failed to clean up %s: %v", table, err)
		}
	}
	if _, err := db.Exec(fmt.Sprintf("TRUNCATE TABLE %s.clinics", gateway.SchemaName)); err != nil {
		t.Logf("Warning: Failed to clean up clinics: %v", err)
	}
}
