package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/clockwise-hr/attendance-backend-go/internal/pkg/database"
)

// TestDatabaseSetup wraps the shared connection used by the repository
// integration tests. Tests are skipped when TEST_DATABASE_URL is unset so
// the suite stays runnable without a database.
type TestDatabaseSetup struct {
	DB *database.DB
}

func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping repository integration tests")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	return &TestDatabaseSetup{DB: db}
}

// TruncateAllTables clears every table the attendance pipeline touches.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tables := []string{
		"daily_attendance_records",
		"punch_events",
		"shift_assignments",
		"shifts",
		"leave_requests",
		"holidays",
		"employees",
		"departments",
		"designations",
		"branches",
	}

	for _, table := range tables {
		if _, err := s.DB.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}
