package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/migrations"
	"github.com/stretchr/testify/require"
)

// tables in truncate order; CASCADE handles the rest.
var tables = []string{
	"audit_logs",
	"refresh_tokens",
	"payroll_records",
	"leave_applications",
	"leave_balances",
	"attendance",
	"salary_structures",
	"users",
	"employees",
}

// newTestDatabase connects to TEST_DATABASE_URL, migrates it and empties every
// table. The test is skipped when the variable is unset.
func newTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, migrations.Up(db.StdDB()))
	require.NoError(t, truncateAll(context.Background(), db))
	return db
}

func truncateAll(ctx context.Context, db *database.DB) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range tables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return tx.Commit(ctx)
}
