package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/database"
)

var tables = []string{"attendances", "leaves", "leave_balances", "holidays", "audit_logs"}

// newTestDatabase connects to TEST_DATABASE_URL, migrates it and empties
// every table. Tests are skipped when the variable is unset.
func newTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, database.Migrate(ctx, db))
	for _, table := range tables {
		_, err := db.Exec(ctx, "TRUNCATE TABLE "+table)
		require.NoError(t, err)
	}
	return db
}
