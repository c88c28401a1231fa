package database

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	tclog "github.com/testcontainers/testcontainers-go/log"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

type nopLogger struct{}

func (*nopLogger) Printf(_ string, _ ...any) {}

var _ tclog.Logger = (*nopLogger)(nil)

var (
	dbName = "testdb"
	dbUser = "testuser"
	dbPass = "testpass"
)

// TestDB is a migrated Postgres instance running in a container
type TestDB struct {
	Pool *pgxpool.Pool
	// ConnString uses the postgres:// scheme
	ConnString string
}

// MigrationConnString returns ConnString with the scheme golang-migrate's pgx driver expects
func (d *TestDB) MigrationConnString() string {
	return ToMigrationConnString(d.ConnString)
}

// ToMigrationConnString rewrites a postgres:// or postgresql:// URL to pgx5://
func ToMigrationConnString(connString string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(connString, prefix) {
			return "pgx5://" + strings.TrimPrefix(connString, prefix)
		}
	}
	return connString
}

// SetupTestDB starts a Postgres container, applies, rolls back and re-applies
// the migrations, and returns a pool connected to it. Skipped with -short.
func SetupTestDB(t *testing.T) (*TestDB, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	postgresContainer, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPass),
		postgres.BasicWaitStrategies(),
		tc.WithLogger(&nopLogger{}),
	)
	require.NoError(t, err)

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrationConn := ToMigrationConnString(connStr)
	require.NoError(t, MigrateUp(ctx, migrationConn))
	require.NoError(t, MigrateDown(ctx, migrationConn, 0))
	require.NoError(t, MigrateUp(ctx, migrationConn))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	cleanupFunc := func() {
		pool.Close()
		tc.CleanupContainer(t, postgresContainer)
	}

	return &TestDB{Pool: pool, ConnString: connStr}, cleanupFunc
}
