package postgres_test

import (
	"context"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/config"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/database"
)

// TestDB is a migrated database in a throwaway container, torn down with
// the test that created it.
type TestDB struct {
	Pool *pgxpool.Pool
}

func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "starting postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	pool, err := database.NewPostgresPool(ctx, config.DatabaseConfig{
		Host:            host,
		Port:            portNum,
		User:            "test",
		Password:        "test",
		Name:            "testdb",
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
		ApplicationName: "asset-pipeline-test",
	})
	require.NoError(t, err, "connecting to postgres")
	t.Cleanup(pool.Close)

	require.NoError(t, database.RunMigrations(ctx, pool, migrationsPath()), "running migrations")

	return &TestDB{Pool: pool}
}

// Reset empties the asset tables between subtests.
func (db *TestDB) Reset(t *testing.T) {
	t.Helper()
	_, err := db.Pool.Exec(context.Background(), "TRUNCATE TABLE image_derivatives, image_assets")
	require.NoError(t, err)
}

func migrationsPath() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "..", "..", "migrations")
}
