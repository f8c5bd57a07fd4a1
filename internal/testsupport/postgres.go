//go:build integration

// Package testsupport starts throwaway infrastructure for integration tests.
package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var migrations []string

func init() {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		panic("unable to resolve testsupport filename for migration loading")
	}
	dir := filepath.Join(filepath.Dir(filename), "../../db/postgres/migrations")
	files, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil || len(files) == 0 {
		panic(fmt.Sprintf("no postgres migrations under %s: %v", dir, err))
	}
	sort.Strings(files)
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			panic(fmt.Sprintf("load migration %s: %v", file, err))
		}
		migrations = append(migrations, string(data))
	}
}

// StartPostgres launches PostgreSQL, applies every up migration and returns a
// pool that is closed, with the container terminated, when the test ends.
func StartPostgres(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("workouts"),
		postgrescontainer.WithUsername("platform"),
		postgrescontainer.WithPassword("platform"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.Eventually(t, func() bool { return pool.Ping(ctx) == nil }, 30*time.Second, 500*time.Millisecond)

	for i, stmt := range migrations {
		_, err := pool.Exec(ctx, stmt)
		require.NoErrorf(t, err, "apply migration %d", i+1)
	}
	return pool
}
