// Package testutil holds shared database helpers for integration tests.
// Every helper skips (or panics, for TestMain) when TEST_DATABASE_URL is
// unset, so the unit-test suite runs clean on machines without Postgres.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/tomo-travel/tomo/backend/migrations"
)

// DSN returns TEST_DATABASE_URL, skipping the test when it is not set.
// Integration tests are opt-in; CI without a database stays green.
func DSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return dsn
}

// NewPool opens a pgx pool against the test database and verifies it with a
// ping. The pool is closed when the test and its subtests finish.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), DSN(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// MigrateDSN brings the test database up to the latest schema version.
// It is meant for TestMain, where no *testing.T exists: a missing
// TEST_DATABASE_URL returns false (caller should skip the whole package),
// any other failure panics.
func MigrateDSN() bool {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		return false
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		panic("testutil.MigrateDSN: open: " + err.Error())
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		panic("testutil.MigrateDSN: dialect: " + err.Error())
	}
	if err := goose.Up(db, "."); err != nil {
		panic("testutil.MigrateDSN: up: " + err.Error())
	}
	return true
}
