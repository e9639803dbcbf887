package testutil

import (
	"os"
	"testing"

	"github.com/joho/godotenv"

	"github.com/shubhgupta2005/SQL-QUERIES-ON-REAL-RAW-DATA/internal/config"
	"github.com/shubhgupta2005/SQL-QUERIES-ON-REAL-RAW-DATA/internal/db"
)

// SetupPool opens a pool for integration tests against TEST_DATABASE_URL.
// The test is skipped when no database is configured.
func SetupPool(t *testing.T) *db.Pool {
	t.Helper()

	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	pool, err := db.Open(EnvOr("DB_DRIVER", config.DriverPgx), config.NormalizeDSN(dsn))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
