package testdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/phrazzld/vocab-api/internal/platform/migrations"
	"github.com/phrazzld/vocab-api/internal/redact"
)

// EnvDatabaseURL names the variable holding the test database URL.
const EnvDatabaseURL = "VOCAB_TEST_DATABASE_URL"

// connectTimeout bounds the initial ping.
const connectTimeout = 5 * time.Second

// DatabaseURL returns the test database URL, or "" when none is configured.
func DatabaseURL() string {
	return os.Getenv(EnvDatabaseURL)
}

// ShouldSkip reports whether database tests should be skipped.
func ShouldSkip() bool {
	return DatabaseURL() == ""
}

// Open connects to the test database and brings the schema up to date. The
// connection is closed when the test finishes.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	if ShouldSkip() {
		t.Skipf("%s not set - skipping integration test", EnvDatabaseURL)
	}
	url := DatabaseURL()

	db, err := sql.Open("pgx", url)
	if err != nil {
		t.Fatalf("failed to open test database %s: %v", redact.String(url), err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("failed to reach test database %s: %v", redact.String(url), redact.Error(err))
	}

	log, _ := logger.GetTestLogger(t)
	if err := migrations.Up(context.Background(), db, migrations.Postgres, log); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
