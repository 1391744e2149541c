package sqlite

import (
	"context"
	"fmt"
	"net/url"
	"testing"
)

// setupTestDB opens a migrated journal on a shared in-memory database named
// after the test, using the same connection pragmas as NewDB. WAL does not
// apply to memory databases.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&%s", url.PathEscape(t.Name()), connPragmas)

	db, err := openDB(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open test journal: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := RunMigrations(db.Writer); err != nil {
		t.Fatalf("migrate test journal: %v", err)
	}

	return db
}
