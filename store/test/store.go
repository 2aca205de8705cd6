package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hrygo/guarden/internal/profile"
	"github.com/hrygo/guarden/store"
	"github.com/hrygo/guarden/store/db"
)

// NewTestingStore opens a fresh sqlite-backed store in a per-test temp
// directory and applies the schema.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	dir := t.TempDir()
	testProfile := &profile.Profile{
		Mode:   "dev",
		Data:   dir,
		Driver: "sqlite",
		DSN:    filepath.Join(dir, "guarden_test.db"),
	}

	dbDriver, err := db.NewDBDriver(testProfile)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	ts := store.New(dbDriver, testProfile)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if err := ts.Close(); err != nil {
			t.Logf("failed to close test store: %v", err)
		}
	})
	return ts
}
