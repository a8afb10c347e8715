// Package test provides a store harness backed by a throwaway database.
package test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/insightink/insightink/internal/profile"
	"github.com/insightink/insightink/store"
	"github.com/insightink/insightink/store/db"
)

// getDriverFromEnv selects the database driver for tests. Defaults to sqlite
// so the suite runs without external services; set INSIGHTINK_TEST_DRIVER and
// INSIGHTINK_TEST_DSN to exercise postgres.
func getDriverFromEnv() string {
	driver := os.Getenv("INSIGHTINK_TEST_DRIVER")
	if driver == "" {
		return "sqlite"
	}
	return driver
}

func getTestingProfile(t *testing.T) *profile.Profile {
	dir := t.TempDir()
	p := &profile.Profile{
		Mode:   "prod",
		Data:   dir,
		Driver: getDriverFromEnv(),
	}
	if p.Driver == "postgres" {
		p.DSN = os.Getenv("INSIGHTINK_TEST_DSN")
		if p.DSN == "" {
			t.Skip("INSIGHTINK_TEST_DSN is required for postgres tests")
		}
	} else {
		p.DSN = fmt.Sprintf("%s/insightink_test.db", dir)
	}
	return p
}

// NewTestingStore creates a migrated store on a fresh database. Close it when
// the test is done.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	p := getTestingProfile(t)
	dbDriver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}
	st := store.New(dbDriver, p)
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return st
}
