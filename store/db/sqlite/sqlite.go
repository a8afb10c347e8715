package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/insightink/insightink/internal/profile"
	"github.com/insightink/insightink/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a SQLite database for the given profile.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	// foreign_keys must be enabled per connection; busy_timeout covers
	// writer contention from concurrent requests.
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)", profile.DSN)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}

	// SQLite allows one writer at a time; a single connection serializes
	// access and avoids SQLITE_BUSY entirely.
	db.SetMaxOpenConns(1)

	driver := DB{db: db, profile: profile}

	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) IsInitialized(ctx context.Context) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = 'note')").Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "failed to check if database is initialized")
	}
	return exists, nil
}
