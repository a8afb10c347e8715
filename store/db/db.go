package db

import (
	"github.com/pkg/errors"

	"github.com/insightink/insightink/internal/profile"
	"github.com/insightink/insightink/store"
	"github.com/insightink/insightink/store/db/postgres"
	"github.com/insightink/insightink/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
//
// PostgreSQL is the production database and the only one with vector search
// (pgvector). SQLite is supported for development and single-binary installs;
// it stores embeddings but cannot rank by similarity.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.New("unknown db driver: only 'postgres' and 'sqlite' are supported")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
