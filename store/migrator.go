package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

//go:embed migration
var migrationFS embed.FS

// LatestSchemaFileName is the full schema applied to fresh installations.
const LatestSchemaFileName = "LATEST.sql"

// migrate applies the latest schema when the database has not been
// initialized yet. Schema upgrades between releases would be incremental
// migration files; the current schema is the first generation.
func (s *Store) migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if initialized {
		return nil
	}

	buf, err := migrationFS.ReadFile(fmt.Sprintf("migration/%s/%s", s.profile.Driver, LatestSchemaFileName))
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema for driver %q", s.profile.Driver)
	}

	if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
		return errors.Wrap(err, "failed to apply latest schema")
	}

	slog.Info("database initialized", slog.String("driver", s.profile.Driver))
	return nil
}
