package store

import (
	"context"
	"time"

	"github.com/insightink/insightink/internal/profile"
	"github.com/insightink/insightink/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// tagNameCache caches tags by lowercased name. Only positive lookups are
	// cached; invalidation happens on tag create/update/delete.
	tagNameCache *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
		OnEviction:      nil,
	}

	store := &Store{
		driver:       driver,
		profile:      profile,
		cacheConfig:  cacheConfig,
		tagNameCache: cache.New(cacheConfig),
	}

	return store
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.tagNameCache.Close()
	return s.driver.Close()
}

// Migrate initializes the schema when the database is empty.
func (s *Store) Migrate(ctx context.Context) error {
	return s.migrate(ctx)
}
