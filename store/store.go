package store

import (
	"context"
	"time"

	"github.com/hrygo/guarden/internal/profile"
	"github.com/hrygo/guarden/store/cache"
)

const userPreferencesCacheKey = "user_preferences"

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// Caches
	userPreferencesCache *cache.Cache // cache for the singleton preference record
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	// Default cache settings
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        100,
		OnEviction:      nil,
	}

	store := &Store{
		driver:               driver,
		profile:              profile,
		cacheConfig:          cacheConfig,
		userPreferencesCache: cache.New(cacheConfig),
	}

	return store
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.userPreferencesCache.Close()

	return s.driver.Close()
}

func (s *Store) CreatePlant(ctx context.Context, create *Plant) (*Plant, error) {
	return s.driver.CreatePlant(ctx, create)
}

func (s *Store) ListPlants(ctx context.Context, find *FindPlant) ([]*Plant, error) {
	return s.driver.ListPlants(ctx, find)
}

func (s *Store) UpdatePlantWatering(ctx context.Context, update *UpdatePlantWatering) error {
	return s.driver.UpdatePlantWatering(ctx, update)
}

func (s *Store) DeletePlant(ctx context.Context, delete *DeletePlant) error {
	return s.driver.DeletePlant(ctx, delete)
}

// UpsertUserPreferences writes the singleton preference record and
// refreshes the cache with the stored value.
func (s *Store) UpsertUserPreferences(ctx context.Context, upsert *UpsertUserPreferences) (*UserPreferences, error) {
	prefs, err := s.driver.UpsertUserPreferences(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.userPreferencesCache.Set(ctx, userPreferencesCacheKey, prefs)
	return prefs, nil
}

// GetUserPreferences returns the singleton preference record, or nil if
// none has been persisted yet.
func (s *Store) GetUserPreferences(ctx context.Context) (*UserPreferences, error) {
	if cached, ok := s.userPreferencesCache.Get(ctx, userPreferencesCacheKey); ok {
		if prefs, ok := cached.(*UserPreferences); ok {
			return prefs, nil
		}
	}

	prefs, err := s.driver.GetUserPreferences(ctx)
	if err != nil {
		return nil, err
	}
	if prefs != nil {
		s.userPreferencesCache.Set(ctx, userPreferencesCacheKey, prefs)
	}
	return prefs, nil
}
