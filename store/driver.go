package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Plant model related methods.
	CreatePlant(ctx context.Context, create *Plant) (*Plant, error)
	ListPlants(ctx context.Context, find *FindPlant) ([]*Plant, error)
	UpdatePlantWatering(ctx context.Context, update *UpdatePlantWatering) error
	DeletePlant(ctx context.Context, delete *DeletePlant) error

	// UserPreferences model related methods.
	UpsertUserPreferences(ctx context.Context, upsert *UpsertUserPreferences) (*UserPreferences, error)
	GetUserPreferences(ctx context.Context) (*UserPreferences, error)
}
