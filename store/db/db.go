package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/guarden/internal/profile"
	"github.com/hrygo/guarden/store"
	"github.com/hrygo/guarden/store/db/postgres"
	"github.com/hrygo/guarden/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
// SQLite is the default for a single-device installation; PostgreSQL is
// available for hosted deployments.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.New("unknown db driver: only 'sqlite' and 'postgres' are supported")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
