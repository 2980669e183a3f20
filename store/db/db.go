package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/alarmbot/internal/profile"
	"github.com/hrygo/alarmbot/store"
	"github.com/hrygo/alarmbot/store/db/bolt"
	"github.com/hrygo/alarmbot/store/db/memory"
	"github.com/hrygo/alarmbot/store/db/postgres"
	"github.com/hrygo/alarmbot/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	case "bolt":
		driver, err = bolt.NewDB(profile)
	case "memory":
		driver = memory.NewDB()
	default:
		return nil, errors.Errorf("unknown db driver %q: use sqlite, postgres, bolt or memory", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
