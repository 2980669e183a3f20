package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hrygo/alarmbot/internal/profile"
	"github.com/hrygo/alarmbot/store"
	"github.com/hrygo/alarmbot/store/db"
)

// NewTestingStore opens a migrated store for driver in a temporary directory.
func NewTestingStore(ctx context.Context, t *testing.T, driver string) *store.Store {
	t.Helper()

	p := getTestingProfile(t, driver)
	dbDriver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	s := store.New(dbDriver, p)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func getTestingProfile(t *testing.T, driver string) *profile.Profile {
	dir := t.TempDir()
	p := &profile.Profile{
		Mode:   "dev",
		Data:   dir,
		Driver: driver,
	}
	switch driver {
	case "sqlite":
		p.DSN = filepath.Join(dir, "alarmbot_test.db")
	case "bolt":
		p.DSN = filepath.Join(dir, "alarmbot_test.bolt")
	case "postgres":
		p.DSN = GetPostgresDSN(t)
	}
	return p
}
