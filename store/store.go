package store

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/hrygo/alarmbot/internal/profile"
)

// Store provides access to the persisted alarm blobs.
type Store struct {
	profile *profile.Profile
	driver  Driver
	logger  *slog.Logger
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
		logger:  slog.Default(),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// Get returns the blob stored under key, or nil when there is none.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.driver.GetBlob(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get blob %s", key)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.driver.SetBlob(ctx, key, value); err != nil {
		return errors.Wrapf(err, "failed to set blob %s", key)
	}
	s.logger.Debug("blob saved", "key", key, "bytes", len(value))
	return nil
}

// Keys lists the stored blob keys in ascending order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.driver.ListBlobKeys(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list blob keys")
	}
	return keys, nil
}
