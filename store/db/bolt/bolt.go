package bolt

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/hrygo/alarmbot/internal/profile"
	"github.com/hrygo/alarmbot/store"
)

const blobBucket = "blobs" // key: blob key -> raw value

type DB struct {
	db      *bbolt.DB
	profile *profile.Profile
}

// NewDB opens the bolt file at profile.DSN and creates the blob bucket.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	db, err := bbolt.Open(profile.DSN, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bolt file %s", profile.DSN)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(blobBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create bucket")
	}

	return &DB{db: db, profile: profile}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) IsInitialized(_ context.Context) (bool, error) {
	var exists bool
	err := d.db.View(func(tx *bbolt.Tx) error {
		exists = tx.Bucket([]byte(blobBucket)) != nil
		return nil
	})
	return exists, err
}

func (d *DB) GetBlob(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := d.db.View(func(tx *bbolt.Tx) error {
		// Values are only valid inside the transaction.
		if v := tx.Bucket([]byte(blobBucket)).Get([]byte(key)); v != nil {
			value = append([]byte{}, v...)
		}
		return nil
	})
	return value, err
}

func (d *DB) SetBlob(_ context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	return d.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(blobBucket)).Put([]byte(key), value)
	})
}

func (d *DB) ListBlobKeys(_ context.Context) ([]string, error) {
	keys := []string{}
	err := d.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(blobBucket)).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

var _ store.Driver = (*DB)(nil)
