package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hrygo/alarmbot/store"
)

// DB keeps blobs in process memory. Nothing survives a restart.
type DB struct {
	blobs map[string][]byte
	mu    sync.RWMutex
}

func NewDB() store.Driver {
	return &DB{blobs: make(map[string][]byte)}
}

func (d *DB) Close() error {
	return nil
}

func (d *DB) IsInitialized(context.Context) (bool, error) {
	return true, nil
}

func (d *DB) GetBlob(_ context.Context, key string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.blobs[key]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, v...), nil
}

func (d *DB) SetBlob(_ context.Context, key string, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.blobs[key] = append([]byte{}, value...)
	return nil
}

func (d *DB) ListBlobKeys(context.Context) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]string, 0, len(d.blobs))
	for k := range d.blobs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
