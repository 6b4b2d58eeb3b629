package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// DataStore holds referenced payload blobs, content-addressed per tenant.
// Backed by Badger: blobs are written once, read rarely, and deleted in
// bulk during pruning - an LSM keyspace fits that profile better than
// SQLite rows.
type DataStore struct {
	db *badger.DB
}

// OpenData opens a persistent data store in dir.
func OpenData(dir string) (*DataStore, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(nil). // Badger's own logging is noise here
		WithSyncWrites(true).
		WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open data store: %w", err)
	}
	return &DataStore{db: db}, nil
}

// OpenDataInMemory opens an in-memory data store. Test use.
func OpenDataInMemory() (*DataStore, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory data store: %w", err)
	}
	return &DataStore{db: db}, nil
}

// Close closes the underlying Badger instance.
func (d *DataStore) Close() error {
	return d.db.Close()
}

func dataKey(tenant, dataCID string) []byte {
	return []byte(tenant + "|" + dataCID)
}

// PutData stores a payload blob under its content identifier.
// Overwriting with identical content is harmless by construction.
func (d *DataStore) PutData(ctx context.Context, tenant, dataCID string, data []byte) error {
	err := d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(dataKey(tenant, dataCID), data)
	})
	if err != nil {
		return fmt.Errorf("put data %s: %w", dataCID, err)
	}
	return nil
}

// GetData retrieves a payload blob. Returns ErrNotFound for absent keys.
func (d *DataStore) GetData(ctx context.Context, tenant, dataCID string) ([]byte, error) {
	var out []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dataKey(tenant, dataCID))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: data %s", ErrNotFound, dataCID)
	}
	if err != nil {
		return nil, fmt.Errorf("get data %s: %w", dataCID, err)
	}
	return out, nil
}

// DeleteData removes a payload blob. Deleting an absent key is a no-op, so
// pruning stays idempotent under retry.
func (d *DataStore) DeleteData(ctx context.Context, tenant, dataCID string) error {
	err := d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(dataKey(tenant, dataCID))
	})
	if err != nil {
		return fmt.Errorf("delete data %s: %w", dataCID, err)
	}
	return nil
}
