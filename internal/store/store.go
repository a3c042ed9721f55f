// Package store provides the persistence gateway: an opaque key-value store
// of text snapshots backed by Badger.
//
// The gateway is deliberately dumb. The services own the authoritative
// in-memory state; the gateway only moves serialized snapshots. A failed or
// absent load means "no prior state" and is never fatal.
package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Gateway wraps a Badger database as a string key-value store.
type Gateway struct {
	db     *badger.DB
	logger *slog.Logger
}

// New opens the database at path and returns a gateway.
func New(path string, logger *slog.Logger) (*Gateway, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Sync writes to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("database opened", "path", path)
	}

	return &Gateway{db: db, logger: logger}, nil
}

// Close gracefully closes the database.
func (g *Gateway) Close() error {
	if g.logger != nil {
		g.logger.Info("closing database")
	}
	return g.db.Close()
}

// Load retrieves the text stored under key. The second return value is false
// when the key is absent.
func (g *Gateway) Load(key string) (string, bool, error) {
	var value string
	err := g.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load %q: %w", key, err)
	}
	return value, true, nil
}

// Save stores the text under key, replacing any previous value.
func (g *Gateway) Save(key, value string) error {
	err := g.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}

// Delete removes the key. Idempotent: deleting an absent key is not an error.
func (g *Gateway) Delete(key string) error {
	err := g.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
