// Package store is the badger-backed persistence layer satisfying
// native/pool.EngineState, native/pool.EmissionState, and
// native/backstop.EngineState. All values are JSON-encoded; keys are
// colon-separated ASCII strings so badger's key-ordered iteration gives
// cheap prefix scans for the list operations (ListReserveIndices,
// ListAuctions).
package store

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Store wraps a badger.DB with the JSON get/put/scan helpers the
// pool/backstop adapters build on.
type Store struct {
	db *badger.DB
}

// Config controls how the underlying badger database is opened.
type Config struct {
	Dir      string
	InMemory bool
}

// Open opens (creating if absent) the badger database at cfg.Dir, or an
// in-memory instance when cfg.InMemory is set (used by tests).
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Dir == "" {
			return nil, fmt.Errorf("store: dir required")
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying badger handle for collaborators that persist
// directly into the same database outside the EngineState adapters, such as
// the token package's ledger balances.
func (s *Store) DB() *badger.DB {
	return s.db
}

// RunValueLogGC triggers badger's value-log garbage collection, intended to
// be called periodically by the owning daemon.
func (s *Store) RunValueLogGC(discardRatio float64) error {
	err := s.db.RunValueLogGC(discardRatio)
	if err == badger.ErrNoRewrite {
		return nil
	}
	return err
}

func putJSON(db *badger.DB, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", key, err)
	}
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// getJSON decodes the value at key into out, reporting ok=false (no error)
// if the key is absent.
func getJSON(db *badger.DB, key string, out interface{}) (bool, error) {
	var found bool
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if err != nil {
		return false, fmt.Errorf("store: get %s: %w", key, err)
	}
	return found, nil
}

func jsonUnmarshal(data []byte, out interface{}) error {
	return json.Unmarshal(data, out)
}

func deleteKey(db *badger.DB, key string) error {
	return db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

// scanSuffixes iterates every key under prefix and returns the suffix
// (the part after prefix) for each, in key order.
func scanSuffixes(db *badger.DB, prefix string) ([]string, error) {
	var suffixes []string
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			key := string(it.Item().Key())
			suffixes = append(suffixes, key[len(prefix):])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: scan %s: %w", prefix, err)
	}
	return suffixes, nil
}

// scanValues iterates every key under prefix in key order and passes each
// key suffix and raw value to decode, stopping at the first error decode
// returns.
func scanValues(db *badger.DB, prefix string, decode func(suffix string, val []byte) error) error {
	return db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			key := string(item.Key())
			suffix := key[len(prefix):]
			if err := item.Value(func(val []byte) error {
				return decode(suffix, val)
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
