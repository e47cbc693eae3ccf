// Package kv is a small embedded string key-value database. Writes are
// appended to a command log which is replayed on open and compacted on close.
// The special path InMemory keeps everything in process memory.
package kv

import (
	"sync"

	"github.com/denismitr/paysheet/options"
	"github.com/pkg/errors"
)

const InMemory = ":memory:"

var ErrKeyInvalid = errors.New("key is invalid")

type DB struct {
	e      *engine
	mu     sync.RWMutex
	closed bool
}

type Closer func() error

func NullCloser() error { return nil }

// Open opens or creates the database at path.
func Open(path string, cfgs ...*Config) (*DB, Closer, error) {
	e := newEngine(path, resolveConfig(cfgs))
	if err := e.init(); err != nil {
		return nil, NullCloser, errors.Wrapf(err, "could not open database %s", path)
	}

	db := &DB{e: e}

	return db, db.close, nil
}

func (db *DB) close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrDatabaseAlreadyClosed
	}

	if err := db.e.close(); err != nil {
		return err
	}

	db.closed = true
	return nil
}

// Get returns the value stored under key and whether it exists.
func (db *DB) Get(key string) (string, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.closed {
		return "", false, ErrDatabaseAlreadyClosed
	}

	ent, ok := db.e.get(key)
	if !ok {
		return "", false, nil
	}

	return string(ent.Value), true, nil
}

// GetBytes is Get for binary values. The returned slice belongs to the caller.
func (db *DB) GetBytes(key string) ([]byte, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.closed {
		return nil, false, ErrDatabaseAlreadyClosed
	}

	ent, ok := db.e.get(key)
	if !ok {
		return nil, false, nil
	}

	return ent.Value, true, nil
}

// Set stores value under key, replacing any previous value.
func (db *DB) Set(key, value string) error {
	if key == "" {
		return errors.Wrap(ErrKeyInvalid, "key cannot be empty")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrDatabaseAlreadyClosed
	}

	return db.e.set(newEntry(key, []byte(value)))
}

// SetBytes stores a copy of value under key. Later changes to value are not seen.
func (db *DB) SetBytes(key string, value []byte) error {
	if key == "" {
		return errors.Wrap(ErrKeyInvalid, "key cannot be empty")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrDatabaseAlreadyClosed
	}

	return db.e.set(newEntry(key, value).clone())
}

// Remove deletes key. Removing an absent key is not an error.
func (db *DB) Remove(key string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrDatabaseAlreadyClosed
	}

	return db.e.remove(key)
}

// Keys lists stored keys, ascending unless opts say otherwise.
func (db *DB) Keys(opts *options.ScanOptions) []string {
	if opts == nil {
		opts = options.Scan()
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.closed {
		return nil
	}

	return db.e.scan(opts)
}

func (db *DB) Count() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.closed {
		return 0
	}

	return db.e.count()
}
