// Package store is the document layer backing the whole server. It treats
// pebble as an ordered key-value substrate: message keys embed a
// server-assigned timestamp so lexicographic iteration yields
// chronological order, and every mutation fans out full-state snapshots to
// registered watchers (see watch.go). No multi-document transactions are
// assumed anywhere; paired writes are always independent.
package store

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/logger"
)

var (
	db     *pebble.DB
	dbPath string
)

// Open opens (or creates) the pebble database at path and keeps a global
// handle for the package.
func Open(path string) error {
	var err error
	logger.Info("opening_store", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("store_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	logger.Info("store_opened", "path", path)
	return nil
}

// Close closes the opened database if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("store_closed")
	return nil
}

// Ready reports whether the store is opened and usable.
func Ready() bool {
	return db != nil
}

var errNotOpen = errors.New("store not opened; call store.Open first")

// get reads a raw value, distinguishing absence from failure.
func get(key string) ([]byte, bool, error) {
	if db == nil {
		return nil, false, errNotOpen
	}
	v, closer, err := db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	out := append([]byte(nil), v...)
	if closer != nil {
		_ = closer.Close()
	}
	return out, true, nil
}

func set(key string, value []byte) error {
	if db == nil {
		return errNotOpen
	}
	if err := db.Set([]byte(key), value, pebble.Sync); err != nil {
		logger.Error("store_set_failed", "key", key, "error", err)
		return err
	}
	return nil
}

// scan returns all values whose keys start with prefix, in key order.
func scan(prefix string) ([][]byte, error) {
	if db == nil {
		return nil, errNotOpen
	}
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	pfx := []byte(prefix)
	var out [][]byte
	for iter.SeekGE(pfx); iter.Valid(); iter.Next() {
		if !hasPrefix(iter.Key(), pfx) {
			break
		}
		out = append(out, append([]byte(nil), iter.Value()...))
	}
	return out, iter.Error()
}

func hasPrefix(b, pfx []byte) bool {
	if len(b) < len(pfx) {
		return false
	}
	for i := range pfx {
		if b[i] != pfx[i] {
			return false
		}
	}
	return true
}

// DiskUsage returns the best-effort on-disk size of the store, for the
// census job and ops endpoints.
func DiskUsage() (uint64, error) {
	if db == nil {
		return 0, errNotOpen
	}
	m := db.Metrics()
	if m == nil {
		return 0, fmt.Errorf("no metrics available")
	}
	return m.DiskSpaceUsage(), nil
}
