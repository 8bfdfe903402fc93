// Package kv defines the durable key/value boundary that all persisted
// storefront state (session, cart, order history) is written through.
// Values are opaque byte blobs at this layer; callers own serialization.
package kv

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Store is a synchronous key/value store. Every Set is durable before it
// returns, so a caller that observes a nil error may treat the value as the
// authoritative mirror of its in-memory state.
type Store interface {
	// Get returns the value stored under key. The second return is false
	// when the key is absent; an absent key is not an error.
	Get(key string) ([]byte, bool, error)
	// Set writes value under key, replacing any previous value.
	Set(key string, value []byte) error
	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string) error
	Close() error
}

// StorageError wraps a storage backend failure. Callers use IsStorageError
// to distinguish "the store broke" from domain conditions and fall back to
// in-memory-only operation.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func storageErr(op, key string, err error) error {
	return &StorageError{Op: op, Key: key, Err: err}
}
