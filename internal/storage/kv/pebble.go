package kv

import (
	"path/filepath"

	"github.com/cockroachdb/pebble"
	"github.com/go-faster/errors"
)

var _ Store = (*Pebble)(nil)

// Pebble is the durable Store implementation backed by an embedded PebbleDB
// instance. Writes use pebble.Sync so a returned nil error means the value
// reached the WAL before the mutation is considered persisted.
type Pebble struct {
	db *pebble.DB
}

// OpenPebble opens (or creates) a pebble database under dir.
func OpenPebble(dir string) (*Pebble, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{
		// State blobs here are tiny (a handful of keys, kilobytes each), so
		// the defaults are fine; the only thing that matters is WAL sync.
		DisableWAL: false,
	})
	if err != nil {
		return nil, errors.Wrap(err, "pebble open")
	}
	return &Pebble{db: db}, nil
}

func (p *Pebble) Get(key string) ([]byte, bool, error) {
	v, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr("get", key, err)
	}
	defer closer.Close()

	out := append([]byte(nil), v...)
	return out, true, nil
}

func (p *Pebble) Set(key string, value []byte) error {
	if err := p.db.Set([]byte(key), value, pebble.Sync); err != nil {
		return storageErr("set", key, err)
	}
	return nil
}

func (p *Pebble) Delete(key string) error {
	if err := p.db.Delete([]byte(key), pebble.Sync); err != nil {
		return storageErr("delete", key, err)
	}
	return nil
}

func (p *Pebble) Close() error { return p.db.Close() }
