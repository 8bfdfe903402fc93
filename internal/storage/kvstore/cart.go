package kvstore

import (
	"github.com/go-faster/jx"

	"storefront/internal/domain/cart"
	"storefront/internal/storage/kv"
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository mirrors the cart under the "cart" key.
type CartRepository struct {
	store kv.Store
}

// NewCartRepository returns a CartRepository over store.
func NewCartRepository(store kv.Store) *CartRepository {
	return &CartRepository{store: store}
}

// Load reads the persisted cart. An absent key or a malformed blob yields an
// empty cart; only storage failures are returned as errors.
func (r *CartRepository) Load() ([]cart.Line, error) {
	raw, ok, err := r.store.Get(KeyCart)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	lines, err := decodeLines(jx.DecodeBytes(raw))
	if err != nil {
		// Corrupt mirror: fall back to the empty default.
		return nil, nil
	}

	// At most one line per item id; a duplicate means the blob was not
	// written by this engine.
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, dup := seen[l.Item.ID]; dup {
			return nil, nil
		}
		seen[l.Item.ID] = struct{}{}
	}
	return lines, nil
}

// Save writes the full cart. An empty slice is written as the empty array,
// not by deleting the key, so a later Load sees an empty cart rather than
// "absent".
func (r *CartRepository) Save(lines []cart.Line) error {
	var e jx.Encoder
	encodeLines(&e, lines)
	return r.store.Set(KeyCart, e.Bytes())
}

// Wipe deletes the cart key entirely (logout path).
func (r *CartRepository) Wipe() error {
	return r.store.Delete(KeyCart)
}
