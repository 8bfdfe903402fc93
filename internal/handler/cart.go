package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/jx"

	"storefront/internal/domain/cart"
	"storefront/internal/storage/kv"
)

// Cart returns the current lines and derived totals.
func (h *Handler) Cart(w http.ResponseWriter, _ *http.Request) {
	h.writeCart(w, http.StatusOK, false)
}

// AddCartItem adds one unit of the item named by the body's id. The item
// snapshot is resolved against the catalog so presentation cannot inject
// prices.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "unreadable body")
		return
	}

	var itemID string
	if err := jx.DecodeBytes(body).Obj(func(d *jx.Decoder, key string) error {
		var err error
		if key == "id" {
			itemID, err = d.Str()
		} else {
			err = d.Skip()
		}
		return err
	}); err != nil || itemID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "item id required")
		return
	}

	items, err := h.catalog.FetchAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	idx := -1
	for i := range items {
		if items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeError(w, http.StatusNotFound, codeItemNotFound, "unknown item id")
		return
	}

	h.cartMutation(w, h.carts.AddItem(items[idx]), http.StatusCreated)
}

// UpdateCartItem applies a quantity delta to the line named by the path id.
// Deltas against an absent line are a tolerated no-op.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "unreadable body")
		return
	}

	var (
		delta    int
		hasDelta bool
	)
	if err := jx.DecodeBytes(body).Obj(func(d *jx.Decoder, key string) error {
		var err error
		if key == "delta" {
			delta, err = d.Int()
			hasDelta = true
		} else {
			err = d.Skip()
		}
		return err
	}); err != nil || !hasDelta {
		writeError(w, http.StatusBadRequest, codeBadRequest, "delta required")
		return
	}

	h.cartMutation(w, h.carts.ApplyQuantityDelta(r.PathValue("id"), delta), http.StatusOK)
}

// RemoveCartItem drops the line named by the path id.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	h.cartMutation(w, h.carts.RemoveItem(r.PathValue("id")), http.StatusOK)
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, _ *http.Request) {
	h.cartMutation(w, h.carts.Clear(), http.StatusOK)
}

// cartMutation finishes a cart write: a storage failure degrades to
// memory-only state with a warning rather than failing the mutation the
// user already sees applied.
func (h *Handler) cartMutation(w http.ResponseWriter, err error, okStatus int) {
	if err != nil && !kv.IsStorageError(err) {
		writeDomainError(w, err)
		return
	}
	h.writeCart(w, okStatus, err != nil)
}

func (h *Handler) writeCart(w http.ResponseWriter, status int, degraded bool) {
	lines := h.carts.Lines()
	totals := cart.ComputeTotals(lines)

	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("lines", func(e *jx.Encoder) { encodeCartLines(e, lines) })
			e.Field("units", func(e *jx.Encoder) { e.Int(unitCount(lines)) })
			e.Field("totals", func(e *jx.Encoder) { encodeTotals(e, totals) })
			if degraded {
				e.Field("warning", func(e *jx.Encoder) { e.Str(codeStorageFailure) })
			}
		})
	})
}

func encodeCartLines(e *jx.Encoder, lines []cart.Line) {
	e.Arr(func(e *jx.Encoder) {
		for _, l := range lines {
			e.Obj(func(e *jx.Encoder) {
				e.Field("item", func(e *jx.Encoder) { encodeCatalogItem(e, l.Item) })
				e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
			})
		}
	})
}

func encodeTotals(e *jx.Encoder, t cart.Totals) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("subtotal", func(e *jx.Encoder) { e.Str(t.Subtotal.StringFixed(2)) })
		e.Field("tax", func(e *jx.Encoder) { e.Str(t.Tax.StringFixed(2)) })
		e.Field("total", func(e *jx.Encoder) { e.Str(t.Total.StringFixed(2)) })
	})
}

func unitCount(lines []cart.Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
