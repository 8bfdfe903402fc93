package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"storefront/internal/domain/order"
)

// Checkout resolves the current cart into an order. The operation is
// serialized per session by the order service; callers see either the new
// order, a precondition error, or the explicit partial-checkout condition.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Checkout(r.Context(), h.sessions.Snapshot())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("order", func(e *jx.Encoder) { encodeOrder(e, *o) })
		})
	})
}

// Orders returns the order history, newest first.
func (h *Handler) Orders(w http.ResponseWriter, _ *http.Request) {
	history := h.orders.History()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("orders", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, o := range history {
						encodeOrder(e, o)
					}
				})
			})
		})
	})
}

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("lines", func(e *jx.Encoder) { encodeCartLines(e, o.Lines) })
		e.Field("subtotal", func(e *jx.Encoder) { e.Str(o.Subtotal.StringFixed(2)) })
		e.Field("tax", func(e *jx.Encoder) { e.Str(o.Tax.StringFixed(2)) })
		e.Field("total", func(e *jx.Encoder) { e.Str(o.Total.StringFixed(2)) })
		e.Field("created_at", func(e *jx.Encoder) { e.Str(o.CreatedAt.Format(time.RFC3339)) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
	})
}
