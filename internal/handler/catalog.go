package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"storefront/internal/domain/catalog"
)

// Items fetches the catalog and applies the optional ?q= text filter.
func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.FetchAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items = catalog.Filter(items, r.URL.Query().Get("q"))

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("items", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, it := range items {
						encodeCatalogItem(e, it)
					}
				})
			})
		})
	})
}

func encodeCatalogItem(e *jx.Encoder, it catalog.Item) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(it.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(it.Name) })
		e.Field("category", func(e *jx.Encoder) { e.Str(it.Category) })
		e.Field("price", func(e *jx.Encoder) { e.Str(it.Price.String()) })
		if !it.OriginalPrice.IsZero() {
			e.Field("original_price", func(e *jx.Encoder) { e.Str(it.OriginalPrice.String()) })
		}
		if it.Discount != 0 {
			e.Field("discount", func(e *jx.Encoder) { e.Int(it.Discount) })
		}
		e.Field("rating", func(e *jx.Encoder) { e.Str(it.Rating.String()) })
		e.Field("image", func(e *jx.Encoder) { e.Str(it.Image) })
	})
}
