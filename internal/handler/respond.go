package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/order"
	"storefront/internal/domain/session"
	"storefront/internal/storage/kv"

	"github.com/go-faster/errors"
)

// Error codes returned to presentation. Each maps to a distinct, actionable
// condition; none of them crashes the session.
const (
	codeInvalidCredentials = "invalid_credentials"
	codeUnauthorized       = "unauthorized"
	codeEmptyCart          = "empty_cart"
	codePartialCheckout    = "partial_checkout"
	codeStorageFailure     = "storage_failure"
	codeCatalogUnavailable = "catalog_unavailable"
	codeItemNotFound       = "item_not_found"
	codeBadRequest         = "bad_request"
)

// writeJSON emits an encoded body built by fn.
func writeJSON(w http.ResponseWriter, status int, fn func(e *jx.Encoder)) {
	var e jx.Encoder
	fn(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError emits the {code, message} error body.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Str(code) })
			e.Field("message", func(e *jx.Encoder) { e.Str(message) })
		})
	})
}

// writeDomainError maps a domain error to its HTTP status and code.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, codeInvalidCredentials, err.Error())
	case errors.Is(err, session.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusConflict, codeEmptyCart, "cart is empty")
	case errors.Is(err, order.ErrPartialCheckout):
		writeError(w, http.StatusInternalServerError, codePartialCheckout,
			"order recorded but cart not cleared; retry clearing the cart")
	case errors.Is(err, catalog.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeCatalogUnavailable, "catalog unavailable")
	case kv.IsStorageError(err):
		writeError(w, http.StatusInternalServerError, codeStorageFailure, "storage unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
