// Package handler exposes the commerce engine to presentation over HTTP:
// read-only snapshots of catalog, cart, session and order history, plus the
// mutating operations, each returning a typed success or error body instead
// of leaking faults across the boundary.
package handler

import (
	"net/http"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/order"
	"storefront/internal/domain/session"
)

// Handler wires the engine components behind the HTTP facade.
type Handler struct {
	catalog  catalog.Provider
	sessions *session.Store
	carts    *cart.Engine
	orders   *order.Service
	policy   session.CredentialPolicy
}

// NewHandler constructs a Handler. A nil policy falls back to the default
// credential policy.
func NewHandler(
	provider catalog.Provider,
	sessions *session.Store,
	carts *cart.Engine,
	orders *order.Service,
	policy session.CredentialPolicy,
) *Handler {
	if policy == nil {
		policy = session.DefaultCredentialPolicy
	}
	return &Handler{
		catalog:  provider,
		sessions: sessions,
		carts:    carts,
		orders:   orders,
		policy:   policy,
	}
}

// Register mounts all API routes on mux under /api.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/login", h.Login)
	mux.HandleFunc("POST /api/logout", h.Logout)
	mux.HandleFunc("GET /api/session", h.Session)

	mux.HandleFunc("GET /api/items", h.requireAuth(h.Items))

	mux.HandleFunc("GET /api/cart", h.requireAuth(h.Cart))
	mux.HandleFunc("POST /api/cart/items", h.requireAuth(h.AddCartItem))
	mux.HandleFunc("PATCH /api/cart/items/{id}", h.requireAuth(h.UpdateCartItem))
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.requireAuth(h.RemoveCartItem))
	mux.HandleFunc("DELETE /api/cart", h.requireAuth(h.ClearCart))

	mux.HandleFunc("POST /api/checkout", h.requireAuth(h.Checkout))
	mux.HandleFunc("GET /api/orders", h.requireAuth(h.Orders))
}
