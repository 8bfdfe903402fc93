package order

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/session"
)

// Service owns the order history and the checkout transition. Checkout is
// serialized by the service mutex: a second checkout cannot start against
// the same cart while one is in flight.
type Service struct {
	carts  Cart
	orders Repository

	mu      sync.Mutex
	history []Order
}

// NewService creates a Service over the given cart engine and repository,
// seeded with the persisted history (newest first).
func NewService(carts Cart, orders Repository, history []Order) *Service {
	return &Service{
		carts:   carts,
		orders:  orders,
		history: append([]Order(nil), history...),
	}
}

// Checkout resolves the current cart into an immutable order. It models an
// asynchronous round trip (the placeholder for a real payment call) and is
// not cancellable once the order write has happened.
//
// Preconditions: sess must be authenticated (session.ErrUnauthorized) and
// the cart non-empty (ErrEmptyCart; history is untouched). On success the
// new order is prepended to the history and durably written before the cart
// is cleared. If the order write fails, nothing changes. If the order write
// succeeds but the cart-clear write fails, the order stands and
// ErrPartialCheckout is returned so the caller can retry the clear.
func (s *Service) Checkout(ctx context.Context, sess session.Session) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !sess.Authenticated() {
		return nil, session.ErrUnauthorized
	}

	lines := s.carts.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	totals := cart.ComputeTotals(lines)

	o := Order{
		ID:        uuid.New().String(),
		Lines:     lines,
		Subtotal:  totals.Subtotal,
		Tax:       totals.Tax,
		Total:     totals.Total,
		CreatedAt: time.Now().UTC(),
		Status:    StatusCompleted,
	}

	next := make([]Order, 0, len(s.history)+1)
	next = append(next, o)
	next = append(next, s.history...)

	if err := s.orders.Save(next); err != nil {
		return nil, errors.Wrap(err, "persist order history")
	}
	s.history = next

	if err := s.carts.Clear(); err != nil {
		return &o, errors.Wrap(ErrPartialCheckout, err.Error())
	}
	return &o, nil
}

// History returns a deep-copied snapshot of the order history, newest first.
func (s *Service) History() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Order, len(s.history))
	for i, o := range s.history {
		o.Lines = append([]cart.Line(nil), o.Lines...)
		out[i] = o
	}
	return out
}
