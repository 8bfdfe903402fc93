// Package order converts cart snapshots into immutable order records and
// maintains the persisted order history.
package order

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"storefront/internal/domain/cart"
)

// Sentinel errors for checkout.
var (
	// ErrEmptyCart is returned when checkout is attempted with no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPartialCheckout is returned when the order was durably recorded but
	// the subsequent cart-clear write failed. The order stands; the caller
	// should retry clearing the cart.
	ErrPartialCheckout = errors.New("order recorded but cart not cleared")
)

// Status is the lifecycle state of an order. Orders are created completed
// and never change; there is no cancellation or refund flow.
type Status string

// StatusCompleted is the only status an order can have.
const StatusCompleted Status = "completed"

// Order is an immutable record of a checkout. Lines are a deep-copied
// snapshot of the cart at checkout time; later cart mutations never reach a
// past order.
type Order struct {
	ID        string
	Lines     []cart.Line
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	CreatedAt time.Time
	Status    Status
}

// Repository mirrors the order history (newest first) into durable storage.
// Load maps absent or malformed data to an empty history.
type Repository interface {
	Load() ([]Order, error)
	Save(orders []Order) error
}

// Cart is the slice of the cart engine checkout needs: a snapshot of the
// lines, their totals, and the post-checkout clear.
type Cart interface {
	Lines() []cart.Line
	Totals() cart.Totals
	Clear() error
}
