// Package catalog defines the read-only item catalog consumed by the
// storefront: the Item record, the external Provider interface, and the
// text filter applied on top of a fetched item list.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrUnavailable is returned when the catalog provider cannot serve items.
var ErrUnavailable = errors.New("catalog unavailable")

// Item is a catalog entry. Items are immutable once fetched; the cart embeds
// a snapshot of the Item rather than referencing the provider's copy.
type Item struct {
	ID       string
	Name     string
	Category string
	Price    decimal.Decimal
	// OriginalPrice is the pre-discount price. Zero means the item is not
	// discounted and OriginalPrice should be ignored.
	OriginalPrice decimal.Decimal
	// Discount is a whole percentage (e.g. 20 for 20% off). Zero when the
	// item has no discount.
	Discount int
	Rating   decimal.Decimal
	Image    string
}

// Provider is the external source of catalog items. FetchAll is idempotent
// and side-effect free; failures surface as errors wrapping ErrUnavailable.
type Provider interface {
	FetchAll(ctx context.Context) ([]Item, error)
}
