// Package cart owns the shopping cart: the item-to-quantity mapping, its
// derived monetary totals, and write-through persistence of every mutation.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/catalog"
)

// TaxRate is the flat sales tax applied on top of the subtotal.
var TaxRate = decimal.RequireFromString("0.10")

// Line pairs an embedded item snapshot with a positive quantity. A line with
// quantity below 1 is never stored; it is removed instead.
type Line struct {
	Item     catalog.Item
	Quantity int
}

// Repository mirrors the cart into durable storage. Save always writes a
// value, including the empty cart, so a later Load yields an empty cart
// rather than "absent". Load maps absent or malformed data to an empty cart.
type Repository interface {
	Load() ([]Line, error)
	Save(lines []Line) error
	// Wipe deletes the durable cart key entirely. Used on logout, where the
	// cart has no value once the session ends; Clear keeps the key.
	Wipe() error
}

// Totals are derived from the current lines, never stored.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Engine is the in-memory source of truth for the cart. Every mutation is
// applied in memory first and then written through the Repository; a failed
// write is reported to the caller while the in-memory state stands, so the
// session continues memory-only.
type Engine struct {
	mu    sync.Mutex
	lines []Line
	repo  Repository
}

// NewEngine creates an Engine over repo, seeded with the given lines
// (typically the result of Repository.Load at startup).
func NewEngine(repo Repository, initial []Line) *Engine {
	return &Engine{
		repo:  repo,
		lines: append([]Line(nil), initial...),
	}
}

// AddItem adds one unit of item. An existing line for the same item id keeps
// its position and embedded snapshot and has its quantity incremented;
// otherwise a new line with quantity 1 is appended.
func (e *Engine) AddItem(item catalog.Item) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.lines {
		if e.lines[i].Item.ID == item.ID {
			e.lines[i].Quantity++
			return e.persist()
		}
	}
	e.lines = append(e.lines, Line{Item: item, Quantity: 1})
	return e.persist()
}

// ApplyQuantityDelta adjusts the quantity of the line for itemID by delta.
// If no such line exists this is a no-op. If the new quantity drops to zero
// or below, the line is removed; other lines keep their relative order.
func (e *Engine) ApplyQuantityDelta(itemID string, delta int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.lines {
		if e.lines[i].Item.ID != itemID {
			continue
		}
		if q := e.lines[i].Quantity + delta; q > 0 {
			e.lines[i].Quantity = q
		} else {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
		}
		return e.persist()
	}
	return nil
}

// RemoveItem drops the line for itemID. Removing an absent id is a no-op.
func (e *Engine) RemoveItem(itemID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.lines {
		if e.lines[i].Item.ID == itemID {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
			return e.persist()
		}
	}
	return nil
}

// Clear empties the cart and persists the empty representation. The storage
// key survives with an empty value; only logout deletes the key itself.
func (e *Engine) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lines = e.lines[:0]
	return e.persist()
}

// Invalidate empties the cart and deletes its durable key. Called when the
// owning session ends; carts are session-scoped, not identity-scoped.
func (e *Engine) Invalidate() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lines = e.lines[:0]
	return e.repo.Wipe()
}

// Lines returns a snapshot copy of the current lines. Later cart mutations
// never affect the returned slice.
func (e *Engine) Lines() []Line {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Line(nil), e.lines...)
}

// Len returns the number of distinct lines.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.lines)
}

// Units returns the total unit count across all lines (the cart badge).
func (e *Engine) Units() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, l := range e.lines {
		n += l.Quantity
	}
	return n
}

// Totals computes the current totals. The subtotal keeps full decimal
// precision; tax is rounded half-up to 2 places exactly once; the total is
// the unrounded subtotal plus the rounded tax.
func (e *Engine) Totals() Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ComputeTotals(e.lines)
}

// ComputeTotals derives totals for an arbitrary line set.
func ComputeTotals(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// persist writes the full cart through the repository. Caller holds e.mu.
func (e *Engine) persist() error {
	return e.repo.Save(append([]Line(nil), e.lines...))
}
