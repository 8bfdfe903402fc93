package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/session"
)

// --- Mock implementations ---

type memCartRepo struct{}

func (memCartRepo) Load() ([]cart.Line, error)  { return nil, nil }
func (memCartRepo) Save(lines []cart.Line) error { return nil }
func (memCartRepo) Wipe() error                  { return nil }

type mockOrderRepo struct {
	saved   [][]Order
	saveErr error
}

func (m *mockOrderRepo) Load() ([]Order, error) { return nil, nil }

func (m *mockOrderRepo) Save(orders []Order) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, orders)
	return nil
}

// failingClearCart wraps a cart engine and fails Clear.
type failingClearCart struct {
	*cart.Engine
}

func (f failingClearCart) Clear() error { return errors.New("clear write failed") }

// --- Helpers ---

func testItem(id, price string) catalog.Item {
	return catalog.Item{
		ID:       id,
		Name:     "Item " + id,
		Category: "test",
		Price:    decimal.RequireFromString(price),
	}
}

func authedSession() session.Session {
	return session.Session{
		User:  &session.User{ID: "u1", Email: "jo@example.com", DisplayName: "jo"},
		Token: "token",
	}
}

func newCheckout(t *testing.T) (*Service, *cart.Engine, *mockOrderRepo) {
	t.Helper()
	engine := cart.NewEngine(memCartRepo{}, nil)
	repo := &mockOrderRepo{}
	return NewService(engine, repo, nil), engine, repo
}

// --- Tests ---

func TestCheckout_Unauthorized(t *testing.T) {
	svc, engine, repo := newCheckout(t)
	require.NoError(t, engine.AddItem(testItem("a", "10.00")))

	_, err := svc.Checkout(context.Background(), session.Session{})
	require.ErrorIs(t, err, session.ErrUnauthorized)
	assert.Empty(t, repo.saved)
	assert.Len(t, engine.Lines(), 1)
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, _, repo := newCheckout(t)

	_, err := svc.Checkout(context.Background(), authedSession())
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, repo.saved)
	assert.Empty(t, svc.History())
}

func TestCheckout_Success(t *testing.T) {
	svc, engine, repo := newCheckout(t)
	a := testItem("a", "10.00")
	require.NoError(t, engine.AddItem(a))
	require.NoError(t, engine.AddItem(a))
	require.NoError(t, engine.AddItem(testItem("b", "5.00")))

	o, err := svc.Checkout(context.Background(), authedSession())
	require.NoError(t, err)

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, StatusCompleted, o.Status)
	assert.False(t, o.CreatedAt.IsZero())
	assert.True(t, decimal.RequireFromString("25.00").Equal(o.Subtotal))
	assert.True(t, decimal.RequireFromString("2.50").Equal(o.Tax))
	assert.True(t, decimal.RequireFromString("27.50").Equal(o.Total))
	require.Len(t, o.Lines, 2)
	assert.Equal(t, 2, o.Lines[0].Quantity)

	// Cart cleared, history persisted with the new order first.
	assert.Empty(t, engine.Lines())
	require.Len(t, repo.saved, 1)
	require.Len(t, svc.History(), 1)
	assert.Equal(t, o.ID, svc.History()[0].ID)
}

func TestCheckout_HistoryNewestFirst(t *testing.T) {
	svc, engine, _ := newCheckout(t)

	require.NoError(t, engine.AddItem(testItem("a", "10.00")))
	first, err := svc.Checkout(context.Background(), authedSession())
	require.NoError(t, err)

	require.NoError(t, engine.AddItem(testItem("b", "5.00")))
	second, err := svc.Checkout(context.Background(), authedSession())
	require.NoError(t, err)

	history := svc.History()
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCheckout_LaterCartMutationDoesNotTouchOrder(t *testing.T) {
	svc, engine, _ := newCheckout(t)
	require.NoError(t, engine.AddItem(testItem("a", "10.00")))

	o, err := svc.Checkout(context.Background(), authedSession())
	require.NoError(t, err)

	require.NoError(t, engine.AddItem(testItem("z", "99.99")))
	require.NoError(t, engine.AddItem(testItem("z", "99.99")))

	stored := svc.History()[0]
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, "a", stored.Lines[0].Item.ID)
	assert.Equal(t, 1, stored.Lines[0].Quantity)
	assert.True(t, o.Total.Equal(stored.Total))
}

func TestCheckout_OrderWriteFailureLeavesEverything(t *testing.T) {
	engine := cart.NewEngine(memCartRepo{}, nil)
	repo := &mockOrderRepo{saveErr: errors.New("disk full")}
	svc := NewService(engine, repo, nil)
	require.NoError(t, engine.AddItem(testItem("a", "10.00")))

	_, err := svc.Checkout(context.Background(), authedSession())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPartialCheckout)

	// No order recorded, cart untouched.
	assert.Empty(t, svc.History())
	assert.Len(t, engine.Lines(), 1)
}

func TestCheckout_CartClearFailureIsPartial(t *testing.T) {
	engine := cart.NewEngine(memCartRepo{}, nil)
	repo := &mockOrderRepo{}
	svc := NewService(failingClearCart{engine}, repo, nil)
	require.NoError(t, engine.AddItem(testItem("a", "10.00")))

	o, err := svc.Checkout(context.Background(), authedSession())
	require.ErrorIs(t, err, ErrPartialCheckout)

	// The order stands and is recoverable: retrying the clear suffices.
	require.NotNil(t, o)
	require.Len(t, svc.History(), 1)
	assert.Equal(t, o.ID, svc.History()[0].ID)
}

func TestHistory_SnapshotIsolation(t *testing.T) {
	svc, engine, _ := newCheckout(t)
	require.NoError(t, engine.AddItem(testItem("a", "10.00")))
	_, err := svc.Checkout(context.Background(), authedSession())
	require.NoError(t, err)

	snap := svc.History()
	snap[0].Lines[0].Quantity = 99

	assert.Equal(t, 1, svc.History()[0].Lines[0].Quantity)
}

func TestNewService_SeededHistory(t *testing.T) {
	seed := []Order{{ID: "old-1", Status: StatusCompleted}}
	svc := NewService(cart.NewEngine(memCartRepo{}, nil), &mockOrderRepo{}, seed)

	history := svc.History()
	require.Len(t, history, 1)
	assert.Equal(t, "old-1", history[0].ID)
}
