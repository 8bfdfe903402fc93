package cart

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/catalog"
)

// --- Mock implementations ---

type mockRepo struct {
	saved   [][]Line
	wiped   bool
	saveErr error
}

func (m *mockRepo) Load() ([]Line, error) { return nil, nil }

func (m *mockRepo) Wipe() error {
	m.wiped = true
	return nil
}

func (m *mockRepo) Save(lines []Line) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, lines)
	return nil
}

func (m *mockRepo) lastSaved() []Line {
	if len(m.saved) == 0 {
		return nil
	}
	return m.saved[len(m.saved)-1]
}

// --- Helpers ---

func item(id, name, price string) catalog.Item {
	return catalog.Item{
		ID:       id,
		Name:     name,
		Category: "test",
		Price:    decimal.RequireFromString(price),
	}
}

func newEngine() (*Engine, *mockRepo) {
	repo := &mockRepo{}
	return NewEngine(repo, nil), repo
}

// --- Tests ---

func TestAddItem_NewLineAppended(t *testing.T) {
	e, repo := newEngine()

	require.NoError(t, e.AddItem(item("a", "Widget", "10.00")))
	require.NoError(t, e.AddItem(item("b", "Gadget", "5.00")))

	lines := e.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0].Item.ID)
	assert.Equal(t, "b", lines[1].Item.ID)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Len(t, repo.lastSaved(), 2)
}

func TestAddItem_RepeatedIncrementsSingleLine(t *testing.T) {
	e, _ := newEngine()
	a := item("a", "Widget", "10.00")

	for range 5 {
		require.NoError(t, e.AddItem(a))
	}

	lines := e.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestAddItem_ExistingLineKeepsPosition(t *testing.T) {
	e, _ := newEngine()

	require.NoError(t, e.AddItem(item("a", "Widget", "10.00")))
	require.NoError(t, e.AddItem(item("b", "Gadget", "5.00")))
	require.NoError(t, e.AddItem(item("a", "Widget", "10.00")))

	lines := e.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0].Item.ID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "b", lines[1].Item.ID)
}

func TestApplyQuantityDelta_Increment(t *testing.T) {
	e, _ := newEngine()
	require.NoError(t, e.AddItem(item("a", "Widget", "10.00")))

	require.NoError(t, e.ApplyQuantityDelta("a", 3))

	assert.Equal(t, 4, e.Lines()[0].Quantity)
}

func TestApplyQuantityDelta_DropToZeroRemovesLine(t *testing.T) {
	e, _ := newEngine()
	require.NoError(t, e.AddItem(item("a", "Widget", "10.00")))
	require.NoError(t, e.AddItem(item("a", "Widget", "10.00")))
	require.NoError(t, e.AddItem(item("b", "Gadget", "5.00")))

	require.NoError(t, e.ApplyQuantityDelta("a", -2))

	lines := e.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "b", lines[0].Item.ID)
}

func TestApplyQuantityDelta_AbsentIDIsNoop(t *testing.T) {
	e, repo := newEngine()
	require.NoError(t, e.AddItem(item("a", "Widget", "10.00")))
	writes := len(repo.saved)

	require.NoError(t, e.ApplyQuantityDelta("missing", -1))

	assert.Len(t, e.Lines(), 1)
	assert.Len(t, repo.saved, writes, "no-op must not persist")
}

func TestApplyQuantityDelta_AddThenAddThenDecrement(t *testing.T) {
	e, _ := newEngine()
	a := item("a", "Widget", "10.00")

	require.NoError(t, e.AddItem(a))
	require.NoError(t, e.AddItem(a))
	require.NoError(t, e.ApplyQuantityDelta("a", -1))

	lines := e.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	e, _ := newEngine()
	require.NoError(t, e.AddItem(item("a", "Widget", "10.00")))
	require.NoError(t, e.AddItem(item("b", "Gadget", "5.00")))

	require.NoError(t, e.RemoveItem("a"))

	lines := e.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "b", lines[0].Item.ID)

	// Removing again is a no-op.
	require.NoError(t, e.RemoveItem("a"))
	assert.Len(t, e.Lines(), 1)
}

func TestClear_PersistsEmptyValue(t *testing.T) {
	e, repo := newEngine()
	require.NoError(t, e.AddItem(item("a", "Widget", "10.00")))

	require.NoError(t, e.Clear())

	assert.Empty(t, e.Lines())
	assert.NotNil(t, repo.saved)
	assert.Empty(t, repo.lastSaved())
}

func TestInvalidate_EmptiesAndWipesKey(t *testing.T) {
	e, repo := newEngine()
	require.NoError(t, e.AddItem(item("a", "Widget", "10.00")))

	require.NoError(t, e.Invalidate())

	assert.Empty(t, e.Lines())
	assert.True(t, repo.wiped)
}

func TestTotals_Example(t *testing.T) {
	e, _ := newEngine()
	a := item("a", "Widget", "10.00")
	require.NoError(t, e.AddItem(a))
	require.NoError(t, e.AddItem(a))
	require.NoError(t, e.AddItem(item("b", "Gadget", "5.00")))

	tt := e.Totals()
	assert.True(t, decimal.RequireFromString("25.00").Equal(tt.Subtotal), "subtotal %s", tt.Subtotal)
	assert.True(t, decimal.RequireFromString("2.50").Equal(tt.Tax), "tax %s", tt.Tax)
	assert.True(t, decimal.RequireFromString("27.50").Equal(tt.Total), "total %s", tt.Total)
}

func TestTotals_EmptyCart(t *testing.T) {
	e, _ := newEngine()

	tt := e.Totals()
	assert.True(t, tt.Subtotal.IsZero())
	assert.True(t, tt.Tax.IsZero())
	assert.True(t, tt.Total.IsZero())
}

func TestTotals_TaxRoundedOnce(t *testing.T) {
	e, _ := newEngine()
	// 3 * 0.15 = 0.45 → tax 0.045 rounds half-up to 0.05.
	require.NoError(t, e.AddItem(item("a", "Penny Sweet", "0.15")))
	require.NoError(t, e.ApplyQuantityDelta("a", 2))

	tt := e.Totals()
	assert.True(t, decimal.RequireFromString("0.45").Equal(tt.Subtotal))
	assert.True(t, decimal.RequireFromString("0.05").Equal(tt.Tax), "tax %s", tt.Tax)
	assert.True(t, tt.Total.Equal(tt.Subtotal.Add(tt.Tax)))
}

func TestTotals_NoFloatDrift(t *testing.T) {
	e, _ := newEngine()
	require.NoError(t, e.AddItem(item("a", "Sticker", "0.10")))
	require.NoError(t, e.ApplyQuantityDelta("a", 99)) // 100 * 0.10

	tt := e.Totals()
	assert.True(t, decimal.RequireFromString("10").Equal(tt.Subtotal), "subtotal %s", tt.Subtotal)
	assert.True(t, decimal.RequireFromString("1.00").Equal(tt.Tax))
	assert.True(t, decimal.RequireFromString("11.00").Equal(tt.Total))
}

func TestMutation_StorageFailureKeepsMemoryState(t *testing.T) {
	repo := &mockRepo{saveErr: errors.New("quota exceeded")}
	e := NewEngine(repo, nil)

	err := e.AddItem(item("a", "Widget", "10.00"))
	require.Error(t, err)

	// In-memory state stands; the session continues memory-only.
	lines := e.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestLines_SnapshotIsolation(t *testing.T) {
	e, _ := newEngine()
	require.NoError(t, e.AddItem(item("a", "Widget", "10.00")))

	snap := e.Lines()
	require.NoError(t, e.AddItem(item("a", "Widget", "10.00")))

	assert.Equal(t, 1, snap[0].Quantity)
	assert.Equal(t, 2, e.Lines()[0].Quantity)
}

func TestUnitsAndLen(t *testing.T) {
	e, _ := newEngine()
	require.NoError(t, e.AddItem(item("a", "Widget", "10.00")))
	require.NoError(t, e.AddItem(item("a", "Widget", "10.00")))
	require.NoError(t, e.AddItem(item("b", "Gadget", "5.00")))

	assert.Equal(t, 2, e.Len())
	assert.Equal(t, 3, e.Units())
}

func TestNewEngine_SeededLines(t *testing.T) {
	initial := []Line{{Item: item("a", "Widget", "10.00"), Quantity: 2}}
	e := NewEngine(&mockRepo{}, initial)

	lines := e.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)

	// Seed slice is copied, not aliased.
	initial[0].Quantity = 99
	assert.Equal(t, 2, e.Lines()[0].Quantity)
}
