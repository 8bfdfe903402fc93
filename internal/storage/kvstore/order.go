package kvstore

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"storefront/internal/domain/order"
	"storefront/internal/storage/kv"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository mirrors the order history under the "orders" key,
// newest first. Nothing ever deletes this key.
type OrderRepository struct {
	store kv.Store
}

// NewOrderRepository returns an OrderRepository over store.
func NewOrderRepository(store kv.Store) *OrderRepository {
	return &OrderRepository{store: store}
}

// Load reads the persisted history. Absent or malformed data yields an
// empty history; only storage failures are returned as errors.
func (r *OrderRepository) Load() ([]order.Order, error) {
	raw, ok, err := r.store.Get(KeyOrders)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	orders, err := decodeOrders(jx.DecodeBytes(raw))
	if err != nil {
		return nil, nil
	}
	return orders, nil
}

// Save writes the full history.
func (r *OrderRepository) Save(orders []order.Order) error {
	var e jx.Encoder
	e.Arr(func(e *jx.Encoder) {
		for _, o := range orders {
			encodeOrder(e, o)
		}
	})
	return r.store.Set(KeyOrders, e.Bytes())
}

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("lines", func(e *jx.Encoder) { encodeLines(e, o.Lines) })
		e.Field("subtotal", func(e *jx.Encoder) { e.Str(o.Subtotal.String()) })
		e.Field("tax", func(e *jx.Encoder) { e.Str(o.Tax.String()) })
		e.Field("total", func(e *jx.Encoder) { e.Str(o.Total.String()) })
		e.Field("created_at", func(e *jx.Encoder) { e.Str(o.CreatedAt.Format(time.RFC3339Nano)) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
	})
}

func decodeOrders(d *jx.Decoder) ([]order.Order, error) {
	orders := []order.Order{}
	err := d.Arr(func(d *jx.Decoder) error {
		o, err := decodeOrder(d)
		if err != nil {
			return err
		}
		orders = append(orders, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func decodeOrder(d *jx.Decoder) (order.Order, error) {
	var o order.Order
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			o.ID, err = d.Str()
		case "lines":
			o.Lines, err = decodeLines(d)
		case "subtotal":
			o.Subtotal, err = decodeDecimal(d)
		case "tax":
			o.Tax, err = decodeDecimal(d)
		case "total":
			o.Total, err = decodeDecimal(d)
		case "created_at":
			var s string
			if s, err = d.Str(); err == nil {
				o.CreatedAt, err = time.Parse(time.RFC3339Nano, s)
			}
		case "status":
			var s string
			if s, err = d.Str(); err == nil {
				o.Status = order.Status(s)
			}
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return order.Order{}, err
	}
	if o.ID == "" {
		return order.Order{}, errors.New("order id missing")
	}
	if o.Status == "" {
		return order.Order{}, errors.New("order status missing")
	}
	return o, nil
}
