package kvstore

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/catalog"
)

// Codec helpers shared by the repositories. Money is encoded as decimal
// strings to keep full precision; a round-trip yields a value equal in all
// observable fields to the original.

func encodeItem(e *jx.Encoder, it catalog.Item) {
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

func decodeItem(d *jx.Decoder) (catalog.Item, error) {
	var it catalog.Item
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			it.ID, err = d.Str()
		case "name":
			it.Name, err = d.Str()
		case "category":
			it.Category, err = d.Str()
		case "price":
			it.Price, err = decodeDecimal(d)
		case "original_price":
			it.OriginalPrice, err = decodeDecimal(d)
		case "discount":
			it.Discount, err = d.Int()
		case "rating":
			it.Rating, err = decodeDecimal(d)
		case "image":
			it.Image, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return catalog.Item{}, err
	}
	if it.ID == "" {
		return catalog.Item{}, errors.New("item id missing")
	}
	if it.Price.IsNegative() {
		return catalog.Item{}, errors.New("negative price")
	}
	return it, nil
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	s, err := d.Str()
	if err != nil {
		return decimal.Decimal{}, err
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "decimal")
	}
	return v, nil
}

func encodeLine(e *jx.Encoder, l cart.Line) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("item", func(e *jx.Encoder) { encodeItem(e, l.Item) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
	})
}

func decodeLine(d *jx.Decoder) (cart.Line, error) {
	var l cart.Line
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "item":
			l.Item, err = decodeItem(d)
		case "quantity":
			l.Quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return cart.Line{}, err
	}
	// A stored line with a non-positive quantity violates the cart
	// invariant; reject the blob rather than normalize it silently.
	if l.Quantity < 1 {
		return cart.Line{}, errors.New("non-positive quantity")
	}
	return l, nil
}

func encodeLines(e *jx.Encoder, lines []cart.Line) {
	e.Arr(func(e *jx.Encoder) {
		for _, l := range lines {
			encodeLine(e, l)
		}
	})
}

func decodeLines(d *jx.Decoder) ([]cart.Line, error) {
	lines := []cart.Line{}
	err := d.Arr(func(d *jx.Decoder) error {
		l, err := decodeLine(d)
		if err != nil {
			return err
		}
		lines = append(lines, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}
