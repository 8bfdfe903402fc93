// Package catalogfile provides catalog providers backed by a JSON feed:
// either a file on disk (plain or gzip-compressed) or the embedded default
// seed shipped with the binary.
package catalogfile

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"storefront/db"
	"storefront/internal/domain/catalog"
)

var (
	_ catalog.Provider = (*FileProvider)(nil)
	_ catalog.Provider = (*EmbeddedProvider)(nil)
)

// FileProvider reads the catalog from a JSON array feed file. Files ending
// in .gz are decompressed on the fly.
type FileProvider struct {
	path string
}

// NewFileProvider returns a FileProvider for the given feed path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// FetchAll reads and decodes the full feed. Any I/O or decode failure
// surfaces as catalog.ErrUnavailable.
func (p *FileProvider) FetchAll(_ context.Context) ([]catalog.Item, error) {
	return ReadFeed(p.path)
}

// ReadFeed reads and decodes a feed file from disk. Files ending in .gz are
// decompressed on the fly.
func ReadFeed(path string) ([]catalog.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(catalog.ErrUnavailable, err.Error())
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(catalog.ErrUnavailable, err.Error())
		}
		defer gz.Close()
		r = gz
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(catalog.ErrUnavailable, err.Error())
	}
	return decodeFeed(raw)
}

// EmbeddedProvider serves the catalog seed compiled into the binary. It can
// never fail, which makes it the fallback when nothing else is configured.
type EmbeddedProvider struct{}

// NewEmbeddedProvider returns a provider over db.CatalogSeed.
func NewEmbeddedProvider() *EmbeddedProvider { return &EmbeddedProvider{} }

func (p *EmbeddedProvider) FetchAll(_ context.Context) ([]catalog.Item, error) {
	return decodeFeed(db.CatalogSeed)
}

// decodeFeed parses a JSON array of catalog items. Prices and ratings are
// decimal strings; discount is a whole percentage.
func decodeFeed(raw []byte) ([]catalog.Item, error) {
	var items []catalog.Item
	d := jx.DecodeBytes(raw)
	err := d.Arr(func(d *jx.Decoder) error {
		it, err := decodeFeedItem(d)
		if err != nil {
			return err
		}
		items = append(items, it)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(catalog.ErrUnavailable, err.Error())
	}
	return items, nil
}

func decodeFeedItem(d *jx.Decoder) (catalog.Item, error) {
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
		return catalog.Item{}, errors.New("feed item id missing")
	}
	if it.Price.IsNegative() {
		return catalog.Item{}, errors.New("feed item has negative price")
	}
	return it, nil
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	s, err := d.Str()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(s)
}
