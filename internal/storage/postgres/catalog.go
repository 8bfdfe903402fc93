package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain/catalog"
)

var _ catalog.Provider = (*CatalogProvider)(nil)

// CatalogProvider implements catalog.Provider backed by PostgreSQL.
type CatalogProvider struct {
	pool *pgxpool.Pool
}

// NewCatalogProvider returns a CatalogProvider that uses the given pool.
func NewCatalogProvider(pool *pgxpool.Pool) *CatalogProvider {
	return &CatalogProvider{pool: pool}
}

// FetchAll returns every catalog item ordered by id. Query failures surface
// as catalog.ErrUnavailable.
func (p *CatalogProvider) FetchAll(ctx context.Context) ([]catalog.Item, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, name, category, price,
		       COALESCE(original_price, 0), discount, rating, image
		FROM items
		ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(catalog.ErrUnavailable, err.Error())
	}
	defer rows.Close()

	var items []catalog.Item
	for rows.Next() {
		var it catalog.Item
		if err := rows.Scan(
			&it.ID, &it.Name, &it.Category, &it.Price,
			&it.OriginalPrice, &it.Discount, &it.Rating, &it.Image,
		); err != nil {
			return nil, errors.Wrap(catalog.ErrUnavailable, err.Error())
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(catalog.ErrUnavailable, err.Error())
	}

	return items, nil
}
