// Command catalog-ingest loads one or more catalog feed files (JSON arrays,
// optionally gzip-compressed) into the PostgreSQL items table. Feeds are
// parsed concurrently; duplicate item ids across feeds are dropped, first
// feed wins.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"storefront/internal/domain/catalog"
	"storefront/internal/storage/catalogfile"
	"storefront/internal/storage/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	batchSize     = 500
)

const upsertItemSQL = `
INSERT INTO items (id, name, category, price, original_price, discount, rating, image)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	category = EXCLUDED.category,
	price = EXCLUDED.price,
	original_price = EXCLUDED.original_price,
	discount = EXCLUDED.discount,
	rating = EXCLUDED.rating,
	image = EXCLUDED.image`

func main() {
	var databaseURL string
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	files := flag.Args()
	if len(files) == 0 {
		slog.Error("at least one feed file is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, files); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	slog.Info("parsing feeds", slog.Int("files", len(files)))

	feeds, err := parseFeeds(ctx, files)
	if err != nil {
		return errors.Wrap(err, "parse feeds")
	}

	items := dedupeItems(files, feeds)
	slog.Info("items to write", slog.Int("count", len(items)))

	if len(items) == 0 {
		slog.Info("no items to insert")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := writeItems(ctx, pool, items); err != nil {
		return errors.Wrap(err, "write items to database")
	}

	return nil
}

// parseFeeds decodes all feed files concurrently, one goroutine per file.
func parseFeeds(ctx context.Context, files []string) ([][]catalog.Item, error) {
	feeds := make([][]catalog.Item, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			items, err := catalogfile.ReadFeed(f)
			if err != nil {
				return errors.Wrapf(err, "read feed %s", f)
			}
			slog.Info("feed parsed", slog.String("file", f), slog.Int("items", len(items)))
			feeds[i] = items
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return feeds, nil
}

// dedupeItems merges feeds in argument order, dropping ids seen before. The
// bloom filter front-runs the exact set so the common non-duplicate path
// stays allocation-free.
func dedupeItems(files []string, feeds [][]catalog.Item) []catalog.Item {
	filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	seen := make(map[string]struct{})

	var merged []catalog.Item
	for i, feed := range feeds {
		dropped := 0
		for _, it := range feed {
			if filter.TestString(it.ID) {
				// Possible duplicate; confirm against the exact set.
				if _, ok := seen[it.ID]; ok {
					dropped++
					continue
				}
			}
			filter.AddString(it.ID)
			seen[it.ID] = struct{}{}
			merged = append(merged, it)
		}
		if dropped > 0 {
			slog.Info("duplicates dropped",
				slog.String("file", files[i]),
				slog.Int("count", dropped),
			)
		}
	}
	return merged
}

// writeItems upserts items in batches.
func writeItems(ctx context.Context, pool *pgxpool.Pool, items []catalog.Item) error {
	for start := 0; start < len(items); start += batchSize {
		end := min(start+batchSize, len(items))

		batch := &pgx.Batch{}
		for _, it := range items[start:end] {
			batch.Queue(upsertItemSQL,
				it.ID, it.Name, it.Category,
				it.Price, it.OriginalPrice, it.Discount, it.Rating, it.Image,
			)
		}

		results := pool.SendBatch(ctx, batch)
		for range batch.Len() {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return errors.Wrapf(err, "upsert batch at offset %d", start)
			}
		}
		if err := results.Close(); err != nil {
			return errors.Wrap(err, "close batch")
		}

		slog.Info("write progress", slog.Int("written", end), slog.Int("total", len(items)))
	}
	return nil
}
