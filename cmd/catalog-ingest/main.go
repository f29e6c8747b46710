// Command catalog-ingest loads gzipped JSONL catalog exports from the head
// office into the products table. Export files repeat items across daily
// snapshots, so codes already ingested in this run are skipped; the first
// occurrence of a code wins.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/moritamo/pos-backend/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	numWorkers    = 4
	progressEvery = 100_000

	insertProductSQL = `
INSERT INTO products (code, name, price)
VALUES ($1, $2, $3)
ON CONFLICT (code) DO NOTHING`
)

type catalogItem struct {
	Code  string
	Name  string
	Price int64
}

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
		slog.Error("no catalog files given: pass one or more .jsonl.gz paths")
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

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	items := make(chan catalogItem, 1024)

	g, ctx := errgroup.WithContext(ctx)

	// One producer streams the files in order; a bloom filter drops codes
	// already forwarded. A false positive skips a genuinely new product,
	// which the next run's snapshot will pick up.
	g.Go(func() error {
		defer close(items)

		seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var total, skipped uint64

		for _, path := range files {
			slog.Info("streaming catalog file", slog.String("path", path))

			err := streamGzLines(ctx, path, func(line []byte) error {
				item, err := decodeItem(line)
				if err != nil {
					return err
				}
				total++
				if total%progressEvery == 0 {
					slog.Info("ingest progress", slog.Uint64("items", total), slog.Uint64("skipped", skipped))
				}
				if seen.TestOrAddString(item.Code) {
					skipped++
					return nil
				}
				select {
				case items <- item:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			})
			if err != nil {
				return errors.Wrapf(err, "stream %s", path)
			}
		}

		slog.Info("streaming complete", slog.Uint64("items", total), slog.Uint64("skipped", skipped))
		return nil
	})

	for w := 0; w < numWorkers; w++ {
		g.Go(func() error {
			return upsertWorker(ctx, pool, items)
		})
	}

	return g.Wait()
}

// decodeItem parses one JSONL record. Only code, name, and price are used;
// unknown keys from newer export formats are ignored.
func decodeItem(line []byte) (catalogItem, error) {
	var item catalogItem
	d := jx.DecodeBytes(line)

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "code":
			v, err := d.Str()
			item.Code = v
			return err
		case "name":
			v, err := d.Str()
			item.Name = v
			return err
		case "price":
			v, err := d.Int64()
			item.Price = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return catalogItem{}, errors.Wrap(err, "decode catalog record")
	}

	if item.Code == "" {
		return catalogItem{}, errors.New("catalog record has no code")
	}
	if item.Price < 0 {
		return catalogItem{}, errors.Errorf("catalog record %s has negative price %d", item.Code, item.Price)
	}
	return item, nil
}

func upsertWorker(ctx context.Context, pool *pgxpool.Pool, items <-chan catalogItem) error {
	for item := range items {
		if _, err := pool.Exec(ctx, insertProductSQL, item.Code, item.Name, item.Price); err != nil {
			return errors.Wrapf(err, "insert product %s", item.Code)
		}
	}
	return nil
}

// streamGzLines opens a gzip-compressed file and calls fn for each
// non-empty line.
func streamGzLines(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lineNo int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}

	return errors.Wrapf(scanner.Err(), "scan %s", path)
}
