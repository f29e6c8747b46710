// Command seed-db applies the schema and loads the fixture data a fresh
// environment needs: the product catalog, the register staff including the
// guest identity, and the standing coupons.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moritamo/pos-backend/internal/domain/employee"
	"github.com/moritamo/pos-backend/internal/repository"
)

const (
	upsertProductSQL = `
INSERT INTO products (code, name, price)
VALUES ($1, $2, $3)
ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price`

	upsertEmployeeSQL = `
INSERT INTO employees (enp_cd, name, role, is_active)
VALUES ($1, $2, $3, $4)
ON CONFLICT (enp_cd) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role, is_active = EXCLUDED.is_active`

	upsertCouponSQL = `
INSERT INTO coupons (coupon_id, name, discount, type, valid_from, valid_to, limit_cnt, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (coupon_id) DO UPDATE SET
    name = EXCLUDED.name, discount = EXCLUDED.discount, type = EXCLUDED.type,
    valid_from = EXCLUDED.valid_from, valid_to = EXCLUDED.valid_to,
    limit_cnt = EXCLUDED.limit_cnt, is_active = EXCLUDED.is_active`
)

type productJSON struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedEmployees(ctx, pool); err != nil {
		return errors.Wrap(err, "seed employees")
	}
	if err := seedCoupons(ctx, pool); err != nil {
		return errors.Wrap(err, "seed coupons")
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if _, err := pool.Exec(ctx, upsertProductSQL, p.Code, p.Name, p.Price); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.Code)
		}
	}

	return nil
}

func seedEmployees(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding register staff")

	staff := []struct {
		code, name, role string
	}{
		// The guest identity must exist for unattended sales to record.
		{employee.GuestCode, "Guest", "guest"},
		{"EMP001", "Sato Hanako", "cashier"},
		{"EMP002", "Suzuki Taro", "manager"},
	}

	for _, e := range staff {
		if _, err := pool.Exec(ctx, upsertEmployeeSQL, e.code, e.name, e.role, true); err != nil {
			return errors.Wrapf(err, "upsert employee %s", e.code)
		}
		slog.Info("upserted employee", slog.String("enp_cd", e.code), slog.String("role", e.role))
	}

	return nil
}

func seedCoupons(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding standing coupons")

	now := time.Now()
	yearEnd := time.Date(now.Year(), 12, 31, 0, 0, 0, 0, time.Local)

	coupons := []struct {
		id, name string
		discount int64
		typ      string
		limitCnt *int
	}{
		{"CPNEW100", "New member: 100 yen off", 100, "F", nil},
		{"CPRAIN10", "Rainy day: 10% off", 10, "P", nil},
	}

	for _, c := range coupons {
		if _, err := pool.Exec(ctx, upsertCouponSQL,
			c.id, c.name, c.discount, c.typ, now, yearEnd, c.limitCnt, true,
		); err != nil {
			return errors.Wrapf(err, "upsert coupon %s", c.id)
		}
		slog.Info("upserted coupon", slog.String("coupon_id", c.id), slog.String("name", c.name))
	}

	return nil
}
