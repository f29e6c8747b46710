package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moritamo/pos-backend/internal/domain/customer"
)

const (
	createCustomerSQL = `INSERT INTO customers (email, name, point, is_active)
		VALUES (NULLIF($1, ''), $2, $3, $4) RETURNING cust_id`

	getCustomerByEmailSQL = `SELECT cust_id, COALESCE(email, ''), COALESCE(name, ''),
		point, is_active, synced_at, created_at
		FROM customers WHERE email = $1`

	updateCustomerPointsSQL = `UPDATE customers SET point = $2
		WHERE cust_id = $1
		RETURNING cust_id, COALESCE(email, ''), COALESCE(name, ''),
			point, is_active, synced_at, created_at`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Create inserts a new customer and returns the assigned identifier.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, createCustomerSQL, c.Email, c.Name, c.Point, c.Active).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating customer: %w", err)
	}
	return id, nil
}

// GetByEmail looks up a customer by email. Returns customer.ErrNotFound
// when no matching customer exists.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	var c customer.Customer
	err := r.pool.QueryRow(ctx, getCustomerByEmailSQL, email).Scan(
		&c.ID, &c.Email, &c.Name, &c.Point, &c.Active, &c.SyncedAt, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("getting customer by email: %w", err)
	}
	return &c, nil
}

// UpdatePoints sets the customer's point balance and returns the updated row.
func (r *CustomerRepository) UpdatePoints(ctx context.Context, id int64, points int64) (*customer.Customer, error) {
	var c customer.Customer
	err := r.pool.QueryRow(ctx, updateCustomerPointsSQL, id, points).Scan(
		&c.ID, &c.Email, &c.Name, &c.Point, &c.Active, &c.SyncedAt, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("updating points for customer %d: %w", id, err)
	}
	return &c, nil
}
