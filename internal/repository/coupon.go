package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moritamo/pos-backend/internal/domain/coupon"
)

const getCouponByIDSQL = `SELECT coupon_id, name, discount, type,
	valid_from, valid_to, limit_cnt, is_active, created_at
	FROM coupons WHERE coupon_id = $1`

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// GetByID looks up a coupon by its identifier. Returns coupon.ErrNotFound
// when no matching coupon exists.
func (r *CouponRepository) GetByID(ctx context.Context, id string) (*coupon.Coupon, error) {
	var (
		c            coupon.Coupon
		discountType string
	)
	err := r.pool.QueryRow(ctx, getCouponByIDSQL, id).Scan(
		&c.ID, &c.Name, &c.Discount, &discountType,
		&c.ValidFrom, &c.ValidTo, &c.LimitCnt, &c.Active, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("getting coupon %q: %w", id, err)
	}
	c.Type = coupon.DiscountType(discountType)
	return &c, nil
}
