package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// DiscountType enumerates the coupon discount strategies declared in the
// data model. Discount application itself is supplied by the caller of the
// transaction endpoint as a finished amount.
type DiscountType string

const (
	// DiscountPercentage applies a percentage-based discount.
	DiscountPercentage DiscountType = "P"
	// DiscountFixed applies a fixed yen discount.
	DiscountFixed DiscountType = "F"
)

// ErrNotFound is returned when a requested coupon does not exist.
var ErrNotFound = errors.New("coupon not found")

// Coupon represents a discount coupon definition.
type Coupon struct {
	ID        string
	Name      string
	Discount  int64
	Type      DiscountType
	ValidFrom time.Time
	ValidTo   time.Time
	LimitCnt  *int
	Active    bool
	CreatedAt time.Time
}

// Repository defines read operations for coupons.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Coupon, error)
}
