package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for cart validation.
var (
	ErrEmptyCart = errors.New("cart items required")
	// ErrInvalidDiscount is returned when a coupon discount is negative or
	// exceeds the tax-inclusive total.
	ErrInvalidDiscount = errors.New("discount must be between 0 and the order total")
	// ErrStoreUnavailable indicates the backing store did not respond within
	// the configured deadline. The whole call is safe to retry, but note
	// that there is no idempotency key: a retry after a timeout can record
	// the order twice if the original write actually committed.
	ErrStoreUnavailable = errors.New("order store unavailable")
)

// InvalidLineItemError indicates a line item with a negative price or
// non-positive quantity.
type InvalidLineItemError struct {
	ProductCode string
	Reason      string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("invalid line item %s: %s", e.ProductCode, e.Reason)
}

// UnknownActorError indicates the supplied employee code does not resolve
// to an active employee. Client-caused; no rows are written.
type UnknownActorError struct {
	Code string
}

func (e *UnknownActorError) Error() string {
	return fmt.Sprintf("employee %q does not exist or is inactive", e.Code)
}

// StoreError wraps a backing-store failure during order persistence.
// Rollback or compensation has already run by the time it is returned.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("order store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// LineItem is one cart entry as submitted by the terminal. Price is the
// unit price in yen at sale time; it is snapshotted into the order detail
// and never re-derived from the catalog afterwards.
type LineItem struct {
	ProductID int64
	Code      string
	Name      string
	Price     int64
	Quantity  int
}

// Order is a recorded transaction header.
type Order struct {
	TrdID        int64
	OrderedAt    time.Time
	EmpCode      string
	StoreCode    string
	PosNo        string
	TotalAmt     int64
	SubtotalAmt  int64
	CustID       *int64
	UsedPoint    *int64
	CouponID     *string
	DiscountByCP *int64
	FinalAmt     int64
}

// Detail is one persisted line of an order, carrying the product snapshot.
type Detail struct {
	DtlID     int64
	TrdID     int64
	ProductID int64
	Code      string
	Name      string
	Price     int64
	Quantity  int
	TaxCode   string
}

// CouponUse records a coupon redemption tied to an order.
type CouponUse struct {
	CrmID    string
	CouponID string
	TrdID    int64
	UsedAt   time.Time
}

// Receipt is returned to the caller after a successful commit.
type Receipt struct {
	TransactionID int64
	Subtotal      int64
	Total         int64
	FinalAmount   int64
}

// Store opens transactional write scopes for order persistence. The
// service holds exactly one scope per Record call and releases it before
// returning.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a single atomic write scope spanning an order header, its detail
// rows, and an optional coupon redemption. Implementations either map this
// onto a native database transaction or emulate it with compensating
// deletes on Rollback.
type Tx interface {
	// InsertHeader writes the order header and returns the store-assigned
	// transaction identifier.
	InsertHeader(ctx context.Context, o *Order) (int64, error)
	InsertDetails(ctx context.Context, trdID int64, details []Detail) error
	InsertCouponUse(ctx context.Context, use *CouponUse) error
	Commit(ctx context.Context) error
	// Rollback undoes everything written in this scope. It must be safe to
	// call after a failed Commit and after a successful one (no-op).
	Rollback(ctx context.Context) error
}
