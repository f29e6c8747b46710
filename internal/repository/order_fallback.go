package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/moritamo/pos-backend/internal/domain/order"
)

const (
	deleteOrderDetailsSQL  = `DELETE FROM order_details WHERE trd_id = $1`
	deleteCouponHistorySQL = `DELETE FROM coupon_histories WHERE trd_id = $1`
	deleteOrderHeaderSQL   = `DELETE FROM orders WHERE trd_id = $1`
)

var _ order.Store = (*CompensatingStore)(nil)

// CompensatingStore implements order.Store for backends without native
// multi-row transactions. Every insert commits immediately; Rollback
// undoes them with best-effort compensating deletes, children first. This
// is the fallback discipline, not the preferred mechanism — use TxStore
// when the backend supports transactions.
type CompensatingStore struct {
	pool *pgxpool.Pool
}

// NewCompensatingStore returns a CompensatingStore that uses the given pool.
func NewCompensatingStore(pool *pgxpool.Pool) *CompensatingStore {
	return &CompensatingStore{pool: pool}
}

// Begin opens a pseudo write scope. No database resources are held.
func (s *CompensatingStore) Begin(_ context.Context) (order.Tx, error) {
	return &compensatingTx{pool: s.pool}, nil
}

// compensatingTx tracks which rows have been written so Rollback knows
// what to compensate.
type compensatingTx struct {
	pool *pgxpool.Pool

	trdID        int64
	wroteHeader  bool
	wroteDetails bool
	wroteCoupon  bool
	committed    bool
}

func (t *compensatingTx) InsertHeader(ctx context.Context, o *order.Order) (int64, error) {
	err := t.pool.QueryRow(ctx, insertOrderHeaderSQL,
		o.OrderedAt, o.EmpCode, o.StoreCode, o.PosNo,
		o.TotalAmt, o.SubtotalAmt,
		o.CustID, o.UsedPoint, o.CouponID, o.DiscountByCP, o.FinalAmt,
	).Scan(&t.trdID)
	if err != nil {
		return 0, fmt.Errorf("inserting order header: %w", err)
	}
	t.wroteHeader = true
	return t.trdID, nil
}

func (t *compensatingTx) InsertDetails(ctx context.Context, trdID int64, details []order.Detail) error {
	for i, d := range details {
		_, err := t.pool.Exec(ctx, insertOrderDetailSQL,
			trdID, d.ProductID, d.Code, d.Name, d.Price, d.Quantity, d.TaxCode,
		)
		if err != nil {
			if i > 0 {
				t.wroteDetails = true
			}
			return fmt.Errorf("inserting order detail %d: %w", i+1, err)
		}
	}
	t.wroteDetails = len(details) > 0
	return nil
}

func (t *compensatingTx) InsertCouponUse(ctx context.Context, use *order.CouponUse) error {
	_, err := t.pool.Exec(ctx, insertCouponHistorySQL,
		use.CrmID, use.CouponID, use.TrdID, use.UsedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting coupon history: %w", err)
	}
	t.wroteCoupon = true
	return nil
}

// Commit is a no-op: every write already committed individually.
func (t *compensatingTx) Commit(_ context.Context) error {
	t.committed = true
	return nil
}

// Rollback deletes whatever this scope wrote, children before the header
// so the foreign keys stay satisfied at every step. A failed header
// delete leaves an orphaned order that no self-healing can remove; it is
// logged as a data-integrity incident for an operator to resolve.
func (t *compensatingTx) Rollback(ctx context.Context) error {
	if t.committed || !t.wroteHeader {
		return nil
	}

	if t.wroteCoupon {
		if _, err := t.pool.Exec(ctx, deleteCouponHistorySQL, t.trdID); err != nil {
			return t.integrityIncident(ctx, "delete coupon history", err)
		}
	}
	if t.wroteDetails {
		if _, err := t.pool.Exec(ctx, deleteOrderDetailsSQL, t.trdID); err != nil {
			return t.integrityIncident(ctx, "delete order details", err)
		}
	}
	if _, err := t.pool.Exec(ctx, deleteOrderHeaderSQL, t.trdID); err != nil {
		return t.integrityIncident(ctx, "delete order header", err)
	}

	t.wroteHeader = false
	return nil
}

func (t *compensatingTx) integrityIncident(ctx context.Context, op string, err error) error {
	zctx.From(ctx).Error("compensation failed, orphaned order rows remain",
		zap.Int64("trd_id", t.trdID),
		zap.String("op", op),
		zap.Error(err),
	)
	return fmt.Errorf("compensating %s for order %d: %w", op, t.trdID, err)
}
