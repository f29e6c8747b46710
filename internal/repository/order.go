package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moritamo/pos-backend/internal/domain/order"
)

const (
	insertOrderHeaderSQL = `INSERT INTO orders
		(ordered_at, enp_cd, store_cd, pos_no, total_amt, ttl_amt_ex_tax,
		 cust_id, used_point, coupon_id, discount_by_cp, final_amt)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING trd_id`

	insertOrderDetailSQL = `INSERT INTO order_details
		(trd_id, prd_id, prd_code, prd_name, prd_price, quantity, tax_cd)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	insertCouponHistorySQL = `INSERT INTO coupon_histories
		(crm_id, coupon_id, trd_id, used_at)
		VALUES ($1, $2, $3, $4)`
)

var _ order.Store = (*TxStore)(nil)

// TxStore implements order.Store on top of native PostgreSQL transactions.
// This is the preferred store: atomicity comes from the database itself.
type TxStore struct {
	pool *pgxpool.Pool
}

// NewTxStore returns a TxStore that uses the given pool.
func NewTxStore(pool *pgxpool.Pool) *TxStore {
	return &TxStore{pool: pool}
}

// Begin opens a database transaction.
func (s *TxStore) Begin(ctx context.Context) (order.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &orderTx{tx: tx}, nil
}

// orderTx wraps a pgx.Tx as an order.Tx write scope.
type orderTx struct {
	tx pgx.Tx
}

func (t *orderTx) InsertHeader(ctx context.Context, o *order.Order) (int64, error) {
	var trdID int64
	err := t.tx.QueryRow(ctx, insertOrderHeaderSQL,
		o.OrderedAt, o.EmpCode, o.StoreCode, o.PosNo,
		o.TotalAmt, o.SubtotalAmt,
		o.CustID, o.UsedPoint, o.CouponID, o.DiscountByCP, o.FinalAmt,
	).Scan(&trdID)
	if err != nil {
		return 0, fmt.Errorf("inserting order header: %w", err)
	}
	return trdID, nil
}

func (t *orderTx) InsertDetails(ctx context.Context, trdID int64, details []order.Detail) error {
	batch := &pgx.Batch{}
	for _, d := range details {
		batch.Queue(insertOrderDetailSQL,
			trdID, d.ProductID, d.Code, d.Name, d.Price, d.Quantity, d.TaxCode,
		)
	}

	results := t.tx.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for i := range details {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("inserting order detail %d: %w", i+1, err)
		}
	}
	return nil
}

func (t *orderTx) InsertCouponUse(ctx context.Context, use *order.CouponUse) error {
	_, err := t.tx.Exec(ctx, insertCouponHistorySQL,
		use.CrmID, use.CouponID, use.TrdID, use.UsedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting coupon history: %w", err)
	}
	return nil
}

func (t *orderTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (t *orderTx) Rollback(ctx context.Context) error {
	// pgx reports ErrTxClosed after a successful commit; that is the no-op
	// case the order.Tx contract asks for.
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rolling back transaction: %w", err)
	}
	return nil
}
