package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/moritamo/pos-backend/internal/domain/employee"
)

const instrumentationName = "pos-backend/order"

// Config holds the fixed policy knobs for order recording. The tax rate is
// configuration, never caller-supplied, so a terminal cannot manipulate
// the tax applied to a sale.
type Config struct {
	TaxRatePercent int
	StoreCode      string
	PosNo          string
	// StoreTimeout bounds the persistence step. Zero means no bound.
	StoreTimeout time.Duration
}

// RecordRequest is the input for recording one transaction.
type RecordRequest struct {
	Items []LineItem
	// EmpCode is the acting employee; empty means the guest identity.
	EmpCode string
	CustID  *int64
	// UsedPoint is the loyalty point count redeemed, informational.
	UsedPoint *int64
	// CouponID plus CouponDiscount describe an externally computed
	// discount. CouponDiscount must be 0..total.
	CouponID       *string
	CouponDiscount int64
}

// Service coordinates actor resolution, totals computation, and the atomic
// persistence of an order with its details.
type Service struct {
	employees employee.Repository
	store     Store
	cfg       Config
	now       func() time.Time

	tracer   trace.Tracer
	recorded metric.Int64Counter
}

// NewService creates an order Service with the required dependencies.
func NewService(employees employee.Repository, store Store, cfg Config) *Service {
	recorded, _ := otel.Meter(instrumentationName).Int64Counter("pos.transactions.recorded",
		metric.WithDescription("Transactions committed to the order store"),
	)
	return &Service{
		employees: employees,
		store:     store,
		cfg:       cfg,
		now:       time.Now,
		tracer:    otel.Tracer(instrumentationName),
		recorded:  recorded,
	}
}

// Record runs the full transaction-recording workflow and returns a
// receipt after the store has acknowledged the commit. On any failure the
// write scope is rolled back (or compensated) first; callers never observe
// a partial order.
//
// Record is not idempotent across retries: there is no client-supplied
// idempotency key, so retrying after a store timeout can double-write.
func (s *Service) Record(ctx context.Context, req RecordRequest) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "order.Record")
	defer span.End()

	emp, err := s.resolveActor(ctx, req.EmpCode)
	if err != nil {
		return nil, err
	}

	totals, err := ComputeTotals(req.Items, s.cfg.TaxRatePercent)
	if err != nil {
		return nil, err
	}

	finalAmt, err := ApplyDiscount(totals.Total, req.CouponDiscount)
	if err != nil {
		return nil, err
	}

	o := &Order{
		OrderedAt:   s.now(),
		EmpCode:     emp.Code,
		StoreCode:   s.cfg.StoreCode,
		PosNo:       s.cfg.PosNo,
		TotalAmt:    totals.Total,
		SubtotalAmt: totals.Subtotal,
		CustID:      req.CustID,
		UsedPoint:   req.UsedPoint,
		CouponID:    req.CouponID,
		FinalAmt:    finalAmt,
	}
	if req.CouponID != nil {
		discount := req.CouponDiscount
		o.DiscountByCP = &discount
	}

	trdID, err := s.persist(ctx, o, req)
	if err != nil {
		return nil, err
	}

	s.recorded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("store_cd", s.cfg.StoreCode),
		attribute.String("pos_no", s.cfg.PosNo),
	))

	return &Receipt{
		TransactionID: trdID,
		Subtotal:      totals.Subtotal,
		Total:         totals.Total,
		FinalAmount:   finalAmt,
	}, nil
}

// resolveActor maps the supplied employee code (or its absence) to an
// active employee. An empty code falls back to the guest identity, which
// provisioning guarantees to exist.
func (s *Service) resolveActor(ctx context.Context, code string) (*employee.Employee, error) {
	if code == "" {
		code = employee.GuestCode
	}

	emp, err := s.employees.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			return nil, &UnknownActorError{Code: code}
		}
		return nil, &StoreError{Op: "lookup employee", Err: err}
	}
	if !emp.Active {
		return nil, &UnknownActorError{Code: code}
	}

	return emp, nil
}

// persist writes the header, details, and optional coupon redemption in a
// single write scope. The scope is always released before returning.
func (s *Service) persist(ctx context.Context, o *Order, req RecordRequest) (int64, error) {
	if s.cfg.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), s.cfg.StoreTimeout)
		defer cancel()
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return 0, s.classify("begin", err)
	}

	trdID, err := tx.InsertHeader(ctx, o)
	if err != nil {
		s.rollback(ctx, tx)
		return 0, s.classify("insert header", err)
	}

	details := make([]Detail, len(req.Items))
	for i, item := range req.Items {
		details[i] = Detail{
			TrdID:     trdID,
			ProductID: item.ProductID,
			Code:      item.Code,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			TaxCode:   taxCode(s.cfg.TaxRatePercent),
		}
	}
	if err := tx.InsertDetails(ctx, trdID, details); err != nil {
		s.rollback(ctx, tx)
		return 0, s.classify("insert details", err)
	}

	if req.CouponID != nil {
		use := &CouponUse{
			CrmID:    uuid.New().String(),
			CouponID: *req.CouponID,
			TrdID:    trdID,
			UsedAt:   o.OrderedAt,
		}
		if err := tx.InsertCouponUse(ctx, use); err != nil {
			s.rollback(ctx, tx)
			return 0, s.classify("insert coupon use", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.rollback(ctx, tx)
		return 0, s.classify("commit", err)
	}

	return trdID, nil
}

func (s *Service) rollback(ctx context.Context, tx Tx) {
	// Rollback must not depend on the caller still waiting; run it even if
	// the request context is already done.
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil {
		zctx.From(ctx).Error("order rollback failed", zap.Error(err))
	}
}

// classify maps raw store failures onto the service error taxonomy.
func (s *Service) classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &StoreError{Op: op, Err: ErrStoreUnavailable}
	}
	return &StoreError{Op: op, Err: err}
}

// taxCode renders the tax classification stored on each detail row, e.g.
// "10" for the 10% rate.
func taxCode(ratePercent int) string {
	return fmt.Sprintf("%02d", ratePercent)
}
