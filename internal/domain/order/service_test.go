package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moritamo/pos-backend/internal/domain/employee"
)

// --- Mock implementations ---

type mockEmployeeRepo struct {
	byCode map[string]*employee.Employee
}

func (m *mockEmployeeRepo) GetByCode(_ context.Context, code string) (*employee.Employee, error) {
	e, ok := m.byCode[code]
	if !ok {
		return nil, employee.ErrNotFound
	}
	return e, nil
}

// mockStore records every write and can be told to fail at any stage.
type mockStore struct {
	beginErr  error
	headerErr error
	detailErr error
	couponErr error
	commitErr error

	begun      int
	header     *Order
	details    []Detail
	couponUse  *CouponUse
	committed  bool
	rolledBack bool
}

func (m *mockStore) Begin(_ context.Context) (Tx, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	m.begun++
	return m, nil
}

func (m *mockStore) InsertHeader(_ context.Context, o *Order) (int64, error) {
	if m.headerErr != nil {
		return 0, m.headerErr
	}
	m.header = o
	return 42, nil
}

func (m *mockStore) InsertDetails(_ context.Context, _ int64, details []Detail) error {
	if m.detailErr != nil {
		return m.detailErr
	}
	m.details = details
	return nil
}

func (m *mockStore) InsertCouponUse(_ context.Context, use *CouponUse) error {
	if m.couponErr != nil {
		return m.couponErr
	}
	m.couponUse = use
	return nil
}

func (m *mockStore) Commit(_ context.Context) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed = true
	return nil
}

func (m *mockStore) Rollback(_ context.Context) error {
	m.rolledBack = true
	// A rolled back scope discards everything it held.
	m.header = nil
	m.details = nil
	m.couponUse = nil
	return nil
}

// --- Helpers ---

func newEmployeeRepo(emps ...employee.Employee) *mockEmployeeRepo {
	byCode := make(map[string]*employee.Employee, len(emps))
	for i := range emps {
		byCode[emps[i].Code] = &emps[i]
	}
	return &mockEmployeeRepo{byCode: byCode}
}

func guestRepo() *mockEmployeeRepo {
	return newEmployeeRepo(employee.Employee{Code: employee.GuestCode, Name: "Guest", Active: true})
}

func testConfig() Config {
	return Config{
		TaxRatePercent: 10,
		StoreCode:      "A001",
		PosNo:          "P01",
		StoreTimeout:   time.Second,
	}
}

func testItems() []LineItem {
	return []LineItem{
		{ProductID: 1, Code: "4901234567890", Name: "Green Tea", Price: 100, Quantity: 2},
		{ProductID: 2, Code: "4901234567891", Name: "Onigiri", Price: 50, Quantity: 1},
	}
}

// --- Tests ---

func TestRecord_GuestFallback(t *testing.T) {
	store := &mockStore{}
	svc := NewService(guestRepo(), store, testConfig())

	receipt, err := svc.Record(context.Background(), RecordRequest{Items: testItems()})

	require.NoError(t, err)
	assert.Equal(t, int64(42), receipt.TransactionID)
	assert.Equal(t, employee.GuestCode, store.header.EmpCode)
	assert.True(t, store.committed)
}

func TestRecord_UnknownActor(t *testing.T) {
	store := &mockStore{}
	svc := NewService(guestRepo(), store, testConfig())

	_, err := svc.Record(context.Background(), RecordRequest{
		Items:   testItems(),
		EmpCode: "NOPE",
	})

	var uaErr *UnknownActorError
	require.ErrorAs(t, err, &uaErr)
	assert.Equal(t, "NOPE", uaErr.Code)
	// No write scope may even be opened for a rejected actor.
	assert.Zero(t, store.begun)
}

func TestRecord_InactiveActor(t *testing.T) {
	repo := newEmployeeRepo(
		employee.Employee{Code: employee.GuestCode, Active: true},
		employee.Employee{Code: "EMP001", Name: "Sato", Active: false},
	)
	store := &mockStore{}
	svc := NewService(repo, store, testConfig())

	_, err := svc.Record(context.Background(), RecordRequest{
		Items:   testItems(),
		EmpCode: "EMP001",
	})

	var uaErr *UnknownActorError
	require.ErrorAs(t, err, &uaErr)
	assert.Zero(t, store.begun)
}

func TestRecord_Totals(t *testing.T) {
	store := &mockStore{}
	svc := NewService(guestRepo(), store, testConfig())

	receipt, err := svc.Record(context.Background(), RecordRequest{Items: testItems()})

	require.NoError(t, err)
	assert.Equal(t, int64(250), receipt.Subtotal)
	assert.Equal(t, int64(275), receipt.Total)
	assert.Equal(t, int64(275), receipt.FinalAmount)
	assert.Equal(t, int64(250), store.header.SubtotalAmt)
	assert.Equal(t, int64(275), store.header.TotalAmt)
	assert.Equal(t, int64(275), store.header.FinalAmt)
}

func TestRecord_EmptyCart(t *testing.T) {
	store := &mockStore{}
	svc := NewService(guestRepo(), store, testConfig())

	_, err := svc.Record(context.Background(), RecordRequest{})

	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, store.begun)
}

func TestRecord_DetailSnapshot(t *testing.T) {
	store := &mockStore{}
	svc := NewService(guestRepo(), store, testConfig())

	_, err := svc.Record(context.Background(), RecordRequest{Items: testItems()})

	require.NoError(t, err)
	require.Len(t, store.details, 2)
	first := store.details[0]
	assert.Equal(t, int64(42), first.TrdID)
	assert.Equal(t, "4901234567890", first.Code)
	assert.Equal(t, "Green Tea", first.Name)
	assert.Equal(t, int64(100), first.Price)
	assert.Equal(t, 2, first.Quantity)
	assert.Equal(t, "10", first.TaxCode)
}

func TestRecord_DetailFailureRollsBack(t *testing.T) {
	store := &mockStore{detailErr: errors.New("disk full")}
	svc := NewService(guestRepo(), store, testConfig())

	_, err := svc.Record(context.Background(), RecordRequest{Items: testItems()})

	var stErr *StoreError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, "insert details", stErr.Op)
	assert.True(t, store.rolledBack)
	assert.False(t, store.committed)
	assert.Nil(t, store.header, "rollback must discard the header")
}

func TestRecord_CommitFailureRollsBack(t *testing.T) {
	store := &mockStore{commitErr: errors.New("connection reset")}
	svc := NewService(guestRepo(), store, testConfig())

	_, err := svc.Record(context.Background(), RecordRequest{Items: testItems()})

	var stErr *StoreError
	require.ErrorAs(t, err, &stErr)
	assert.True(t, store.rolledBack)
}

func TestRecord_TimeoutClassifiedUnavailable(t *testing.T) {
	store := &mockStore{headerErr: context.DeadlineExceeded}
	svc := NewService(guestRepo(), store, testConfig())

	_, err := svc.Record(context.Background(), RecordRequest{Items: testItems()})

	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.True(t, store.rolledBack)
}

func TestRecord_CouponUse(t *testing.T) {
	store := &mockStore{}
	svc := NewService(guestRepo(), store, testConfig())

	couponID := "CP2025NEW"
	receipt, err := svc.Record(context.Background(), RecordRequest{
		Items:          testItems(),
		CouponID:       &couponID,
		CouponDiscount: 75,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(275), receipt.Total)
	assert.Equal(t, int64(200), receipt.FinalAmount)
	require.NotNil(t, store.couponUse)
	assert.Equal(t, couponID, store.couponUse.CouponID)
	assert.Equal(t, int64(42), store.couponUse.TrdID)
	assert.NotEmpty(t, store.couponUse.CrmID)
	require.NotNil(t, store.header.DiscountByCP)
	assert.Equal(t, int64(75), *store.header.DiscountByCP)
}

func TestRecord_DiscountExceedsTotal(t *testing.T) {
	store := &mockStore{}
	svc := NewService(guestRepo(), store, testConfig())

	couponID := "CPHUGE"
	_, err := svc.Record(context.Background(), RecordRequest{
		Items:          testItems(),
		CouponID:       &couponID,
		CouponDiscount: 999,
	})

	require.ErrorIs(t, err, ErrInvalidDiscount)
	assert.Zero(t, store.begun)
}

func TestRecord_FinalNeverExceedsTotal(t *testing.T) {
	store := &mockStore{}
	svc := NewService(guestRepo(), store, testConfig())

	couponID := "CP100"
	receipt, err := svc.Record(context.Background(), RecordRequest{
		Items:          testItems(),
		CouponID:       &couponID,
		CouponDiscount: 100,
	})

	require.NoError(t, err)
	assert.LessOrEqual(t, receipt.FinalAmount, receipt.Total)
}
