//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func saleItems() []cartItem {
	return []cartItem{
		{PrdID: 1, Code: "4901234567890", Name: "Green Tea 500ml", Price: 150, Quantity: 2},
		{PrdID: 2, Code: "4901234567891", Name: "Onigiri Salmon", Price: 180, Quantity: 1},
	}
}

func TestRecordTransaction_Guest(t *testing.T) {
	resp := doPost(t, "/transactions", saleItems(), nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	tx := decodeJSON[transactionResponse](t, resp)
	if tx.TransactionID <= 0 {
		t.Errorf("transaction_id: got %d, want > 0", tx.TransactionID)
	}
	// (150*2 + 180) * 1.10 = 528, floored.
	if tx.TotalAmount != 528 {
		t.Errorf("total_amount: got %d, want 528", tx.TotalAmount)
	}
}

func TestRecordTransaction_KnownEmployee(t *testing.T) {
	resp := doPost(t, "/transactions", saleItems(), map[string]string{"emp_cd": "EMP001"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
}

func TestRecordTransaction_UnknownEmployee(t *testing.T) {
	resp := doPost(t, "/transactions", saleItems(), map[string]string{"emp_cd": "NOBODY99"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Message == "" {
		t.Error("error message is empty")
	}
}

func TestRecordTransaction_EmptyCart(t *testing.T) {
	resp := doPost(t, "/transactions", []cartItem{}, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRecordTransaction_TaxFloor(t *testing.T) {
	// 10 * 1.10 = 11 exactly; 95 * 1.10 = 104.5, floored to 104.
	items := []cartItem{
		{PrdID: 9, Code: "4901234567898", Name: "Mineral Water 2L", Price: 95, Quantity: 1},
	}
	resp := doPost(t, "/transactions", items, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	tx := decodeJSON[transactionResponse](t, resp)
	if tx.TotalAmount != 104 {
		t.Errorf("total_amount: got %d, want 104", tx.TotalAmount)
	}
}

func TestRecordTransaction_WithCoupon(t *testing.T) {
	couponID := "CPNEW100"
	req := struct {
		Items          []cartItem `json:"items"`
		CouponID       *string    `json:"coupon_id"`
		CouponDiscount int64      `json:"coupon_discount"`
	}{
		Items:          saleItems(),
		CouponID:       &couponID,
		CouponDiscount: 100,
	}

	resp := doPost(t, "/transactions", req, map[string]string{"emp_cd": "EMP001"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
}

func TestRecordTransaction_IDsAreMonotonic(t *testing.T) {
	first := doPost(t, "/transactions", saleItems(), nil)
	defer first.Body.Close()
	second := doPost(t, "/transactions", saleItems(), nil)
	defer second.Body.Close()

	a := decodeJSON[transactionResponse](t, first)
	b := decodeJSON[transactionResponse](t, second)
	if b.TransactionID <= a.TransactionID {
		t.Errorf("transaction IDs not increasing: %d then %d", a.TransactionID, b.TransactionID)
	}
}
